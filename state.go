package dashauth

import "sort"

// AuthState is the authentication slice of the store.
type AuthState struct {
	Authenticated       bool   `json:"authenticated"`
	Authenticating      bool   `json:"authenticating"`
	OIDC                bool   `json:"oidcAuthenticated"`
	SessionExpired      bool   `json:"sessionExpired"`
	DefaultNamespace    string `json:"defaultNamespace"`
	AuthenticationError string `json:"authenticationError,omitempty"`
}

// ClusterState is the namespace state kept for one cluster.
type ClusterState struct {
	CurrentNamespace string   `json:"currentNamespace"`
	Namespaces       []string `json:"namespaces"`
	Error            string   `json:"error,omitempty"`
}

// ClustersState indexes ClusterState by cluster name.
type ClustersState struct {
	Current  string                  `json:"currentCluster"`
	Clusters map[string]ClusterState `json:"clusters"`
}

// State is the full store value.
type State struct {
	Auth     AuthState     `json:"auth"`
	Clusters ClustersState `json:"clusters"`
	Config   RuntimeConfig `json:"config"`
}

// InitialState returns an unauthenticated state with an empty entry for each
// named cluster. The first cluster becomes the current one.
func InitialState(cfg RuntimeConfig, clusters ...string) State {
	st := State{
		Clusters: ClustersState{Clusters: make(map[string]ClusterState, len(clusters))},
		Config:   cfg,
	}
	for _, c := range clusters {
		if c == "" {
			continue
		}
		if st.Clusters.Current == "" {
			st.Clusters.Current = c
		}
		st.Clusters.Clusters[c] = ClusterState{}
	}
	return st
}

// Reduce applies a single action. It never mutates s.
func Reduce(s State, a Action) State {
	next := s.clone()

	switch act := a.(type) {
	case AuthenticatingAction:
		next.Auth.Authenticating = true
		next.Auth.Authenticated = false
		next.Auth.AuthenticationError = ""
	case AuthenticatedAction:
		next.Auth.Authenticated = act.Authenticated
		next.Auth.OIDC = act.OIDC
		next.Auth.DefaultNamespace = act.DefaultNamespace
		next.Auth.Authenticating = false
	case AuthenticationErrorAction:
		next.Auth.Authenticated = false
		next.Auth.Authenticating = false
		next.Auth.AuthenticationError = act.Message
	case SessionExpiredAction:
		next.Auth.SessionExpired = act.SessionExpired
	case ReceiveNamespacesAction:
		cs := next.Clusters.Clusters[act.Cluster]
		cs.Namespaces = append([]string(nil), act.Namespaces...)
		cs.Error = ""
		next.Clusters.Clusters[act.Cluster] = cs
	case NamespaceErrorAction:
		cs := next.Clusters.Clusters[act.Cluster]
		cs.Error = act.Message
		next.Clusters.Clusters[act.Cluster] = cs
	case ClearClustersAction:
		for name := range next.Clusters.Clusters {
			next.Clusters.Clusters[name] = ClusterState{}
		}
	}

	return next
}

// ClusterNames returns the known clusters in lexical order.
func (s State) ClusterNames() []string {
	names := make([]string, 0, len(s.Clusters.Clusters))
	for name := range s.Clusters.Clusters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s State) clone() State {
	out := s
	out.Clusters.Clusters = make(map[string]ClusterState, len(s.Clusters.Clusters))
	for name, cs := range s.Clusters.Clusters {
		cs.Namespaces = append([]string(nil), cs.Namespaces...)
		out.Clusters.Clusters[name] = cs
	}
	return out
}
