package dashauth

// ActionType names a state-update record.
type ActionType string

const (
	// TypeSetAuthenticated records the outcome of a login or logout.
	TypeSetAuthenticated ActionType = "SET_AUTHENTICATED"
	// TypeAuthenticating marks a login in progress.
	TypeAuthenticating ActionType = "AUTHENTICATING"
	// TypeAuthenticationError records a failed login.
	TypeAuthenticationError ActionType = "AUTHENTICATION_ERROR"
	// TypeSetSessionExpired records whether an OIDC session has expired.
	TypeSetSessionExpired ActionType = "SET_AUTHENTICATION_SESSION_EXPIRED"

	// TypeReceiveNamespaces stores the namespaces listed for a cluster.
	TypeReceiveNamespaces ActionType = "RECEIVE_NAMESPACES"
	// TypeNamespaceError stores a namespace listing failure for a cluster.
	TypeNamespaceError ActionType = "ERROR_NAMESPACE"
	// TypeClearClusters drops all per-cluster namespace state.
	TypeClearClusters ActionType = "CLEAR_CLUSTERS"
)

// NamespaceAll is the namespace selected when the token carries none and the
// cluster lists none.
const NamespaceAll = "_all"

// Action is a state-update record passed to Store.Dispatch.
type Action interface {
	Type() ActionType
}

// AuthenticatedAction is the payload of SET_AUTHENTICATED.
type AuthenticatedAction struct {
	Authenticated    bool   `json:"authenticated"`
	OIDC             bool   `json:"oidc"`
	DefaultNamespace string `json:"defaultNamespace"`
}

func (AuthenticatedAction) Type() ActionType { return TypeSetAuthenticated }

// AuthenticatingAction has no payload.
type AuthenticatingAction struct{}

func (AuthenticatingAction) Type() ActionType { return TypeAuthenticating }

// AuthenticationErrorAction carries the message of a failed login.
type AuthenticationErrorAction struct {
	Message string `json:"message"`
}

func (AuthenticationErrorAction) Type() ActionType { return TypeAuthenticationError }

// SessionExpiredAction is the payload of SET_AUTHENTICATION_SESSION_EXPIRED.
type SessionExpiredAction struct {
	SessionExpired bool `json:"sessionExpired"`
}

func (SessionExpiredAction) Type() ActionType { return TypeSetSessionExpired }

// ReceiveNamespacesAction carries a cluster's namespace list.
type ReceiveNamespacesAction struct {
	Cluster    string   `json:"cluster"`
	Namespaces []string `json:"namespaces"`
}

func (ReceiveNamespacesAction) Type() ActionType { return TypeReceiveNamespaces }

// NamespaceErrorAction carries a namespace listing failure.
type NamespaceErrorAction struct {
	Cluster string `json:"cluster"`
	Message string `json:"message"`
}

func (NamespaceErrorAction) Type() ActionType { return TypeNamespaceError }

// ClearClustersAction has no payload.
type ClearClustersAction struct{}

func (ClearClustersAction) Type() ActionType { return TypeClearClusters }

// SetAuthenticated builds a SET_AUTHENTICATED record.
func SetAuthenticated(authenticated, oidc bool, defaultNamespace string) Action {
	return AuthenticatedAction{
		Authenticated:    authenticated,
		OIDC:             oidc,
		DefaultNamespace: defaultNamespace,
	}
}

// Authenticating builds an AUTHENTICATING record.
func Authenticating() Action {
	return AuthenticatingAction{}
}

// AuthenticationError builds an AUTHENTICATION_ERROR record.
func AuthenticationError(msg string) Action {
	return AuthenticationErrorAction{Message: msg}
}

// SetSessionExpired builds a SET_AUTHENTICATION_SESSION_EXPIRED record.
func SetSessionExpired(expired bool) Action {
	return SessionExpiredAction{SessionExpired: expired}
}

// ReceiveNamespaces builds a RECEIVE_NAMESPACES record. The slice is copied.
func ReceiveNamespaces(cluster string, namespaces []string) Action {
	return ReceiveNamespacesAction{
		Cluster:    cluster,
		Namespaces: append([]string(nil), namespaces...),
	}
}

// NamespaceError builds an ERROR_NAMESPACE record.
func NamespaceError(cluster string, err error) Action {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return NamespaceErrorAction{Cluster: cluster, Message: msg}
}

// ClearClusters builds a CLEAR_CLUSTERS record.
func ClearClusters() Action {
	return ClearClustersAction{}
}
