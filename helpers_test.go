package dashauth

import (
	"context"
	"sync"
	"testing"
)

type fakeAuth struct {
	mu sync.Mutex

	validateErr  error
	setErr       error
	unsetErr     error
	cookieErr    error
	oidcErr      error
	cookieAuthed bool
	tokenNS      map[string]string

	stored     bool
	token      string
	oidc       bool
	calls      []string
	cookieCfgs []RuntimeConfig
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{tokenNS: map[string]string{}}
}

func (f *fakeAuth) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeAuth) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAuth) ValidateToken(_ context.Context, cluster, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ValidateToken:" + cluster)
	return f.validateErr
}

func (f *fakeAuth) SetAuthToken(_ context.Context, token string, oidc bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetAuthToken")
	if f.setErr != nil {
		return f.setErr
	}
	f.stored, f.token, f.oidc = true, token, oidc
	return nil
}

func (f *fakeAuth) UnsetAuthToken(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UnsetAuthToken")
	f.stored, f.token, f.oidc = false, "", false
	return f.unsetErr
}

func (f *fakeAuth) AuthToken(context.Context) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.stored {
		return "", false, ErrNoToken
	}
	return f.token, f.oidc, nil
}

func (f *fakeAuth) UsingOIDCToken(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.oidcErr != nil {
		return false, f.oidcErr
	}
	return f.stored && f.oidc, nil
}

func (f *fakeAuth) UnsetAuthCookie(_ context.Context, cfg RuntimeConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UnsetAuthCookie")
	f.cookieCfgs = append(f.cookieCfgs, cfg)
	return nil
}

func (f *fakeAuth) IsAuthenticatedWithCookie(_ context.Context, cluster string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("IsAuthenticatedWithCookie:" + cluster)
	return f.cookieAuthed, f.cookieErr
}

func (f *fakeAuth) DefaultNamespaceFromToken(token string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokenNS[token]
}

type fakeNamespaces struct {
	mu    sync.Mutex
	items map[string][]string
	err   error
	calls int
}

func (f *fakeNamespaces) FetchNamespaces(_ context.Context, cluster string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]string(nil), f.items[cluster]...), nil
}

// actionRecorder collects every dispatched action type in order.
type actionRecorder struct {
	mu      sync.Mutex
	actions []Action
}

func (r *actionRecorder) listen(a Action, _ State) {
	r.mu.Lock()
	r.actions = append(r.actions, a)
	r.mu.Unlock()
}

func (r *actionRecorder) Types() []ActionType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ActionType, 0, len(r.actions))
	for _, a := range r.actions {
		out = append(out, a.Type())
	}
	return out
}

func (r *actionRecorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Action(nil), r.actions...)
}

func buildTestController(t *testing.T, auth *fakeAuth, ns *fakeNamespaces) (*Controller, *actionRecorder) {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Clusters = []string{"default", "second"}
	cfg.Runtime.OAuthLogoutURI = "/logout"

	ctrl, err := New().
		WithConfig(cfg).
		WithAuthenticator(auth).
		WithNamespaces(ns).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(ctrl.Close)

	rec := &actionRecorder{}
	ctrl.Store().Subscribe(rec.listen)
	return ctrl, rec
}

func equalTypes(got []ActionType, want ...ActionType) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
