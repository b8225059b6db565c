// Package dashauth holds the authentication state of a Kubernetes dashboard
// client and the procedures that move it: bearer-token login, OIDC cookie
// login, logout, session expiry, and cookie re-authentication.
//
// State lives in a [Store] and only changes through [Action] values passed to
// [Store.Dispatch]. A [Controller] sequences calls to an [Authenticator] and a
// [NamespaceSource] and maps their outcomes onto actions. Build one with
// [New]:
//
//	ctrl, err := dashauth.New().
//		WithAuthenticator(auth).
//		WithNamespaces(lister).
//		WithLogger(logger).
//		Build()
//
// # Architecture boundaries
//
// dashauth is the public surface. Concrete collaborators live in sibling
// packages: dashboard (HTTP Authenticator), namespace (HTTP NamespaceSource),
// tokenstore (Redis and memory token persistence), token (service-account JWT
// decoding), and middleware (bearer injection and 401 expiry detection).
//
// # Concurrency
//
// Controller methods may be called from multiple goroutines. Each procedure
// is a sequence of dispatches; dispatches from concurrent procedures
// interleave, but every single dispatch is atomic with respect to the store.
package dashauth
