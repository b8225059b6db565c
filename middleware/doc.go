// Package middleware connects HTTP traffic to the dashauth state.
//
// # Client side
//
// [Transport] is an http.RoundTripper for dashboard API calls. It adds the
// stored bearer token to outgoing requests and, when the API answers 401
// while the state says the user is authenticated, invokes a hook (normally
// Controller.ExpireSession) exactly once per expiry.
//
// # Server side
//
// [RequireAuthenticated] guards local handlers (status, metrics) behind the
// current auth state and exposes the state via [AuthStateFromContext].
//
// This package makes no authentication decisions of its own; it reads the
// store and delegates to the controller.
package middleware
