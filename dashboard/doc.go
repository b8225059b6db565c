// Package dashboard is the HTTP implementation of [dashauth.Authenticator].
//
// It talks to the dashboard API the way the web UI does:
//
//   - a bearer token is valid when GET /api/clusters/<cluster>/ answers 2xx
//     or 403 (the API server authenticated the token but RBAC refused the
//     request), and invalid on 401;
//   - a cookie session exists when the same probe without a bearer token,
//     sent through the auth proxy with the client's cookie jar, is not 401;
//   - ending a cookie session is a GET to the proxy's sign-out URI.
//
// Tokens are persisted in a [tokenstore.Store].
package dashboard
