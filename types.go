package dashauth

import (
	"context"
	"time"
)

// RuntimeConfig is the dashboard runtime configuration kept in the store.
// The logout branch for OIDC sessions reads it.
type RuntimeConfig struct {
	// OAuthLogoutURI is where the auth proxy clears its session cookie.
	// Empty means DefaultOAuthLogoutURI.
	OAuthLogoutURI string `json:"oauthLogoutURI" yaml:"oauth_logout_uri"`
	// AuthProxyEnabled reports that the dashboard sits behind an OIDC proxy.
	AuthProxyEnabled bool `json:"authProxyEnabled" yaml:"auth_proxy_enabled"`
}

// DefaultOAuthLogoutURI is the sign-out path of the OIDC auth proxy.
const DefaultOAuthLogoutURI = "/oauth2/sign_out"

// LogoutURI returns OAuthLogoutURI or the default.
func (c RuntimeConfig) LogoutURI() string {
	if c.OAuthLogoutURI == "" {
		return DefaultOAuthLogoutURI
	}
	return c.OAuthLogoutURI
}

// Authenticator is the token and cookie service the Controller drives.
// dashboard.Client is the HTTP implementation.
type Authenticator interface {
	// ValidateToken checks a bearer token against cluster.
	ValidateToken(ctx context.Context, cluster, token string) error
	// SetAuthToken persists token. oidc marks a cookie-backed session, in
	// which case token may be empty.
	SetAuthToken(ctx context.Context, token string, oidc bool) error
	// UnsetAuthToken forgets any persisted token.
	UnsetAuthToken(ctx context.Context) error
	// AuthToken returns the persisted token, or ErrNoToken.
	AuthToken(ctx context.Context) (token string, oidc bool, err error)
	// UsingOIDCToken reports whether the persisted session is cookie-backed.
	UsingOIDCToken(ctx context.Context) (bool, error)
	// UnsetAuthCookie ends the proxy session using cfg's logout URI.
	UnsetAuthCookie(ctx context.Context, cfg RuntimeConfig) error
	// IsAuthenticatedWithCookie probes cluster using cookies only.
	IsAuthenticatedWithCookie(ctx context.Context, cluster string) (bool, error)
	// DefaultNamespaceFromToken returns the namespace bound to token, or "".
	DefaultNamespaceFromToken(token string) string
}

// NamespaceSource lists the namespaces visible in a cluster.
type NamespaceSource interface {
	FetchNamespaces(ctx context.Context, cluster string) ([]string, error)
}

// AuthenticateObserver is told about every finished Authenticate call. err
// is the error Authenticate returned, nil on success.
type AuthenticateObserver interface {
	ObserveAuthenticate(ctx context.Context, cluster string, oidc bool, elapsed time.Duration, err error)
}
