package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/MrEthical07/dashauth"
	"github.com/MrEthical07/dashauth/internal/apiclient"
	"github.com/MrEthical07/dashauth/token"
	"github.com/MrEthical07/dashauth/tokenstore"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

// DefaultTimeout applies to the HTTP client New builds.
const DefaultTimeout = 30 * time.Second

// Options configures a Client.
type Options struct {
	// BaseURL of the dashboard, e.g. https://kubeapps.example.com.
	BaseURL string
	// HTTPClient overrides the default client. It should carry a cookie jar
	// for the OIDC flow.
	HTTPClient *http.Client
	Tokens     tokenstore.Store
	// TokenTTL bounds how long a stored token is kept. Zero means until logout.
	TokenTTL time.Duration
	// Verifier, when set, checks bearer tokens locally before the cluster
	// round-trip.
	Verifier *token.Verifier
	Logger   *zap.Logger
}

// Client implements dashauth.Authenticator over HTTP.
type Client struct {
	api      *apiclient.Client
	tokens   tokenstore.Store
	ttl      time.Duration
	verifier *token.Verifier
	logger   *zap.Logger
}

var _ dashauth.Authenticator = (*Client)(nil)

// New builds a Client. Without Options.HTTPClient it creates one with a
// public-suffix-aware cookie jar and DefaultTimeout.
func New(opts Options) (*Client, error) {
	if opts.Tokens == nil {
		return nil, ErrMissingTokenStore
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		jar, err := NewCookieJar()
		if err != nil {
			return nil, err
		}
		httpClient = &http.Client{Jar: jar, Timeout: DefaultTimeout}
	}

	api, err := apiclient.New(opts.BaseURL, httpClient)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		api:      api,
		tokens:   opts.Tokens,
		ttl:      opts.TokenTTL,
		verifier: opts.Verifier,
		logger:   logger.Named("dashboard"),
	}, nil
}

// NewCookieJar returns the jar the default HTTP client uses.
func NewCookieJar() (http.CookieJar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

// HTTPClient returns the client used for API calls, cookie jar included.
func (c *Client) HTTPClient() *http.Client {
	return c.api.HTTPClient()
}

func (c *Client) ValidateToken(ctx context.Context, cluster, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrInvalidToken
	}
	if c.verifier != nil {
		if _, err := c.verifier.Verify(raw); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	resp, err := c.api.Get(ctx, apiclient.ClusterPath(cluster, ""), raw)
	if err != nil {
		return fmt.Errorf("validate token: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		apiclient.Drain(resp)
		return ErrInvalidToken
	case resp.StatusCode == http.StatusForbidden:
		// authenticated; RBAC on the probe path is not our concern
		apiclient.Drain(resp)
		return nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		apiclient.Drain(resp)
		return nil
	default:
		return &StatusError{Code: resp.StatusCode, Body: apiclient.ReadErrorBody(resp)}
	}
}

func (c *Client) SetAuthToken(ctx context.Context, raw string, oidc bool) error {
	return c.tokens.Save(ctx, tokenstore.Record{Token: raw, OIDC: oidc}, c.ttl)
}

func (c *Client) UnsetAuthToken(ctx context.Context) error {
	return c.tokens.Delete(ctx)
}

func (c *Client) AuthToken(ctx context.Context) (string, bool, error) {
	rec, err := c.tokens.Load(ctx)
	if err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			return "", false, dashauth.ErrNoToken
		}
		return "", false, err
	}
	return rec.Token, rec.OIDC, nil
}

func (c *Client) UsingOIDCToken(ctx context.Context) (bool, error) {
	rec, err := c.tokens.Load(ctx)
	if err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return rec.OIDC, nil
}

// UnsetAuthCookie calls the proxy sign-out URI, then forgets the local OIDC
// marker even if the proxy call failed. A path-only URI is served by the
// proxy at the host root, not under the base URL's path.
func (c *Client) UnsetAuthCookie(ctx context.Context, cfg dashauth.RuntimeConfig) error {
	var signOutErr error
	var resp *http.Response
	u, err := c.api.ResolveHost(cfg.LogoutURI())
	if err == nil {
		resp, err = c.api.GetURL(ctx, u, "")
	}
	switch {
	case err != nil:
		signOutErr = fmt.Errorf("proxy sign-out: %w", err)
	case resp.StatusCode >= 400:
		signOutErr = &StatusError{Code: resp.StatusCode, Body: apiclient.ReadErrorBody(resp)}
	default:
		apiclient.Drain(resp)
	}
	if signOutErr != nil {
		c.logger.Warn("proxy sign-out failed", zap.String("uri", cfg.LogoutURI()), zap.Error(signOutErr))
	}

	return errors.Join(signOutErr, c.tokens.Delete(ctx))
}

func (c *Client) IsAuthenticatedWithCookie(ctx context.Context, cluster string) (bool, error) {
	resp, err := c.api.Get(ctx, apiclient.ClusterPath(cluster, ""), "")
	if err != nil {
		return false, fmt.Errorf("cookie probe: %w", err)
	}
	defer apiclient.Drain(resp)

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return true, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return false, nil
	default:
		c.logger.Debug("cookie probe answered unexpectedly",
			zap.String("cluster", cluster),
			zap.Int("status", resp.StatusCode),
		)
		return false, nil
	}
}

func (c *Client) DefaultNamespaceFromToken(raw string) string {
	return token.DefaultNamespace(raw)
}
