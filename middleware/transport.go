package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/MrEthical07/dashauth"
	"go.uber.org/zap"
)

// TokenSource yields the bearer token for outgoing requests.
type TokenSource interface {
	AuthToken(ctx context.Context) (token string, oidc bool, err error)
}

// StateSource exposes the current auth state.
type StateSource interface {
	State() dashauth.State
}

// TransportConfig configures a Transport.
type TransportConfig struct {
	// Tokens, when set, supplies the bearer for non-OIDC sessions.
	Tokens TokenSource
	// State gates OnUnauthorized: a 401 only expires a session that is
	// authenticated and not already expired. Nil treats every 401 as an
	// expiry.
	State StateSource
	// OnUnauthorized runs on a qualifying 401, with the request's context.
	OnUnauthorized func(ctx context.Context) error
	Logger         *zap.Logger
}

// Transport injects credentials and reports session expiry.
type Transport struct {
	base     http.RoundTripper
	cfg      TransportConfig
	logger   *zap.Logger
	expiring atomic.Bool
}

type expiryContextKey struct{}

// NewTransport wraps base. A nil base uses http.DefaultTransport.
func NewTransport(base http.RoundTripper, cfg TransportConfig) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transport{base: base, cfg: cfg, logger: logger.Named("transport")}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if _, ok := bearerToken(req.Header.Get("Authorization")); !ok && t.cfg.Tokens != nil {
		tok, oidc, err := t.cfg.Tokens.AuthToken(ctx)
		switch {
		case err != nil && !errors.Is(err, dashauth.ErrNoToken):
			t.logger.Warn("token lookup failed", zap.Error(err))
		case err == nil && !oidc && tok != "":
			req = req.Clone(ctx)
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		t.unauthorized(ctx, req)
	}
	return resp, nil
}

func (t *Transport) unauthorized(ctx context.Context, req *http.Request) {
	if t.cfg.OnUnauthorized == nil || ctx.Value(expiryContextKey{}) != nil {
		return
	}
	if t.cfg.State != nil {
		auth := t.cfg.State.State().Auth
		if !auth.Authenticated || auth.SessionExpired {
			return
		}
	}
	if !t.expiring.CompareAndSwap(false, true) {
		return
	}
	defer t.expiring.Store(false)

	t.logger.Info("session rejected by api", zap.String("path", req.URL.Path))
	// requests issued by the hook carry the marker and never re-enter it
	if err := t.cfg.OnUnauthorized(context.WithValue(ctx, expiryContextKey{}, true)); err != nil {
		t.logger.Warn("expire session failed", zap.Error(err))
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
