package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/MrEthical07/dashauth"
)

type staticTokens struct {
	token string
	oidc  bool
	err   error
}

func (s staticTokens) AuthToken(context.Context) (string, bool, error) {
	return s.token, s.oidc, s.err
}

type stateBox struct {
	mu sync.Mutex
	st dashauth.State
}

func (b *stateBox) State() dashauth.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.st
}

func (b *stateBox) set(auth dashauth.AuthState) {
	b.mu.Lock()
	b.st.Auth = auth
	b.mu.Unlock()
}

func newClient(t *testing.T, handler http.HandlerFunc, cfg TransportConfig) (*http.Client, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &http.Client{Transport: NewTransport(srv.Client().Transport, cfg)}, srv.URL
}

func get(t *testing.T, c *http.Client, url string, header string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	_ = resp.Body.Close()
	return resp
}

func TestTransportInjectsBearer(t *testing.T) {
	cases := map[string]struct {
		tokens TokenSource
		header string
		want   string
	}{
		"token":         {tokens: staticTokens{token: "tok"}, want: "Bearer tok"},
		"oidc":          {tokens: staticTokens{token: "id", oidc: true}, want: ""},
		"no token":      {tokens: staticTokens{err: dashauth.ErrNoToken}, want: ""},
		"store error":   {tokens: staticTokens{err: errors.New("down")}, want: ""},
		"caller header": {tokens: staticTokens{token: "tok"}, header: "Bearer own", want: "Bearer own"},
		"no source":     {want: ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var seen atomic.Value
			c, url := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				seen.Store(r.Header.Get("Authorization"))
			}, TransportConfig{Tokens: tc.tokens})

			get(t, c, url, tc.header)
			if got, _ := seen.Load().(string); got != tc.want {
				t.Fatalf("Authorization = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTransportExpiresAuthenticatedSessionOn401(t *testing.T) {
	box := &stateBox{}
	box.set(dashauth.AuthState{Authenticated: true})

	var calls atomic.Int32
	c, url := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, TransportConfig{
		State: box,
		OnUnauthorized: func(ctx context.Context) error {
			calls.Add(1)
			box.set(dashauth.AuthState{})
			return nil
		},
	})

	resp := get(t, c, url, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("response must pass through, got %d", resp.StatusCode)
	}
	get(t, c, url, "")

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one expiry, got %d", got)
	}
}

func TestTransportIgnores401WhenNotAuthenticated(t *testing.T) {
	cases := map[string]dashauth.AuthState{
		"anonymous":       {},
		"already expired": {Authenticated: true, OIDC: true, SessionExpired: true},
	}
	for name, auth := range cases {
		t.Run(name, func(t *testing.T) {
			box := &stateBox{}
			box.set(auth)
			var calls atomic.Int32
			c, url := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}, TransportConfig{State: box, OnUnauthorized: func(context.Context) error {
				calls.Add(1)
				return nil
			}})

			get(t, c, url, "")
			if calls.Load() != 0 {
				t.Fatal("hook must not run")
			}
		})
	}
}

func TestTransportHookDoesNotReenter(t *testing.T) {
	var calls atomic.Int32
	var c *http.Client
	var url string
	c, url = newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, TransportConfig{OnUnauthorized: func(ctx context.Context) error {
		calls.Add(1)
		// sign-out through the same transport also answers 401
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url+"/oauth2/sign_out", nil)
		resp, err := c.Do(req)
		if err == nil {
			_ = resp.Body.Close()
		}
		return err
	}})

	get(t, c, url, "")
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single hook call, got %d", got)
	}
}

func TestTransportOtherStatusesPassThrough(t *testing.T) {
	var calls atomic.Int32
	c, url := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}, TransportConfig{OnUnauthorized: func(context.Context) error {
		calls.Add(1)
		return nil
	}})

	if resp := get(t, c, url, ""); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if calls.Load() != 0 {
		t.Fatal("403 must not expire the session")
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]struct {
		in string
		ok bool
	}{
		"bearer": {in: "Bearer abc", ok: true},
		"empty":  {in: "Bearer ", ok: false},
		"basic":  {in: "Basic abc", ok: false},
		"none":   {in: "", ok: false},
	}
	for name, tc := range cases {
		if _, ok := bearerToken(tc.in); ok != tc.ok {
			t.Fatalf("%s: got %v want %v", name, ok, tc.ok)
		}
	}
}
