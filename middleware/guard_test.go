package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrEthical07/dashauth"
)

func TestRequireAuthenticated(t *testing.T) {
	cases := map[string]struct {
		auth dashauth.AuthState
		want int
	}{
		"authenticated": {auth: dashauth.AuthState{Authenticated: true, DefaultNamespace: "ns"}, want: http.StatusOK},
		"anonymous":     {auth: dashauth.AuthState{}, want: http.StatusUnauthorized},
		"expired":       {auth: dashauth.AuthState{Authenticated: true, SessionExpired: true}, want: http.StatusUnauthorized},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			box := &stateBox{}
			box.set(tc.auth)

			var got dashauth.AuthState
			h := RequireAuthenticated(box)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = AuthStateFromContext(r.Context())
			}))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/state", nil))
			if rec.Code != tc.want {
				t.Fatalf("status %d, want %d", rec.Code, tc.want)
			}
			if tc.want == http.StatusOK && got.DefaultNamespace != "ns" {
				t.Fatalf("state not attached to context: %+v", got)
			}
		})
	}
}

func TestRequireAuthenticatedNilSource(t *testing.T) {
	h := RequireAuthenticated(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
