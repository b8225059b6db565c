package middleware

import (
	"context"
	"net/http"

	"github.com/MrEthical07/dashauth"
)

type authStateContextKey struct{}

func AuthStateFromContext(ctx context.Context) (dashauth.AuthState, bool) {
	st, ok := ctx.Value(authStateContextKey{}).(dashauth.AuthState)
	return st, ok
}

// RequireAuthenticated rejects requests with 401 unless the state reports an
// authenticated, unexpired session.
func RequireAuthenticated(source StateSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if source == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			auth := source.State().Auth
			if !auth.Authenticated || auth.SessionExpired {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), authStateContextKey{}, auth)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
