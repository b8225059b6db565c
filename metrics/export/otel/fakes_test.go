package otel

import (
	"context"

	"github.com/MrEthical07/dashauth"
)

// okAuth accepts every token and keeps nothing.
type okAuth struct{}

func (okAuth) ValidateToken(context.Context, string, string) error {
	return nil
}

func (okAuth) SetAuthToken(context.Context, string, bool) error {
	return nil
}

func (okAuth) UnsetAuthToken(context.Context) error {
	return nil
}

func (okAuth) AuthToken(context.Context) (string, bool, error) {
	return "", false, dashauth.ErrNoToken
}

func (okAuth) UsingOIDCToken(context.Context) (bool, error) {
	return false, nil
}

func (okAuth) UnsetAuthCookie(context.Context, dashauth.RuntimeConfig) error {
	return nil
}

func (okAuth) IsAuthenticatedWithCookie(context.Context, string) (bool, error) {
	return false, nil
}

func (okAuth) DefaultNamespaceFromToken(string) string {
	return ""
}

type staticNamespaces []string

func (s staticNamespaces) FetchNamespaces(context.Context, string) ([]string, error) {
	return append([]string(nil), s...), nil
}
