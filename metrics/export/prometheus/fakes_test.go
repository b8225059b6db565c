package prometheus

import (
	"context"

	"github.com/MrEthical07/dashauth"
)

type nopAuth struct{}

func (nopAuth) ValidateToken(context.Context, string, string) error {
	return nil
}

func (nopAuth) SetAuthToken(context.Context, string, bool) error {
	return nil
}

func (nopAuth) UnsetAuthToken(context.Context) error {
	return nil
}

func (nopAuth) AuthToken(context.Context) (string, bool, error) {
	return "", false, dashauth.ErrNoToken
}

func (nopAuth) UsingOIDCToken(context.Context) (bool, error) {
	return false, nil
}

func (nopAuth) UnsetAuthCookie(context.Context, dashauth.RuntimeConfig) error {
	return nil
}

func (nopAuth) IsAuthenticatedWithCookie(context.Context, string) (bool, error) {
	return false, nil
}

func (nopAuth) DefaultNamespaceFromToken(string) string {
	return ""
}

type nopNamespaces struct{}

func (nopNamespaces) FetchNamespaces(context.Context, string) ([]string, error) {
	return nil, nil
}
