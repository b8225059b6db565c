package namespace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/MrEthical07/dashauth"
	"github.com/MrEthical07/dashauth/dashboard"
	"github.com/MrEthical07/dashauth/internal/apiclient"
	"golang.org/x/sync/singleflight"
)

// TokenSource yields the bearer token for API calls. dashboard.Client
// implements it.
type TokenSource interface {
	AuthToken(ctx context.Context) (token string, oidc bool, err error)
}

// maxListBody bounds a NamespaceList response.
const maxListBody = 8 << 20

type namespaceList struct {
	Items []struct {
		Metadata struct {
			Name string `json:"name"`
		} `json:"metadata"`
	} `json:"items"`
}

// Lister implements dashauth.NamespaceSource.
type Lister struct {
	api    *apiclient.Client
	tokens TokenSource
	group  singleflight.Group
}

var _ dashauth.NamespaceSource = (*Lister)(nil)

// NewLister builds a Lister against baseURL. A nil tokens sends no bearer,
// relying on cookies in httpClient's jar.
func NewLister(baseURL string, httpClient *http.Client, tokens TokenSource) (*Lister, error) {
	api, err := apiclient.New(baseURL, httpClient)
	if err != nil {
		return nil, err
	}
	return &Lister{api: api, tokens: tokens}, nil
}

// FetchNamespaces returns the namespace names of cluster, sorted.
//
// Concurrent calls for one cluster share a single request. The shared
// request is detached from any one caller's cancellation and bounded by
// dashboard.DefaultTimeout; a caller whose ctx ends returns ctx.Err()
// without cancelling it for the others.
func (l *Lister) FetchNamespaces(ctx context.Context, cluster string) ([]string, error) {
	ch := l.group.DoChan(cluster, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dashboard.DefaultTimeout)
		defer cancel()
		return l.fetch(fetchCtx, cluster)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	names := res.Val.([]string)
	out := make([]string, len(names))
	copy(out, names)
	return out, nil
}

func (l *Lister) fetch(ctx context.Context, cluster string) ([]string, error) {
	bearer, err := l.bearer(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := l.api.Get(ctx, apiclient.ClusterPath(cluster, "api/v1/namespaces"), bearer)
	if err != nil {
		return nil, fmt.Errorf("list namespaces: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &dashboard.StatusError{Code: resp.StatusCode, Body: apiclient.ReadErrorBody(resp)}
	}
	defer resp.Body.Close()

	var list namespaceList
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxListBody)).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode namespace list: %w", err)
	}

	names := make([]string, 0, len(list.Items))
	for _, item := range list.Items {
		if item.Metadata.Name != "" {
			names = append(names, item.Metadata.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (l *Lister) bearer(ctx context.Context) (string, error) {
	if l.tokens == nil {
		return "", nil
	}
	tok, oidc, err := l.tokens.AuthToken(ctx)
	switch {
	case errors.Is(err, dashauth.ErrNoToken):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("load token: %w", err)
	case oidc:
		// the proxy injects the id token from its cookie
		return "", nil
	}
	return tok, nil
}
