package apiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// MaxErrorBody bounds how much of an error response is kept.
const MaxErrorBody = 4 << 10

// Client issues requests against a dashboard API base URL.
type Client struct {
	base *url.URL
	http *http.Client
}

// New parses base. A nil httpClient uses http.DefaultClient.
func New(base string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New("base url must be http or https")
	}
	if u.Host == "" {
		return nil, errors.New("base url must include a host")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: u, http: httpClient}, nil
}

// HTTPClient returns the underlying client.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Base returns a copy of the base URL.
func (c *Client) Base() *url.URL {
	u := *c.base
	return &u
}

// ClusterPath is the API root of cluster: /api/clusters/<cluster>/ followed
// by suffix.
func ClusterPath(cluster, suffix string) string {
	p := "/api/clusters/" + url.PathEscape(cluster) + "/"
	return p + strings.TrimPrefix(suffix, "/")
}

// Resolve interprets ref relative to the base URL. Absolute URLs pass
// through unchanged.
func (c *Client) Resolve(ref string) (*url.URL, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}
	if r.IsAbs() {
		return r, nil
	}
	// keep any path prefix of the base ("https://host/dashboard")
	joined := c.Base()
	baseRaw := strings.TrimSuffix(joined.EscapedPath(), "/")
	joined.Path = strings.TrimSuffix(joined.Path, "/") + "/" + strings.TrimPrefix(r.Path, "/")
	joined.RawPath = baseRaw + "/" + strings.TrimPrefix(r.EscapedPath(), "/")
	joined.RawQuery = r.RawQuery
	return joined, nil
}

// ResolveHost interprets ref against the base URL's scheme and host only,
// so "/oauth2/sign_out" lands at the host root whatever the base path.
func (c *Client) ResolveHost(ref string) (*url.URL, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}
	return c.base.ResolveReference(r), nil
}

// Get issues a GET to ref, resolved with Resolve. A non-empty bearer sets
// the Authorization header.
func (c *Client) Get(ctx context.Context, ref, bearer string) (*http.Response, error) {
	u, err := c.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return c.GetURL(ctx, u, bearer)
}

// GetURL issues a GET to an already resolved u.
func (c *Client) GetURL(ctx context.Context, u *url.URL, bearer string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return c.http.Do(req)
}

// ReadErrorBody reads at most MaxErrorBody bytes and closes the body.
func ReadErrorBody(resp *http.Response) string {
	defer resp.Body.Close()
	data, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBody))
	return strings.TrimSpace(string(data))
}

// Drain discards the rest of the body so the connection can be reused.
func Drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxErrorBody))
	_ = resp.Body.Close()
}
