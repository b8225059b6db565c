package dashauth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Authenticate logs in to cluster.
//
// With oidc=false the bearer token is validated against the cluster first.
// The token is then persisted and a default namespace chosen: the one bound
// to the token, else the first namespace the cluster lists, else the
// configured fallback (NamespaceAll). Any failure is dispatched as
// AUTHENTICATION_ERROR and also returned.
func (c *Controller) Authenticate(ctx context.Context, cluster, token string, oidc bool) (err error) {
	if err := c.usable(); err != nil {
		return err
	}
	ctx, _ = ensureOperationID(ctx)

	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		c.metrics.Observe(MetricAuthenticateLatency, elapsed)
		if c.observer != nil {
			c.observer.ObserveAuthenticate(ctx, cluster, oidc, elapsed, err)
		}
	}()

	c.dispatch(ctx, Authenticating())

	ns, err := c.login(ctx, cluster, token, oidc)
	if err != nil {
		c.metrics.Inc(MetricAuthenticateFailure)
		c.logger.Warn("authentication failed",
			zap.String("cluster", cluster),
			zap.Bool("oidc", oidc),
			zap.Error(err),
		)
		c.dispatch(ctx, AuthenticationError(err.Error()))
		return err
	}

	c.dispatch(ctx, SetAuthenticated(true, oidc, ns))
	if oidc {
		c.dispatch(ctx, SetSessionExpired(false))
	}

	c.metrics.Inc(MetricAuthenticateSuccess)
	c.logger.Info("authenticated",
		zap.String("cluster", cluster),
		zap.Bool("oidc", oidc),
		zap.String("namespace", ns),
	)
	return nil
}

func (c *Controller) login(ctx context.Context, cluster, token string, oidc bool) (string, error) {
	if !oidc {
		if err := c.auth.ValidateToken(ctx, cluster, token); err != nil {
			c.metrics.Inc(MetricTokenRejected)
			return "", err
		}
	}
	if err := c.auth.SetAuthToken(ctx, token, oidc); err != nil {
		return "", err
	}

	if ns := c.auth.DefaultNamespaceFromToken(token); ns != "" {
		return ns, nil
	}

	// The token is not bound to a namespace; pick one the cluster lists.
	available := c.fetchNamespaces(ctx, cluster)
	if len(available) > 0 {
		return available[0], nil
	}
	c.metrics.Inc(MetricNamespaceFallback)
	return c.config.Token.FallbackNamespace, nil
}

// fetchNamespaces never fails: a listing error is recorded in the cluster
// state and reads as an empty list.
func (c *Controller) fetchNamespaces(ctx context.Context, cluster string) []string {
	c.metrics.Inc(MetricNamespaceFetch)

	namespaces, err := c.namespaces.FetchNamespaces(ctx, cluster)
	if err != nil {
		c.metrics.Inc(MetricNamespaceFetchFailure)
		c.logger.Warn("namespace listing failed",
			zap.String("cluster", cluster),
			zap.Error(err),
		)
		c.dispatch(ctx, NamespaceError(cluster, err))
		return nil
	}

	c.dispatch(ctx, ReceiveNamespaces(cluster, namespaces))
	return namespaces
}

// CheckCookieAuthentication asks whether the browser-equivalent cookie jar
// already holds a proxy session for cluster, and if so completes an OIDC
// login. AUTHENTICATING is dispatched up front so observers show a loading
// state for the duration of the probe.
//
// A probe error is reported as unauthenticated and returned alongside false.
func (c *Controller) CheckCookieAuthentication(ctx context.Context, cluster string) (bool, error) {
	if err := c.usable(); err != nil {
		return false, err
	}
	ctx, _ = ensureOperationID(ctx)

	c.dispatch(ctx, Authenticating())

	authed, err := c.auth.IsAuthenticatedWithCookie(ctx, cluster)
	if err != nil {
		c.metrics.Inc(MetricCookieProbeFailure)
		c.logger.Warn("cookie probe failed", zap.String("cluster", cluster), zap.Error(err))
		authed = false
	}

	if !authed {
		c.metrics.Inc(MetricCookieAnonymous)
		c.dispatch(ctx, SetAuthenticated(false, false, ""))
		return false, err
	}

	c.metrics.Inc(MetricCookieAuthenticated)
	return true, c.Authenticate(ctx, cluster, "", true)
}

// Restore seeds the auth state from the persisted token, the way the
// dashboard does when it starts.
func (c *Controller) Restore(ctx context.Context) error {
	if err := c.usable(); err != nil {
		return err
	}
	ctx, _ = ensureOperationID(ctx)

	token, oidc, err := c.auth.AuthToken(ctx)
	switch {
	case errors.Is(err, ErrNoToken):
		c.dispatch(ctx, SetAuthenticated(false, false, ""))
		return nil
	case err != nil:
		c.dispatch(ctx, SetAuthenticated(false, false, ""))
		return err
	}

	c.metrics.Inc(MetricRestored)
	c.dispatch(ctx, SetAuthenticated(true, oidc, c.auth.DefaultNamespaceFromToken(token)))
	return nil
}
