package dashauth

import (
	"context"

	"go.uber.org/zap"
)

// Logout ends the current session.
//
// For a cookie-backed (OIDC) session the proxy sign-out runs first and
// nothing is dispatched: the state must stay intact until the proxy has
// cleared its cookie. Otherwise the stored token is removed, the auth state
// reset, and per-cluster state cleared. A token-store failure does not stop
// the state reset; it is returned.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.usable(); err != nil {
		return err
	}
	ctx, _ = ensureOperationID(ctx)

	if c.usingOIDC(ctx) {
		if err := c.auth.UnsetAuthCookie(ctx, c.store.State().Config); err != nil {
			c.metrics.Inc(MetricLogoutFailure)
			c.logger.Error("proxy sign-out failed", zap.Error(err))
			return err
		}
		c.metrics.Inc(MetricOIDCLogout)
		c.logger.Info("signed out of auth proxy")
		return nil
	}

	err := c.auth.UnsetAuthToken(ctx)
	if err != nil {
		c.metrics.Inc(MetricLogoutFailure)
		c.logger.Error("token removal failed", zap.Error(err))
	}

	c.dispatch(ctx, SetAuthenticated(false, false, ""))
	c.dispatch(ctx, ClearClusters())

	c.metrics.Inc(MetricLogout)
	c.logger.Info("logged out")
	return err
}

// ExpireSession marks an OIDC session as expired, then logs out. For token
// sessions it is the same as Logout.
func (c *Controller) ExpireSession(ctx context.Context) error {
	if err := c.usable(); err != nil {
		return err
	}
	ctx, _ = ensureOperationID(ctx)

	c.metrics.Inc(MetricSessionExpired)
	if c.usingOIDC(ctx) {
		c.dispatch(ctx, SetSessionExpired(true))
	}
	return c.Logout(ctx)
}

// usingOIDC treats a failed lookup as a token session.
func (c *Controller) usingOIDC(ctx context.Context) bool {
	oidc, err := c.auth.UsingOIDCToken(ctx)
	if err != nil {
		c.logger.Warn("token mode lookup failed", zap.Error(err))
		return false
	}
	return oidc
}
