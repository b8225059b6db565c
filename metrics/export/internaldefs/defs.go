package internaldefs

import (
	"github.com/MrEthical07/dashauth"
)

// CounterDef names one controller counter.
type CounterDef struct {
	ID   dashauth.MetricID
	Name string
	Help string
}

// HistogramDef names one controller histogram.
type HistogramDef struct {
	ID   dashauth.MetricID
	Name string
	Help string
}

// BucketCount is the number of histogram buckets, +Inf included.
const BucketCount = 8

// TransitionsDroppedName is the counter for transitions lost to backpressure.
const TransitionsDroppedName = "dashauth_transitions_dropped_total"

var CounterDefs = []CounterDef{
	{ID: dashauth.MetricAuthenticateSuccess, Name: "dashauth_authenticate_success_total", Help: "Logins that reached the authenticated state."},
	{ID: dashauth.MetricAuthenticateFailure, Name: "dashauth_authenticate_failure_total", Help: "Logins that ended in an authentication error."},
	{ID: dashauth.MetricTokenRejected, Name: "dashauth_token_rejected_total", Help: "Bearer tokens refused by the cluster."},
	{ID: dashauth.MetricNamespaceFetch, Name: "dashauth_namespace_fetch_total", Help: "Namespace listings made during login."},
	{ID: dashauth.MetricNamespaceFetchFailure, Name: "dashauth_namespace_fetch_failure_total", Help: "Failed namespace listings."},
	{ID: dashauth.MetricNamespaceFallback, Name: "dashauth_namespace_fallback_total", Help: "Logins that settled on the fallback namespace."},
	{ID: dashauth.MetricLogout, Name: "dashauth_logout_total", Help: "Token logouts."},
	{ID: dashauth.MetricOIDCLogout, Name: "dashauth_oidc_logout_total", Help: "Logouts through the proxy sign-out."},
	{ID: dashauth.MetricLogoutFailure, Name: "dashauth_logout_failure_total", Help: "Logouts whose storage or proxy call failed."},
	{ID: dashauth.MetricSessionExpired, Name: "dashauth_session_expired_total", Help: "Expired sessions."},
	{ID: dashauth.MetricCookieAuthenticated, Name: "dashauth_cookie_authenticated_total", Help: "Cookie probes that found a session."},
	{ID: dashauth.MetricCookieAnonymous, Name: "dashauth_cookie_anonymous_total", Help: "Cookie probes that found no session."},
	{ID: dashauth.MetricCookieProbeFailure, Name: "dashauth_cookie_probe_failure_total", Help: "Cookie probes that errored."},
	{ID: dashauth.MetricRestored, Name: "dashauth_restored_total", Help: "Sessions restored from the token store."},
}

var HistogramDefs = []HistogramDef{
	{ID: dashauth.MetricAuthenticateLatency, Name: "dashauth_authenticate_latency_seconds", Help: "Authenticate latency histogram."},
}

// HistogramUpperBounds are the finite bucket bounds in seconds. The last
// bucket is +Inf.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// NormalizeBuckets copies raw into a fixed array, zero-filling or truncating.
func NormalizeBuckets(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [BucketCount]uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
