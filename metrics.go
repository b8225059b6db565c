package dashauth

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a Controller counter.
type MetricID uint16

const (
	// MetricAuthenticateSuccess counts logins that reached SET_AUTHENTICATED.
	MetricAuthenticateSuccess MetricID = iota
	// MetricAuthenticateFailure counts logins that ended in AUTHENTICATION_ERROR.
	MetricAuthenticateFailure
	// MetricTokenRejected counts bearer tokens refused by the cluster.
	MetricTokenRejected
	// MetricNamespaceFetch counts namespace listings made because the token had no namespace.
	MetricNamespaceFetch
	// MetricNamespaceFetchFailure counts failed namespace listings.
	MetricNamespaceFetchFailure
	// MetricNamespaceFallback counts logins that settled on the fallback namespace.
	MetricNamespaceFallback
	// MetricLogout counts token logouts.
	MetricLogout
	// MetricOIDCLogout counts logouts that went through the proxy sign-out.
	MetricOIDCLogout
	// MetricLogoutFailure counts logouts whose storage or proxy call failed.
	MetricLogoutFailure
	// MetricSessionExpired counts ExpireSession calls.
	MetricSessionExpired
	// MetricCookieAuthenticated counts cookie probes that found a session.
	MetricCookieAuthenticated
	// MetricCookieAnonymous counts cookie probes that found none.
	MetricCookieAnonymous
	// MetricCookieProbeFailure counts cookie probes that errored.
	MetricCookieProbeFailure
	// MetricRestored counts Restore calls that found a stored token.
	MetricRestored
	// MetricAuthenticateLatency is the authenticate duration histogram.
	MetricAuthenticateLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a fixed set of lock-free counters. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates counters according to cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d into the histogram for id. Only
// MetricAuthenticateLatency has a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricAuthenticateLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current count for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter. Disabled metrics yield empty maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricAuthenticateLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricAuthenticateLatency].buckets[i])
		}
		s.Histograms[MetricAuthenticateLatency] = buckets
	}

	return s
}

// bucket upper bounds: 5ms 10ms 25ms 50ms 100ms 250ms 500ms +Inf
func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
