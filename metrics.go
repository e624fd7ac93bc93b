package authcore

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID uint16

const (
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts failed logins (unknown email, wrong secret,
	// non-active status).
	MetricLoginFailure
	// MetricLoginLocked counts logins rejected by the lockout guard.
	MetricLoginLocked
	// MetricRefreshSuccess counts successful token refreshes.
	MetricRefreshSuccess
	// MetricRefreshFailure counts failed token refreshes.
	MetricRefreshFailure
	// MetricRegisterSuccess counts created accounts.
	MetricRegisterSuccess
	// MetricRegisterConflict counts registrations rejected as duplicate.
	MetricRegisterConflict
	// MetricVerifySuccess counts consumed email-verification tokens.
	MetricVerifySuccess
	// MetricVerifyFailure counts invalid or replayed verification tokens.
	MetricVerifyFailure
	// MetricResetRequest counts password-reset requests (including
	// enumeration-safe acks for unknown emails).
	MetricResetRequest
	// MetricResetConfirmSuccess counts consumed reset tokens.
	MetricResetConfirmSuccess
	// MetricResetConfirmFailure counts invalid or expired reset tokens.
	MetricResetConfirmFailure
	// MetricLogout counts logout acks.
	MetricLogout
	// MetricAccountSuspended counts suspend operations.
	MetricAccountSuspended
	// MetricAccountReactivated counts reactivate operations.
	MetricAccountReactivated
	// MetricAccountDeactivated counts deactivate operations.
	MetricAccountDeactivated
	// MetricAuthenticateLatency is the Authenticate latency histogram.
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

// Metrics holds lock-free counters and optional latency histograms.
//
// Counters live in cache-line-padded slots and are incremented atomically;
// the write path is allocation-free. Histograms use 8 fixed buckets
// (≤5ms … +Inf).
type Metrics struct {
	enabled        bool
	latencyEnabled bool
	counters       [metricIDCount]paddedCounter
	histograms     [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:        cfg.Enabled,
		latencyEnabled: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Inc atomically increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value reads the current counter for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || !m.enabled || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// LatencyEnabled reports whether histogram observation is active.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.latencyEnabled
}

// Observe records d into the histogram for id.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.latencyEnabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.histograms[id].buckets[latencyBucket(d)], 1)
}

// Upper bounds match the exporter definitions: 5ms, 10ms, 25ms, 50ms,
// 100ms, 250ms, 500ms, +Inf.
func latencyBucket(d time.Duration) int {
	switch {
	case d <= 5*time.Millisecond:
		return 0
	case d <= 10*time.Millisecond:
		return 1
	case d <= 25*time.Millisecond:
		return 2
	case d <= 50*time.Millisecond:
		return 3
	case d <= 100*time.Millisecond:
		return 4
	case d <= 250*time.Millisecond:
		return 5
	case d <= 500*time.Millisecond:
		return 6
	default:
		return 7
	}
}

// Snapshot returns a deep copy of all counters and histograms. Safe to call
// concurrently with writers; individual slots are read atomically.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snapshot := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, metricIDCount),
		Histograms: make(map[MetricID][]uint64),
	}
	if m == nil || !m.enabled {
		return snapshot
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		snapshot.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	if m.latencyEnabled {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricAuthenticateLatency].buckets[i])
		}
		snapshot.Histograms[MetricAuthenticateLatency] = buckets
	}

	return snapshot
}
