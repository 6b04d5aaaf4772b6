package synbridge

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID uint16

const (
	// MetricAuthSuccess counts successful code validations.
	MetricAuthSuccess MetricID = iota
	// MetricAuthRejected counts Core-denied codes.
	MetricAuthRejected
	// MetricAuthLockout counts retry budgets exhausted.
	MetricAuthLockout
	// MetricAuthLockedRefused counts submissions refused during a lockout.
	MetricAuthLockedRefused
	// MetricAuthCodeMissing counts misrecognized (absent) code slots.
	MetricAuthCodeMissing
	// MetricTurnRelayed counts authenticated turns delivered to Core.
	MetricTurnRelayed
	// MetricCommandRelayed counts authenticated commands delivered to Core.
	MetricCommandRelayed
	// MetricTurnUnauthenticated counts turns refused for lack of a session.
	MetricTurnUnauthenticated
	// MetricSessionExpiredLocal counts expiries detected by timestamp.
	MetricSessionExpiredLocal
	// MetricSessionExpiredRemote counts Core-signaled expiries.
	MetricSessionExpiredRemote
	// MetricSessionEnded counts explicit exits and platform session ends.
	MetricSessionEnded
	// MetricCoreUnavailable counts transport failures against Core.
	MetricCoreUnavailable
	// MetricStoreUnavailable counts session store failures.
	MetricStoreUnavailable
	// MetricUnclassified counts turns answered by the top-level recovery.
	MetricUnclassified
	// MetricRelayLatency is the Core round-trip latency histogram.
	MetricRelayLatency
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

// Metrics holds lock-free counters and an optional latency histogram for
// the Core round trip. All operations are no-ops when disabled.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a [Metrics] instance configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc increments one counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records one Core round-trip duration.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id != MetricRelayLatency {
		return
	}
	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value reads one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot deep-copies every counter and histogram.
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
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricRelayLatency].buckets[i])
		}
		s.Histograms[MetricRelayLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 50:
		return 0
	case ms <= 100:
		return 1
	case ms <= 250:
		return 2
	case ms <= 500:
		return 3
	case ms <= 1000:
		return 4
	case ms <= 2000:
		return 5
	case ms <= 4000:
		return 6
	default:
		return 7
	}
}
