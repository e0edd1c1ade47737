package authdemo

import (
	"sync/atomic"
	"time"

	"github.com/MalcoreHardcore698/authdemo/auth"
)

// MetricID identifies one engine counter.
type MetricID uint16

const (
	MetricBootstrapSuccess MetricID = iota
	MetricBootstrapFailure
	MetricBootstrapSuperseded
	MetricLoginSuccess
	MetricLoginFailure
	MetricLoginSuperseded
	MetricRegisterSuccess
	MetricRegisterFailure
	MetricRegisterSuperseded
	MetricResetSuccess
	MetricResetFailure
	MetricLogout
	// MetricFallbackUsed counts requests the primary transport failed and
	// the mock backend answered instead.
	MetricFallbackUsed
	// MetricActionLatency is the only histogram.
	MetricActionLatency
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

// Metrics holds lock-free counters for session actions. A nil or disabled
// Metrics ignores every update.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	latency       metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters. Histograms hold
// non-cumulative bucket counts.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the action latency histogram.
func (m *Metrics) Observe(d time.Duration) {
	if m == nil || !m.enableLatency {
		return
	}
	atomic.AddUint64(&m.latency.buckets[bucketIndex(d)], 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
	if m == nil || !m.enabled {
		return s
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricActionLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := range buckets {
			buckets[i] = atomic.LoadUint64(&m.latency.buckets[i])
		}
		s.Histograms[MetricActionLatency] = buckets
	}
	return s
}

// record maps a controller event to its counter.
func (m *Metrics) record(e auth.Event) {
	if m == nil || !m.enabled {
		return
	}
	m.Observe(e.Duration)

	switch e.Op {
	case auth.OpBootstrap:
		m.Inc(pick(e.Outcome, MetricBootstrapSuccess, MetricBootstrapFailure, MetricBootstrapSuperseded))
	case auth.OpLogin:
		m.Inc(pick(e.Outcome, MetricLoginSuccess, MetricLoginFailure, MetricLoginSuperseded))
	case auth.OpRegister:
		m.Inc(pick(e.Outcome, MetricRegisterSuccess, MetricRegisterFailure, MetricRegisterSuperseded))
	case auth.OpResetPassword:
		if e.Outcome == auth.OutcomeSuccess {
			m.Inc(MetricResetSuccess)
		} else {
			m.Inc(MetricResetFailure)
		}
	case auth.OpLogout:
		m.Inc(MetricLogout)
	}
}

func pick(o auth.Outcome, success, failure, superseded MetricID) MetricID {
	switch o {
	case auth.OutcomeSuccess:
		return success
	case auth.OutcomeSuperseded:
		return superseded
	default:
		return failure
	}
}

// Bucket upper bounds: 5ms 10ms 25ms 50ms 100ms 250ms 500ms +Inf.
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
