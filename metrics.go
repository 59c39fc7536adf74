package authcore

import "sync/atomic"

// MetricID defines a public type used by authcore APIs.
type MetricID uint16

const (
	// MetricLoginSuccess is an exported constant or variable used by the authentication engine.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure is an exported constant or variable used by the authentication engine.
	MetricLoginFailure
	// MetricTwoFactorRequired is an exported constant or variable used by the authentication engine.
	MetricTwoFactorRequired
	// MetricTwoFactorSuccess is an exported constant or variable used by the authentication engine.
	MetricTwoFactorSuccess
	// MetricTwoFactorFailure is an exported constant or variable used by the authentication engine.
	MetricTwoFactorFailure
	// MetricChallengeReplay is an exported constant or variable used by the authentication engine.
	MetricChallengeReplay
	// MetricChallengeExpired is an exported constant or variable used by the authentication engine.
	MetricChallengeExpired
	// MetricRefreshSuccess is an exported constant or variable used by the authentication engine.
	MetricRefreshSuccess
	// MetricRefreshFailure is an exported constant or variable used by the authentication engine.
	MetricRefreshFailure
	// MetricLogout is an exported constant or variable used by the authentication engine.
	MetricLogout
	// MetricTOTPEnabled is an exported constant or variable used by the authentication engine.
	MetricTOTPEnabled
	// MetricTOTPDisabled is an exported constant or variable used by the authentication engine.
	MetricTOTPDisabled
	// MetricTOTPFailure is an exported constant or variable used by the authentication engine.
	MetricTOTPFailure
	// MetricSMSCodeSent is an exported constant or variable used by the authentication engine.
	MetricSMSCodeSent
	// MetricSMSDispatchFailed is an exported constant or variable used by the authentication engine.
	MetricSMSDispatchFailed
	// MetricBackupCodeUsed is an exported constant or variable used by the authentication engine.
	MetricBackupCodeUsed
	// MetricBackupCodeFailed is an exported constant or variable used by the authentication engine.
	MetricBackupCodeFailed
	// MetricBackupCodesRegenerated is an exported constant or variable used by the authentication engine.
	MetricBackupCodesRegenerated
	// MetricRecoveryCodeUsed is an exported constant or variable used by the authentication engine.
	MetricRecoveryCodeUsed
	// MetricRecoveryCodeFailed is an exported constant or variable used by the authentication engine.
	MetricRecoveryCodeFailed
	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics defines a public type used by authcore APIs.
//
// Counters are lock-free and padded to a cache line each so concurrent logins
// on different cores do not contend.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot defines a public type used by authcore APIs.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics returns a counter set honoring cfg.Enabled.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled: cfg.Enabled,
	}
}

// Enabled reports whether counters are being recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc bumps a counter; disabled or out-of-range ids are ignored.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value reads a single counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter into a map.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}

	s := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, int(metricIDCount)),
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
