package rtde

import (
	"sync/atomic"
)

// SessionMetrics contains atomic metrics for a session.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type SessionMetrics struct {
	// ConnectCount indicates the number of transport connects, including
	// reconnects during configuration-conflict recovery.
	ConnectCount atomic.Uint32
	// ConfigRetryCount indicates the number of recipe configuration attempts
	// rejected with a register conflict.
	ConfigRetryCount atomic.Uint32

	// SampleRecvCount indicates the number of telemetry samples received.
	SampleRecvCount atomic.Uint64
	// TargetSendCount indicates the number of setpoints dispatched.
	TargetSendCount atomic.Uint64

	// TeardownErrCount indicates the number of suppressed teardown failures.
	TeardownErrCount atomic.Uint32
}

func (m *SessionMetrics) incConnectCount() {
	m.ConnectCount.Add(1)
}

func (m *SessionMetrics) incConfigRetryCount() {
	m.ConfigRetryCount.Add(1)
}

func (m *SessionMetrics) incSampleRecvCount() {
	m.SampleRecvCount.Add(1)
}

func (m *SessionMetrics) incTargetSendCount() {
	m.TargetSendCount.Add(1)
}

func (m *SessionMetrics) incTeardownErrCount() {
	m.TeardownErrCount.Add(1)
}
