package motion

// Outcome tags the terminal condition of one orchestrated run.
type Outcome uint8

const (
	// Success indicates every target was validated, dispatched and settled.
	Success Outcome = iota
	// UserCancelled indicates the operator declined confirmation or aborted
	// the run while it was in progress.
	UserCancelled
	// ConnectionFailed indicates the transport connection could not be
	// established.
	ConnectionFailed
	// ConfigurationExhausted indicates recipe negotiation failed terminally,
	// either by exhausting the conflict retry budget or by a non-transient
	// rejection.
	ConfigurationExhausted
	// StartFailed indicates the controller refused to start synchronization.
	StartFailed
	// TelemetryUnavailable indicates the initial reference sample could not be
	// read.
	TelemetryUnavailable
	// SafetyViolation indicates a candidate target breached the safety
	// envelope; nothing was sent to the device.
	SafetyViolation
	// MotionTimedOut indicates a dispatched movement did not settle within the
	// envelope's movement timeout.
	MotionTimedOut
	// SessionLost indicates telemetry or the transport was lost mid-run.
	SessionLost
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case UserCancelled:
		return "user-cancelled"
	case ConnectionFailed:
		return "connection-failed"
	case ConfigurationExhausted:
		return "configuration-exhausted"
	case StartFailed:
		return "start-failed"
	case TelemetryUnavailable:
		return "telemetry-unavailable"
	case SafetyViolation:
		return "safety-violation"
	case MotionTimedOut:
		return "motion-timed-out"
	case SessionLost:
		return "session-lost"
	default:
		return "unknown"
	}
}

// RunResult is the terminal report of one orchestrated run. Exactly one is
// produced per Run invocation, on every path.
type RunResult struct {
	Outcome Outcome
	// Err carries the underlying cause for non-success outcomes. It may be nil
	// for outcomes that are decisions rather than failures, e.g. a declined
	// confirmation.
	Err error

	// Joint and Delta identify the offending joint and its measured delta when
	// Outcome is SafetyViolation. Joint is -1 otherwise.
	Joint int
	Delta float64
}

// OK reports whether the run completed successfully.
func (r RunResult) OK() bool { return r.Outcome == Success }
