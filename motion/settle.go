package motion

import (
	"context"
	"time"

	"github.com/motionlink/go-rtde/internal/pool"
	"github.com/motionlink/go-rtde/rtde"
)

// SettleResult is the decision of one AwaitSettled call.
type SettleResult uint8

const (
	// Settled indicates every joint velocity dropped below the stillness
	// threshold.
	Settled SettleResult = iota
	// TimedOut indicates motion kept going past the timeout.
	TimedOut
	// Lost indicates the session yielded no telemetry sample.
	Lost
)

func (r SettleResult) String() string {
	switch r {
	case Settled:
		return "settled"
	case TimedOut:
		return "timed-out"
	case Lost:
		return "session-lost"
	default:
		return "unknown"
	}
}

// TelemetrySource yields one telemetry sample per call. *rtde.Session
// satisfies it; tests substitute scripted streams.
type TelemetrySource interface {
	Receive(ctx context.Context) (*rtde.TelemetrySample, error)
}

// SettleOptions bounds one settle wait.
type SettleOptions struct {
	// Timeout is the maximum wall-clock time to wait for settlement.
	// Defaults to 10 seconds.
	Timeout time.Duration
	// PollInterval is the fixed sleep between telemetry polls. The device's
	// control cycle is far faster than human-scale motion, so a short fixed
	// interval cannot miss settlement. Defaults to 10ms.
	PollInterval time.Duration
	// StillnessThreshold is the joint-velocity bound (rad/s) below which the
	// arm counts as stopped. Defaults to 0.001.
	StillnessThreshold float64
}

func (o SettleOptions) withDefaults() SettleOptions {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 10 * time.Millisecond
	}
	if o.StillnessThreshold <= 0 {
		o.StillnessThreshold = 0.001
	}

	return o
}

// AwaitSettled polls src until all joint velocities drop below the stillness
// threshold, the timeout elapses, or the session stops yielding samples.
//
// A missing sample returns Lost immediately; a dead transport must not hang
// the caller. On Lost the returned error names the cause: the receive failure,
// ctx.Err() after a cancellation, or nil when the transport produced a nil
// sample without an error.
//
// This is a blocking, single-goroutine polling loop with an explicit deadline
// clock; the transport offers no event or interrupt mechanism to wait on.
func AwaitSettled(ctx context.Context, src TelemetrySource, opts SettleOptions) (SettleResult, error) {
	opts = opts.withDefaults()
	deadline := time.Now().Add(opts.Timeout)

	for {
		if time.Now().After(deadline) {
			return TimedOut, nil
		}

		sample, err := src.Receive(ctx)
		if err != nil {
			return Lost, err
		}
		if sample == nil {
			return Lost, nil
		}

		if sample.ActualQD.MaxAbs() < opts.StillnessThreshold {
			return Settled, nil
		}

		timer := pool.GetTimer(opts.PollInterval)
		select {
		case <-ctx.Done():
			pool.PutTimer(timer)
			return Lost, ctx.Err()
		case <-timer.C:
			pool.PutTimer(timer)
		}
	}
}
