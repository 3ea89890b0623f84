package motion

import (
	"context"
	"errors"
	"fmt"

	"github.com/motionlink/go-rtde/logger"
	"github.com/motionlink/go-rtde/rtde"
)

// ConfirmFunc asks the operator for permission before any network action. It
// returns false to cancel the run. An error counts as a refusal.
type ConfirmFunc func(ctx context.Context) (bool, error)

// Config configures one orchestrated motion test run.
type Config struct {
	// Session is the session configuration for the controller endpoint.
	Session *rtde.SessionConfig
	// Envelope holds the safety bounds. Zero value is rejected; use
	// DefaultEnvelope as a starting point.
	Envelope Envelope

	// StateRecipe and SetpointRecipe are the negotiation parameters for the
	// telemetry and input channels. Defaults to rtde.StateRecipe and
	// rtde.SetpointRecipe.
	StateRecipe    rtde.Recipe
	SetpointRecipe rtde.Recipe

	// TestJoint and TestOffset define the default two-step test plan: offset
	// one joint by a small delta, then return to the reference position.
	// Defaults: joint 5 (wrist), 0.03 rad.
	TestJoint  int
	TestOffset float64

	// Targets, when non-empty, replaces the default test plan with an explicit
	// ordered target sequence. Each target is still validated against the
	// previous position before dispatch.
	Targets []rtde.JointVector

	// Confirm is consulted before any network action. Nil skips confirmation.
	Confirm ConfirmFunc

	// Settle tunes completion detection. The timeout always comes from
	// Envelope.MovementTimeout; only PollInterval and StillnessThreshold are
	// read from this field.
	Settle SettleOptions

	// Logger for run progress. Defaults to the package default logger.
	Logger logger.Logger
}

// Orchestrator drives a full safety-bounded motion test: session bring-up,
// reference read, per-target validate/dispatch/settle, and guaranteed teardown.
//
// A single goroutine drives the entire run; there is no concurrent dispatch and
// at most one setpoint is outstanding at any time.
type Orchestrator struct {
	cfg    Config
	client rtde.Client
	logger logger.Logger
}

// New creates an Orchestrator for the given transport client.
func New(cfg Config, client rtde.Client) (*Orchestrator, error) {
	if cfg.Session == nil {
		return nil, rtde.ErrSessionConfigNil
	}
	if client == nil {
		return nil, rtde.ErrClientNil
	}
	if err := cfg.Envelope.Validate(); err != nil {
		return nil, err
	}

	if cfg.StateRecipe.Key == "" {
		cfg.StateRecipe = rtde.StateRecipe()
	}
	if cfg.SetpointRecipe.Key == "" {
		cfg.SetpointRecipe = rtde.SetpointRecipe()
	}
	if cfg.TestOffset == 0 {
		cfg.TestOffset = 0.03
	}
	if cfg.TestJoint == 0 {
		cfg.TestJoint = 5
	}
	if cfg.TestJoint < 0 || cfg.TestJoint >= rtde.JointCount {
		return nil, fmt.Errorf("test joint %d out of range", cfg.TestJoint)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	return &Orchestrator{
		cfg:    cfg,
		client: client,
		logger: cfg.Logger.With("endpoint", cfg.Session.Endpoint()),
	}, nil
}

// Run executes one motion test and returns its terminal RunResult.
//
// Teardown runs exactly once per invocation, regardless of which step
// terminated the run and regardless of whether termination was success,
// validation failure, timeout, transport loss, or operator abort. An abort via
// ctx takes the same teardown path as any other terminal condition.
func (o *Orchestrator) Run(ctx context.Context) RunResult {
	// confirmation comes before any network action
	if o.cfg.Confirm != nil {
		ok, err := o.cfg.Confirm(ctx)
		if err != nil {
			return result(UserCancelled, fmt.Errorf("confirmation: %w", err))
		}
		if !ok {
			o.logger.Info("run cancelled by operator")
			return result(UserCancelled, nil)
		}
	}

	session, err := rtde.NewSession(o.cfg.Session, o.client)
	if err != nil {
		return result(ConnectionFailed, err)
	}
	defer session.Close()

	if res, ok := o.bringUp(ctx, session); !ok {
		return res
	}

	reference, err := session.Receive(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return result(UserCancelled, ctx.Err())
		}

		return result(TelemetryUnavailable, err)
	}
	o.logPosition("reference position", reference.ActualQ)

	targets := o.cfg.Targets
	if len(targets) == 0 {
		targets = o.planTestTargets(reference.ActualQ)
	}

	previous := reference.ActualQ
	for i, target := range targets {
		log := o.logger.With("movement", i+1, "movements", len(targets))

		if err := Validate(previous[:], target[:], o.cfg.Envelope.MaxJointDelta); err != nil {
			log.Error("target rejected by safety envelope", "error", err)
			return violationResult(err)
		}
		log.Info("target validated", "target", target)

		if err := session.Send(target); err != nil {
			return result(SessionLost, err)
		}

		opts := o.cfg.Settle
		opts.Timeout = o.cfg.Envelope.MovementTimeout
		settle, serr := AwaitSettled(ctx, session, opts)
		switch settle {
		case TimedOut:
			log.Error("movement did not settle before timeout",
				"timeout", o.cfg.Envelope.MovementTimeout)
			return result(MotionTimedOut, nil)
		case Lost:
			if ctx.Err() != nil {
				// operator abort while awaiting settlement
				return result(UserCancelled, serr)
			}
			if serr == nil {
				serr = rtde.ErrNoSample
			}

			return result(SessionLost, serr)
		case Settled:
		}

		reached, err := session.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return result(UserCancelled, ctx.Err())
			}

			return result(SessionLost, err)
		}
		o.logPosition("movement settled", reached.ActualQ)

		// subsequent movements are bounded relative to the commanded target,
		// not the original start, so increments cannot accumulate past the
		// per-step limit
		previous = target
	}

	o.logger.Info("motion test completed", "movements", len(targets))

	return result(Success, nil)
}

// bringUp opens, configures and starts the session. The bool reports success;
// on failure the RunResult carries the mapped cause.
func (o *Orchestrator) bringUp(ctx context.Context, session *rtde.Session) (RunResult, bool) {
	if err := session.Open(ctx); err != nil {
		if ctx.Err() != nil {
			return result(UserCancelled, ctx.Err()), false
		}

		return result(ConnectionFailed, err), false
	}

	if err := session.Configure(ctx, o.cfg.StateRecipe, o.cfg.SetpointRecipe); err != nil {
		if ctx.Err() != nil {
			return result(UserCancelled, ctx.Err()), false
		}

		return result(ConfigurationExhausted, err), false
	}

	if err := session.Start(ctx); err != nil {
		if ctx.Err() != nil {
			return result(UserCancelled, ctx.Err()), false
		}

		return result(StartFailed, err), false
	}

	return RunResult{}, true
}

// planTestTargets builds the minimum two-step plan: one joint offset by the
// test delta, then back to the reference position.
func (o *Orchestrator) planTestTargets(reference rtde.JointVector) []rtde.JointVector {
	return []rtde.JointVector{
		reference.Offset(o.cfg.TestJoint, o.cfg.TestOffset),
		reference,
	}
}

func (o *Orchestrator) logPosition(msg string, q rtde.JointVector) {
	o.logger.Info(msg, "rad", q, "deg", q.Degrees())
}

func result(outcome Outcome, err error) RunResult {
	return RunResult{Outcome: outcome, Err: err, Joint: -1}
}

func violationResult(err error) RunResult {
	res := RunResult{Outcome: SafetyViolation, Err: err, Joint: -1}

	var v *Violation
	if errors.As(err, &v) {
		res.Joint = v.Joint
		res.Delta = v.Delta
	}

	return res
}
