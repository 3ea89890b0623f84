package rtde

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/motionlink/go-rtde/internal/pool"
	"github.com/motionlink/go-rtde/logger"
)

// Session owns the lifecycle of one negotiated transport connection. It is the
// sole owner of the network resource; other components request operations
// through it and never close or reopen the transport themselves.
//
// A Session is driven by a single goroutine at a time. At most one setpoint is
// outstanding; a new target must not be sent before the previous one settled.
type Session struct {
	cfg    *SessionConfig
	client Client
	logger logger.Logger

	stateMgr *StateMgr
	metrics  SessionMetrics
	input    InputChannel
	closed   atomic.Bool
}

// NewSession creates a Session for the configured controller endpoint, driving
// the given transport client.
//
// It claims the endpoint in the process-wide registry; a second live session
// for the same endpoint fails with ErrControllerBusy until the first one is
// closed.
func NewSession(cfg *SessionConfig, client Client) (*Session, error) {
	if cfg == nil {
		return nil, ErrSessionConfigNil
	}
	if client == nil {
		return nil, ErrClientNil
	}

	s := &Session{
		cfg:    cfg,
		client: client,
		logger: cfg.logger.With("endpoint", cfg.Endpoint()),
	}
	s.stateMgr = NewStateMgr(s.logger, s.logStateChange)

	if err := claimEndpoint(cfg.Endpoint(), s); err != nil {
		return nil, fmt.Errorf("claim %s: %w", cfg.Endpoint(), err)
	}

	return s, nil
}

// State returns the current session state.
func (s *Session) State() SessionState {
	return s.stateMgr.State()
}

// AddStateChangeHandler registers handlers invoked on session state changes.
func (s *Session) AddStateChangeHandler(handlers ...StateChangeHandler) {
	s.stateMgr.AddHandler(handlers...)
}

// Metrics returns the metrics associated with the session.
func (s *Session) Metrics() *SessionMetrics {
	return &s.metrics
}

// ControllerVersion reports the controller version negotiated by the transport.
// Diagnostic only; valid after Open.
func (s *Session) ControllerVersion() Version {
	return s.client.ControllerVersion()
}

// Open establishes the transport connection only; it does not configure
// recipes. Disconnected -> Connected.
func (s *Session) Open(ctx context.Context) error {
	if s.closed.Load() {
		return ErrSessionStopped
	}

	if err := s.connect(ctx); err != nil {
		return err
	}

	return nil
}

// Configure negotiates the state (telemetry) and setpoint (input) recipes.
// Connected -> Configured.
//
// On a register-conflict rejection the controller still holds the input
// registers of a previous session: the session disconnects, waits the fixed
// grace interval, reconnects and tries again, at most RetryBudget attempts in
// total. Exhausting the budget returns an error wrapping ErrConfigExhausted.
// Any other rejection is not transient and propagates immediately.
func (s *Session) Configure(ctx context.Context, state Recipe, setpoint Recipe) error {
	if s.closed.Load() {
		return ErrSessionStopped
	}
	if err := state.Validate(); err != nil {
		return err
	}
	if err := setpoint.Validate(); err != nil {
		return err
	}

	budget := s.cfg.RetryBudget()
	for attempt := 1; attempt <= budget; attempt++ {
		input, err := s.client.Configure(ctx, state, setpoint)
		if err == nil {
			if err := s.stateMgr.ToConfigured(); err != nil {
				return err
			}
			s.input = input
			s.logger.Debug("recipes configured",
				"state_fields", len(state.Names), "input_recipe_id", input.RecipeID)

			return nil
		}

		if !errors.Is(err, ErrRegisterConflict) {
			return fmt.Errorf("configure recipes: %w", err)
		}

		s.metrics.incConfigRetryCount()
		s.logger.Warn("input registers in use, disconnecting to clear them",
			"attempt", attempt, "budget", budget)

		if derr := s.client.Disconnect(); derr != nil {
			s.logger.Warn("disconnect during conflict recovery failed", "error", derr)
		}
		if serr := s.stateMgr.ToDisconnected(); serr != nil {
			return serr
		}

		if attempt == budget {
			break
		}

		// fixed grace interval, the controller releases registers on its own timer
		if err := sleepCtx(ctx, s.cfg.ConflictGrace()); err != nil {
			return err
		}

		if err := s.connect(ctx); err != nil {
			return err
		}
	}

	return fmt.Errorf("configure recipes after %d attempts: %w", budget, ErrConfigExhausted)
}

// Start begins periodic telemetry exchange. Configured -> Synchronizing.
// A failure here means the negotiated recipe is unusable; it is terminal for
// the run and is never retried.
func (s *Session) Start(ctx context.Context) error {
	if s.closed.Load() {
		return ErrSessionStopped
	}

	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("start synchronization: %w", err)
	}
	if err := s.stateMgr.ToSynchronizing(); err != nil {
		return err
	}

	s.logger.Info("synchronization started")

	return nil
}

// Receive blocks for one telemetry sample, bounded by the configured receive
// timeout. Telemetry loss mid-run is not retried; the caller decides what a
// missing sample means for the run.
func (s *Session) Receive(ctx context.Context) (*TelemetrySample, error) {
	if !s.State().IsSynchronizing() {
		return nil, ErrNotSynchronizing
	}

	rctx, cancel := context.WithTimeout(ctx, s.cfg.ReceiveTimeout())
	defer cancel()

	sample, err := s.client.Receive(rctx)
	if err != nil {
		return nil, fmt.Errorf("receive telemetry: %w", err)
	}
	if sample == nil {
		return nil, ErrNoSample
	}

	s.metrics.incSampleRecvCount()

	return sample, nil
}

// Send dispatches one joint-space setpoint through the negotiated input
// channel. Only legal while synchronizing.
func (s *Session) Send(target JointVector) error {
	if !s.State().IsSynchronizing() {
		return ErrNotSynchronizing
	}

	if err := s.client.Send(s.input, target); err != nil {
		return fmt.Errorf("send setpoint: %w", err)
	}

	s.metrics.incTargetSendCount()
	s.logger.Debug("setpoint dispatched", "target", target)

	return nil
}

// Close tears the session down: pause synchronization, then disconnect.
//
// It is idempotent and best-effort. Teardown runs from failure and interrupt
// paths where a secondary error must not mask the primary one or prevent
// process exit, so failures are logged and counted but never returned. The
// session always ends in StoppedState and its endpoint claim is released.
func (s *Session) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	defer releaseEndpoint(s.cfg.Endpoint(), s)

	if !s.State().IsDisconnected() {
		pctx, cancel := context.WithTimeout(context.Background(), s.cfg.CloseTimeout())
		if err := s.client.Pause(pctx); err != nil {
			s.metrics.incTeardownErrCount()
			s.logger.Warn("pause during teardown failed", "error", err)
		}
		cancel()

		if err := s.client.Disconnect(); err != nil {
			s.metrics.incTeardownErrCount()
			s.logger.Warn("disconnect during teardown failed", "error", err)
		}
	}

	s.stateMgr.ToStopped()
	s.logger.Info("session closed",
		"samples", s.metrics.SampleRecvCount.Load(),
		"targets", s.metrics.TargetSendCount.Load(),
		"config_retries", s.metrics.ConfigRetryCount.Load(),
	)
}

// connect performs one transport connect attempt with the configured timeout
// and records the negotiated controller version.
func (s *Session) connect(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout())
	defer cancel()

	if err := s.client.Connect(cctx); err != nil {
		return fmt.Errorf("connect controller: %w", err)
	}
	if err := s.stateMgr.ToConnected(); err != nil {
		return err
	}

	s.metrics.incConnectCount()
	s.logger.Info("controller connected", "version", s.client.ControllerVersion())

	return nil
}

func (s *Session) logStateChange(prevState SessionState, newState SessionState) {
	s.logger.Debug("session state changed", "prev_state", prevState, "new_state", newState)
}

// sleepCtx sleeps for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := pool.GetTimer(d)
	defer pool.PutTimer(timer)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
