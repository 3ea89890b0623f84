package motion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/motionlink/go-rtde/rtde"
	"github.com/motionlink/go-rtde/rtdesim"
)

var testHome = rtde.JointVector{0, -1.57, 0, -1.57, 0, 0}

// faultClient wraps the simulator and injects transport failures at chosen
// points of the run. It is driven by the single run goroutine, like a real
// transport.
type faultClient struct {
	*rtdesim.Client

	connectErr error
	startErr   error
	sendErr    error

	// receiveErr fires once receiveErrAfter successful receives have happened
	receiveErr      error
	receiveErrAfter int
	receives        int
}

var _ rtde.Client = (*faultClient)(nil)

func (c *faultClient) Connect(ctx context.Context) error {
	if c.connectErr != nil {
		return c.connectErr
	}

	return c.Client.Connect(ctx)
}

func (c *faultClient) Start(ctx context.Context) error {
	if c.startErr != nil {
		return c.startErr
	}

	return c.Client.Start(ctx)
}

func (c *faultClient) Send(ch rtde.InputChannel, target rtde.JointVector) error {
	if c.sendErr != nil {
		return c.sendErr
	}

	return c.Client.Send(ch, target)
}

func (c *faultClient) Receive(ctx context.Context) (*rtde.TelemetrySample, error) {
	if c.receiveErr != nil && c.receives >= c.receiveErrAfter {
		return nil, c.receiveErr
	}
	c.receives++

	return c.Client.Receive(ctx)
}

func testOrchestratorConfig(t *testing.T, port int) Config {
	t.Helper()

	sessCfg, err := rtde.NewSessionConfig("127.0.0.1", port,
		rtde.WithConflictGrace(10*time.Millisecond),
	)
	require.NoError(t, err)

	return Config{
		Session:  sessCfg,
		Envelope: DefaultEnvelope(),
		Settle: SettleOptions{
			PollInterval:       time.Millisecond,
			StillnessThreshold: 0.001,
		},
	}
}

func TestOrchestratorNew(t *testing.T) {
	require := require.New(t)

	client := rtdesim.New(rtdesim.Config{})

	t.Run("Nil Session Config", func(t *testing.T) {
		_, err := New(Config{Envelope: DefaultEnvelope()}, client)
		require.ErrorIs(err, rtde.ErrSessionConfigNil)
	})

	t.Run("Nil Client", func(t *testing.T) {
		_, err := New(testOrchestratorConfig(t, 32001), nil)
		require.ErrorIs(err, rtde.ErrClientNil)
	})

	t.Run("Invalid Envelope", func(t *testing.T) {
		cfg := testOrchestratorConfig(t, 32002)
		cfg.Envelope.MaxJointDelta = 0
		_, err := New(cfg, client)
		require.Error(err)
	})

	t.Run("Joint Out Of Range", func(t *testing.T) {
		cfg := testOrchestratorConfig(t, 32003)
		cfg.TestJoint = rtde.JointCount
		_, err := New(cfg, client)
		require.Error(err)
	})

	t.Run("Defaults Applied", func(t *testing.T) {
		cfg := testOrchestratorConfig(t, 32004)
		orch, err := New(cfg, client)
		require.NoError(err)
		require.Equal(5, orch.cfg.TestJoint)
		require.Equal(0.03, orch.cfg.TestOffset)
		require.Equal("state", orch.cfg.StateRecipe.Key)
		require.Equal("setp", orch.cfg.SetpointRecipe.Key)
	})
}

func TestOrchestratorRunSuccess(t *testing.T) {
	require := require.New(t)

	sim := rtdesim.New(rtdesim.Config{
		InitialQ:     testHome,
		TimeConstant: 10 * time.Millisecond,
	})

	orch, err := New(testOrchestratorConfig(t, 32010), sim)
	require.NoError(err)

	res := orch.Run(context.Background())
	require.True(res.OK(), "run failed: outcome=%s err=%v", res.Outcome, res.Err)

	// offset out on the default wrist joint, then back to the reference
	sends := sim.Sends()
	require.Len(sends, 2)
	require.Equal(testHome.Offset(5, 0.03), sends[0])
	require.Equal(testHome, sends[1])

	// teardown ran: paused and disconnected exactly once
	require.Equal(1, sim.Connects())
	require.Equal(1, sim.Pauses())
	require.Equal(1, sim.Disconnects())
}

func TestOrchestratorRunExplicitTargets(t *testing.T) {
	require := require.New(t)

	sim := rtdesim.New(rtdesim.Config{
		InitialQ:     testHome,
		TimeConstant: 10 * time.Millisecond,
	})

	cfg := testOrchestratorConfig(t, 32011)
	// each step moves a different joint; every delta is measured against the
	// previously commanded target, not the start position
	step1 := testHome.Offset(0, 0.04)
	step2 := step1.Offset(1, -0.04)
	step3 := step2.Offset(0, 0.04)
	cfg.Targets = []rtde.JointVector{step1, step2, step3}

	orch, err := New(cfg, sim)
	require.NoError(err)

	res := orch.Run(context.Background())
	require.True(res.OK(), "run failed: outcome=%s err=%v", res.Outcome, res.Err)
	require.Equal([]rtde.JointVector{step1, step2, step3}, sim.Sends())
}

func TestOrchestratorRunSafetyViolation(t *testing.T) {
	require := require.New(t)

	sim := rtdesim.New(rtdesim.Config{InitialQ: testHome})

	cfg := testOrchestratorConfig(t, 32012)
	cfg.TestOffset = 0.2 // far past the 0.05 rad envelope

	orch, err := New(cfg, sim)
	require.NoError(err)

	res := orch.Run(context.Background())
	require.Equal(SafetyViolation, res.Outcome)
	require.Equal(5, res.Joint)
	require.InDelta(0.2, res.Delta, 1e-9)

	var v *Violation
	require.ErrorAs(res.Err, &v)

	// nothing may reach the device on a rejected target
	require.Empty(sim.Sends())
	// the session is still torn down
	require.Equal(1, sim.Pauses())
	require.Equal(1, sim.Disconnects())
}

func TestOrchestratorRunConflictRecovery(t *testing.T) {
	require := require.New(t)

	t.Run("Recovers Within Budget", func(t *testing.T) {
		sim := rtdesim.New(rtdesim.Config{
			InitialQ:           testHome,
			TimeConstant:       10 * time.Millisecond,
			ConflictRejections: 2,
		})

		orch, err := New(testOrchestratorConfig(t, 32013), sim)
		require.NoError(err)

		res := orch.Run(context.Background())
		require.True(res.OK(), "run failed: outcome=%s err=%v", res.Outcome, res.Err)
		require.Equal(3, sim.Configures())
		require.Equal(3, sim.Connects())
	})

	t.Run("Budget Exhausted", func(t *testing.T) {
		sim := rtdesim.New(rtdesim.Config{
			InitialQ:           testHome,
			ConflictRejections: 3,
		})

		orch, err := New(testOrchestratorConfig(t, 32014), sim)
		require.NoError(err)

		res := orch.Run(context.Background())
		require.Equal(ConfigurationExhausted, res.Outcome)
		require.ErrorIs(res.Err, rtde.ErrConfigExhausted)
		require.Equal(3, sim.Configures())
		require.Empty(sim.Sends())

		// every conflict ends with a disconnect; the final state needs no
		// teardown beyond that
		require.Equal(3, sim.Disconnects())
	})
}

func TestOrchestratorRunFailureOutcomes(t *testing.T) {
	require := require.New(t)

	t.Run("Connection Failed", func(t *testing.T) {
		connErr := errors.New("connection refused")
		sim := rtdesim.New(rtdesim.Config{InitialQ: testHome})
		client := &faultClient{Client: sim, connectErr: connErr}

		orch, err := New(testOrchestratorConfig(t, 32020), client)
		require.NoError(err)

		res := orch.Run(context.Background())
		require.Equal(ConnectionFailed, res.Outcome)
		require.ErrorIs(res.Err, connErr)

		// never connected: nothing to tear down, nothing dispatched
		require.Equal(0, sim.Connects())
		require.Equal(0, sim.Pauses())
		require.Equal(0, sim.Disconnects())
		require.Empty(sim.Sends())
	})

	t.Run("Start Failed", func(t *testing.T) {
		startErr := errors.New("controller refused synchronization")
		sim := rtdesim.New(rtdesim.Config{InitialQ: testHome})
		client := &faultClient{Client: sim, startErr: startErr}

		orch, err := New(testOrchestratorConfig(t, 32021), client)
		require.NoError(err)

		res := orch.Run(context.Background())
		require.Equal(StartFailed, res.Outcome)
		require.ErrorIs(res.Err, startErr)
		require.Empty(sim.Sends())

		// the configured session is still torn down exactly once
		require.Equal(1, sim.Pauses())
		require.Equal(1, sim.Disconnects())
	})

	t.Run("Telemetry Unavailable", func(t *testing.T) {
		recvErr := errors.New("no telemetry frames")
		sim := rtdesim.New(rtdesim.Config{InitialQ: testHome})
		client := &faultClient{Client: sim, receiveErr: recvErr, receiveErrAfter: 0}

		orch, err := New(testOrchestratorConfig(t, 32022), client)
		require.NoError(err)

		// the reference sample never arrives; no target may be planned or sent
		res := orch.Run(context.Background())
		require.Equal(TelemetryUnavailable, res.Outcome)
		require.ErrorIs(res.Err, recvErr)
		require.Empty(sim.Sends())
		require.Equal(1, sim.Pauses())
		require.Equal(1, sim.Disconnects())
	})

	t.Run("Session Lost During Settle", func(t *testing.T) {
		recvErr := errors.New("connection reset by peer")
		sim := rtdesim.New(rtdesim.Config{InitialQ: testHome})
		// the reference read succeeds, the first settle poll does not
		client := &faultClient{Client: sim, receiveErr: recvErr, receiveErrAfter: 1}

		orch, err := New(testOrchestratorConfig(t, 32023), client)
		require.NoError(err)

		res := orch.Run(context.Background())
		require.Equal(SessionLost, res.Outcome)
		// the underlying transport error survives into the result
		require.ErrorIs(res.Err, recvErr)

		require.Len(sim.Sends(), 1)
		require.Equal(1, sim.Pauses())
		require.Equal(1, sim.Disconnects())
	})

	t.Run("Session Lost On Send", func(t *testing.T) {
		sendErr := errors.New("broken pipe")
		sim := rtdesim.New(rtdesim.Config{InitialQ: testHome})
		client := &faultClient{Client: sim, sendErr: sendErr}

		orch, err := New(testOrchestratorConfig(t, 32024), client)
		require.NoError(err)

		res := orch.Run(context.Background())
		require.Equal(SessionLost, res.Outcome)
		require.ErrorIs(res.Err, sendErr)
		require.Empty(sim.Sends())
		require.Equal(1, sim.Pauses())
		require.Equal(1, sim.Disconnects())
	})
}

func TestOrchestratorRunConfirmation(t *testing.T) {
	require := require.New(t)

	t.Run("Declined", func(t *testing.T) {
		sim := rtdesim.New(rtdesim.Config{InitialQ: testHome})

		cfg := testOrchestratorConfig(t, 32015)
		cfg.Confirm = func(ctx context.Context) (bool, error) { return false, nil }

		orch, err := New(cfg, sim)
		require.NoError(err)

		res := orch.Run(context.Background())
		require.Equal(UserCancelled, res.Outcome)
		require.NoError(res.Err)

		// declined before any network action
		require.Equal(0, sim.Connects())
	})

	t.Run("Accepted", func(t *testing.T) {
		sim := rtdesim.New(rtdesim.Config{
			InitialQ:     testHome,
			TimeConstant: 10 * time.Millisecond,
		})

		confirmed := false
		cfg := testOrchestratorConfig(t, 32016)
		cfg.Confirm = func(ctx context.Context) (bool, error) {
			confirmed = true
			return true, nil
		}

		orch, err := New(cfg, sim)
		require.NoError(err)

		res := orch.Run(context.Background())
		require.True(res.OK())
		require.True(confirmed)
	})
}

func TestOrchestratorRunAbort(t *testing.T) {
	require := require.New(t)

	// a sluggish arm keeps the run inside the settle wait long enough to abort
	sim := rtdesim.New(rtdesim.Config{
		InitialQ:     testHome,
		TimeConstant: 10 * time.Second,
	})

	orch, err := New(testOrchestratorConfig(t, 32017), sim)
	require.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	res := orch.Run(ctx)
	require.Equal(UserCancelled, res.Outcome)
	require.ErrorIs(res.Err, context.Canceled)

	// the first target went out before the abort; teardown still ran once
	require.Len(sim.Sends(), 1)
	require.Equal(1, sim.Pauses())
	require.Equal(1, sim.Disconnects())
}

func TestOrchestratorRunMotionTimeout(t *testing.T) {
	require := require.New(t)

	sim := rtdesim.New(rtdesim.Config{
		InitialQ:     testHome,
		TimeConstant: 10 * time.Second,
	})

	cfg := testOrchestratorConfig(t, 32018)
	cfg.Envelope.MovementTimeout = 50 * time.Millisecond

	orch, err := New(cfg, sim)
	require.NoError(err)

	res := orch.Run(context.Background())
	require.Equal(MotionTimedOut, res.Outcome)
	require.Len(sim.Sends(), 1)
	require.Equal(1, sim.Pauses())
	require.Equal(1, sim.Disconnects())
}

func TestRunResultOK(t *testing.T) {
	require := require.New(t)

	require.True(RunResult{Outcome: Success}.OK())
	require.False(RunResult{Outcome: SessionLost}.OK())
}

func TestOutcomeString(t *testing.T) {
	require := require.New(t)

	require.Equal("success", Success.String())
	require.Equal("user-cancelled", UserCancelled.String())
	require.Equal("configuration-exhausted", ConfigurationExhausted.String())
	require.Equal("safety-violation", SafetyViolation.String())
	require.Equal("motion-timed-out", MotionTimedOut.String())
	require.Equal("session-lost", SessionLost.String())
	require.Equal("unknown", Outcome(99).String())
}
