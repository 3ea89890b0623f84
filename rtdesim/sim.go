// Package rtdesim provides an in-process controller simulator implementing
// rtde.Client. It exists for rehearsal runs of the motion test without a robot
// and for exercising the session layer in tests: it can reject recipe
// configuration with register conflicts a configurable number of times, and it
// models joint motion as a first-order response so telemetry velocities decay
// toward stillness after each setpoint.
//
// The simulator speaks no wire protocol; it stands in behind the same Client
// interface a real transport implements.
package rtdesim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/motionlink/go-rtde/rtde"
)

// ErrNotConnected indicates an operation before Connect or after Disconnect.
var ErrNotConnected = errors.New("simulator: not connected")

// Config tunes the simulated controller.
type Config struct {
	// InitialQ is the arm's starting joint position.
	InitialQ rtde.JointVector

	// ConflictRejections is how many Configure calls to reject with a register
	// conflict before accepting, simulating a prior session that did not
	// release its input registers.
	ConflictRejections int

	// TimeConstant is the first-order response time of the simulated joints.
	// Smaller settles faster. Defaults to 50ms.
	TimeConstant time.Duration

	// Version is the controller version reported after connect.
	Version rtde.Version
}

// Client is a simulated controller. Safe for concurrent use.
type Client struct {
	mu sync.Mutex

	cfg           Config
	connected     bool
	configured    bool
	synchronizing bool
	conflictsLeft int

	q        rtde.JointVector
	target   rtde.JointVector
	lastStep time.Time

	// call counters for assertions
	connects    int
	disconnects int
	pauses      int
	configures  int
	sends       []rtde.JointVector
}

var _ rtde.Client = (*Client)(nil)

// New creates a simulated controller client.
func New(cfg Config) *Client {
	if cfg.TimeConstant <= 0 {
		cfg.TimeConstant = 50 * time.Millisecond
	}
	if cfg.Version == (rtde.Version{}) {
		cfg.Version = rtde.Version{Major: 5, Minor: 12, Bugfix: 0, Build: 1101}
	}

	return &Client{
		cfg:           cfg,
		conflictsLeft: cfg.ConflictRejections,
		q:             cfg.InitialQ,
		target:        cfg.InitialQ,
	}
}

func (c *Client) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.connected = true
	c.connects++

	return nil
}

func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.connected = false
	c.configured = false
	c.synchronizing = false
	c.disconnects++

	return nil
}

func (c *Client) Pause(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return ErrNotConnected
	}
	c.synchronizing = false
	c.pauses++

	return nil
}

func (c *Client) Configure(ctx context.Context, state rtde.Recipe, setpoint rtde.Recipe) (rtde.InputChannel, error) {
	if err := ctx.Err(); err != nil {
		return rtde.InputChannel{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.configures++
	if !c.connected {
		return rtde.InputChannel{}, ErrNotConnected
	}

	if c.conflictsLeft > 0 {
		c.conflictsLeft--
		return rtde.InputChannel{}, fmt.Errorf("setup inputs: %w", rtde.ErrRegisterConflict)
	}

	c.configured = true

	return rtde.InputChannel{RecipeID: 1, Names: setpoint.Names}, nil
}

func (c *Client) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected || !c.configured {
		return ErrNotConnected
	}
	c.synchronizing = true
	c.lastStep = time.Now()

	return nil
}

func (c *Client) Receive(ctx context.Context) (*rtde.TelemetrySample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected || !c.synchronizing {
		return nil, ErrNotConnected
	}

	c.step(time.Now())

	qd := rtde.JointVector{}
	for i := range qd {
		qd[i] = (c.target[i] - c.q[i]) / c.cfg.TimeConstant.Seconds()
	}

	return &rtde.TelemetrySample{
		ActualQ:    c.q,
		ActualQD:   qd,
		TargetQ:    c.target,
		RobotMode:  rtde.RobotModeRunning,
		SafetyMode: rtde.SafetyModeNormal,
	}, nil
}

func (c *Client) Send(ch rtde.InputChannel, target rtde.JointVector) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected || !c.synchronizing {
		return ErrNotConnected
	}

	c.step(time.Now())
	c.target = target
	c.sends = append(c.sends, target)

	return nil
}

func (c *Client) ControllerVersion() rtde.Version {
	return c.cfg.Version
}

// step advances the first-order joint model to now. Caller holds c.mu.
func (c *Client) step(now time.Time) {
	dt := now.Sub(c.lastStep).Seconds()
	c.lastStep = now
	if dt <= 0 {
		return
	}

	decay := math.Exp(-dt / c.cfg.TimeConstant.Seconds())
	for i := range c.q {
		c.q[i] = c.target[i] + (c.q[i]-c.target[i])*decay
	}
}

// Connects reports how many times Connect was called.
func (c *Client) Connects() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.connects
}

// Disconnects reports how many times Disconnect was called.
func (c *Client) Disconnects() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.disconnects
}

// Pauses reports how many times Pause was called.
func (c *Client) Pauses() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pauses
}

// Configures reports how many Configure attempts were made.
func (c *Client) Configures() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.configures
}

// Sends returns the dispatched setpoints in order.
func (c *Client) Sends() []rtde.JointVector {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]rtde.JointVector, len(c.sends))
	copy(out, c.sends)

	return out
}
