package rtde

import (
	"sync"
	"sync/atomic"

	"github.com/motionlink/go-rtde/logger"
)

// SessionState represents the various stages of an RTDE session.
type SessionState uint32

// Session states representing the lifecycle of one negotiated connection.
const (
	// DisconnectedState indicates that the transport connection is not established.
	DisconnectedState SessionState = iota
	// ConnectedState indicates that the transport is connected but no recipes
	// are negotiated yet.
	ConnectedState
	// ConfiguredState indicates that the state and setpoint recipes are
	// accepted by the controller.
	ConfiguredState
	// SynchronizingState indicates that periodic telemetry exchange is running.
	SynchronizingState
	// StoppedState is terminal; the session has been closed and cannot be reused.
	StoppedState
)

// IsDisconnected returns if the current state is disconnected.
func (st SessionState) IsDisconnected() bool { return st == DisconnectedState }

// IsSynchronizing returns if the current state is synchronizing.
func (st SessionState) IsSynchronizing() bool { return st == SynchronizingState }

// IsStopped returns if the current state is the terminal stopped state.
func (st SessionState) IsStopped() bool { return st == StoppedState }

// String returns string representation of the current state.
func (st SessionState) String() string {
	switch st {
	case DisconnectedState:
		return "disconnected"
	case ConnectedState:
		return "connected"
	case ConfiguredState:
		return "configured"
	case SynchronizingState:
		return "synchronizing"
	case StoppedState:
		return "stopped"
	default:
		return "unknown"
	}
}

// StateChangeHandler is a function type that represents a handler for session
// state changes.
//
// Note: the handler is invoked in blocking mode while the state lock is held.
// Take care with long-running implementations.
type StateChangeHandler func(prevState SessionState, newState SessionState)

// StateMgr manages the state of one RTDE session.
//
// It provides methods for managing state transitions and notifying listeners of
// state changes. The state transitions are safe for concurrent use, even though
// a session is normally driven by a single goroutine.
type StateMgr struct {
	mu       sync.Mutex
	state    atomic.Uint32
	logger   logger.Logger
	handlers []StateChangeHandler
}

// NewStateMgr creates a new StateMgr instance, initializing it to the
// DisconnectedState.
//
// It accepts optional StateChangeHandler functions that will be invoked when
// the session state changes.
func NewStateMgr(log logger.Logger, handlers ...StateChangeHandler) *StateMgr {
	if log == nil {
		log = logger.GetLogger()
	}

	mgr := &StateMgr{
		logger:   log,
		handlers: make([]StateChangeHandler, 0, len(handlers)),
	}
	mgr.handlers = append(mgr.handlers, handlers...)
	mgr.state.Store(uint32(DisconnectedState))

	return mgr
}

// State returns the current session state.
func (m *StateMgr) State() SessionState {
	return SessionState(m.state.Load())
}

// AddHandler adds one or more StateChangeHandler functions to be invoked on
// state changes.
func (m *StateMgr) AddHandler(handlers ...StateChangeHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, handlers...)
}

// ToConnected transitions to ConnectedState.
//
// Only allowed from DisconnectedState. If the state is already ConnectedState,
// the function is a no-op.
func (m *StateMgr) ToConnected() error {
	return m.transition(ConnectedState, DisconnectedState)
}

// ToConfigured transitions to ConfiguredState.
//
// Only allowed from ConnectedState, after the controller accepted the recipes.
func (m *StateMgr) ToConfigured() error {
	return m.transition(ConfiguredState, ConnectedState)
}

// ToSynchronizing transitions to SynchronizingState.
//
// Only allowed from ConfiguredState.
func (m *StateMgr) ToSynchronizing() error {
	return m.transition(SynchronizingState, ConfiguredState)
}

// ToDisconnected transitions back to DisconnectedState.
//
// This represents a transport drop or the disconnect leg of the
// configuration-conflict retry cycle. It is allowed from any state except the
// terminal StoppedState. If the state is already DisconnectedState, the
// function is a no-op.
func (m *StateMgr) ToDisconnected() error {
	return m.transition(DisconnectedState,
		ConnectedState, ConfiguredState, SynchronizingState)
}

// ToStopped transitions to the terminal StoppedState.
//
// This transition is allowed from every state and is the only way out of the
// state machine. It never fails; calling it on a stopped session is a no-op.
func (m *StateMgr) ToStopped() {
	m.mu.Lock()
	defer m.mu.Unlock()

	curState := m.State()
	if curState.IsStopped() {
		return
	}

	// change state before handlers run so observers see the terminal state
	m.setState(StoppedState)
	m.invokeHandlers(curState, StoppedState)
}

// transition moves to newState if the current state is one of the allowed
// states. A transition to the current state is a no-op.
func (m *StateMgr) transition(newState SessionState, allowed ...SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	curState := m.State()
	if curState == newState {
		return nil
	}

	ok := false
	for _, st := range allowed {
		if curState == st {
			ok = true
			break
		}
	}
	if !ok {
		m.logger.Debug("rejected session state transition",
			"cur_state", curState, "new_state", newState)
		return ErrInvalidTransition
	}

	m.invokeHandlers(curState, newState)
	// change state after all handlers finished
	m.setState(newState)

	return nil
}

// setState atomically sets the current state to newState.
func (m *StateMgr) setState(newState SessionState) {
	m.state.Store(uint32(newState))
}

// invokeHandlers invokes all registered StateChangeHandler functions with the
// previous and new states.
func (m *StateMgr) invokeHandlers(prevState SessionState, newState SessionState) {
	for _, handler := range m.handlers {
		if handler != nil {
			handler(prevState, newState)
		}
	}
}
