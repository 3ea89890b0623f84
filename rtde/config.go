package rtde

import (
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/motionlink/go-rtde/logger"
)

// SessionConfig represents the configuration parameters for one RTDE session.
// It is immutable after construction; every knob that used to be an ambient
// constant in operator scripts (retry budget, conflict grace interval) is an
// explicit field here.
type SessionConfig struct {
	// host specifies the host of the robot controller.
	host string

	// port specifies the TCP port of the controller's RTDE interface.
	port int

	// retryBudget is the maximum number of recipe configuration attempts when
	// the controller keeps reporting a register conflict.
	// Defaults to 3.
	retryBudget int

	// conflictGrace is the fixed interval to wait after disconnecting on a
	// register conflict, giving the controller time to release the registers.
	// The wait is fixed rather than exponential: register release is a bounded
	// controller-side timer, not a congestion condition.
	// Defaults to 2 seconds.
	conflictGrace time.Duration

	// connectTimeout bounds each transport connect attempt.
	// Defaults to 3 seconds.
	connectTimeout time.Duration

	// receiveTimeout bounds one telemetry receive. The control cycle is a few
	// milliseconds, so a transport that produces nothing for this long is dead.
	// Defaults to 2 seconds.
	receiveTimeout time.Duration

	// closeTimeout bounds the pause request during teardown.
	// Defaults to 3 seconds.
	closeTimeout time.Duration

	// logger provides a logger instance for session events and errors.
	logger logger.Logger
}

// NewSessionConfig creates a session configuration with the given controller
// host, port number, and optional functional options.
//
// It initializes a SessionConfig with default values and then applies the
// provided options to customize the configuration.
//
// Returns a pointer to the initialized SessionConfig and an error if any
// occurred during the configuration process.
func NewSessionConfig(host string, port int, opts ...SessionOption) (*SessionConfig, error) {
	cfg := &SessionConfig{
		retryBudget:    3,
		conflictGrace:  2 * time.Second,
		connectTimeout: 3 * time.Second,
		receiveTimeout: 2 * time.Second,
		closeTimeout:   3 * time.Second,
		logger:         logger.GetLogger(),
	}

	if err := withHost(host).apply(cfg); err != nil {
		return cfg, err
	}

	if err := withPort(port).apply(cfg); err != nil {
		return cfg, err
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// Host returns the controller host.
func (cfg *SessionConfig) Host() string { return cfg.host }

// Port returns the controller RTDE port.
func (cfg *SessionConfig) Port() int { return cfg.port }

// Endpoint returns the controller endpoint as "host:port".
func (cfg *SessionConfig) Endpoint() string {
	return net.JoinHostPort(cfg.host, strconv.Itoa(cfg.port))
}

// RetryBudget returns the maximum number of recipe configuration attempts.
func (cfg *SessionConfig) RetryBudget() int { return cfg.retryBudget }

// ConflictGrace returns the fixed wait between conflict retries.
func (cfg *SessionConfig) ConflictGrace() time.Duration { return cfg.conflictGrace }

// ConnectTimeout returns the per-attempt connect timeout.
func (cfg *SessionConfig) ConnectTimeout() time.Duration { return cfg.connectTimeout }

// ReceiveTimeout returns the per-sample receive timeout.
func (cfg *SessionConfig) ReceiveTimeout() time.Duration { return cfg.receiveTimeout }

// CloseTimeout returns the teardown pause timeout.
func (cfg *SessionConfig) CloseTimeout() time.Duration { return cfg.closeTimeout }

// Logger returns the configured logger.
func (cfg *SessionConfig) Logger() logger.Logger { return cfg.logger }

// SessionOption represents a functional option for configuring a SessionConfig.
type SessionOption interface {
	apply(*SessionConfig) error
}

type sessionOptFunc struct {
	name      string
	applyFunc func(*SessionConfig) error
}

func (o *sessionOptFunc) apply(cfg *SessionConfig) error { return o.applyFunc(cfg) }

func newSessionOptFunc(name string, f func(*SessionConfig) error) *sessionOptFunc {
	return &sessionOptFunc{name: name, applyFunc: f}
}

// withHost sets the controller host. It accepts an IP address or a hostname.
func withHost(host string) SessionOption {
	return newSessionOptFunc("withHost", func(cfg *SessionConfig) error {
		if cfg == nil {
			return ErrSessionConfigNil
		}

		if host == "" {
			return errors.New("controller host is empty")
		}

		if ip := net.ParseIP(host); ip != nil {
			cfg.host = host
			return nil
		}

		// hostname; resolution is deferred to the transport
		cfg.host = host

		return nil
	})
}

// withPort sets the controller RTDE port. It should be between 1 and 65535.
func withPort(port int) SessionOption {
	return newSessionOptFunc("withPort", func(cfg *SessionConfig) error {
		if cfg == nil {
			return ErrSessionConfigNil
		}

		if port < 1 || port > 65535 {
			return errors.New("invalid port, should be in range of [1, 65535]")
		}
		cfg.port = port

		return nil
	})
}

// WithRetryBudget sets the maximum number of recipe configuration attempts on
// register conflicts. It should be at least 1.
func WithRetryBudget(budget int) SessionOption {
	return newSessionOptFunc("WithRetryBudget", func(cfg *SessionConfig) error {
		if cfg == nil {
			return ErrSessionConfigNil
		}

		if budget < 1 {
			return errors.New("retry budget should be at least 1")
		}
		cfg.retryBudget = budget

		return nil
	})
}

// WithConflictGrace sets the fixed wait after a register-conflict disconnect.
// It should be positive.
func WithConflictGrace(grace time.Duration) SessionOption {
	return newSessionOptFunc("WithConflictGrace", func(cfg *SessionConfig) error {
		if cfg == nil {
			return ErrSessionConfigNil
		}

		if grace <= 0 {
			return errors.New("conflict grace interval should be positive")
		}
		cfg.conflictGrace = grace

		return nil
	})
}

// WithConnectTimeout sets the timeout for one transport connect attempt.
// It should be between 1 and 30 seconds.
func WithConnectTimeout(timeout time.Duration) SessionOption {
	return newSessionOptFunc("WithConnectTimeout", func(cfg *SessionConfig) error {
		if cfg == nil {
			return ErrSessionConfigNil
		}

		if timeout < 1*time.Second || timeout > 30*time.Second {
			return errors.New("connect timeout should be between 1 and 30 seconds")
		}
		cfg.connectTimeout = timeout

		return nil
	})
}

// WithReceiveTimeout sets the timeout for one telemetry receive.
// It should be positive.
func WithReceiveTimeout(timeout time.Duration) SessionOption {
	return newSessionOptFunc("WithReceiveTimeout", func(cfg *SessionConfig) error {
		if cfg == nil {
			return ErrSessionConfigNil
		}

		if timeout <= 0 {
			return errors.New("receive timeout should be positive")
		}
		cfg.receiveTimeout = timeout

		return nil
	})
}

// WithCloseTimeout sets the timeout for the teardown pause request.
// It should be between 1 and 30 seconds.
func WithCloseTimeout(timeout time.Duration) SessionOption {
	return newSessionOptFunc("WithCloseTimeout", func(cfg *SessionConfig) error {
		if cfg == nil {
			return ErrSessionConfigNil
		}

		if timeout < 1*time.Second || timeout > 30*time.Second {
			return errors.New("close timeout should be between 1 and 30 seconds")
		}
		cfg.closeTimeout = timeout

		return nil
	})
}

// WithLogger sets the logger instance for the session.
func WithLogger(log logger.Logger) SessionOption {
	return newSessionOptFunc("WithLogger", func(cfg *SessionConfig) error {
		if cfg == nil {
			return ErrSessionConfigNil
		}

		if log == nil {
			return errors.New("logger is nil")
		}
		cfg.logger = log

		return nil
	})
}
