package motion

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Envelope is the set of configured safety bounds every commanded movement must
// satisfy before dispatch. It is immutable for the duration of a run.
type Envelope struct {
	// MaxJointDelta is the maximum allowed movement per joint per step, in
	// radians.
	MaxJointDelta float64 `yaml:"max_joint_delta"`
	// MaxVelocity is the maximum joint velocity in rad/s.
	MaxVelocity float64 `yaml:"max_velocity"`
	// MaxAcceleration is the maximum joint acceleration in rad/s^2.
	MaxAcceleration float64 `yaml:"max_acceleration"`
	// MovementTimeout is the maximum wall-clock time to wait for one movement
	// to settle.
	MovementTimeout time.Duration `yaml:"movement_timeout"`
}

// DefaultEnvelope returns the conservative bounds used for incremental test
// movements: ~2.9 degrees per joint, very slow velocity, 10s settle timeout.
func DefaultEnvelope() Envelope {
	return Envelope{
		MaxJointDelta:   0.05,
		MaxVelocity:     0.1,
		MaxAcceleration: 0.5,
		MovementTimeout: 10 * time.Second,
	}
}

// Validate reports whether every bound is positive.
func (e Envelope) Validate() error {
	if e.MaxJointDelta <= 0 {
		return errors.New("envelope: max joint delta must be positive")
	}
	if e.MaxVelocity <= 0 {
		return errors.New("envelope: max velocity must be positive")
	}
	if e.MaxAcceleration <= 0 {
		return errors.New("envelope: max acceleration must be positive")
	}
	if e.MovementTimeout <= 0 {
		return errors.New("envelope: movement timeout must be positive")
	}

	return nil
}

// UnmarshalYAML decodes an envelope, accepting Go duration strings such as
// "10s" for the movement timeout.
func (e *Envelope) UnmarshalYAML(value *yaml.Node) error {
	type rawEnvelope struct {
		MaxJointDelta   *float64 `yaml:"max_joint_delta"`
		MaxVelocity     *float64 `yaml:"max_velocity"`
		MaxAcceleration *float64 `yaml:"max_acceleration"`
		MovementTimeout string   `yaml:"movement_timeout"`
	}

	raw := rawEnvelope{}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.MaxJointDelta != nil {
		e.MaxJointDelta = *raw.MaxJointDelta
	}
	if raw.MaxVelocity != nil {
		e.MaxVelocity = *raw.MaxVelocity
	}
	if raw.MaxAcceleration != nil {
		e.MaxAcceleration = *raw.MaxAcceleration
	}

	if raw.MovementTimeout != "" {
		d, err := time.ParseDuration(raw.MovementTimeout)
		if err != nil {
			return fmt.Errorf("envelope: movement timeout: %w", err)
		}
		e.MovementTimeout = d
	}

	return nil
}

// LoadEnvelope reads a YAML envelope file. Fields missing from the file keep
// their default values.
func LoadEnvelope(path string) (Envelope, error) {
	env := DefaultEnvelope()

	data, err := os.ReadFile(path)
	if err != nil {
		return env, fmt.Errorf("read envelope config: %w", err)
	}

	if err := yaml.Unmarshal(data, &env); err != nil {
		return env, fmt.Errorf("parse envelope config: %w", err)
	}
	if err := env.Validate(); err != nil {
		return env, err
	}

	return env, nil
}
