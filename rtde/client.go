package rtde

import (
	"context"
	"fmt"
)

// Version identifies the remote controller software. Diagnostic only.
type Version struct {
	Major  int
	Minor  int
	Bugfix int
	Build  int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Bugfix, v.Build)
}

// InputChannel is the opaque handle returned by a successful input recipe
// negotiation. Setpoints are dispatched through it; the session layer never
// inspects the recipe id beyond passing it back to the transport.
type InputChannel struct {
	// RecipeID is the identifier the controller assigned to the input recipe.
	RecipeID uint8
	// Names are the negotiated input field names, in recipe order.
	Names []string
}

// Client is the transport the session layer drives. Implementations own the
// wire protocol (connection handshake, capability negotiation, binary register
// encoding); the session layer treats them as a black box.
//
// Configure must return an error wrapping ErrRegisterConflict when the
// controller rejects the setup because the requested registers are still
// claimed by a prior session. All other rejections are treated as terminal.
type Client interface {
	// Connect establishes the transport connection and negotiates the protocol
	// version with the controller.
	Connect(ctx context.Context) error

	// Disconnect tears the transport connection down. Safe to call when not
	// connected.
	Disconnect() error

	// Pause stops periodic synchronization on the controller side.
	Pause(ctx context.Context) error

	// Configure registers the output (telemetry) and input (setpoint) recipes
	// with the controller and returns the negotiated input channel.
	Configure(ctx context.Context, state Recipe, setpoint Recipe) (InputChannel, error)

	// Start begins periodic telemetry exchange for the configured recipes.
	Start(ctx context.Context) error

	// Receive blocks for one telemetry sample. A dead transport must return an
	// error rather than blocking forever.
	Receive(ctx context.Context) (*TelemetrySample, error)

	// Send writes one joint-space setpoint to the negotiated input channel.
	Send(ch InputChannel, target JointVector) error

	// ControllerVersion reports the version negotiated during Connect.
	ControllerVersion() Version
}
