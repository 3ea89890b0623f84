package rtde

import "errors"

var (
	// ErrJointDimension indicates a joint vector with other than exactly
	// JointCount elements. Malformed telemetry is reported, never truncated.
	ErrJointDimension = errors.New("joint vector must contain exactly 6 elements")

	// ErrUnknownFieldType indicates a recipe field carries a type tag the
	// interface does not define.
	ErrUnknownFieldType = errors.New("unknown recipe field type")

	// ErrRecipeNotFound indicates the recipe configuration does not define the
	// requested recipe key.
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrEmptyRecipe indicates a recipe with no fields, or with mismatched
	// name and type lists.
	ErrEmptyRecipe = errors.New("recipe has no usable fields")
)

var (
	// ErrRegisterConflict indicates the controller rejected recipe
	// configuration because the requested input registers are still claimed by
	// a previous, not-yet-released session. This is the only transient,
	// retryable configuration failure; transport implementations must return
	// it for conflict-type rejections so the retry decision is a structural
	// match.
	ErrRegisterConflict = errors.New("input registers already in use by another client")

	// ErrConfigExhausted indicates recipe configuration kept hitting register
	// conflicts until the retry budget ran out.
	ErrConfigExhausted = errors.New("recipe configuration retry budget exhausted")
)

var (
	// ErrSessionConfigNil indicates a nil SessionConfig was provided.
	ErrSessionConfigNil = errors.New("session config is nil")

	// ErrClientNil indicates a nil transport Client was provided.
	ErrClientNil = errors.New("transport client is nil")

	// ErrInvalidTransition is returned when an attempt is made to transition
	// the session state to an invalid state.
	ErrInvalidTransition = errors.New("invalid session state transition")

	// ErrControllerBusy indicates another live Session in this process already
	// owns the controller endpoint.
	ErrControllerBusy = errors.New("another session is already live for this controller")

	// ErrSessionStopped indicates an operation on a session that has already
	// been closed.
	ErrSessionStopped = errors.New("session is stopped")

	// ErrNotSynchronizing indicates a telemetry or setpoint operation while
	// the session is not in the synchronizing state.
	ErrNotSynchronizing = errors.New("session is not synchronizing")

	// ErrNoSample indicates the transport yielded no telemetry sample.
	ErrNoSample = errors.New("no telemetry sample available")
)
