// Package rtde provides the session layer for the controller's real-time data
// exchange (RTDE) interface: joint-space data types, recipe definitions for the
// register-based synchronization channels, and a Session that owns the lifecycle
// of one negotiated transport connection.
//
// The wire transport itself is consumed through the Client interface; this
// package never touches the binary encoding of register values. A Session wraps
// a Client and layers the parts the transport does not give you:
//
//   - an explicit connection state machine
//     (Disconnected -> Connected -> Configured -> Synchronizing -> Stopped),
//   - bounded retry of recipe configuration when the controller reports that the
//     requested input registers are still claimed by a previous session,
//   - an idempotent, best-effort Close that is safe to call from every state and
//     from every failure path,
//   - atomic per-session metrics.
//
// Exactly one Session may be live per controller endpoint within a process; a
// second Session for the same host:port fails with ErrControllerBusy until the
// first one is closed.
//
// Session Establishment:
//   - Create a SessionConfig with NewSessionConfig() and the desired options.
//   - Create a Session with NewSession(), passing the transport Client.
//   - Call Open to connect, Configure to negotiate the state and setpoint
//     recipes, and Start to begin periodic synchronization.
//
// Session Termination:
//   - Call Close. It pauses synchronization and disconnects, suppressing and
//     logging any teardown failure so that a secondary error never masks the
//     condition that ended the run.
package rtde
