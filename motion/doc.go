// Package motion orchestrates a safety-bounded, incremental motion test against
// a live controller session.
//
// The package is built from three small pieces and one coordinator:
//
//   - Validate checks a proposed joint-space target against a per-joint delta
//     bound. Pure and stateless; every movement is validated against the
//     immediately preceding position so chained movements are each individually
//     bounded.
//   - AwaitSettled polls live telemetry at a fixed cadence and decides, via a
//     joint-velocity threshold, whether motion has settled. The controller
//     offers no completion acknowledgement; stillness is the proxy.
//   - Envelope carries the configured safety bounds. It is set once per run and
//     never mutated.
//   - Orchestrator sequences a full run: confirmation, session bring-up,
//     reference read, per-target validate/send/settle, and guaranteed teardown
//     on every exit path including operator abort.
//
// Runs report a tagged RunResult rather than a bare error, so callers can
// distinguish a safety rejection from a transport loss from a timeout without
// string inspection.
package motion
