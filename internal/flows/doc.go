// Package flows contains pure-function orchestrators for every Engine operation.
//
// Each flow function (RunLogin, RunReissue, RunLogout, RunGate) accepts a typed
// dependency struct and returns a result struct carrying either the success payload
// or a classified failure. The root package maps failures to error kinds, metrics
// and audit events.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the token codec, session registry and rate
// limiter. They do NOT own any of these resources; ownership stays with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import authjwt (to avoid import cycles).
//   - Perform I/O directly. All I/O is mediated through dependency interfaces.
package flows
