// Package middleware exposes HTTP adapters for the authjwt authentication gate,
// for net/http and for Echo, plus the refresh-token cookie transport and the JSON
// response envelope used for every error.
//
// # Gates
//
//   - [Gate] / [EchoGate]: anonymous requests pass through, bearer requests are
//     authenticated or rejected.
//   - [Guard] / [EchoGuard]: like Gate, but anonymous requests are rejected too.
//
// Both read the Authorization header, call Engine.Authenticate, and bind the
// principal into the request context for [PrincipalFromContext].
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT implement
// authentication logic itself; every decision is delegated to the engine.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly.
//   - Access Redis.
//   - Choose status codes by itself; they come from authjwt.KindOf.
package middleware
