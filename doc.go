// Package authjwt is a stateless-token authentication engine with server-side
// revocation. It issues short-lived access tokens and longer-lived refresh tokens
// signed with HS256, keeps one refresh record per issued pair in Redis, rotates the
// pair on every reissue, and blacklists access tokens on logout.
//
// Engine methods are safe to call from multiple goroutines after initialization
// through [Builder.Build].
//
// # Architecture boundaries
//
// authjwt is the public surface. It exposes [Engine], [Builder], [Config], the
// collaborator interfaces [Authenticator] and [UserLookup], and the error
// classification [Kind]. Flow orchestration lives in internal/flows, token signing in
// jwt, the refresh record and blacklist layout in session, and Redis access in store.
// HTTP adapters live in middleware.
//
// # What this package must NOT do
//
//   - Trust a subject or token id that did not come from a verified token.
//   - Keep cross-request mutable state in memory beyond metrics counters and the
//     audit queue.
//   - Retry store operations; a failed store call surfaces as a store [Kind].
//   - Import any sub-package that re-imports authjwt (no import cycles).
//
// # Performance contract
//
// [Engine.Authenticate] is the hot path: one signature check and one EXISTS round
// trip, plus one user lookup. With throttling disabled Login writes one key, Logout
// makes two store calls, and Reissue reads the record then swaps it in one script
// call (a cold script cache adds one EVAL).
package authjwt
