// Package session owns the refresh-record and access-token blacklist key spaces in the
// token store.
//
// # Key layout
//
//	refresh:{subject}:{tokenId}  → encoded RefreshRecord, TTL = refresh lifetime
//	blacklist:{rawAccessToken}   → "revoked", TTL = token's remaining lifetime
//
// # Binary encoding
//
// Refresh records are stored in a compact versioned binary format. Decoding rejects
// unknown versions, truncated input and trailing bytes.
//
// # Architecture boundaries
//
// This package does NOT parse or sign tokens and does not decide whether a presented
// token is acceptable; callers pass already-verified subject and token id values.
//
// # What this package must NOT do
//
//   - Import the root package, jwt, or middleware (no upward imports).
//   - Mutate a refresh record in place. Rotation always writes a new key.
//   - Swallow store failures.
package session
