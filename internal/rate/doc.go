// Package rate provides Redis-backed fixed-window counters that throttle login
// attempts per username and reissue attempts per subject.
//
// # Window semantics
//
// Fixed-window counters: INCR + EXPIRE on first hit. Key prefixes:
//   - rl:login:{username}: failed logins per username
//   - rl:reissue:{subject}: reissue calls per subject
//
// # What this package must NOT do
//
//   - Decide how a limited request is reported to clients.
//   - Be imported outside the authjwt module.
package rate
