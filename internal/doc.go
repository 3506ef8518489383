// Package internal groups helpers private to authjwt.
//
//   - audit: async event dispatch to a Sink
//   - flows: pure orchestration of login, reissue, logout and the gate
//   - metrics: lock-free counters and the gate latency histogram
//   - rate: Redis-backed login and reissue throttling
package internal
