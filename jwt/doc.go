// Package jwt encodes and verifies the signed access and refresh tokens handed to clients.
//
// Every claim read goes through signature verification first; there is no accessor that
// returns claims from an unverified payload.
package jwt
