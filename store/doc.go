// Package store is the key-value layer under the session registry.
//
// # Failure taxonomy
//
// Every error returned by a [Store] wraps exactly one of [ErrNotFound],
// [ErrConnection], [ErrTimeout] or [ErrCommand]. Callers branch with errors.Is and
// never inspect driver errors directly.
//
// # Architecture boundaries
//
// This package knows nothing about tokens, sessions or key layout. It does not retry;
// retry policy belongs to the client configuration.
package store
