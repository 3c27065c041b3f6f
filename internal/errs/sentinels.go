// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across store/workflow/gateway layers.
var (
	// ErrValidation indicates user-correctable bad input; workflows re-prompt
	// at the current step without clearing state.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized indicates a missing capability or an actor/button mismatch.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired indicates a pending record that was already consumed,
	// superseded, or never existed under the given key.
	ErrExpired = errors.New("pending record expired or unknown")

	// ErrResolution indicates a name-service or token-lookup failure.
	ErrResolution = errors.New("resolution failed")

	// ErrSimulation indicates a dry-run revert; nothing was submitted on-chain.
	ErrSimulation = errors.New("simulation reverted")

	// ErrSubmission indicates a failure at or after the state-changing call;
	// on-chain state must be assumed possibly pending.
	ErrSubmission = errors.New("submission failed")

	// ErrPersistence indicates a durable write failure. The in-memory mutation
	// may already have happened; callers must not report success.
	ErrPersistence = errors.New("persistence failed")
)
