package errs

import "errors"

// Sentinel errors shared by the reservation engine and the HTTP boundary.
var (
	// Expected, user-facing outcomes
	ErrSlotUnavailable = errors.New("slot no longer available")
	ErrSlotNotFound    = errors.New("slot not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrInvalidState    = errors.New("invalid booking state")
	ErrInvalidRequest  = errors.New("invalid request")

	// Idempotency errors
	ErrIdempotencyConflict   = errors.New("idempotency key reused with different request")
	ErrIdempotencyInProgress = errors.New("idempotency in progress")

	// Infrastructure
	ErrStoreUnavailable = errors.New("store unavailable")
)
