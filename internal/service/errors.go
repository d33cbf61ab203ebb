package service

import "errors"

// Error taxonomy for the two public operations. Messages are the exact
// client-facing strings; anything not in this list is surfaced as an opaque
// internal error with detail kept server-side.
var (
	// ErrInvalidUrn means the caller presented no known pseudo-identity.
	ErrInvalidUrn = errors.New("Invalid URN")

	// ErrRateLimited means an attempt budget is exhausted; the guarded
	// operation was not performed.
	ErrRateLimited = errors.New("Too many requests. Please try again later.")

	ErrNotFound       = errors.New("Share not found or has been deleted")
	ErrExpired        = errors.New("This share has expired")
	ErrQuotaExhausted = errors.New("Maximum access count reached")
	ErrWrongPassword  = errors.New("Incorrect password")

	ErrPayloadTooLarge = errors.New("Payload exceeds the maximum allowed size")

	// ErrUnsupportedScheme marks records encrypted under a retired scheme;
	// they are permanently unreadable.
	ErrUnsupportedScheme = errors.New("This share uses a retired encryption format")

	// ErrCorruptedRecord means decryption failed after the password verifier
	// matched, or the plaintext failed decompression. This indicates a
	// data-integrity bug, never a wrong password.
	ErrCorruptedRecord = errors.New("internal error")
)

// ValidationError carries a caller-safe message about bad input shape or
// policy bounds.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationError(msg string) error {
	return &ValidationError{Message: msg}
}
