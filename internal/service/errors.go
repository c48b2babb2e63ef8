package service

import "errors"

// Typed operation errors. Callers match with errors.Is and map them to
// whatever surface they serve (HTTP status, socket close, ...). None of
// them are retryable.
var (
	// ErrForbidden means a role or day-status gate failed.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means a referenced entity does not resolve or does not
	// belong to the caller.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput means malformed input, rejected before any write.
	ErrInvalidInput = errors.New("invalid input")
)
