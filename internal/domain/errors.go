package domain

import "errors"

var (
	// ErrValidation indicates malformed or out-of-bound caller input.
	ErrValidation = errors.New("validation failed")
	// ErrUnknownReason indicates a report reason outside the closed reason set.
	ErrUnknownReason = errors.New("unknown report reason")
	// ErrInvalidWindow indicates a boost window whose expiration is not after its activation.
	ErrInvalidWindow = errors.New("invalid boost window")
	// ErrInvalidTimestamp indicates a missing or unparseable timestamp.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	// ErrNotFound indicates that a listing, window or report does not exist.
	ErrNotFound = errors.New("entity not found")
	// ErrForbidden indicates that the caller may not perform the action.
	ErrForbidden = errors.New("action forbidden")
	// ErrConflict indicates that stored state changed after it was loaded.
	ErrConflict = errors.New("concurrent modification")
	// ErrRepository indicates a generic data persistence error.
	ErrRepository = errors.New("repository error")
)
