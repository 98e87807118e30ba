package server

import "errors"

// Domain errors surfaced by the store. Handlers map them to HTTP statuses
// and machine-readable kinds; anything unrecognized is reported as a
// generic internal error without leaking store details.
var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicateEmail   = errors.New("email already exists")
	ErrNotAvailable     = errors.New("book not available")
	ErrInvalidOwnership = errors.New("proposer does not own the offered book")
	ErrNotPending       = errors.New("request not pending")
	ErrOwnershipDrift   = errors.New("ownership changed since request - cannot accept")
	ErrValidation       = errors.New("invalid input")
)

func errKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, ErrNotAvailable):
		return "not_available"
	case errors.Is(err, ErrInvalidOwnership):
		return "invalid_ownership"
	case errors.Is(err, ErrNotPending):
		return "not_pending"
	case errors.Is(err, ErrOwnershipDrift):
		return "ownership_drift"
	case errors.Is(err, ErrValidation):
		return "validation"
	default:
		return "internal"
	}
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrDuplicateEmail),
		errors.Is(err, ErrNotAvailable),
		errors.Is(err, ErrInvalidOwnership),
		errors.Is(err, ErrNotPending),
		errors.Is(err, ErrOwnershipDrift),
		errors.Is(err, ErrValidation):
		return 400
	default:
		return 500
	}
}
