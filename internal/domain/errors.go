package domain

import "errors"

var (
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrSlotsExhausted         = errors.New("task slots exhausted")
	ErrTaskUnavailable        = errors.New("task unavailable")
	ErrDuplicateClaim         = errors.New("duplicate claim")
	ErrInvalidState           = errors.New("invalid state transition")
	ErrInvalidStep            = errors.New("invalid step")
	ErrAlreadyReviewed        = errors.New("already reviewed")
	ErrBelowMinimum           = errors.New("amount below minimum withdrawal")
	ErrNotFound               = errors.New("not found")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrForbidden              = errors.New("forbidden")
	ErrIdempotencyConflict    = errors.New("idempotency key reused with a different request")
	ErrInvalidInput           = errors.New("invalid input")
)
