package errors

import "errors"

var (
	ErrNotFound = errors.New("payment not found")

	ErrInvalidID = errors.New("invalid payment ID format")

	// ErrDuplicate is returned when the booking already has a payment.
	ErrDuplicate = errors.New("booking already has a payment")
)
