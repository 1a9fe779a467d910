package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrVersionConflict means the booking changed since it was read.
	ErrVersionConflict = errors.New("booking was modified concurrently")

	ErrAlreadyReviewed = errors.New("booking already has a review")

	ErrNotCompleted = errors.New("booking is not completed")

	ErrDisputeExists = errors.New("booking already has a dispute")
)
