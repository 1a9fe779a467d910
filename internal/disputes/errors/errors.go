package errors

import "errors"

var (
	ErrNotFound = errors.New("dispute not found")

	ErrInvalidID = errors.New("invalid dispute ID format")

	ErrStatusChanged = errors.New("dispute status changed concurrently")
)
