package errors

import "errors"

var (
	ErrNotFound = errors.New("blocked time not found")

	ErrInvalidID = errors.New("invalid blocked time ID format")

	ErrOverlap = errors.New("blocked time overlaps an existing blocked range")
)
