package errors

import "errors"

var (
	ErrNotFound = errors.New("business not found")

	ErrInvalidID = errors.New("invalid business ID format")
)
