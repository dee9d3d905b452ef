package errors

import "errors"

var (
	ErrNotFound = errors.New("appointment not found")

	ErrInvalidID = errors.New("invalid appointment ID format")

	ErrTimeConflict = errors.New("appointment time conflicts with existing appointment")

	ErrInvalidTimeRange = errors.New("end time must be after start time")
)
