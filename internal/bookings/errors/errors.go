package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrDuplicateID = errors.New("booking id already exists")

	ErrInvalidTimeRange = errors.New("end time must be after start time")
)
