package service

import "errors"

var (
	// ErrServiceDisabled is returned by Submit while the booking gate is off.
	ErrServiceDisabled = errors.New("reservation service is disabled")
	// ErrNotFound is returned when a reservation, apartment or category does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidStatus is returned for a status outside the reservation lifecycle.
	ErrInvalidStatus = errors.New("invalid reservation status")
)
