package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrLockHeld is returned when another request holds the slot lock.
	ErrLockHeld = errors.New("slot lock already held")

	ErrSlotTaken = errors.New("requested slots are already booked")
)
