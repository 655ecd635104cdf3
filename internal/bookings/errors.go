package bookings

import "errors"

var (
	// ErrSlotConflict means another booking won the slot. Surfaced to
	// clients with the SLOT_CONFLICT error code.
	ErrSlotConflict = errors.New("bookings: slot already taken")

	// ErrBookingNotFound is returned when the booking id does not exist.
	ErrBookingNotFound = errors.New("bookings: booking not found")

	// ErrValidation wraps all request validation failures.
	ErrValidation = errors.New("bookings: invalid request")

	// ErrInvalidTransition is returned when a state change is not
	// allowed from the booking's current state.
	ErrInvalidTransition = errors.New("bookings: invalid state transition")
)

// SlotConflictCode is the machine-readable error code clients key retry
// behavior on.
const SlotConflictCode = "SLOT_CONFLICT"
