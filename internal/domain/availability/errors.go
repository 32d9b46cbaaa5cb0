package availability

import "errors"

var (
	// ErrNoAvailability means the doctor has no slot records at all. A doctor
	// whose slots are all booked gets an empty result, not this error.
	ErrNoAvailability = errors.New("no availability found for this doctor")

	// ErrSlotTaken covers both "slot does not exist" and "slot already
	// booked": either way the caller must re-fetch availability and retry
	// with a different slot.
	ErrSlotTaken = errors.New("time slot is already booked or does not exist")
)
