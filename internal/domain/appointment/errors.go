package appointment

import "errors"

var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrInvalidStatusTransition = errors.New("action not permitted in current appointment state")
	ErrInvalidTimeSlot         = errors.New("time slot must be a HH:MM time of day")
	ErrBookingInPast           = errors.New("cannot book an appointment in the past")
)
