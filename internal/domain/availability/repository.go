package availability

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// BulkCreate inserts generated slots for a doctor.
	BulkCreate(ctx context.Context, slots []*Slot) error

	// ListOpen returns only unbooked slots grouped by date key, each group
	// sorted ascending by time slot. Returns ErrNoAvailability when the
	// doctor has zero slot records; a fully booked doctor gets an empty map.
	ListOpen(ctx context.Context, doctorID uuid.UUID) (map[string][]string, error)

	// Claim atomically flips is_booked from false to true. It is a single
	// conditional update so two concurrent claims for the same slot cannot
	// both succeed. Returns ErrSlotTaken when the slot is missing or booked.
	Claim(ctx context.Context, doctorID uuid.UUID, date time.Time, timeSlot string) error

	// Release marks the slot unbooked again. Idempotent.
	Release(ctx context.Context, doctorID uuid.UUID, date time.Time, timeSlot string) error
}
