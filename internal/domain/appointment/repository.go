package appointment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Book claims the matching availability slot and inserts the appointment
	// in one atomic unit. Returns availability.ErrSlotTaken when the slot is
	// missing or was concurrently claimed; nothing is persisted in that case.
	Book(ctx context.Context, a *Appointment) error

	// GetByID retrieves an appointment. Returns ErrAppointmentNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// UpdateStatus persists a status change that has no slot side effect
	// (confirm, complete). The write is conditional on the row still holding
	// the status the transition started from; a concurrent transition that
	// landed first surfaces as ErrInvalidStatusTransition and nothing is
	// written.
	UpdateStatus(ctx context.Context, a *Appointment, from Status) error

	// CancelAndRelease persists the cancelled status and releases the
	// underlying slot in one transaction, never as two independent writes.
	// Conditional on the prior status like UpdateStatus.
	CancelAndRelease(ctx context.Context, a *Appointment, from Status) error

	List(ctx context.Context, q *ListQuery) (*PagedAppointments, error)
}
