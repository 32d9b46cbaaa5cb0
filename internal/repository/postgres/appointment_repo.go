package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medibook/medibook-api/internal/domain/appointment"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// Book claims the availability slot and inserts the appointment in one
// transaction. If the claim loses to a concurrent booking the transaction
// rolls back and availability.ErrSlotTaken is returned unchanged.
func (r *AppointmentRepository) Book(ctx context.Context, a *appointment.Appointment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := claimSlot(tx, a.DoctorID, a.Date, a.TimeSlot); err != nil {
			return err
		}
		a.Date = a.SlotDate()
		if err := tx.Create(a).Error; err != nil {
			return fmt.Errorf("creating appointment: %w", err)
		}
		return nil
	})
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appointment.ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching appointment: %w", err)
	}
	return &a, nil
}

// UpdateStatus is conditional on the status the transition started from,
// the same RowsAffected pattern that guards slot claims. A confirm racing a
// cancel cannot overwrite the cancelled row; the loser gets
// ErrInvalidStatusTransition.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, a *appointment.Appointment, from appointment.Status) error {
	res := r.db.WithContext(ctx).Model(a).
		Where("status = ?", from).
		Select("status", "confirmed_at", "completed_at").
		Updates(map[string]any{
			"status":       a.Status,
			"confirmed_at": a.ConfirmedAt,
			"completed_at": a.CompletedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("updating appointment status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return appointment.ErrInvalidStatusTransition
	}
	return nil
}

// CancelAndRelease writes the cancelled status and releases the slot in the
// same transaction, so the slot can never stay booked for a cancelled
// appointment or come free while its appointment remains live. The status
// write is conditional on the prior status; losing a race against another
// transition rolls the whole transaction back.
func (r *AppointmentRepository) CancelAndRelease(ctx context.Context, a *appointment.Appointment, from appointment.Status) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(a).
			Where("status = ?", from).
			Select("status", "cancelled_at", "cancellation_reason", "cancelled_by").
			Updates(map[string]any{
				"status":              a.Status,
				"cancelled_at":        a.CancelledAt,
				"cancellation_reason": a.CancellationReason,
				"cancelled_by":        a.CancelledBy,
			})
		if res.Error != nil {
			return fmt.Errorf("updating appointment status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return appointment.ErrInvalidStatusTransition
		}
		return releaseSlot(tx, a.DoctorID, a.Date, a.TimeSlot)
	})
}

func (r *AppointmentRepository) List(ctx context.Context, q *appointment.ListQuery) (*appointment.PagedAppointments, error) {
	db := r.db.WithContext(ctx).Model(&appointment.Appointment{})

	if q.PatientID != nil {
		db = db.Where("patient_id = ?", *q.PatientID)
	}
	if q.DoctorID != nil {
		db = db.Where("doctor_id = ?", *q.DoctorID)
	}
	if q.Status != nil {
		db = db.Where("status = ?", *q.Status)
	}
	if q.DateFrom != nil {
		db = db.Where("date >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		db = db.Where("date <= ?", *q.DateTo)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting appointments: %w", err)
	}

	var items []*appointment.Appointment
	offset := (q.Page - 1) * q.PageSize
	if err := db.Order("date ASC, time_slot ASC").
		Offset(offset).Limit(q.PageSize).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}

	pages := int((total + int64(q.PageSize) - 1) / int64(q.PageSize))
	return &appointment.PagedAppointments{
		Appointments: items,
		TotalCount:   total,
		Page:         q.Page,
		PageSize:     q.PageSize,
		TotalPages:   pages,
	}, nil
}
