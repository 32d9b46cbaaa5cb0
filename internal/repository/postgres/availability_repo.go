package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medibook/medibook-api/internal/domain/availability"
)

type AvailabilityRepository struct {
	db *gorm.DB
}

func NewAvailabilityRepository(db *gorm.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

func (r *AvailabilityRepository) BulkCreate(ctx context.Context, slots []*availability.Slot) error {
	if len(slots) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(slots, 500).Error; err != nil {
		return fmt.Errorf("inserting availability slots: %w", err)
	}
	return nil
}

func (r *AvailabilityRepository) ListOpen(ctx context.Context, doctorID uuid.UUID) (map[string][]string, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&availability.Slot{}).
		Where("doctor_id = ?", doctorID).
		Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting slots: %w", err)
	}
	// Zero slot records means the doctor was never provisioned. A fully
	// booked doctor still gets an empty map below.
	if total == 0 {
		return nil, availability.ErrNoAvailability
	}

	var slots []*availability.Slot
	if err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND is_booked = ?", doctorID, false).
		Order("date ASC, time_slot ASC").
		Find(&slots).Error; err != nil {
		return nil, fmt.Errorf("listing open slots: %w", err)
	}

	grouped := make(map[string][]string, len(slots))
	for _, s := range slots {
		key := s.DateKey()
		grouped[key] = append(grouped[key], s.TimeSlot)
	}
	return grouped, nil
}

func (r *AvailabilityRepository) Claim(ctx context.Context, doctorID uuid.UUID, date time.Time, timeSlot string) error {
	return claimSlot(r.db.WithContext(ctx), doctorID, date, timeSlot)
}

func (r *AvailabilityRepository) Release(ctx context.Context, doctorID uuid.UUID, date time.Time, timeSlot string) error {
	return releaseSlot(r.db.WithContext(ctx), doctorID, date, timeSlot)
}

// claimSlot is the single conditional update guarding against double
// booking: the is_booked = false predicate means two concurrent claims for
// the same slot cannot both report a row affected.
func claimSlot(tx *gorm.DB, doctorID uuid.UUID, date time.Time, timeSlot string) error {
	res := tx.Model(&availability.Slot{}).
		Where("doctor_id = ? AND date = ? AND time_slot = ? AND is_booked = ?",
			doctorID, availability.NormalizeDate(date), timeSlot, false).
		Update("is_booked", true)
	if res.Error != nil {
		return fmt.Errorf("claiming slot: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return availability.ErrSlotTaken
	}
	return nil
}

// releaseSlot un-books a slot. Releasing a slot that is already open (or
// absent) is a no-op, keeping cancellation idempotent.
func releaseSlot(tx *gorm.DB, doctorID uuid.UUID, date time.Time, timeSlot string) error {
	res := tx.Model(&availability.Slot{}).
		Where("doctor_id = ? AND date = ? AND time_slot = ?",
			doctorID, availability.NormalizeDate(date), timeSlot).
		Update("is_booked", false)
	if res.Error != nil {
		return fmt.Errorf("releasing slot: %w", res.Error)
	}
	return nil
}
