package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medibook/medibook-api/internal/domain/availability"
)

type AvailabilityService struct {
	repo availability.Repository
	log  *zap.Logger
}

func NewAvailabilityService(repo availability.Repository, log *zap.Logger) *AvailabilityService {
	return &AvailabilityService{repo: repo, log: log}
}

// ListAvailability returns the doctor's open slots grouped by date, sorted
// ascending by date and by slot within each date. A doctor with no slot
// records at all yields availability.ErrNoAvailability; a doctor whose
// calendar is fully booked yields an empty map.
func (s *AvailabilityService) ListAvailability(ctx context.Context, doctorID uuid.UUID) (map[string][]string, error) {
	if doctorID == uuid.Nil {
		return nil, newValidationError("doctorId")
	}
	return s.repo.ListOpen(ctx, doctorID)
}
