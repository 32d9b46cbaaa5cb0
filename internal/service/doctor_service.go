package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medibook/medibook-api/internal/domain/availability"
	"github.com/medibook/medibook-api/internal/domain/doctor"
	"github.com/medibook/medibook-api/pkg/metrics"
)

type DoctorService struct {
	repo     doctor.Repository
	slotRepo availability.Repository
	calendar *availability.Calendar
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewDoctorService(
	repo doctor.Repository,
	slotRepo availability.Repository,
	calendar *availability.Calendar,
	collector *metrics.Collector,
	log *zap.Logger,
) *DoctorService {
	return &DoctorService{repo: repo, slotRepo: slotRepo, calendar: calendar, metrics: collector, log: log}
}

// RegisterDoctor creates the doctor profile and materializes their bookable
// calendar over the configured horizon. The calendar is generated once, at
// provisioning time; there is no path to regenerate it later.
func (s *DoctorService) RegisterDoctor(ctx context.Context, cmd *doctor.CreateDoctorCommand) (*doctor.Doctor, int, error) {
	var missing []string
	if cmd.Name == "" {
		missing = append(missing, "name")
	}
	if cmd.Department == "" {
		missing = append(missing, "department")
	}
	if cmd.Email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return nil, 0, newValidationError(missing...)
	}

	d := &doctor.Doctor{
		Name:            cmd.Name,
		Department:      cmd.Department,
		ExperienceYears: cmd.ExperienceYears,
		Location:        cmd.Location,
		Email:           cmd.Email,
		Bio:             cmd.Bio,
		ImageURL:        cmd.ImageURL,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, 0, err
	}

	slots := s.calendar.Generate(d.ID, time.Now())
	if err := s.slotRepo.BulkCreate(ctx, slots); err != nil {
		s.log.Error("failed to materialize availability calendar",
			zap.String("doctor_id", d.ID.String()),
			zap.Error(err),
		)
		return nil, 0, fmt.Errorf("materializing calendar: %w", err)
	}

	if s.metrics != nil {
		s.metrics.SlotsGeneratedTotal.Add(float64(len(slots)))
	}
	s.log.Info("doctor provisioned",
		zap.String("doctor_id", d.ID.String()),
		zap.String("department", d.Department),
		zap.Int("slots_created", len(slots)),
	)

	return d, len(slots), nil
}

func (s *DoctorService) GetDoctor(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *DoctorService) ListDoctors(ctx context.Context, q *doctor.ListDoctorsQuery) (*doctor.PagedDoctors, error) {
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return s.repo.List(ctx, q)
}
