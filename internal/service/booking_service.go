package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medibook/medibook-api/internal/domain/appointment"
	"github.com/medibook/medibook-api/internal/domain/availability"
	"github.com/medibook/medibook-api/internal/domain/patient"
	"github.com/medibook/medibook-api/pkg/metrics"
)

// BookingService is the only path by which a patient converts an open slot
// into an appointment.
type BookingService struct {
	repo        appointment.Repository
	patientRepo patient.Repository
	auditSvc    *AuditService
	metrics     *metrics.Collector
	log         *zap.Logger
}

func NewBookingService(
	repo appointment.Repository,
	patientRepo patient.Repository,
	auditSvc *AuditService,
	collector *metrics.Collector,
	log *zap.Logger,
) *BookingService {
	return &BookingService{repo: repo, patientRepo: patientRepo, auditSvc: auditSvc, metrics: collector, log: log}
}

// Book validates the request and claims the slot atomically with the
// appointment insert. A lost race surfaces as availability.ErrSlotTaken;
// the caller re-fetches availability and picks another slot. No alternate
// slot is suggested.
func (s *BookingService) Book(ctx context.Context, cmd *appointment.BookCommand, ip string) (*appointment.Appointment, error) {
	var missing []string
	if cmd.PatientID == uuid.Nil {
		missing = append(missing, "patientId")
	}
	if cmd.DoctorID == uuid.Nil {
		missing = append(missing, "doctorId")
	}
	if cmd.Date.IsZero() {
		missing = append(missing, "date")
	}
	if cmd.TimeSlot == "" {
		missing = append(missing, "timeSlot")
	}
	if len(missing) > 0 {
		return nil, newValidationError(missing...)
	}
	if !availability.ValidTimeSlot(cmd.TimeSlot) {
		return nil, appointment.ErrInvalidTimeSlot
	}
	// A stale slot record may still exist for a past date; booking it makes
	// no sense regardless.
	if availability.NormalizeDate(cmd.Date).Before(availability.NormalizeDate(time.Now())) {
		return nil, appointment.ErrBookingInPast
	}

	p, err := s.patientRepo.GetByID(ctx, cmd.PatientID)
	if err != nil {
		return nil, fmt.Errorf("verifying patient: %w", err)
	}
	if !p.IsActive() {
		return nil, patient.ErrPatientInactive
	}

	apptType := cmd.Type
	if apptType == "" {
		apptType = appointment.DefaultType
	}

	a := &appointment.Appointment{
		PatientID: cmd.PatientID,
		DoctorID:  cmd.DoctorID,
		Date:      availability.NormalizeDate(cmd.Date),
		TimeSlot:  cmd.TimeSlot,
		Type:      apptType,
		Status:    appointment.StatusPending,
		Symptoms:  cmd.Symptoms,
	}

	if err := s.repo.Book(ctx, a); err != nil {
		if errors.Is(err, availability.ErrSlotTaken) {
			if s.metrics != nil {
				s.metrics.BookingConflictsTotal.Inc()
			}
			s.log.Info("booking conflict",
				zap.String("doctor_id", cmd.DoctorID.String()),
				zap.String("date", a.DateKey()),
				zap.String("time_slot", cmd.TimeSlot),
			)
			return nil, err
		}
		s.log.Error("failed to book appointment", zap.Error(err))
		return nil, fmt.Errorf("booking appointment: %w", err)
	}

	if s.metrics != nil {
		s.metrics.BookingsTotal.Inc()
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       cmd.PatientID,
		UserRole:     "patient",
		Action:       "create",
		ResourceType: "appointment",
		ResourceID:   a.ID.String(),
		IPAddress:    ip,
	})

	return a, nil
}
