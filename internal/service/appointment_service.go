package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medibook/medibook-api/internal/domain"
	"github.com/medibook/medibook-api/internal/domain/appointment"
	"github.com/medibook/medibook-api/pkg/metrics"
)

// AppointmentService drives an appointment through its lifecycle:
// PENDING → CONFIRMED → COMPLETED, with CANCELLED reachable from PENDING
// or CONFIRMED only.
type AppointmentService struct {
	repo     appointment.Repository
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewAppointmentService(
	repo appointment.Repository,
	auditSvc *AuditService,
	collector *metrics.Collector,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{repo: repo, auditSvc: auditSvc, metrics: collector, log: log}
}

func (s *AppointmentService) GetAppointment(ctx context.Context, id uuid.UUID, caller *domain.Claims) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Patients can only see their own appointments.
	if caller != nil && caller.Role == domain.RolePatient {
		if caller.PatientID == nil || *caller.PatientID != a.PatientID {
			return nil, ErrForbidden
		}
	}

	return a, nil
}

// ConfirmAppointment is doctor-initiated acceptance; no other record changes.
func (s *AppointmentService) ConfirmAppointment(ctx context.Context, id uuid.UUID, caller *domain.Claims, ip string) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := a.Status
	if err := a.Confirm(); err != nil {
		return nil, err
	}
	// Conditional on the status we read; a cancel that landed in between
	// wins and this confirm fails instead of resurrecting the appointment.
	if err := s.repo.UpdateStatus(ctx, a, from); err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}

	s.recordTransition(ctx, a, caller, ip)
	return a, nil
}

// CompleteAppointment closes out the consultation. The five-stage workflow
// is advisory: completion is never blocked on tests or prescriptions.
func (s *AppointmentService) CompleteAppointment(ctx context.Context, id uuid.UUID, caller *domain.Claims, ip string) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := a.Status
	if err := a.Complete(); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, a, from); err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}

	s.recordTransition(ctx, a, caller, ip)
	return a, nil
}

// CancelAppointment releases the underlying slot in the same transaction as
// the status write, so the slot becomes bookable again exactly when the
// cancellation lands.
func (s *AppointmentService) CancelAppointment(ctx context.Context, id uuid.UUID, cmd *appointment.CancelCommand, caller *domain.Claims, ip string) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if caller != nil && caller.Role == domain.RolePatient {
		if caller.PatientID == nil || *caller.PatientID != a.PatientID {
			return nil, ErrForbidden
		}
	}

	from := a.Status
	if err := a.Cancel(cmd.Reason, cmd.CancelledBy); err != nil {
		return nil, err
	}
	if err := s.repo.CancelAndRelease(ctx, a, from); err != nil {
		return nil, fmt.Errorf("cancelling appointment: %w", err)
	}

	s.recordTransition(ctx, a, caller, ip)
	return a, nil
}

func (s *AppointmentService) ListAppointments(ctx context.Context, q *appointment.ListQuery, caller *domain.Claims) (*appointment.PagedAppointments, error) {
	if caller != nil && caller.Role == domain.RolePatient && caller.PatientID != nil {
		q.PatientID = caller.PatientID
	}
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return s.repo.List(ctx, q)
}

func (s *AppointmentService) recordTransition(ctx context.Context, a *appointment.Appointment, caller *domain.Claims, ip string) {
	if s.metrics != nil {
		s.metrics.AppointmentsTotal.WithLabelValues(string(a.Status)).Inc()
	}

	entry := AuditEntry{
		Action:       "update",
		ResourceType: "appointment",
		ResourceID:   a.ID.String(),
		IPAddress:    ip,
		Changes:      fmt.Sprintf(`{"status":%q}`, a.Status),
	}
	if caller != nil {
		entry.UserID = caller.UserID
		entry.UserRole = string(caller.Role)
	}
	s.auditSvc.LogAsync(ctx, entry)
}
