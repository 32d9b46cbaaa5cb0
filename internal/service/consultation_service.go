package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medibook/medibook-api/internal/domain/appointment"
	"github.com/medibook/medibook-api/internal/domain/labtest"
	"github.com/medibook/medibook-api/internal/domain/prescription"
	"github.com/medibook/medibook-api/internal/domain/report"
	"github.com/medibook/medibook-api/pkg/metrics"
)

// ConsultationService covers the records a doctor produces while working an
// appointment: test requests, result reports, and prescriptions. The five
// consultation stages are a checklist for the caller, not sub-states of the
// appointment lifecycle; nothing here gates a status transition.
type ConsultationService struct {
	testRepo labtest.Repository
	repRepo  report.Repository
	rxRepo   prescription.Repository
	apptRepo appointment.Repository
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewConsultationService(
	testRepo labtest.Repository,
	repRepo report.Repository,
	rxRepo prescription.Repository,
	apptRepo appointment.Repository,
	collector *metrics.Collector,
	log *zap.Logger,
) *ConsultationService {
	return &ConsultationService{
		testRepo: testRepo,
		repRepo:  repRepo,
		rxRepo:   rxRepo,
		apptRepo: apptRepo,
		metrics:  collector,
		log:      log,
	}
}

type RequestTestsCommand struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Tests     []labtest.TestSpec
}

// RequestTests records the tests a doctor recommends. An empty list is a
// validation error and creates nothing.
func (s *ConsultationService) RequestTests(ctx context.Context, cmd *RequestTestsCommand) ([]*labtest.TestRequest, error) {
	var missing []string
	if cmd.PatientID == uuid.Nil {
		missing = append(missing, "patientId")
	}
	if cmd.DoctorID == uuid.Nil {
		missing = append(missing, "doctorId")
	}
	if len(cmd.Tests) == 0 {
		missing = append(missing, "tests")
	}
	if len(missing) > 0 {
		return nil, newValidationError(missing...)
	}
	for _, t := range cmd.Tests {
		if t.TestName == "" || t.TestType == "" {
			return nil, newValidationError("tests[].testName", "tests[].testType")
		}
	}

	requests := make([]*labtest.TestRequest, 0, len(cmd.Tests))
	for _, t := range cmd.Tests {
		requests = append(requests, &labtest.TestRequest{
			PatientID:   cmd.PatientID,
			RequestedBy: cmd.DoctorID,
			TestName:    t.TestName,
			TestType:    t.TestType,
			Description: t.Description,
			Status:      labtest.StatusRequested,
		})
	}

	if err := s.testRepo.CreateBatch(ctx, requests); err != nil {
		return nil, fmt.Errorf("creating test requests: %w", err)
	}

	if s.metrics != nil {
		s.metrics.TestRequestsTotal.Add(float64(len(requests)))
	}
	return requests, nil
}

// AttachReport stores a result document and, when it answers a test
// request, resolves that request in the same transaction.
func (s *ConsultationService) AttachReport(ctx context.Context, cmd *report.CreateReportCommand) (*report.Report, error) {
	var missing []string
	if cmd.PatientID == uuid.Nil {
		missing = append(missing, "patientId")
	}
	if cmd.DoctorID == uuid.Nil {
		missing = append(missing, "doctorId")
	}
	if cmd.Name == "" {
		missing = append(missing, "name")
	}
	if cmd.ReportType == "" {
		missing = append(missing, "reportType")
	}
	if len(missing) > 0 {
		return nil, newValidationError(missing...)
	}

	rep := &report.Report{
		PatientID:  cmd.PatientID,
		DoctorID:   cmd.DoctorID,
		Name:       cmd.Name,
		ReportType: cmd.ReportType,
		Date:       time.Now(),
		Results:    cmd.Results,
		Status:     report.StatusReady,
	}
	if err := s.repRepo.CreateForTest(ctx, rep, cmd.TestRequestID); err != nil {
		return nil, err
	}
	return rep, nil
}

type PrescribeCommand struct {
	PatientID   uuid.UUID
	DoctorID    uuid.UUID
	Medications []prescription.MedicationSpec
}

// Prescribe issues a prescription with its ordered medication line items.
// An empty medication list is a validation error.
func (s *ConsultationService) Prescribe(ctx context.Context, cmd *PrescribeCommand) (*prescription.Prescription, error) {
	var missing []string
	if cmd.PatientID == uuid.Nil {
		missing = append(missing, "patientId")
	}
	if cmd.DoctorID == uuid.Nil {
		missing = append(missing, "doctorId")
	}
	if len(cmd.Medications) == 0 {
		missing = append(missing, "medications")
	}
	if len(missing) > 0 {
		return nil, newValidationError(missing...)
	}
	for _, m := range cmd.Medications {
		if m.Name == "" {
			return nil, newValidationError("medications[].name")
		}
	}

	now := time.Now()
	p := &prescription.Prescription{
		PatientID:  cmd.PatientID,
		DoctorID:   cmd.DoctorID,
		IssueDate:  now,
		ExpiryDate: now.Add(prescription.DefaultValidity),
		Status:     prescription.StatusActive,
	}
	if err := s.rxRepo.CreateWithMedications(ctx, p, cmd.Medications); err != nil {
		return nil, fmt.Errorf("creating prescription: %w", err)
	}

	if s.metrics != nil {
		s.metrics.PrescriptionsIssued.Inc()
	}
	s.log.Info("prescription issued",
		zap.String("prescription_id", p.ID.String()),
		zap.Int("medications", len(cmd.Medications)),
	)
	return p, nil
}

// Checklist is the five advisory consultation stages, computed from record
// presence. It is progress indication only.
type Checklist struct {
	AppointmentID    uuid.UUID `json:"appointment_id"`
	SymptomsReviewed bool      `json:"symptoms_reviewed"`
	TestsRequested   bool      `json:"tests_requested"`
	ResultsAvailable bool      `json:"results_available"`
	PrescriptionDone bool      `json:"prescription_done"`
	SummaryReady     bool      `json:"summary_ready"`
}

// GetChecklist derives stage completion for an appointment from the records
// the consultation produced so far. Stages may be skipped; a completed
// appointment with zero tests is perfectly valid.
func (s *ConsultationService) GetChecklist(ctx context.Context, appointmentID uuid.UUID) (*Checklist, error) {
	a, err := s.apptRepo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	tests, err := s.testRepo.List(ctx, &labtest.ListQuery{
		PatientID:   &a.PatientID,
		RequestedBy: &a.DoctorID,
	})
	if err != nil {
		return nil, fmt.Errorf("listing test requests: %w", err)
	}

	reports, err := s.repRepo.List(ctx, &report.ListQuery{
		PatientID: &a.PatientID,
		DoctorID:  &a.DoctorID,
	})
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}

	rxs, err := s.rxRepo.List(ctx, &prescription.ListQuery{
		PatientID: &a.PatientID,
		DoctorID:  &a.DoctorID,
	})
	if err != nil {
		return nil, fmt.Errorf("listing prescriptions: %w", err)
	}

	cl := &Checklist{
		AppointmentID:    a.ID,
		SymptomsReviewed: a.Symptoms != "",
		TestsRequested:   len(tests) > 0,
		ResultsAvailable: len(reports) > 0,
		PrescriptionDone: len(rxs) > 0,
	}
	cl.SummaryReady = cl.PrescriptionDone || a.Status == appointment.StatusCompleted
	return cl, nil
}
