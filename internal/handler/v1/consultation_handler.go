package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medibook/medibook-api/internal/domain/labtest"
	"github.com/medibook/medibook-api/internal/domain/prescription"
	"github.com/medibook/medibook-api/internal/domain/report"
	"github.com/medibook/medibook-api/internal/service"
)

type ConsultationHandler struct {
	consultSvc *service.ConsultationService
}

func NewConsultationHandler(consultSvc *service.ConsultationService) *ConsultationHandler {
	return &ConsultationHandler{consultSvc: consultSvc}
}

type testSpecRequest struct {
	TestName    string `json:"test_name" binding:"required"`
	TestType    string `json:"test_type" binding:"required"`
	Description string `json:"description"`
}

type requestTestsRequest struct {
	PatientID uuid.UUID         `json:"patient_id" binding:"required"`
	DoctorID  uuid.UUID         `json:"doctor_id" binding:"required"`
	Tests     []testSpecRequest `json:"tests" binding:"required"`
}

func (h *ConsultationHandler) RequestTests(c *gin.Context) {
	var req requestTestsRequest
	if !bindJSON(c, &req) {
		return
	}

	specs := make([]labtest.TestSpec, 0, len(req.Tests))
	for _, t := range req.Tests {
		specs = append(specs, labtest.TestSpec{
			TestName:    t.TestName,
			TestType:    t.TestType,
			Description: t.Description,
		})
	}

	requests, err := h.consultSvc.RequestTests(c.Request.Context(), &service.RequestTestsCommand{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Tests:     specs,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, requests)
}

type attachReportRequest struct {
	PatientID     uuid.UUID  `json:"patient_id" binding:"required"`
	DoctorID      uuid.UUID  `json:"doctor_id" binding:"required"`
	Name          string     `json:"name" binding:"required"`
	ReportType    string     `json:"report_type" binding:"required"`
	Results       string     `json:"results"`
	TestRequestID *uuid.UUID `json:"test_request_id"`
}

func (h *ConsultationHandler) AttachReport(c *gin.Context) {
	var req attachReportRequest
	if !bindJSON(c, &req) {
		return
	}

	rep, err := h.consultSvc.AttachReport(c.Request.Context(), &report.CreateReportCommand{
		PatientID:     req.PatientID,
		DoctorID:      req.DoctorID,
		Name:          req.Name,
		ReportType:    req.ReportType,
		Results:       req.Results,
		TestRequestID: req.TestRequestID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, rep)
}

type medicationRequest struct {
	Name         string `json:"name" binding:"required"`
	GenericName  string `json:"generic_name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions"`
	DosageForm   string `json:"dosage_form"`
	Category     string `json:"category"`
}

type prescribeRequest struct {
	PatientID   uuid.UUID           `json:"patient_id" binding:"required"`
	DoctorID    uuid.UUID           `json:"doctor_id" binding:"required"`
	Medications []medicationRequest `json:"medications" binding:"required"`
}

func (h *ConsultationHandler) Prescribe(c *gin.Context) {
	var req prescribeRequest
	if !bindJSON(c, &req) {
		return
	}

	specs := make([]prescription.MedicationSpec, 0, len(req.Medications))
	for _, m := range req.Medications {
		specs = append(specs, prescription.MedicationSpec{
			Name:         m.Name,
			GenericName:  m.GenericName,
			Dosage:       m.Dosage,
			Frequency:    m.Frequency,
			Duration:     m.Duration,
			Instructions: m.Instructions,
			DosageForm:   m.DosageForm,
			Category:     m.Category,
		})
	}

	p, err := h.consultSvc.Prescribe(c.Request.Context(), &service.PrescribeCommand{
		PatientID:   req.PatientID,
		DoctorID:    req.DoctorID,
		Medications: specs,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, p)
}

// Checklist reports the consultation stages completed for an appointment.
func (h *ConsultationHandler) Checklist(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	cl, err := h.consultSvc.GetChecklist(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, cl)
}
