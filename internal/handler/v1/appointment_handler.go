package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medibook/medibook-api/internal/domain"
	"github.com/medibook/medibook-api/internal/domain/appointment"
	"github.com/medibook/medibook-api/internal/domain/availability"
	"github.com/medibook/medibook-api/internal/service"
)

type AppointmentHandler struct {
	bookingSvc *service.BookingService
	apptSvc    *service.AppointmentService
}

func NewAppointmentHandler(bookingSvc *service.BookingService, apptSvc *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{bookingSvc: bookingSvc, apptSvc: apptSvc}
}

type bookRequest struct {
	PatientID uuid.UUID `json:"patient_id"`
	DoctorID  uuid.UUID `json:"doctor_id" binding:"required"`
	Date      string    `json:"date" binding:"required"`
	TimeSlot  string    `json:"time_slot" binding:"required"`
	Type      string    `json:"type"`
	Symptoms  string    `json:"symptoms"`
}

func (h *AppointmentHandler) Book(c *gin.Context) {
	var req bookRequest
	if !bindJSON(c, &req) {
		return
	}

	date, err := time.Parse(availability.DateLayout, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid date: must be YYYY-MM-DD"})
		return
	}

	// Patients always book for themselves, whatever the body says.
	caller := callerClaims(c)
	patientID := req.PatientID
	if caller != nil && caller.Role == domain.RolePatient && caller.PatientID != nil {
		patientID = *caller.PatientID
	}

	a, err := h.bookingSvc.Book(c.Request.Context(), &appointment.BookCommand{
		PatientID: patientID,
		DoctorID:  req.DoctorID,
		Date:      date,
		TimeSlot:  req.TimeSlot,
		Type:      req.Type,
		Symptoms:  req.Symptoms,
	}, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, a)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	a, err := h.apptSvc.GetAppointment(c.Request.Context(), id, callerClaims(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

func (h *AppointmentHandler) List(c *gin.Context) {
	q := &appointment.ListQuery{
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
	}

	if raw := c.Query("doctor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid doctor_id: must be a valid UUID"})
			return
		}
		q.DoctorID = &id
	}
	if raw := c.Query("status"); raw != "" {
		status := appointment.Status(raw)
		q.Status = &status
	}

	paged, err := h.apptSvc.ListAppointments(c.Request.Context(), q, callerClaims(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, paged)
}

func (h *AppointmentHandler) Confirm(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	a, err := h.apptSvc.ConfirmAppointment(c.Request.Context(), id, callerClaims(c), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	a, err := h.apptSvc.CompleteAppointment(c.Request.Context(), id, callerClaims(c), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req cancelRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	caller := callerClaims(c)
	cmd := &appointment.CancelCommand{Reason: req.Reason}
	if caller != nil {
		cmd.CancelledBy = caller.UserID
	}

	a, err := h.apptSvc.CancelAppointment(c.Request.Context(), id, cmd, caller, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}
