package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medibook/medibook-api/internal/service"
)

// TriageHandler exposes the advisory symptom assessment. It is only
// registered when triage is enabled in configuration.
type TriageHandler struct {
	triageSvc *service.TriageService
}

func NewTriageHandler(triageSvc *service.TriageService) *TriageHandler {
	return &TriageHandler{triageSvc: triageSvc}
}

type assessRequest struct {
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
	Symptoms  string    `json:"symptoms" binding:"required"`
}

func (h *TriageHandler) Assess(c *gin.Context) {
	var req assessRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.triageSvc.Assess(c.Request.Context(), req.PatientID, req.Symptoms)
	if err != nil {
		var validErr *service.ValidationError
		if errors.As(err, &validErr) {
			respondServiceError(c, err)
			return
		}
		// Model failures should not read as our fault.
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "triage assessment unavailable"})
		return
	}
	respondOK(c, a)
}
