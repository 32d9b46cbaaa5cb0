package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/medibook/medibook-api/internal/domain/doctor"
	"github.com/medibook/medibook-api/internal/service"
)

type DoctorHandler struct {
	doctorSvc       *service.DoctorService
	availabilitySvc *service.AvailabilityService
}

func NewDoctorHandler(doctorSvc *service.DoctorService, availabilitySvc *service.AvailabilityService) *DoctorHandler {
	return &DoctorHandler{doctorSvc: doctorSvc, availabilitySvc: availabilitySvc}
}

type registerDoctorRequest struct {
	Name            string `json:"name" binding:"required"`
	Department      string `json:"department" binding:"required"`
	ExperienceYears int    `json:"experience_years"`
	Location        string `json:"location"`
	Email           string `json:"email" binding:"required,email"`
	Bio             string `json:"bio"`
	ImageURL        string `json:"image_url"`
}

type registerDoctorResponse struct {
	Doctor         *doctor.Doctor `json:"doctor"`
	SlotsGenerated int            `json:"slots_generated"`
}

// Register creates the doctor profile and seeds their availability calendar
// in one request.
func (h *DoctorHandler) Register(c *gin.Context) {
	var req registerDoctorRequest
	if !bindJSON(c, &req) {
		return
	}

	d, slots, err := h.doctorSvc.RegisterDoctor(c.Request.Context(), &doctor.CreateDoctorCommand{
		Name:            req.Name,
		Department:      req.Department,
		ExperienceYears: req.ExperienceYears,
		Location:        req.Location,
		Email:           req.Email,
		Bio:             req.Bio,
		ImageURL:        req.ImageURL,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, registerDoctorResponse{Doctor: d, SlotsGenerated: slots})
}

func (h *DoctorHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	d, err := h.doctorSvc.GetDoctor(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, d)
}

func (h *DoctorHandler) List(c *gin.Context) {
	q := &doctor.ListDoctorsQuery{
		Department: c.Query("department"),
		Page:       parseQueryInt(c, "page", 1),
		PageSize:   parseQueryInt(c, "page_size", 20),
	}

	paged, err := h.doctorSvc.ListDoctors(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, paged)
}

// Availability returns the doctor's open slots grouped by date.
func (h *DoctorHandler) Availability(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	slots, err := h.availabilitySvc.ListAvailability(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, slots)
}
