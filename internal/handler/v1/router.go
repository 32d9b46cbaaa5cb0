package v1

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/medibook/medibook-api/internal/config"
	"github.com/medibook/medibook-api/internal/domain"
	"github.com/medibook/medibook-api/internal/handler/middleware"
	"github.com/medibook/medibook-api/pkg/auth"
	"github.com/medibook/medibook-api/pkg/metrics"
)

type Handlers struct {
	Auth         *AuthHandler
	Doctor       *DoctorHandler
	Appointment  *AppointmentHandler
	Consultation *ConsultationHandler
	// Nil unless triage is enabled in configuration.
	Triage *TriageHandler
}

func NewRouter(
	cfg *config.Config,
	h Handlers,
	jwtManager *auth.JWTManager,
	collector *metrics.Collector,
	log *zap.Logger,
) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Observe(log, collector))
	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORS.AllowedOrigins,
		AllowMethods:  cfg.CORS.AllowedMethods,
		AllowHeaders:  cfg.CORS.AllowedHeaders,
		MaxAge:        cfg.CORS.MaxAge,
		AllowWildcard: true,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.App.Version})
	})
	router.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/login", h.Auth.Login)
			authRoutes.POST("/refresh", h.Auth.Refresh)
		}

		// Browsing doctors and their open slots needs no account.
		public.GET("/doctors", h.Doctor.List)
		public.GET("/doctors/:id", h.Doctor.Get)
		public.GET("/doctors/:id/availability", h.Doctor.Availability)
	}

	private := router.Group("/api/v1")
	private.Use(middleware.Authenticate(jwtManager))
	{
		private.POST("/doctors",
			middleware.RequireRole(domain.RoleAdmin),
			h.Doctor.Register)

		appts := private.Group("/appointments")
		{
			appts.POST("",
				middleware.RequireRole(domain.RolePatient, domain.RoleAdmin),
				h.Appointment.Book)
			appts.GET("", h.Appointment.List)
			appts.GET("/:id", h.Appointment.Get)
			appts.POST("/:id/confirm",
				middleware.RequireRole(domain.RoleDoctor, domain.RoleAdmin),
				h.Appointment.Confirm)
			appts.POST("/:id/complete",
				middleware.RequireRole(domain.RoleDoctor, domain.RoleAdmin),
				h.Appointment.Complete)
			// Cancellation ownership is enforced in the service.
			appts.POST("/:id/cancel", h.Appointment.Cancel)
			appts.GET("/:id/checklist", h.Consultation.Checklist)
		}

		consult := private.Group("/consultations")
		consult.Use(middleware.RequireRole(domain.RoleDoctor, domain.RoleAdmin))
		{
			consult.POST("/tests", h.Consultation.RequestTests)
			consult.POST("/reports", h.Consultation.AttachReport)
			consult.POST("/prescriptions", h.Consultation.Prescribe)
		}

		if h.Triage != nil {
			private.POST("/triage/assess",
				middleware.RequireRole(domain.RolePatient, domain.RoleDoctor),
				h.Triage.Assess)
		}
	}

	return router
}
