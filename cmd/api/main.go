package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/medibook/medibook-api/internal/config"
	"github.com/medibook/medibook-api/internal/domain/availability"
	v1 "github.com/medibook/medibook-api/internal/handler/v1"
	"github.com/medibook/medibook-api/internal/repository/postgres"
	"github.com/medibook/medibook-api/internal/service"
	"github.com/medibook/medibook-api/pkg/auth"
	"github.com/medibook/medibook-api/pkg/database"
	"github.com/medibook/medibook-api/pkg/logger"
	"github.com/medibook/medibook-api/pkg/metrics"
	"github.com/medibook/medibook-api/pkg/tracer"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Error("failed to load configuration", zap.Error(err))
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		zap.NewExample().Error("failed to build logger", zap.Error(err))
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Error("database connection failed", zap.Error(err))
		return err
	}
	if err := database.Migrate(db, log); err != nil {
		log.Error("database migration failed", zap.Error(err))
		return err
	}

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		log.Error("tracer initialization failed", zap.Error(err))
		return err
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	collector := metrics.NewCollector("medibook")
	if sqlDB, err := db.DB(); err == nil {
		go func() {
			for range time.Tick(15 * time.Second) {
				collector.DBConnections.Set(float64(sqlDB.Stats().OpenConnections))
			}
		}()
	}
	jwtManager := auth.NewJWTManager(cfg.JWT)

	// Repositories
	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	slotRepo := postgres.NewAvailabilityRepository(db)
	apptRepo := postgres.NewAppointmentRepository(db)
	testRepo := postgres.NewLabTestRepository(db)
	reportRepo := postgres.NewReportRepository(db)
	rxRepo := postgres.NewPrescriptionRepository(db)
	userRepo := postgres.NewUserRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	// Services
	auditSvc := service.NewAuditService(auditRepo, collector, log)
	defer auditSvc.Shutdown()

	calendar := availability.NewCalendar(
		cfg.Schedule.HorizonDays,
		cfg.Schedule.MinSlotsPerDay,
		cfg.Schedule.MaxSlotsPerDay,
	)

	authSvc := service.NewAuthService(userRepo, jwtManager, log)
	doctorSvc := service.NewDoctorService(doctorRepo, slotRepo, calendar, collector, log)
	availabilitySvc := service.NewAvailabilityService(slotRepo, log)
	bookingSvc := service.NewBookingService(apptRepo, patientRepo, auditSvc, collector, log)
	apptSvc := service.NewAppointmentService(apptRepo, auditSvc, collector, log)
	consultSvc := service.NewConsultationService(testRepo, reportRepo, rxRepo, apptRepo, collector, log)

	handlers := v1.Handlers{
		Auth:         v1.NewAuthHandler(authSvc),
		Doctor:       v1.NewDoctorHandler(doctorSvc, availabilitySvc),
		Appointment:  v1.NewAppointmentHandler(bookingSvc, apptSvc),
		Consultation: v1.NewConsultationHandler(consultSvc),
	}

	if cfg.Triage.Enabled {
		model, err := service.NewGeminiModel(context.Background(), cfg.Triage.APIKey, cfg.Triage.Model)
		if err != nil {
			log.Error("triage model initialization failed", zap.Error(err))
			return err
		}
		defer func() { _ = model.Close() }()

		triageSvc := service.NewTriageService(model, cfg.Triage.MaxRetries, cfg.Triage.BaseDelay, collector, log)
		handlers.Triage = v1.NewTriageHandler(triageSvc)
		log.Info("triage enabled", zap.String("model", cfg.Triage.Model))
	}

	router := v1.NewRouter(cfg, handlers, jwtManager, collector, log)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("http server failed", zap.Error(err))
		return err
	case sig := <-quit:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		return err
	}

	log.Info("server stopped")
	return nil
}
