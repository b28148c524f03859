package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parkdesk/internal/api"
	"parkdesk/internal/config"
	"parkdesk/internal/entities"
	"parkdesk/internal/repository"
	"parkdesk/internal/service"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	client := repository.NewClient(repository.ClientConfig{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		RPS:     cfg.BackendRPS,
		Burst:   cfg.BackendBurst,
		Retry: repository.RetryPolicy{
			MaxAttempts:       cfg.RetryMaxAttempts,
			BaseDelay:         cfg.RetryBaseDelay,
			RetryableStatuses: cfg.RetryStatuses,
		},
	}, logger.Named("parking"))
	slotRepo := repository.NewSlotRepository(client)
	vehicleRepo := repository.NewVehicleRepository(client)
	dashboardRepo := repository.NewDashboardRepository(client)

	validator := service.NewValidator()
	dashboardSvc := service.NewDashboardService(dashboardRepo, slotRepo, logger)
	entrySvc := service.NewEntryService(slotRepo, vehicleRepo, validator, logger, func(ctx context.Context, res *entities.EntryResult) {
		dashboardSvc.Notify(ctx)
	})
	slotSvc := service.NewSlotService(slotRepo, validator, logger, dashboardSvc.Notify)
	sessionSvc := service.NewSessionService(dashboardRepo, vehicleRepo, logger, dashboardSvc.Notify)

	jobs := service.NewJobService(dashboardSvc, entrySvc, cfg.FormIdleTTL, logger.Named("cron"))
	scheduler, err := jobs.NewScheduler(cfg.DashboardPollSpec)
	if err != nil {
		logger.Fatal("Failed to schedule jobs", zap.Error(err))
	}
	// Warm the summary cache so the first dashboard view does not wait on it.
	go jobs.PollDashboardSummary()
	scheduler.Start()

	render, err := api.NewRenderer(logger)
	if err != nil {
		logger.Fatal("Failed to parse templates", zap.Error(err))
	}
	r := api.NewRouter(
		api.NewEntryFormHandler(entrySvc, logger),
		api.NewDashboardHandler(dashboardSvc, entrySvc, render, logger),
		api.NewSlotHandler(slotSvc, render, logger),
		api.NewSessionHandler(sessionSvc, render, logger),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Wrap(r, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server running",
			zap.String("port", cfg.Port),
			zap.String("parking_api", cfg.APIBaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
	<-scheduler.Stop().Done()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
