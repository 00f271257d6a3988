package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/schooltransit/dispatch/internal/application"
	httptransport "github.com/schooltransit/dispatch/internal/http"
	"github.com/schooltransit/dispatch/internal/persistence/sqlite"
	"github.com/schooltransit/dispatch/internal/scheduler"
	"github.com/schooltransit/dispatch/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dispatch API server",
	Long:  "Start the HTTP API server after rebuilding the scheduling engine from the database.",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error().Err(cerr).Msg("failed to close database")
		}
	}()

	if err := pool.Migrate(ctx); err != nil {
		return err
	}

	eventRepo := sqlite.NewEventRepository(pool)
	vehicleRepo := sqlite.NewVehicleRepository(pool)
	driverRepo := sqlite.NewDriverRepository(pool)
	studentRepo := sqlite.NewStudentRepository(pool)
	assignmentRepo := sqlite.NewAssignmentRepository(pool)
	operatorRepo := sqlite.NewOperatorRepository(pool)
	sessionRepo := sqlite.NewSessionRepository(pool)

	registry := prometheus.NewRegistry()
	metrics := telemetry.New(registry)

	engine := scheduler.NewEngine()
	assignments := scheduler.NewAssignmentRegistry(uuid.NewString)
	tokenGenerator := func() string { return randomHex(32) }

	eventService := application.NewEventService(
		engine,
		assignments,
		eventRepo,
		vehicleRepo,
		driverRepo,
		metrics,
		uuid.NewString,
		time.Now,
	)
	assignmentService := application.NewAssignmentService(engine, assignments, assignmentRepo, studentRepo)
	availabilityService := application.NewAvailabilityService(engine, vehicleRepo, driverRepo)
	fleetService := application.NewFleetService(vehicleRepo, driverRepo, studentRepo, uuid.NewString)
	authService := application.NewAuthService(
		operatorRepo,
		sessionRepo,
		nil,
		tokenGenerator,
		time.Now,
		cfg.SessionTTL,
	)

	if err := eventService.Rehydrate(ctx); err != nil {
		return err
	}
	if err := assignmentService.Rehydrate(ctx); err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:         httptransport.NewAuthHandler(authService),
		Events:       httptransport.NewEventHandler(eventService),
		Availability: httptransport.NewAvailabilityHandler(availabilityService),
		Assignments:  httptransport.NewAssignmentHandler(assignmentService),
		Fleet:        httptransport.NewFleetHandler(fleetService),
		Sessions:     authService,
		Metrics:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Logger:       logger,
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	logger.Info().Str("addr", server.Addr).Msg("dispatch API listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	logger.Info().Msg("dispatchd stopped")
	return nil
}
