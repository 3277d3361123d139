package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	api "github.com/warp/resource-engine/internal/api/http"
	"github.com/warp/resource-engine/internal/config"
	"github.com/warp/resource-engine/internal/jobs"
	"github.com/warp/resource-engine/internal/logger"
	"github.com/warp/resource-engine/internal/repository"
	"github.com/warp/resource-engine/internal/repository/memory"
	"github.com/warp/resource-engine/internal/repository/postgres"
	"github.com/warp/resource-engine/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting reservation engine server...", "log_level", cfg.Log.Level)

	store, cleanup, err := openStore(cfg)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		log.Fatalf("Failed to open store: %v", err)
	}
	defer cleanup()

	policy := service.PolicyFromConfig(cfg.Policy)

	var sink service.NotificationSink = service.NewNoopSink()
	if cfg.Email.Enabled {
		sink = service.NewSendGridSink(cfg.Email.APIKey, cfg.Email.FromEmail, cfg.Email.FromName, cfg.Email.OpsEmail)
	}

	availabilityService := service.NewAvailabilityService(store)
	reservationService := service.NewReservationService(store, policy)
	returnService := service.NewReturnService(store, policy, sink)
	maintenanceService := service.NewMaintenanceService(store)
	jobRunner := jobs.NewJobRunner(store, policy, cfg)

	handler := api.NewHandler(availabilityService, reservationService, returnService, maintenanceService, jobRunner)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}

func openStore(cfg *config.Config) (repository.Store, func(), error) {
	if cfg.Database.Driver == "memory" {
		logger.Info("Using in-memory store")
		return memory.NewStore(), func() {}, nil
	}

	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, err
	}
	logger.Info("Database connection established")
	return postgres.NewStore(db), func() { db.Close() }, nil
}
