package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/warp/resource-engine/internal/config"
	"github.com/warp/resource-engine/internal/jobs"
	"github.com/warp/resource-engine/internal/logger"
	"github.com/warp/resource-engine/internal/repository/postgres"
	"github.com/warp/resource-engine/internal/scheduler"
	"github.com/warp/resource-engine/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'daily-reconciliation')")
	asOf := flag.String("as-of", "", "Run date for -run-once, YYYY-MM-DD (default: today)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting reconciliation cronjob runner...", "log_level", cfg.Log.Level)

	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)
	policy := service.PolicyFromConfig(cfg.Policy)
	jobRunner := jobs.NewJobRunner(store, policy, cfg)

	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce, *asOf)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	cronScheduler := scheduler.NewScheduler(jobRunner)
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName, asOf string) {
	runDate := time.Now()
	if asOf != "" {
		parsed, err := time.Parse("2006-01-02", asOf)
		if err != nil {
			logger.Error("Invalid -as-of date", "value", asOf, "error", err)
			os.Exit(1)
		}
		runDate = parsed
	}

	switch jobName {
	case "daily-reconciliation":
		report := jobRunner.ReconcileAsOf(context.Background(), runDate)
		logger.Info("Reconciliation finished",
			"run_id", report.RunID,
			"condition_changes", report.ConditionChanges,
			"deleted_reservations", report.DeletedReservations,
			"errors", len(report.Errors))
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - daily-reconciliation\n")
		os.Exit(1)
	}
}
