package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bookkeeping-ledger/internal/api_gateway"
	"github.com/bookkeeping-ledger/internal/api_gateway/service"
	"github.com/bookkeeping-ledger/internal/config"
	"github.com/bookkeeping-ledger/internal/data/mongo"
	"github.com/bookkeeping-ledger/internal/data/postgres"
	"github.com/bookkeeping-ledger/internal/domain/category"
	"github.com/bookkeeping-ledger/internal/logger"
	"github.com/bookkeeping-ledger/internal/platform/blobstore"
	"github.com/bookkeeping-ledger/internal/platform/messaging/producers"
	"github.com/bookkeeping-ledger/internal/platform/persistence"
	"github.com/joho/godotenv"
)

const cleanupTimeout = 5 * time.Minute

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// A local .env is optional; it only seeds the environment
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting API Gateway",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
		"messaging_backend", cfg.Messaging.Backend,
	)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, cfg.Application.Name, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	txRepo := mongo.NewTransactionRepository(log, mongoDB.Database(), cfg.Reports.CursorBatchSize)
	logRepo := mongo.NewActivityRepository(log, mongoDB.Database())

	if err := txRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to create transaction indexes", "error", err)
		os.Exit(1)
	}
	if err := logRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to create activity log indexes", "error", err)
		os.Exit(1)
	}

	// Activity events leave through the configured broker
	eventPublisher, err := producers.NewEventPublisher(appCtx, log, cfg)
	if err != nil {
		log.Error("Failed to initialize activity event publisher", "error", err)
		os.Exit(1)
	}

	var (
		uploader    service.SnapshotUploader
		gcsUploader *blobstore.GCSUploader
	)
	if cfg.Backup.GCSBucket != "" {
		gcsUploader, err = blobstore.NewGCSUploader(appCtx, log, cfg.Backup.GCSBucket, cfg.Backup.ObjectPrefix)
		if err != nil {
			log.Error("Failed to initialize backup uploader", "error", err)
			os.Exit(1)
		}
		uploader = gcsUploader
	}

	categories, err := category.Load(cfg.Categories.File)
	if err != nil {
		log.Error("Failed to load category catalogue", "error", err)
		os.Exit(1)
	}

	// Initialize services
	activityService := service.NewActivityService(log, logRepo, eventPublisher)
	maintenanceService := service.NewMaintenanceService(log, postgresDB, userRepo, outboxRepo)
	userService := service.NewUserService(log, postgresDB, userRepo, outboxRepo, cfg.Users.TrialPeriod)

	// Identity needs an existing user, so an empty deployment gets one admin
	if cfg.Bootstrap.AdminUsername != "" {
		admin, created, err := userService.EnsureAdmin(appCtx, service.NewUser{
			Username: cfg.Bootstrap.AdminUsername,
			Email:    cfg.Bootstrap.AdminEmail,
			FullName: cfg.Bootstrap.AdminFullName,
		})
		if err != nil {
			log.Error("Failed to bootstrap admin user", "error", err)
			os.Exit(1)
		}
		log.Info("Bootstrap admin ready", "user_id", admin.ID, "username", admin.Username, "created", created)
	}

	services := api_gateway.Services{
		Reports:      service.NewReportService(log, txRepo, cfg.Reports.Timeout),
		Transactions: service.NewTransactionService(log, txRepo, activityService),
		Users:        userService,
		Activity:     activityService,
		Export:       service.NewExportService(log, txRepo, activityService),
		Maintenance:  maintenanceService,
		Backup:       service.NewBackupService(log, userRepo, txRepo, logRepo, uploader, activityService),
		Dashboard:    service.NewDashboardService(log, txRepo, userRepo, logRepo),
		Categories:   categories,
	}

	scheduler, err := service.ScheduleCleanup(log, maintenanceService, cfg.Maintenance.CleanupSchedule, cfg.Maintenance.Timezone, cleanupTimeout)
	if err != nil {
		log.Error("Failed to schedule expired-user cleanup", "error", err)
		os.Exit(1)
	}
	if scheduler != nil {
		scheduler.Start()
		log.Info("Expired-user cleanup scheduled",
			"schedule", cfg.Maintenance.CleanupSchedule,
			"timezone", cfg.Maintenance.Timezone,
		)
	}

	server := api_gateway.NewServer(log, cfg, services)
	log.Info("REST server initialized")

	errChan := make(chan error, 1)

	go func() {
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Let a running cleanup finish before the stores go away
	if scheduler != nil {
		select {
		case <-scheduler.Stop().Done():
		case <-shutdownCtx.Done():
			log.Warn("Scheduled cleanup still running at shutdown")
		}
	}

	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = eventPublisher.Close(); err != nil {
		log.Error("Error closing activity event publisher", "error", err)
	}

	if gcsUploader != nil {
		if err = gcsUploader.Close(); err != nil {
			log.Error("Error closing backup uploader", "error", err)
		}
	}

	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
