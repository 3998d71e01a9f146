package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/bookkeeping-ledger/internal/activity_recorder/consumer"
	"github.com/bookkeeping-ledger/internal/activity_recorder/outbox_poller"
	"github.com/bookkeeping-ledger/internal/activity_recorder/service"
	"github.com/bookkeeping-ledger/internal/config"
	"github.com/bookkeeping-ledger/internal/data/mongo"
	"github.com/bookkeeping-ledger/internal/data/postgres"
	"github.com/bookkeeping-ledger/internal/logger"
	"github.com/bookkeeping-ledger/internal/platform/messaging/consumers"
	"github.com/bookkeeping-ledger/internal/platform/messaging/producers"
	"github.com/bookkeeping-ledger/internal/platform/persistence"
	"github.com/joho/godotenv"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig("activity_recorder")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting Activity Recorder",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
		"messaging_backend", cfg.Messaging.Backend,
	)

	// Postgres holds the user outbox, Mongo the activity logs
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

	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	logRepo := mongo.NewActivityRepository(log, mongoDB.Database())
	if err := logRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to create activity log indexes", "error", err)
		os.Exit(1)
	}

	eventConsumer, err := consumers.NewConsumer(log, cfg)
	if err != nil {
		log.Error("Failed to initialize activity event consumer", "error", err)
		os.Exit(1)
	}

	dlqPublisher, err := producers.NewDeadLetterPublisher(appCtx, log, cfg)
	if err != nil {
		log.Error("Failed to initialize dead-letter publisher", "error", err)
		os.Exit(1)
	}

	recordingService, err := service.NewWorkerPoolRecordingService(
		log,
		service.NewRecordingService(log, logRepo),
		cfg.WorkerPool.Size,
	)
	if err != nil {
		log.Error("Failed to initialize recording worker pool", "error", err)
		os.Exit(1)
	}

	eventHandler := consumer.NewActivityEventHandler(log, recordingService, dlqPublisher)

	activityPublisher := outbox_poller.NewActivityPublisher(log, outboxRepo, recordingService)
	poller := outbox_poller.NewPoller(log, &cfg.Outbox, outboxRepo, activityPublisher)

	errChan := make(chan error, 1)
	var wg sync.WaitGroup

	if err := eventConsumer.Subscribe(appCtx, eventHandler.HandleMessage); err != nil {
		errChan <- fmt.Errorf("activity consumer error: %w", err)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("Outbox poller stopped")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	if err = eventConsumer.Close(); err != nil {
		log.Error("Error closing activity event consumer", "error", err)
	}

	log.Info("Shutting down worker pool", "running_workers", recordingService.Running())
	recordingService.Shutdown()

	if err = dlqPublisher.Close(); err != nil {
		log.Error("Error closing dead-letter publisher", "error", err)
	}

	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serviceErr != nil {
		log.Error("Activity Recorder shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Activity Recorder shutdown completed with errors")
	} else {
		log.Info("Activity Recorder shutdown completed successfully")
	}
}
