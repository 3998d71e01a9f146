package api_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bookkeeping-ledger/internal/api_gateway/handler"
	"github.com/bookkeeping-ledger/internal/api_gateway/service"
	"github.com/bookkeeping-ledger/internal/config"
	"github.com/bookkeeping-ledger/internal/domain/category"
	"github.com/gin-gonic/gin"
)

// Services are the collaborators the HTTP layer delegates to
type Services struct {
	Reports      service.ReportService
	Transactions service.TransactionService
	Users        service.UserService
	Activity     service.ActivityService
	Export       service.ExportService
	Maintenance  service.MaintenanceService
	Backup       service.BackupService
	Dashboard    service.DashboardService
	Categories   *category.Catalogue
}

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger          *slog.Logger
	httpServer      *http.Server
	httpRouter      *gin.Engine
	shutdownTimeout time.Duration
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(log *slog.Logger, cfg *config.Config, svc Services) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()
	setupRouter(log, httpRouter, svc.Users, handlers{
		report:      handler.NewReportHandler(log, svc.Reports),
		transaction: handler.NewTransactionHandler(log, svc.Transactions),
		user:        handler.NewUserHandler(log, svc.Users),
		activity:    handler.NewActivityHandler(log, svc.Activity),
		export:      handler.NewExportHandler(log, svc.Export),
		admin:       handler.NewAdminHandler(log, svc.Maintenance, svc.Backup, svc.Dashboard),
		category:    handler.NewCategoryHandler(svc.Categories),
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:          log,
		httpServer:      httpServer,
		httpRouter:      httpRouter,
		shutdownTimeout: cfg.Server.ShutdownTimeout,
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpRouter
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests for at most the configured shutdown timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
