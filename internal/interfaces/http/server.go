// Package http provides the HTTP adapter over the validation and approval
// subsystems. It is a thin translation layer; all behavior lives in the
// application packages.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/omcsuite/daily-delivery/internal/application/approval"
	"github.com/omcsuite/daily-delivery/internal/application/validation"
	"github.com/omcsuite/daily-delivery/internal/report"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config       ServerConfig
	httpServer   *http.Server
	router       *gin.Engine
	orchestrator *validation.Orchestrator
	engine       approval.Engine
	reports      *report.BatchReportWriter
	logger       Logger
}

// NewServer creates a new HTTP server wired to the application services
func NewServer(
	config ServerConfig,
	orchestrator *validation.Orchestrator,
	engine approval.Engine,
	reports *report.BatchReportWriter,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:       config,
		router:       gin.New(),
		orchestrator: orchestrator,
		engine:       engine,
		reports:      reports,
		logger:       logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.orchestrator, s.engine, s.reports, s.logger)

	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api")
	{
		validations := api.Group("/validations")
		{
			validations.POST("", handlers.ValidateDelivery)
			validations.POST("/batch", handlers.ValidateBatch)
			validations.POST("/batch/report", handlers.BatchReport)
			validations.POST("/field", handlers.ValidateField)
		}

		approvals := api.Group("/approvals")
		{
			approvals.POST("", handlers.SubmitForApproval)
			approvals.POST("/bulk-invoices", handlers.SubmitBulkInvoices)
			approvals.POST("/actions", handlers.ProcessAction)
			approvals.POST("/actions/bulk", handlers.ProcessBulkActions)
			approvals.GET("/pending", handlers.ListPendingApprovals)
			approvals.GET("/instances/:id", handlers.GetInstance)
			approvals.POST("/instances/:id/cancel", handlers.CancelInstance)
			approvals.POST("/instances/:id/escalate", handlers.EscalateInstance)
		}
	}
}

// Start starts the HTTP server and blocks until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
