package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/omcsuite/daily-delivery/internal/application/approval"
	"github.com/omcsuite/daily-delivery/internal/application/dispatcher"
	"github.com/omcsuite/daily-delivery/internal/application/validation"
	"github.com/omcsuite/daily-delivery/internal/config"
	"github.com/omcsuite/daily-delivery/internal/infrastructure/external/simulated"
	"github.com/omcsuite/daily-delivery/internal/infrastructure/persistence/repository"
	"github.com/omcsuite/daily-delivery/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/omcsuite/daily-delivery/internal/interfaces/http"
	"github.com/omcsuite/daily-delivery/internal/report"
	"github.com/omcsuite/daily-delivery/pkg/database"
	"github.com/omcsuite/daily-delivery/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Daily Delivery Validation Service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Initialize database
	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create database directory", zap.Error(err))
		}
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories
	store := sqlite.NewDB(db.DB, logger)
	deliveryRepo := repository.NewDeliveryRepository(store, logger)
	instanceRepo := repository.NewInstanceRepository(store, logger)
	historyRepo := repository.NewHistoryRepository(store, logger)

	// Simulated regulator and partner integrations
	complianceSvc := simulated.NewComplianceService(logger)
	marketData := simulated.NewMarketDataService(logger)
	directory := simulated.NewDirectoryService()
	notifier := simulated.NewNotificationService(logger)
	fleet := simulated.NewFleetService()

	kvLogger := utils.NewKVLogger(logger)

	// Domain event dispatcher
	disp := dispatcher.NewDispatcher(dispatcher.WithLogger(kvLogger))

	// Validation engine
	registry, err := validation.NewRegistry()
	if err != nil {
		logger.Fatal("Failed to build validation registry", zap.Error(err))
	}
	orchestrator := validation.NewOrchestrator(registry, complianceSvc, kvLogger,
		validation.WithMarketData(marketData),
		validation.WithFleet(fleet),
		validation.WithDispatcher(disp),
	)

	// Approval workflow engine
	engine := approval.NewEngine(
		instanceRepo,
		deliveryRepo,
		historyRepo,
		store,
		directory,
		notifier,
		kvLogger,
		approval.WithEngineDispatcher(disp),
	)

	reports := report.NewBatchReportWriter(logger)

	// HTTP server
	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, orchestrator, engine, reports, kvLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// SLA timeout sweep
	go runTimeoutSweep(ctx, engine, cfg.Workflow.TimeoutSweepInterval, logger)

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(ctx)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("Shutting down server...")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
		}
		cancel()
	}

	if err := disp.Close(); err != nil {
		logger.Warn("Dispatcher close", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

// runTimeoutSweep periodically escalates or times out workflow instances
// whose SLA deadline has passed.
func runTimeoutSweep(ctx context.Context, engine approval.Engine, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			handled, err := engine.HandleTimeouts(ctx, now.UTC())
			if err != nil {
				logger.Error("Timeout sweep failed", zap.Error(err))
				continue
			}
			if handled > 0 {
				logger.Info("Timeout sweep completed", zap.Int("instances", handled))
			}
		}
	}
}
