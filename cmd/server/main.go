package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/uniformhq/uniform-orders/internal/application/service"
	"github.com/uniformhq/uniform-orders/internal/config"
	"github.com/uniformhq/uniform-orders/internal/infrastructure/persistence/repository"
	"github.com/uniformhq/uniform-orders/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/uniformhq/uniform-orders/internal/interfaces/http"
	"github.com/uniformhq/uniform-orders/pkg/database"
	"github.com/uniformhq/uniform-orders/pkg/utils"
)

func main() {
	configPath := "configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

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

	logger.Info("Starting uniform order service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	sqlDB, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer sqlDB.Close()

	migrator := database.NewMigrator(sqlDB, logger)
	if err := migrator.Run(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	db := sqlite.NewDB(sqlDB, logger)

	// Repositories
	orderRepo := repository.NewOrderRepository(sqlDB, logger)
	catalogRepo := repository.NewCatalogRepository(sqlDB, logger)
	companyRepo := repository.NewCompanyRepository(sqlDB, logger)
	employeeRepo := repository.NewEmployeeRepository(sqlDB, logger)
	entitlementRepo := repository.NewEntitlementRepository(sqlDB, logger)
	consumptionRepo := repository.NewConsumptionRepository(sqlDB, logger)

	// Services
	serviceLogger := &zapLoggerAdapter{logger: logger}
	orderService := service.NewOrderService(
		orderRepo, catalogRepo, companyRepo, employeeRepo,
		entitlementRepo, consumptionRepo, db, serviceLogger,
	)
	approvalService := service.NewApprovalService(orderRepo, companyRepo, db, serviceLogger)

	// HTTP server
	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, orderService, approvalService, serviceLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}

// zapLoggerAdapter adapts zap.Logger to the service.Logger interface.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
