package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/muhammadchandra19/moex-history-service/internal/bootstrap"
	"github.com/muhammadchandra19/moex-history-service/pkg/config"
	"github.com/muhammadchandra19/moex-history-service/pkg/logger"
	"github.com/muhammadchandra19/moex-history-service/pkg/postgresql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.NewLogger(logger.WithLoggingLevel(logger.Level(cfg.App.LogLevel)))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	// Initialize PostgreSQL client
	pgClient, err := postgresql.NewClient(ctx, cfg.DB)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()

	if err := pgClient.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping PostgreSQL: %v", err)
	}

	b := bootstrap.Bootstrap{}
	b.Init(bootstrap.BootstrapConfig{
		Config: cfg,
		DB:     pgClient,
		Logger: appLogger,
	})

	appLogger.Info("MOEX history service started",
		logger.Field{Key: "app", Value: cfg.App.Name},
		logger.Field{Key: "environment", Value: cfg.App.Environment},
		logger.Field{Key: "port", Value: cfg.App.Port},
	)

	if err := b.API.Server.Run(ctx); err != nil {
		appLogger.Error(err, logger.Field{Key: "component", Value: "api-server"})
	}

	appLogger.Info("MOEX history service stopped")
}
