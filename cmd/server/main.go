package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/battlesync/battlesync-server/internal/ai"
	"github.com/battlesync/battlesync-server/internal/catalog"
	"github.com/battlesync/battlesync-server/internal/config"
	"github.com/battlesync/battlesync-server/internal/engine"
	"github.com/battlesync/battlesync-server/internal/match"
	"github.com/battlesync/battlesync-server/internal/server"
	"github.com/battlesync/battlesync-server/internal/store"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting battlesync server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	db, err := store.NewDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	matchStore, err := store.NewPostgres(ctx, db, logger)
	if err != nil {
		logger.Fatal("failed to initialize match store", zap.Error(err))
	}

	cat, err := catalog.Load(cfg.Catalog.CardsPath, cfg.Catalog.LeadersPath, logger)
	if err != nil {
		logger.Fatal("failed to load catalog", zap.Error(err))
	}
	leaderCache := catalog.NewLeaderCache(cat, cfg.Catalog.LeaderTTL)

	rulesEngine := engine.New(cat, leaderCache, logger)

	var invoker ai.Invoker = ai.Noop{}
	if cfg.AI.WebhookURL != "" {
		invoker = ai.NewWebhook(cfg.AI.WebhookURL, cfg.AI.Timeout, logger)
		logger.Info("ai webhook enabled", zap.String("url", cfg.AI.WebhookURL))
	}

	matchSvc := match.NewService(matchStore, rulesEngine, invoker, logger)
	gateway := server.NewGateway(matchSvc, logger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Serve(ctx, cfg.Server, gateway, logger)
	}()

	logger.Info("battlesync server initialized",
		zap.String("address", cfg.Server.Address),
		zap.Int("catalog_cards", cat.Size()),
	)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			logger.Error("server error", zap.Error(err))
		}
	}

	logger.Info("shutting down gracefully...")
	cancel()

	// Give the gateway time to flush close frames before exiting.
	time.Sleep(100 * time.Millisecond)
	logger.Info("battlesync server stopped")
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
