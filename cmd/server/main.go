package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/summitfall/summit-server/internal/collection"
	"github.com/summitfall/summit-server/internal/config"
	"github.com/summitfall/summit-server/internal/repository"
	"github.com/summitfall/summit-server/internal/server"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting summit server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Persistence is optional; without a database host games live in memory.
	var persister server.Persister
	if cfg.Database.Host != "" {
		db, err := repository.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		stats := db.Stats()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)
		persister = repository.NewGameRepository(db)
	} else {
		logger.Warn("no database configured; games are not persisted")
	}

	collectionMgr := collection.NewManager(logger)
	logger.Info("collection manager initialized")

	gameMgr := server.NewManager(logger)
	logger.Info("game manager initialized")

	gateway := server.NewGateway(gameMgr, collectionMgr, persister, server.GatewayOptions{
		MountainLevels:   cfg.Game.MountainLevels,
		StartingHealth:   cfg.Game.StartingHealth,
		StartingHandSize: cfg.Game.StartingHandSize,
		LeasePeriod:      cfg.Server.LeasePeriod,
	}, logger)
	go gateway.CleanupStaleConnections(ctx)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: gateway.Handler(),
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("websocket gateway listening", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.Error("gateway failed", zap.Error(err))
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown incomplete", zap.Error(err))
	}

	logger.Info("summit server stopped")
}

func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Encoding != "" {
		zapCfg.Encoding = cfg.Encoding
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg.Build()
}
