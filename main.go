package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"housevalue/config"
	qhttp "housevalue/http"
	"housevalue/logging"
	"housevalue/ml"
)

func main() {
	// 1. Load config
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(logging.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// 2. Load the model once; a bad artifact stops startup
	pipeline, err := ml.LoadModel(cfg.ML.ModelType, cfg.ML.ModelPath)
	if err != nil {
		logger.Fatal("failed to load model artifact", zap.String("path", cfg.ML.ModelPath), zap.Error(err))
	}
	info := pipeline.Info()
	logger.Info("model loaded",
		zap.String("name", info.Name),
		zap.String("regressor", info.RegressorType),
		zap.String("transform", info.FeatureTransform),
	)

	predictor, err := ml.NewCachedPredictor(pipeline, cfg.ML.CacheSize)
	if err != nil {
		logger.Fatal("failed to build prediction cache", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.ML.WatchArtifact {
		go func() {
			if err := ml.WatchArtifact(ctx, cfg.ML.ModelPath, logger); err != nil {
				logger.Warn("artifact watcher stopped", zap.Error(err))
			}
		}()
	}

	// 3. Start HTTP server
	serverConfig := qhttp.DefaultServerConfig()
	serverConfig.Port = cfg.Http.Port
	serverConfig.AllowedOrigins = cfg.Http.AllowedOrigins
	server, err := qhttp.NewServer(serverConfig, qhttp.Dependencies{
		Predictor: predictor,
		Model:     info,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("failed to build HTTP server", zap.Error(err))
	}
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 4. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")
	cancel()

	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("exiting")
}
