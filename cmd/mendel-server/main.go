// Package main provides the HTTP server entry point for the inheritance
// analysis service.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mendel-inheritance-server/internal/annotation"
	"github.com/mendel-inheritance-server/internal/api"
	"github.com/mendel-inheritance-server/internal/config"
	"github.com/mendel-inheritance-server/internal/logging"
	"github.com/mendel-inheritance-server/internal/repository"
	"github.com/mendel-inheritance-server/internal/service"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := logging.NewLogger(cfg.Logging)
	logger.Infof("Starting inheritance analysis server on %s:%d", cfg.Server.Host, cfg.Server.Port)

	// Annotation tiers: remote client, SQLite store, in-memory LRU
	annCfg := configManager.GetAnnotationConfig()
	store, err := repository.NewAnnotationStore(annCfg.CachePath, annCfg.CacheTTL)
	if err != nil {
		log.Fatalf("Failed to open annotation store: %v", err)
	}
	defer store.Close()

	remote := annotation.NewClient(*annCfg, logger)
	annotator, err := annotation.NewCachedClient(remote, store, annCfg.CacheSize, logger)
	if err != nil {
		log.Fatalf("Failed to create annotation cache: %v", err)
	}

	analyzer := service.NewAnalyzer(logger, *configManager.GetAnalysisConfig())
	server := api.NewServer(cfg, logger, analyzer, annotator)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}

	logger.Info("Server stopped")
}
