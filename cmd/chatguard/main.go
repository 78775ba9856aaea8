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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"chatguard/internal/api"
	"chatguard/internal/artifact"
	"chatguard/internal/config"
	"chatguard/internal/logger"
	"chatguard/internal/metrics"
	"chatguard/internal/normalizer"
	"chatguard/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	var cfgPath, writeConfig string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ./config.yaml or ~/.config/chatguard/config.yaml if not provided)")
	flag.StringVar(&writeConfig, "write-config", "", "Write the effective config to this path and exit")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if writeConfig != "" {
		return config.Save(writeConfig, cfg)
	}

	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	gin.SetMode(cfg.Server.Mode)

	// Artifacts are a startup precondition: no artifacts, no listener.
	vecPath, clfPath, err := cfg.Artifacts.Paths()
	if err != nil {
		return err
	}
	store, err := artifact.Load(artifact.Locations{Vectorizer: vecPath, Classifier: clfPath})
	if err != nil {
		log.Error("Failed to load artifacts", zap.Error(err))
		return err
	}
	log.Info("Artifacts loaded",
		zap.String("vectorizer", vecPath),
		zap.String("classifier", clfPath),
		zap.Int("features", store.Dimension()),
	)

	svc, err := service.NewInferenceService(normalizer.New(), store.Vectorizer(), store.Classifier(), cfg.Inference.CacheSize)
	if err != nil {
		return fmt.Errorf("failed to build inference service: %w", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	r := api.Setup(svc, m, reg, cfg.Server.AllowedOrigins, log)

	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		log.Error("Server failed", zap.Error(err))
		return err
	case <-quit:
	}

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSecs)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
	return nil
}
