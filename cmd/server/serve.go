package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Brownie44l1/judi-api/internal/handlers"
	"github.com/Brownie44l1/judi-api/internal/logger"
	"github.com/Brownie44l1/judi-api/internal/metrics"
	"github.com/Brownie44l1/judi-api/internal/model"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the model and start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	gin.SetMode(cfg.Server.Mode)

	log.Info("Loading model and tokenizer",
		zap.String("model", cfg.Model.ModelPath()),
		zap.String("tokenizer", cfg.Model.TokenizerPath()),
		zap.Int("max_length", cfg.Model.MaxLength),
		zap.Int("workers", cfg.Inference.Workers),
	)

	modelServer, err := model.Load(cfg.Model, cfg.Inference.Workers)
	if err != nil {
		log.Error("Failed to load model", zap.Error(err))
		return fmt.Errorf("failed to load model: %w", err)
	}
	defer func() {
		if err := modelServer.Close(); err != nil {
			log.Warn("Failed to release model", zap.Error(err))
		}
	}()

	log.Info("Model loaded",
		zap.String("output", modelServer.Metadata.OutputName),
		zap.Int("classes", modelServer.Metadata.NumClasses),
	)

	predictor, err := metrics.NewInstrumentedPredictor(modelServer, prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	handler := handlers.NewHandler(predictor, log, cfg.Inference.Timeout)
	router, err := handlers.NewRouter(handler, log, promhttp.Handler())
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("address", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	handler.SetReady(true)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		log.Error("Server failed", zap.Error(err))
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	handler.SetReady(false)
	if cfg.Server.DrainDelay > 0 {
		log.Info("Draining before shutdown", zap.Duration("delay", cfg.Server.DrainDelay))
		time.Sleep(cfg.Server.DrainDelay)
	}

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
	return nil
}
