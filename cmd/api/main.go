package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/markusmuilu/Predicting-Nba/internal/app"
	"github.com/markusmuilu/Predicting-Nba/internal/config"
	"github.com/markusmuilu/Predicting-Nba/internal/handlers"
)

// @title NBA Prediction API
// @version 1.0
// @description Match predictions and the prediction ledger.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := app.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalw("Failed to open ledger store", "error", err)
	}
	defer s.Close()

	if err := app.AwaitArtifacts(ctx, cfg, s, logger); err != nil {
		log.Fatalw("Required artifacts unavailable", "error", err)
	}

	svc, err := app.Build(ctx, cfg, s, app.NewProviders(cfg, logger), logger)
	if err != nil {
		log.Fatalw("Failed to initialise services", "error", err)
	}

	h := handlers.New(handlers.Config{
		Predictor:      svc.Predictor,
		Cycle:          svc.Cycle,
		Ledger:         svc.Ledger,
		Store:          s,
		ModelVersion:   svc.Model.Version,
		League:         cfg.LeagueLocation(),
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: 60 * time.Second,
		UpdateTimeout:  5 * time.Minute,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5*time.Minute + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Infow("API listening", "addr", srv.Addr, "model_version", svc.Model.Version)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("Server error", "error", err)
		}
	case <-ctx.Done():
		log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
