package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/markusmuilu/Predicting-Nba/internal/app"
	"github.com/markusmuilu/Predicting-Nba/internal/bootstrap"
	"github.com/markusmuilu/Predicting-Nba/internal/config"
	"github.com/markusmuilu/Predicting-Nba/internal/training"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	defer logger.Sync()
	log := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := app.OpenStore(ctx, cfg)
	if err != nil {
		log.Errorw("Failed to open ledger store", "error", err)
		return 1
	}
	defer s.Close()

	res, err := bootstrap.New(bootstrap.Config{
		Store:   s,
		Source:  app.NewProviders(cfg, logger).Stats,
		Seasons: cfg.BootstrapSeasons,
		Train: training.Options{
			Hidden: cfg.TrainHidden,
			Epochs: cfg.TrainEpochs,
		},
		Logger: logger,
	}).Run(ctx)
	if err != nil {
		log.Errorw("Bootstrap failed", "error", err)
		return 1
	}
	if !res.ModelExisted {
		log.Infow("Bootstrap complete", "version", res.Version, "rows", res.Rows, "teams_created", res.TeamsCreated)
	}
	return 0
}
