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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/markusmuilu/Predicting-Nba/internal/app"
	"github.com/markusmuilu/Predicting-Nba/internal/config"
	"github.com/markusmuilu/Predicting-Nba/internal/worker"
)

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

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: r, ReadTimeout: 10 * time.Second}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warnw("Metrics server stopped", "error", err)
		}
	}()

	if err := app.AwaitArtifacts(ctx, cfg, s, logger); err != nil {
		log.Fatalw("Required artifacts unavailable", "error", err)
	}

	svc, err := app.Build(ctx, cfg, s, app.NewProviders(cfg, logger), logger)
	if err != nil {
		log.Fatalw("Failed to initialise services", "error", err)
	}

	hour, minute := cfg.ScheduleClock()
	scheduler := worker.NewScheduler(worker.SchedulerConfig{
		Cycle:    svc.Cycle,
		Location: cfg.ScheduleLocation(),
		Hour:     hour,
		Minute:   minute,
		Notifier: app.NewNotifier(cfg, "nba-automation", logger),
		Logger:   logger,
	})
	if err := scheduler.Run(ctx); err != nil {
		log.Errorw("Scheduler exited", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
}
