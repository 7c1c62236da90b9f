// Package worker drives the daily prediction cycle: one run at start-up,
// then one run per day at a fixed wall-clock time in a configured zone.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/markusmuilu/Predicting-Nba/internal/logic"
	"github.com/markusmuilu/Predicting-Nba/internal/notify"
)

// Prometheus metrics
var (
	cyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nba_scheduler_cycles_total",
		Help: "Scheduled cycles by outcome (ok, degraded, panic)",
	}, []string{"outcome"})

	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nba_scheduler_cycle_duration_seconds",
		Help:    "Duration of scheduled cycles",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	nextRunTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nba_scheduler_next_run_timestamp_seconds",
		Help: "Unix time of the next scheduled cycle",
	})

	schedulerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nba_scheduler_state",
		Help: "0 while waiting, 1 while a cycle is running",
	})
)

// State of the scheduler loop.
type State int

const (
	StateWaiting State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "waiting"
}

// CycleRunner is the unit of work the scheduler triggers.
type CycleRunner interface {
	Run(ctx context.Context) (logic.CycleReport, error)
}

// SchedulerConfig configures the scheduler
type SchedulerConfig struct {
	Cycle    CycleRunner
	Location *time.Location
	Hour     int
	Minute   int
	Notifier notify.Notifier
	Now      func() time.Time
	// Wait blocks for d or until ctx is done.
	Wait   func(ctx context.Context, d time.Duration) error
	Logger *zap.Logger
}

// Scheduler runs the cycle immediately and then daily at Hour:Minute.
type Scheduler struct {
	config              SchedulerConfig
	logger              *zap.SugaredLogger
	mu                  sync.Mutex
	state               State
	consecutiveFailures int
}

// NewScheduler creates a scheduler. Location defaults to UTC and the clock to
// time.Now.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Wait == nil {
		cfg.Wait = sleep
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.Nop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Scheduler{config: cfg, logger: cfg.Logger.Sugar()}
}

// Run blocks until ctx is cancelled. Cycle failures never stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Infow("Scheduler started",
		"location", s.config.Location.String(),
		"time", fmt.Sprintf("%02d:%02d", s.config.Hour, s.config.Minute),
	)

	s.RunOnce(ctx)
	for {
		now := s.config.Now()
		next := NextRun(now, s.config.Location, s.config.Hour, s.config.Minute)
		nextRunTimestamp.Set(float64(next.Unix()))
		s.logger.Infow("Next cycle scheduled", "at", next.Format(time.RFC3339), "in", next.Sub(now).Round(time.Second).String())

		if err := s.config.Wait(ctx, next.Sub(now)); err != nil || ctx.Err() != nil {
			s.logger.Info("Scheduler stopped")
			return nil
		}
		s.RunOnce(ctx)
	}
}

// State reports whether a cycle is in progress.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ConsecutiveFailures is the number of degraded cycles since the last success.
func (s *Scheduler) ConsecutiveFailures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consecutiveFailures
}

// RunOnce executes one cycle, converting a panic into a degraded outcome.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.setState(StateRunning)
	defer s.setState(StateWaiting)

	start := time.Now()
	report, panicked, err := s.safeRun(ctx)
	cycleDuration.Observe(time.Since(start).Seconds())

	switch {
	case panicked:
		cyclesTotal.WithLabelValues("panic").Inc()
	case err != nil:
		cyclesTotal.WithLabelValues("degraded").Inc()
	default:
		cyclesTotal.WithLabelValues("ok").Inc()
	}
	s.handleCycleResult(ctx, report, err)
}

func (s *Scheduler) safeRun(ctx context.Context) (report logic.CycleReport, panicked bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()
	report, err = s.config.Cycle.Run(ctx)
	return report, false, err
}

func (s *Scheduler) handleCycleResult(ctx context.Context, report logic.CycleReport, err error) {
	s.mu.Lock()
	if err != nil {
		s.consecutiveFailures++
	}
	failures := s.consecutiveFailures
	if err == nil {
		s.consecutiveFailures = 0
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Errorw("Cycle degraded", "cycle_id", report.ID, "error", err, "consecutive_failures", failures)
		if failures == 1 {
			if nerr := s.config.Notifier.CycleFailed(ctx, err); nerr != nil {
				s.logger.Warnw("Failed to send failure notification", "error", nerr)
			}
		}
		return
	}

	s.logger.Infow("Cycle completed",
		"cycle_id", report.ID,
		"resolved", report.Resolve.Resolved,
		"generated", report.Generate.Generated,
	)
	if failures > 0 {
		if nerr := s.config.Notifier.CycleRecovered(ctx, failures); nerr != nil {
			s.logger.Warnw("Failed to send recovery notification", "error", nerr)
		}
	}
}

func (s *Scheduler) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	schedulerState.Set(float64(st))
}

// NextRun returns the first hour:minute wall-clock instant in loc strictly
// after now. Day arithmetic goes through time.Date so DST shifts are absorbed.
func NextRun(now time.Time, loc *time.Location, hour, minute int) time.Time {
	local := now.In(loc)
	y, m, d := local.Date()
	next := time.Date(y, m, d, hour, minute, 0, 0, loc)
	if !next.After(now) {
		next = time.Date(y, m, d+1, hour, minute, 0, 0, loc)
	}
	return next
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
