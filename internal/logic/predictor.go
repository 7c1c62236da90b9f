package logic

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/markusmuilu/Predicting-Nba/internal/features"
	"github.com/markusmuilu/Predicting-Nba/internal/models"
)

// PredictorConfig holds the dependencies of NewPredictor.
type PredictorConfig struct {
	Teams  models.TeamDirectory
	Stats  StatsProvider
	Scorer Scorer
	// MinGames is the prior games each team needs; defaults to 1.
	MinGames int
	Logger   *zap.Logger
}

type predictor struct {
	teams    models.TeamDirectory
	stats    StatsProvider
	scorer   Scorer
	minGames int
	logger   *zap.SugaredLogger
}

func NewPredictor(cfg PredictorConfig) Predictor {
	if cfg.MinGames <= 0 {
		cfg.MinGames = 1
	}
	return &predictor{
		teams:    cfg.Teams,
		stats:    cfg.Stats,
		scorer:   cfg.Scorer,
		minGames: cfg.MinGames,
		logger:   cfg.Logger.Sugar(),
	}
}

// Predict returns the probability that home beats away on date.
func (p *predictor) Predict(ctx context.Context, home, away, date string) (float64, error) {
	home, away = strings.ToUpper(strings.TrimSpace(home)), strings.ToUpper(strings.TrimSpace(away))
	if home == away {
		predictionsTotal.WithLabelValues("invalid").Inc()
		return 0, fmt.Errorf("%w: %s cannot play itself", models.ErrInvalidMatchup, home)
	}
	homeTeam, ok := p.teams.Lookup(home)
	if !ok {
		predictionsTotal.WithLabelValues("invalid").Inc()
		return 0, fmt.Errorf("%w: %s", models.ErrUnknownTeam, home)
	}
	awayTeam, ok := p.teams.Lookup(away)
	if !ok {
		predictionsTotal.WithLabelValues("invalid").Inc()
		return 0, fmt.Errorf("%w: %s", models.ErrUnknownTeam, away)
	}

	var homeLogs, awayLogs []models.GameLog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logs, err := p.stats.GameLogs(gctx, homeTeam)
		if err != nil {
			return fmt.Errorf("home stats %s: %w", home, err)
		}
		homeLogs = logs
		return nil
	})
	g.Go(func() error {
		logs, err := p.stats.GameLogs(gctx, awayTeam)
		if err != nil {
			return fmt.Errorf("away stats %s: %w", away, err)
		}
		awayLogs = logs
		return nil
	})
	if err := g.Wait(); err != nil {
		predictionsTotal.WithLabelValues("error").Inc()
		return 0, err
	}

	homeForm, err := features.FormBefore(homeLogs, date, p.minGames)
	if err != nil {
		predictionsTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("%s form: %w", home, err)
	}
	awayForm, err := features.FormBefore(awayLogs, date, p.minGames)
	if err != nil {
		predictionsTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("%s form: %w", away, err)
	}

	prob, err := p.scorer.Predict(features.Build(homeForm, awayForm))
	if err != nil {
		predictionsTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("score %s-%s: %w", home, away, err)
	}
	predictionsTotal.WithLabelValues("ok").Inc()
	p.logger.Debugw("Scored matchup", "date", date, "home", home, "away", away, "prob_home_win", prob)
	return prob, nil
}
