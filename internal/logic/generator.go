package logic

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/markusmuilu/Predicting-Nba/internal/models"
)

// GeneratorConfig holds the dependencies of NewGenerator.
type GeneratorConfig struct {
	Ledger    LedgerStore
	Schedule  ScheduleProvider
	Predictor Predictor
	// Odds is optional.
	Odds   OddsProvider
	League *time.Location
	Now    func() time.Time
	// Limiter spaces out matchup scoring; nil means unthrottled.
	Limiter *rate.Limiter
	Logger  *zap.Logger
}

// GenerateReport counts what one Generate did.
type GenerateReport struct {
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"`
}

// Generator creates pending predictions for today's scheduled games.
type Generator struct {
	ledger    LedgerStore
	schedule  ScheduleProvider
	predictor Predictor
	odds      OddsProvider
	league    *time.Location
	now       func() time.Time
	limiter   *rate.Limiter
	logger    *zap.SugaredLogger
}

func NewGenerator(cfg GeneratorConfig) *Generator {
	if cfg.League == nil {
		cfg.League = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Limiter == nil {
		cfg.Limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Generator{
		ledger:    cfg.Ledger,
		schedule:  cfg.Schedule,
		predictor: cfg.Predictor,
		odds:      cfg.Odds,
		league:    cfg.League,
		now:       cfg.Now,
		limiter:   cfg.Limiter,
		logger:    cfg.Logger.Sugar(),
	}
}

// Generate scores every pre-game matchup of today and upserts the results
// into Active. Keys already in History are never re-created. Odds are
// fetched once after all scoring and attached for display.
func (g *Generator) Generate(ctx context.Context) (GenerateReport, error) {
	var report GenerateReport

	now := g.now()
	today := models.DateOf(now, g.league)

	matchups, err := g.schedule.Matchups(ctx, today)
	if err != nil {
		return report, fmt.Errorf("fetch schedule %s: %w", today, err)
	}

	history, err := g.ledger.LoadHistory(ctx)
	if err != nil {
		return report, err
	}

	var created []models.Pending
	for _, m := range matchups {
		if m.State != "" && m.State != models.GameScheduled {
			generatorMatchupsTotal.WithLabelValues("ignored", "started").Inc()
			continue
		}
		if history.Contains(m.Key()) {
			report.Skipped++
			generatorMatchupsTotal.WithLabelValues("skipped", "resolved").Inc()
			g.logger.Infow("Matchup already resolved, not regenerating", "key", m.Key().String())
			continue
		}
		if err := g.limiter.Wait(ctx); err != nil {
			return report, err
		}

		prob, err := g.predictor.Predict(ctx, m.HomeTeam, m.AwayTeam, today)
		if err != nil {
			report.Skipped++
			generatorMatchupsTotal.WithLabelValues("skipped", "predict").Inc()
			g.logger.Warnw("Skipping matchup", "key", m.Key().String(), "error", err)
			continue
		}

		created = append(created, models.Pending{
			Date:                 today,
			HomeTeam:             m.HomeTeam,
			AwayTeam:             m.AwayTeam,
			PredictedProbability: prob,
			GameID:               m.GameID,
			CreatedAt:            now.UTC(),
		})
		generatorMatchupsTotal.WithLabelValues("generated", "").Inc()
	}

	if len(created) == 0 {
		g.logger.Infow("No predictions generated", "date", today, "matchups", len(matchups))
		return report, nil
	}

	g.attachOdds(ctx, today, created)

	active, err := g.ledger.LoadActive(ctx)
	if err != nil {
		return report, err
	}
	for _, p := range created {
		active.Upsert(p)
	}
	if err := g.ledger.SaveActive(ctx, active); err != nil {
		return report, err
	}

	report.Generated = len(created)
	g.logger.Infow("Generated predictions", "date", today, "generated", report.Generated, "skipped", report.Skipped)
	return report, nil
}

func (g *Generator) attachOdds(ctx context.Context, date string, records []models.Pending) {
	if g.odds == nil {
		return
	}
	prices, err := g.odds.Odds(ctx, date)
	if err != nil {
		g.logger.Warnw("Odds unavailable", "date", date, "error", err)
		return
	}
	for i := range records {
		if o, ok := prices[records[i].Key()]; ok {
			o := o
			records[i].Odds = &o
		}
	}
}
