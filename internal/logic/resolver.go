package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/markusmuilu/Predicting-Nba/internal/models"
	"github.com/markusmuilu/Predicting-Nba/internal/providers"
)

// DefaultStaleAfter is how long a due record may stay unresolved before it is flagged.
const DefaultStaleAfter = 7 * 24 * time.Hour

// ResolverConfig holds the dependencies of NewResolver.
type ResolverConfig struct {
	Ledger  LedgerStore
	Results ResultsProvider
	// Teams, when non-empty, rejects records whose codes it does not list.
	Teams      models.TeamDirectory
	League     *time.Location
	StaleAfter time.Duration
	Now        func() time.Time
	Logger     *zap.Logger
}

// ResolveReport counts what one Resolve did with the Active ledger.
type ResolveReport struct {
	Resolved int `json:"resolved"`
	// Skipped records hit a provider or validation error and stay pending.
	Skipped int `json:"skipped"`
	// Pending records are not finished yet, or not due.
	Pending int `json:"pending"`
	// Stale is the subset of Skipped and Pending older than the staleness threshold.
	Stale int `json:"stale"`
}

// Resolver settles due pending predictions and moves them into History.
type Resolver struct {
	ledger     LedgerStore
	results    ResultsProvider
	teams      models.TeamDirectory
	league     *time.Location
	staleAfter time.Duration
	now        func() time.Time
	logger     *zap.SugaredLogger
}

func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.League == nil {
		cfg.League = time.UTC
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = DefaultStaleAfter
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Resolver{
		ledger:     cfg.Ledger,
		results:    cfg.Results,
		teams:      cfg.Teams,
		league:     cfg.League,
		staleAfter: cfg.StaleAfter,
		now:        cfg.Now,
		logger:     cfg.Logger.Sugar(),
	}
}

// Resolve examines every record dated today or earlier. A failure on one
// record never stops the others; only store errors are returned. History is
// written before Active, and nothing is written when nothing resolved.
func (r *Resolver) Resolve(ctx context.Context) (ResolveReport, error) {
	var report ResolveReport

	active, err := r.ledger.LoadActive(ctx)
	if err != nil {
		return report, err
	}

	now := r.now()
	today := models.DateOf(now, r.league)

	var settled []models.Resolved
	for _, p := range active.Records() {
		if p.Date > today {
			report.Pending++
			resolverRecordsTotal.WithLabelValues("pending", "not_due").Inc()
			continue
		}

		res, reason, err := r.resolveOne(ctx, p, now)
		switch {
		case err != nil:
			report.Skipped++
			resolverRecordsTotal.WithLabelValues("skipped", reason).Inc()
			r.logger.Warnw("Skipping prediction", "key", p.Key().String(), "reason", reason, "error", err)
		case res == nil:
			report.Pending++
			resolverRecordsTotal.WithLabelValues("pending", "unfinished").Inc()
		default:
			report.Resolved++
			resolverRecordsTotal.WithLabelValues("resolved", "").Inc()
			settled = append(settled, *res)
			r.logger.Infow("Resolved prediction", "key", p.Key().String(),
				"actual_winner", res.ActualWinner, "correct", res.Correct)
			continue
		}

		if r.isStale(p, now) {
			report.Stale++
			r.logger.Warnw("Prediction unresolved past staleness threshold",
				"key", p.Key().String(), "date", p.Date, "stale_after", r.staleAfter.String())
		}
	}
	staleRecords.Set(float64(report.Stale))

	if len(settled) == 0 {
		return report, nil
	}

	// A failed Active write leaves settled keys in both ledgers. The next
	// Resolve finds them in History, appends nothing and removes them.
	if _, err := r.ledger.AppendHistory(ctx, settled); err != nil {
		return report, err
	}
	for _, s := range settled {
		active.Remove(s.Key())
	}
	if err := r.ledger.SaveActive(ctx, active); err != nil {
		return report, err
	}
	return report, nil
}

// resolveOne returns nil with no error when the game is not finished.
func (r *Resolver) resolveOne(ctx context.Context, p models.Pending, now time.Time) (*models.Resolved, string, error) {
	if len(r.teams.Teams) > 0 {
		for _, code := range []string{p.HomeTeam, p.AwayTeam} {
			if _, ok := r.teams.Lookup(code); !ok {
				return nil, "validation", fmt.Errorf("%w: %s", models.ErrUnknownTeam, code)
			}
		}
	}

	outcome, err := r.results.Outcome(ctx, p)
	if err != nil {
		if errors.Is(err, providers.ErrMalformed) || errors.Is(err, models.ErrInvalidRecord) {
			return nil, "validation", err
		}
		return nil, "provider", err
	}
	if !outcome.Finished {
		return nil, "", nil
	}

	res, err := p.Resolve(outcome, now)
	if err != nil {
		return nil, "validation", err
	}
	return &res, "", nil
}

func (r *Resolver) isStale(p models.Pending, now time.Time) bool {
	day, err := time.ParseInLocation(models.DateLayout, p.Date, r.league)
	if err != nil {
		return false
	}
	return now.Sub(day) > r.staleAfter
}
