package logic

import (
	"context"

	"github.com/markusmuilu/Predicting-Nba/internal/ledger"
	"github.com/markusmuilu/Predicting-Nba/internal/models"
)

// ScheduleProvider lists the games on a league calendar day.
type ScheduleProvider interface {
	Matchups(ctx context.Context, date string) ([]models.Matchup, error)
}

// ResultsProvider reports the outcome of the game behind a pending record.
type ResultsProvider interface {
	Outcome(ctx context.Context, p models.Pending) (models.Outcome, error)
}

// StatsProvider returns a team's game logs for the current season.
type StatsProvider interface {
	GameLogs(ctx context.Context, team models.Team) ([]models.GameLog, error)
}

// OddsProvider returns reference market prices for a day. A nil map with a
// nil error means odds are disabled.
type OddsProvider interface {
	Odds(ctx context.Context, date string) (map[models.Key]models.Odds, error)
}

// Scorer maps a feature vector to a home-win probability.
type Scorer interface {
	Predict(x []float64) (float64, error)
}

// LedgerStore is the document layer the Resolver and Generator write through.
type LedgerStore interface {
	LoadActive(ctx context.Context) (*ledger.Active, error)
	SaveActive(ctx context.Context, active *ledger.Active) error
	LoadHistory(ctx context.Context) (*ledger.History, error)
	AppendHistory(ctx context.Context, records []models.Resolved) (int, error)
}

// Predictor scores a single matchup. The Generator and the HTTP API share it.
type Predictor interface {
	Predict(ctx context.Context, home, away, date string) (float64, error)
}
