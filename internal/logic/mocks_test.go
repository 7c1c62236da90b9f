package logic

import (
	"context"

	"github.com/markusmuilu/Predicting-Nba/internal/models"
	"github.com/markusmuilu/Predicting-Nba/internal/store"
)

type MockSchedule struct {
	MatchupsFunc func(ctx context.Context, date string) ([]models.Matchup, error)
}

func (m *MockSchedule) Matchups(ctx context.Context, date string) ([]models.Matchup, error) {
	if m.MatchupsFunc != nil {
		return m.MatchupsFunc(ctx, date)
	}
	return nil, nil
}

type MockResults struct {
	OutcomeFunc func(ctx context.Context, p models.Pending) (models.Outcome, error)
}

func (m *MockResults) Outcome(ctx context.Context, p models.Pending) (models.Outcome, error) {
	if m.OutcomeFunc != nil {
		return m.OutcomeFunc(ctx, p)
	}
	return models.Outcome{}, nil
}

type MockStats struct {
	GameLogsFunc func(ctx context.Context, team models.Team) ([]models.GameLog, error)
}

func (m *MockStats) GameLogs(ctx context.Context, team models.Team) ([]models.GameLog, error) {
	if m.GameLogsFunc != nil {
		return m.GameLogsFunc(ctx, team)
	}
	return nil, nil
}

type MockOdds struct {
	OddsFunc func(ctx context.Context, date string) (map[models.Key]models.Odds, error)
}

func (m *MockOdds) Odds(ctx context.Context, date string) (map[models.Key]models.Odds, error) {
	if m.OddsFunc != nil {
		return m.OddsFunc(ctx, date)
	}
	return nil, nil
}

type MockScorer struct {
	PredictFunc func(x []float64) (float64, error)
}

func (m *MockScorer) Predict(x []float64) (float64, error) {
	if m.PredictFunc != nil {
		return m.PredictFunc(x)
	}
	return 0.5, nil
}

type MockPredictor struct {
	PredictFunc func(ctx context.Context, home, away, date string) (float64, error)
}

func (m *MockPredictor) Predict(ctx context.Context, home, away, date string) (float64, error) {
	if m.PredictFunc != nil {
		return m.PredictFunc(ctx, home, away, date)
	}
	return 0.5, nil
}

// failingStore wraps a memory store and injects errors.
type failingStore struct {
	*store.Memory
	GetErr error
	PutErr error
	// PutKey limits PutErr to one key when set
	PutKey string
	puts   int
}

func (f *failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	return f.Memory.Get(ctx, key)
}

func (f *failingStore) Put(ctx context.Context, key string, data []byte) error {
	f.puts++
	if f.PutErr != nil && (f.PutKey == "" || f.PutKey == key) {
		return f.PutErr
	}
	return f.Memory.Put(ctx, key, data)
}
