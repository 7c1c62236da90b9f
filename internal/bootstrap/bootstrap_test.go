package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/markusmuilu/Predicting-Nba/internal/features"
	"github.com/markusmuilu/Predicting-Nba/internal/ledger"
	"github.com/markusmuilu/Predicting-Nba/internal/models"
	"github.com/markusmuilu/Predicting-Nba/internal/providers/pbpstats"
	"github.com/markusmuilu/Predicting-Nba/internal/scoring"
	"github.com/markusmuilu/Predicting-Nba/internal/store"
	"github.com/markusmuilu/Predicting-Nba/internal/training"
)

type MockSource struct {
	TeamsFunc    func(ctx context.Context) (models.TeamDirectory, error)
	GameLogsFunc func(ctx context.Context, season string, teamID int64) ([]models.GameLog, error)
	GamesFunc    func(ctx context.Context, season string) (map[string]pbpstats.Schedule, error)
	calls        atomic.Int32
}

func (m *MockSource) Teams(ctx context.Context) (models.TeamDirectory, error) {
	m.calls.Add(1)
	return m.TeamsFunc(ctx)
}

func (m *MockSource) SeasonGameLogs(ctx context.Context, season string, teamID int64) ([]models.GameLog, error) {
	m.calls.Add(1)
	return m.GameLogsFunc(ctx, season, teamID)
}

func (m *MockSource) Games(ctx context.Context, season string) (map[string]pbpstats.Schedule, error) {
	m.calls.Add(1)
	return m.GamesFunc(ctx, season)
}

var testTeams = models.TeamDirectory{Teams: []models.Team{
	{ID: 1610612738, Name: "BOS"},
	{ID: 1610612747, Name: "LAL"},
}}

// seasonSource plays BOS against LAL every day, alternating home court.
func seasonSource(games int) *MockSource {
	start := time.Date(2023, 10, 24, 0, 0, 0, 0, time.UTC)
	gameID := func(i int) string { return fmt.Sprintf("00223%05d", i) }
	bosPoints := func(i int) float64 { return float64(100 + (i*7)%23) }

	return &MockSource{
		TeamsFunc: func(ctx context.Context) (models.TeamDirectory, error) { return testTeams, nil },
		GameLogsFunc: func(ctx context.Context, season string, teamID int64) ([]models.GameLog, error) {
			logs := make([]models.GameLog, games)
			for i := range logs {
				bos := bosPoints(i)
				pts, opp := bos, 110.0
				if teamID != 1610612738 {
					pts, opp = 110, bos
				}
				logs[i] = models.GameLog{
					Date:           start.AddDate(0, 0, i).Format(models.DateLayout),
					GameID:         gameID(i),
					Points:         pts,
					OpponentPoints: opp,
					PlusMinus:      pts - opp,
					OffPoss:        100,
					DefPoss:        100,
					Pace:           99 + float64(i%3),
				}
			}
			return logs, nil
		},
		GamesFunc: func(ctx context.Context, season string) (map[string]pbpstats.Schedule, error) {
			out := make(map[string]pbpstats.Schedule, games)
			for i := 0; i < games; i++ {
				home, away := "BOS", "LAL"
				if i%2 == 1 {
					home, away = away, home
				}
				out[gameID(i)] = pbpstats.Schedule{GameID: gameID(i), HomeTeam: home, AwayTeam: away}
			}
			return out, nil
		},
	}
}

func TestRun_ModelExists(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	if err := s.Put(ctx, ledger.ModelKey, []byte(`{}`)); err != nil {
		t.Fatal(err)
	}
	src := seasonSource(30)

	res, err := New(Config{Store: s, Source: src, Seasons: []string{"2023-24"}, Logger: zap.NewNop()}).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.ModelExisted {
		t.Error("expected ModelExisted")
	}
	if src.calls.Load() != 0 {
		t.Errorf("provider called %d times", src.calls.Load())
	}
}

func TestRun_TrainsAndUploads(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	src := seasonSource(30)

	res, err := New(Config{
		Store:    s,
		Source:   src,
		Seasons:  []string{"2023-24"},
		MinGames: 5,
		Train:    training.Options{Hidden: []int{4}, Epochs: 3, Version: "boot-test"},
		Logger:   zap.NewNop(),
	}).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.TeamsCreated || res.Rows != 25 || res.Version != "boot-test" {
		t.Errorf("result = %+v", res)
	}

	dir, err := ledger.New(s, zap.NewNop()).LoadTeams(ctx)
	if err != nil || len(dir.Teams) != 2 {
		t.Fatalf("teams = %+v, %v", dir, err)
	}
	data, err := s.Get(ctx, ledger.ModelKey)
	if err != nil {
		t.Fatal(err)
	}
	m, err := scoring.Load(data, features.Names())
	if err != nil {
		t.Fatalf("stored model does not load: %v", err)
	}
	if m.Version != "boot-test" {
		t.Errorf("version = %s", m.Version)
	}
}

func TestRun_KeepsExistingTeams(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	if err := ledger.New(s, zap.NewNop()).SaveTeams(ctx, testTeams); err != nil {
		t.Fatal(err)
	}
	src := seasonSource(30)
	src.TeamsFunc = func(ctx context.Context) (models.TeamDirectory, error) {
		t.Error("team list should not be refetched")
		return models.TeamDirectory{}, nil
	}

	res, err := New(Config{
		Store:   s,
		Source:  src,
		Seasons: []string{"2023-24"},
		Train:   training.Options{Hidden: []int{4}, Epochs: 1},
		Logger:  zap.NewNop(),
	}).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.TeamsCreated {
		t.Error("teams reported as created")
	}
}

func TestRun_ProviderFailure(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	src := seasonSource(30)
	src.GamesFunc = func(ctx context.Context, season string) (map[string]pbpstats.Schedule, error) {
		return nil, errors.New("pbpstats: 503")
	}

	_, err := New(Config{Store: s, Source: src, Seasons: []string{"2023-24"}, Logger: zap.NewNop()}).Run(ctx)
	if err == nil {
		t.Fatal("expected error")
	}
	if ok, _ := s.Exists(ctx, ledger.ModelKey); ok {
		t.Error("model written despite failure")
	}
}
