package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/markusmuilu/Predicting-Nba/internal/config"
	"github.com/markusmuilu/Predicting-Nba/internal/features"
	"github.com/markusmuilu/Predicting-Nba/internal/ledger"
	"github.com/markusmuilu/Predicting-Nba/internal/models"
	"github.com/markusmuilu/Predicting-Nba/internal/notify"
	"github.com/markusmuilu/Predicting-Nba/internal/scoring"
	"github.com/markusmuilu/Predicting-Nba/internal/store"
)

func loadConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("LEDGER_STORE_URL", "mem://")
	for k, v := range env {
		t.Setenv(k, v)
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func flatModel(names []string) []byte {
	n := len(names)
	w := make([][]float64, n)
	for i := range w {
		w[i] = []float64{0}
	}
	scale := make([]float64, n)
	for i := range scale {
		scale[i] = 1
	}
	b, _ := json.Marshal(scoring.Model{
		Version:  "flat",
		Features: names,
		Layers:   []int{n, 1},
		Weights:  [][][]float64{w},
		Biases:   [][]float64{{0}},
		Scaler:   scoring.Scaler{Mean: make([]float64, n), Scale: scale},
	})
	return b
}

func seed(t *testing.T, s store.Store, model []byte) {
	t.Helper()
	ctx := context.Background()
	l := ledger.New(s, zap.NewNop())
	if err := l.SaveTeams(ctx, models.TeamDirectory{Teams: []models.Team{{ID: 1, Name: "BOS"}, {ID: 2, Name: "LAL"}}}); err != nil {
		t.Fatal(err)
	}
	if model != nil {
		if err := s.Put(ctx, ledger.ModelKey, model); err != nil {
			t.Fatal(err)
		}
	}
}

func TestNewLogger(t *testing.T) {
	cfg := loadConfig(t, map[string]string{"ENV": "production", "LOG_LEVEL": "warn"})
	logger, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if logger.Core().Enabled(zap.InfoLevel) {
		t.Error("info enabled at warn level")
	}

	cfg = loadConfig(t, map[string]string{"LOG_LEVEL": "loud"})
	if _, err := NewLogger(cfg); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestBuild(t *testing.T) {
	ctx := context.Background()
	cfg := loadConfig(t, nil)
	s := store.NewMemory()
	seed(t, s, flatModel(features.Names()))

	svc, err := Build(ctx, cfg, s, NewProviders(cfg, zap.NewNop()), zap.NewNop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if svc.Model.Version != "flat" || len(svc.Teams.Teams) != 2 {
		t.Errorf("services = %+v", svc)
	}
	if svc.Cycle == nil || svc.Predictor == nil {
		t.Error("cycle or predictor not built")
	}
}

func TestBuild_ModelErrors(t *testing.T) {
	ctx := context.Background()
	cfg := loadConfig(t, nil)

	missing := store.NewMemory()
	seed(t, missing, nil)
	if _, err := Build(ctx, cfg, missing, NewProviders(cfg, zap.NewNop()), zap.NewNop()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing model err = %v", err)
	}

	wrong := store.NewMemory()
	seed(t, wrong, flatModel([]string{"a", "b"}))
	if _, err := Build(ctx, cfg, wrong, NewProviders(cfg, zap.NewNop()), zap.NewNop()); !errors.Is(err, scoring.ErrModelLoad) {
		t.Errorf("mismatched model err = %v", err)
	}
}

func TestAwaitArtifacts(t *testing.T) {
	ctx := context.Background()
	cfg := loadConfig(t, map[string]string{"READY_POLL_INTERVAL": "10ms", "READY_MAX_WAIT": "50ms"})
	s := store.NewMemory()

	if err := AwaitArtifacts(ctx, cfg, s, zap.NewNop()); !errors.Is(err, ErrArtifactsMissing) {
		t.Errorf("empty store err = %v", err)
	}

	seed(t, s, flatModel(features.Names()))
	if err := AwaitArtifacts(ctx, cfg, s, zap.NewNop()); err != nil {
		t.Errorf("seeded store err = %v", err)
	}
}

func TestNewNotifier_Disabled(t *testing.T) {
	cfg := loadConfig(t, nil)
	if _, ok := NewNotifier(cfg, "automation", zap.NewNop()).(notify.Nop); !ok {
		t.Error("expected no-op notifier without a token")
	}
}
