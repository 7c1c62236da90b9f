// Command seeder writes a team directory and a demo scoring model into the
// configured ledger store so the api and automation can start locally
// without running bootstrap against the live providers.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/markusmuilu/Predicting-Nba/internal/app"
	"github.com/markusmuilu/Predicting-Nba/internal/config"
	"github.com/markusmuilu/Predicting-Nba/internal/features"
	"github.com/markusmuilu/Predicting-Nba/internal/ledger"
	"github.com/markusmuilu/Predicting-Nba/internal/models"
	"github.com/markusmuilu/Predicting-Nba/internal/scoring"
	"github.com/markusmuilu/Predicting-Nba/internal/store"
)

var nbaTeams = []models.Team{
	{ID: 1610612737, Name: "ATL"}, {ID: 1610612738, Name: "BOS"}, {ID: 1610612751, Name: "BKN"},
	{ID: 1610612766, Name: "CHA"}, {ID: 1610612741, Name: "CHI"}, {ID: 1610612739, Name: "CLE"},
	{ID: 1610612742, Name: "DAL"}, {ID: 1610612743, Name: "DEN"}, {ID: 1610612765, Name: "DET"},
	{ID: 1610612744, Name: "GSW"}, {ID: 1610612745, Name: "HOU"}, {ID: 1610612754, Name: "IND"},
	{ID: 1610612746, Name: "LAC"}, {ID: 1610612747, Name: "LAL"}, {ID: 1610612763, Name: "MEM"},
	{ID: 1610612748, Name: "MIA"}, {ID: 1610612749, Name: "MIL"}, {ID: 1610612750, Name: "MIN"},
	{ID: 1610612740, Name: "NOP"}, {ID: 1610612752, Name: "NYK"}, {ID: 1610612760, Name: "OKC"},
	{ID: 1610612753, Name: "ORL"}, {ID: 1610612755, Name: "PHI"}, {ID: 1610612756, Name: "PHX"},
	{ID: 1610612757, Name: "POR"}, {ID: 1610612758, Name: "SAC"}, {ID: 1610612759, Name: "SAS"},
	{ID: 1610612761, Name: "TOR"}, {ID: 1610612762, Name: "UTA"}, {ID: 1610612764, Name: "WAS"},
}

// demoWeights favour the home side on net rating and season record.
var demoWeights = map[string]float64{
	"NetRtg_diff":      0.9,
	"SeasonWinPct":     0.6,
	"Opp_SeasonWinPct": -0.6,
	"IsBackToBack":     -0.15,
	"Opp_IsBackToBack": 0.15,
}

func main() {
	force := flag.Bool("force", false, "overwrite existing documents")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s, err := app.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	l := ledger.New(s, zap.NewNop())
	if write(ctx, s, ledger.TeamsKey, *force) {
		if err := l.SaveTeams(ctx, models.TeamDirectory{Teams: nbaTeams}); err != nil {
			log.Fatalf("Failed to write teams: %v", err)
		}
		log.Printf("Wrote %s (%d teams)", ledger.TeamsKey, len(nbaTeams))
	}

	if write(ctx, s, ledger.ModelKey, *force) {
		data, err := json.MarshalIndent(demoModel(), "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode model: %v", err)
		}
		if err := s.Put(ctx, ledger.ModelKey, data); err != nil {
			log.Fatalf("Failed to write model: %v", err)
		}
		log.Printf("Wrote %s", ledger.ModelKey)
	}
}

func write(ctx context.Context, s store.Store, key string, force bool) bool {
	if force {
		return true
	}
	ok, err := s.Exists(ctx, key)
	if err != nil {
		log.Fatalf("Failed to check %s: %v", key, err)
	}
	if ok {
		log.Printf("%s already exists, skipping (use -force to overwrite)", key)
	}
	return !ok
}

// demoModel is a single-layer logistic model over standardised inputs.
func demoModel() *scoring.Model {
	names := features.Names()
	n := len(names)
	w := make([][]float64, n)
	mean := make([]float64, n)
	scale := make([]float64, n)
	for i, name := range names {
		w[i] = []float64{demoWeights[name]}
		scale[i] = 1
	}
	// rough league-wide centring for the columns the demo uses
	for i, name := range names {
		switch name {
		case "NetRtg_diff":
			scale[i] = 8
		case "SeasonWinPct", "Opp_SeasonWinPct":
			mean[i], scale[i] = 0.5, 0.15
		}
	}
	return &scoring.Model{
		Version:   "demo",
		Features:  names,
		Layers:    []int{n, 1},
		Weights:   [][][]float64{w},
		Biases:    [][]float64{{0.1}},
		Scaler:    scoring.Scaler{Mean: mean, Scale: scale},
		TrainedAt: time.Now().UTC(),
	}
}
