// Package training builds labelled feature rows from past seasons and fits
// the scoring network.
package training

import (
	"errors"
	"sort"

	"github.com/markusmuilu/Predicting-Nba/internal/features"
	"github.com/markusmuilu/Predicting-Nba/internal/models"
)

// ErrNotEnoughData is returned when too few rows survive row building.
var ErrNotEnoughData = errors.New("training: not enough labelled rows")

// Fixture is one scheduled game with its home and away sides.
type Fixture struct {
	GameID   string
	HomeTeam string
	AwayTeam string
}

// Game is a played fixture with its calendar day and result.
type Game struct {
	Fixture
	Date    string
	HomeWon bool
}

// Dataset holds feature rows in features.Names() order and 0/1 labels.
type Dataset struct {
	Features []string
	X        [][]float64
	Y        []float64
}

func (d Dataset) Len() int { return len(d.X) }

// Games dates and labels fixtures from the home team's game log. Fixtures
// the home log does not contain are dropped.
func Games(fixtures []Fixture, logs map[string][]models.GameLog) []Game {
	byTeam := make(map[string]map[string]models.GameLog, len(logs))
	for team, rows := range logs {
		idx := make(map[string]models.GameLog, len(rows))
		for _, g := range rows {
			idx[g.GameID] = g
		}
		byTeam[team] = idx
	}

	out := make([]Game, 0, len(fixtures))
	for _, f := range fixtures {
		g, ok := byTeam[f.HomeTeam][f.GameID]
		if !ok || g.Date == "" {
			continue
		}
		date := g.Date
		if len(date) > 10 {
			date = date[:10]
		}
		out = append(out, Game{Fixture: f, Date: date, HomeWon: g.Won()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].GameID < out[j].GameID
	})
	return out
}

// BuildDataset produces one row per game from the games each side played
// before it. Games where either side has fewer than minGames prior games
// are skipped and counted.
func BuildDataset(games []Game, logs map[string][]models.GameLog, minGames int) (Dataset, int) {
	ds := Dataset{Features: features.Names()}
	skipped := 0
	for _, g := range games {
		home, err := features.FormBefore(logs[g.HomeTeam], g.Date, minGames)
		if err != nil {
			skipped++
			continue
		}
		away, err := features.FormBefore(logs[g.AwayTeam], g.Date, minGames)
		if err != nil {
			skipped++
			continue
		}
		label := 0.0
		if g.HomeWon {
			label = 1
		}
		ds.X = append(ds.X, features.Build(home, away))
		ds.Y = append(ds.Y, label)
	}
	return ds, skipped
}

// Merge concatenates datasets with identical feature columns.
func Merge(sets ...Dataset) Dataset {
	out := Dataset{Features: features.Names()}
	for _, s := range sets {
		out.X = append(out.X, s.X...)
		out.Y = append(out.Y, s.Y...)
	}
	return out
}
