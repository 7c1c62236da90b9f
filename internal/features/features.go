// Package features turns team game logs into the fixed-order model input.
// Training and inference both go through Build, so the column layout is
// shared by construction.
package features

import (
	"errors"
	"fmt"
	"time"

	"github.com/markusmuilu/Predicting-Nba/internal/models"
)

// Window is the number of prior games averaged per statistic.
const Window = 10

// ErrInsufficientHistory is returned when a team has too few prior games.
var ErrInsufficientHistory = errors.New("features: insufficient game history")

// rollingStats are averaged over the last Window games.
var rollingStats = []string{
	"OffPoss", "DefPoss", "Pace", "Fg3Pct", "Fg2Pct", "TsPct",
	"OffRtg", "DefRtg", "NetRtg", "EfgDiff", "TsDiff",
	"Rebounds", "Steals", "Blocks",
}

var seasonStats = []string{"SeasonWins", "SeasonLosses", "SeasonWinPct", "IsBackToBack"}

var names = buildNames()

func buildNames() []string {
	var out []string
	for _, s := range rollingStats {
		out = append(out, s+"_avg")
	}
	out = append(out, seasonStats...)
	for _, s := range rollingStats {
		out = append(out, "Opp_"+s+"_avg")
	}
	for _, s := range seasonStats {
		out = append(out, "Opp_"+s)
	}
	for _, s := range rollingStats {
		out = append(out, s+"_diff")
	}
	return append(out, "IsHome", "HomeAdvantage")
}

// Names returns the feature columns in model order.
func Names() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Len is the width of a feature vector.
func Len() int { return len(names) }

// Vector is one model input row aligned with Names.
type Vector []float64

// Form is a team's recent record going into one game.
type Form struct {
	Averages   [14]float64
	Wins       int
	Losses     int
	BackToBack bool
	Games      int
}

func (f Form) winPct() float64 {
	if f.Wins+f.Losses == 0 {
		return 0
	}
	return float64(f.Wins) / float64(f.Wins+f.Losses)
}

func (f Form) season() [4]float64 {
	b2b := 0.0
	if f.BackToBack {
		b2b = 1
	}
	return [4]float64{float64(f.Wins), float64(f.Losses), f.winPct(), b2b}
}

// Build assembles the vector for home hosting away.
func Build(home, away Form) Vector {
	v := make(Vector, 0, len(names))
	v = append(v, home.Averages[:]...)
	hs := home.season()
	v = append(v, hs[:]...)
	v = append(v, away.Averages[:]...)
	as := away.season()
	v = append(v, as[:]...)
	for i := range rollingStats {
		v = append(v, home.Averages[i]-away.Averages[i])
	}
	return append(v, 1, 1)
}

// FormBefore computes a team's form from the games played strictly before
// date (YYYY-MM-DD). logs need not be sorted. At least minGames prior games
// are required.
func FormBefore(logs []models.GameLog, date string, minGames int) (Form, error) {
	day, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return Form{}, fmt.Errorf("features: parse date %q: %w", date, err)
	}

	prior := make([]models.GameLog, 0, len(logs))
	for _, g := range logs {
		if logDate(g) < date {
			prior = append(prior, g)
		}
	}
	models.SortGameLogs(prior)

	if len(prior) < minGames || len(prior) == 0 {
		return Form{}, fmt.Errorf("%w: %d prior games before %s", ErrInsufficientHistory, len(prior), date)
	}

	rows := derive(prior)
	start := len(rows) - Window
	if start < 0 {
		start = 0
	}
	recent := rows[start:]

	var form Form
	for _, r := range recent {
		for i := range r {
			form.Averages[i] += r[i]
		}
	}
	for i := range form.Averages {
		form.Averages[i] /= float64(len(recent))
	}

	for _, g := range prior {
		if g.Won() {
			form.Wins++
		} else {
			form.Losses++
		}
	}
	form.Games = len(prior)
	last := logDate(prior[len(prior)-1])
	form.BackToBack = last == day.AddDate(0, 0, -1).Format(models.DateLayout)
	return form, nil
}

// derive computes the per-game values of rollingStats in order. Logs must be sorted.
func derive(logs []models.GameLog) [][14]float64 {
	out := make([][14]float64, len(logs))
	for i, g := range logs {
		var prev *models.GameLog
		if i > 0 {
			prev = &logs[i-1]
		}

		pace := g.Pace
		if pace == 0 {
			pace = (g.OffPoss + g.DefPoss) / 2
		}
		offRtg := ratio(g.Points, g.OffPoss)

		// older exports lack OpponentPoints; fall back to the previous game's points
		allowed := g.OpponentPoints
		if allowed == 0 && prev != nil {
			allowed = prev.Points
		}
		defRtg := ratio(allowed, g.DefPoss)

		var efgDiff, tsDiff float64
		if prev != nil {
			efgDiff = g.EfgPct - prev.EfgPct
			tsDiff = g.TsPct - prev.TsPct
		}

		out[i] = [14]float64{
			g.OffPoss, g.DefPoss, pace, g.Fg3Pct, g.Fg2Pct, g.TsPct,
			offRtg, defRtg, offRtg - defRtg, efgDiff, tsDiff,
			g.Rebounds, g.Steals, g.Blocks,
		}
	}
	return out
}

func ratio(points, possessions float64) float64 {
	if possessions == 0 {
		return 0
	}
	return points / possessions * 100
}

func logDate(g models.GameLog) string {
	if len(g.Date) > 10 {
		return g.Date[:10]
	}
	return g.Date
}
