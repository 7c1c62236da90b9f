package features

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/markusmuilu/Predicting-Nba/internal/models"
)

func gameLogs(n int, startDay int, points, allowed float64) []models.GameLog {
	logs := make([]models.GameLog, 0, n)
	for i := 0; i < n; i++ {
		logs = append(logs, models.GameLog{
			Date:           fmt.Sprintf("2024-01-%02d", startDay+2*i),
			Points:         points,
			OpponentPoints: allowed,
			OffPoss:        100,
			DefPoss:        100,
			Fg3Pct:         0.36,
			TsPct:          0.58,
			EfgPct:         0.54,
			Rebounds:       44,
		})
	}
	return logs
}

func TestNames(t *testing.T) {
	got := Names()
	if len(got) != 52 || Len() != 52 {
		t.Fatalf("len(Names) = %d, want 52", len(got))
	}
	tests := map[int]string{
		0:  "OffPoss_avg",
		14: "SeasonWins",
		17: "IsBackToBack",
		18: "Opp_OffPoss_avg",
		35: "Opp_IsBackToBack",
		36: "OffPoss_diff",
		50: "IsHome",
		51: "HomeAdvantage",
	}
	for i, want := range tests {
		if got[i] != want {
			t.Errorf("Names()[%d] = %s, want %s", i, got[i], want)
		}
	}
	seen := map[string]bool{}
	for _, n := range got {
		if seen[n] {
			t.Errorf("duplicate feature %s", n)
		}
		seen[n] = true
	}
}

func TestFormBefore_OnlyPriorGames(t *testing.T) {
	logs := gameLogs(5, 1, 110, 100) // 01, 03, 05, 07, 09
	form, err := FormBefore(logs, "2024-01-06", 1)
	if err != nil {
		t.Fatalf("FormBefore: %v", err)
	}
	if form.Games != 3 {
		t.Errorf("Games = %d, want 3", form.Games)
	}
	if form.Wins != 3 || form.Losses != 0 {
		t.Errorf("record = %d-%d, want 3-0", form.Wins, form.Losses)
	}
	if form.BackToBack {
		t.Error("BackToBack set with a day off")
	}
	// OffRtg_avg
	if math.Abs(form.Averages[6]-110) > 1e-9 {
		t.Errorf("OffRtg avg = %v, want 110", form.Averages[6])
	}
	// NetRtg_avg
	if math.Abs(form.Averages[8]-10) > 1e-9 {
		t.Errorf("NetRtg avg = %v, want 10", form.Averages[8])
	}
	// Pace falls back to mean possessions
	if form.Averages[2] != 100 {
		t.Errorf("Pace avg = %v, want 100", form.Averages[2])
	}
}

func TestFormBefore_WindowAndBackToBack(t *testing.T) {
	logs := gameLogs(12, 1, 100, 110) // last game on the 23rd
	logs[11].Rebounds = 64
	form, err := FormBefore(logs, "2024-01-24", Window)
	if err != nil {
		t.Fatalf("FormBefore: %v", err)
	}
	if !form.BackToBack {
		t.Error("BackToBack not set for consecutive days")
	}
	if form.Losses != 12 {
		t.Errorf("Losses = %d, want 12", form.Losses)
	}
	// only the last 10 games are averaged
	if want := 44.0 + 20.0/Window; math.Abs(form.Averages[11]-want) > 1e-9 {
		t.Errorf("Rebounds avg = %v, want %v", form.Averages[11], want)
	}
}

func TestFormBefore_Insufficient(t *testing.T) {
	logs := gameLogs(3, 1, 100, 90)
	if _, err := FormBefore(logs, "2024-01-30", Window); !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("err = %v, want ErrInsufficientHistory", err)
	}
	if _, err := FormBefore(logs, "2024-01-01", 0); !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("no prior games err = %v, want ErrInsufficientHistory", err)
	}
	if _, err := FormBefore(logs, "Jan 30", 1); err == nil {
		t.Error("bad date accepted")
	}
}

func TestDefRtgFallsBackToPreviousPoints(t *testing.T) {
	logs := []models.GameLog{
		{Date: "2024-01-01", Points: 90, OffPoss: 100, DefPoss: 100},
		{Date: "2024-01-03", Points: 120, OffPoss: 100, DefPoss: 100},
	}
	rows := derive(logs)
	if rows[1][7] != 90 {
		t.Errorf("DefRtg = %v, want 90", rows[1][7])
	}
}

func TestBuild(t *testing.T) {
	home := Form{Wins: 10, Losses: 5, BackToBack: true}
	home.Averages[0] = 101
	away := Form{Wins: 3, Losses: 12}
	away.Averages[0] = 97

	v := Build(home, away)
	if len(v) != Len() {
		t.Fatalf("len = %d, want %d", len(v), Len())
	}
	idx := map[string]int{}
	for i, n := range Names() {
		idx[n] = i
	}
	checks := map[string]float64{
		"OffPoss_avg":      101,
		"Opp_OffPoss_avg":  97,
		"OffPoss_diff":     4,
		"SeasonWins":       10,
		"SeasonWinPct":     10.0 / 15.0,
		"IsBackToBack":     1,
		"Opp_IsBackToBack": 0,
		"Opp_SeasonWinPct": 3.0 / 15.0,
		"IsHome":           1,
		"HomeAdvantage":    1,
	}
	for name, want := range checks {
		if math.Abs(v[idx[name]]-want) > 1e-9 {
			t.Errorf("%s = %v, want %v", name, v[idx[name]], want)
		}
	}
}
