package main

import (
	"fmt"

	"github.com/markusmuilu/Predicting-Nba/internal/ledger"
	"github.com/markusmuilu/Predicting-Nba/internal/models"
)

// FormatPending renders one pending record on a line.
func FormatPending(p models.Pending) string {
	line := fmt.Sprintf("%s %s vs %s  p(home)=%.3f  pick=%s", p.Date, p.HomeTeam, p.AwayTeam, p.PredictedProbability, p.PredictedWinner())
	if p.Odds != nil {
		line += fmt.Sprintf("  odds %.2f/%.2f (%s)", p.Odds.HomeOdds, p.Odds.AwayOdds, p.Odds.Bookmaker)
	}
	return line
}

// FormatResolved renders one resolved record with its result.
func FormatResolved(r models.Resolved) string {
	mark := "miss"
	if r.Correct {
		mark = "hit"
	}
	score := ""
	if r.HomeScore != 0 || r.AwayScore != 0 {
		score = fmt.Sprintf(" %d-%d", r.HomeScore, r.AwayScore)
	}
	return fmt.Sprintf("%s %s vs %s  pick=%s  winner=%s%s  %s", r.Date, r.HomeTeam, r.AwayTeam, r.PredictedWinner(), r.ActualWinner, score, mark)
}

// FormatAccuracy renders the summary line.
func FormatAccuracy(a ledger.Accuracy) string {
	if a.Total == 0 {
		return "Accuracy: no resolved predictions"
	}
	return fmt.Sprintf("Accuracy: %d/%d (%.1f%%)", a.Correct, a.Total, a.Rate*100)
}
