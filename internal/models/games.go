package models

import (
	"fmt"
	"time"
)

// GameState mirrors the scoreboard state of a game.
type GameState string

const (
	GameScheduled GameState = "pre"
	GameLive      GameState = "in"
	GameFinal     GameState = "post"
)

// Matchup is a scheduled pair of teams on a given date.
type Matchup struct {
	Date     string
	HomeTeam string
	AwayTeam string
	GameID   string
	StartsAt time.Time
	State    GameState
}

func (m Matchup) Key() Key {
	return Key{Date: m.Date, HomeTeam: m.HomeTeam, AwayTeam: m.AwayTeam}
}

// Outcome is the result provider's view of one game.
type Outcome struct {
	Finished  bool
	HomeScore int
	AwayScore int
}

// Winner returns the winning team code. Finished games cannot end level.
func (o Outcome) Winner(home, away string) (string, error) {
	if !o.Finished {
		return "", fmt.Errorf("%w: game %s-%s not finished", ErrInvalidRecord, home, away)
	}
	switch {
	case o.HomeScore > o.AwayScore:
		return home, nil
	case o.AwayScore > o.HomeScore:
		return away, nil
	default:
		return "", fmt.Errorf("%w: level final score %d-%d", ErrInvalidRecord, o.HomeScore, o.AwayScore)
	}
}

// Odds is reference market data attached to a prediction for display only.
type Odds struct {
	Bookmaker string    `json:"bookmaker"`
	HomeOdds  float64   `json:"home_odds"`
	AwayOdds  float64   `json:"away_odds"`
	FetchedAt time.Time `json:"fetched_at"`
}
