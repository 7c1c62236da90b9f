package models

import (
	"sort"
	"strings"
)

// Team is one entry of the stored team directory.
type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TeamDirectory is the closed set of team codes the model knows about.
type TeamDirectory struct {
	Teams []Team `json:"teams"`
}

// Lookup finds a team by code, case-insensitively.
func (d TeamDirectory) Lookup(code string) (Team, bool) {
	for _, t := range d.Teams {
		if strings.EqualFold(t.Name, code) {
			return t, true
		}
	}
	return Team{}, false
}

// Codes returns the sorted team codes.
func (d TeamDirectory) Codes() []string {
	codes := make([]string, 0, len(d.Teams))
	for _, t := range d.Teams {
		codes = append(codes, t.Name)
	}
	sort.Strings(codes)
	return codes
}

// GameLog is one team-game row from the statistics provider.
type GameLog struct {
	Date           string  `json:"Date"`
	GameID         string  `json:"GameId"`
	Opponent       string  `json:"Opponent"`
	Points         float64 `json:"Points"`
	OpponentPoints float64 `json:"OpponentPoints"`
	PlusMinus      float64 `json:"PlusMinus"`
	OffPoss        float64 `json:"OffPoss"`
	DefPoss        float64 `json:"DefPoss"`
	Pace           float64 `json:"Pace"`
	Fg3Pct         float64 `json:"Fg3Pct"`
	Fg2Pct         float64 `json:"Fg2Pct"`
	TsPct          float64 `json:"TsPct"`
	EfgPct         float64 `json:"EfgPct"`
	Rebounds       float64 `json:"Rebounds"`
	Steals         float64 `json:"Steals"`
	Blocks         float64 `json:"Blocks"`
}

// Won reports whether the team won the game. PlusMinus is preferred when present.
func (g GameLog) Won() bool {
	if g.PlusMinus != 0 {
		return g.PlusMinus > 0
	}
	return g.Points > g.OpponentPoints
}

// SortGameLogs orders rows by date, oldest first.
func SortGameLogs(logs []GameLog) {
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].Date < logs[j].Date })
}
