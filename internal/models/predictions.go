package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used for match dates and ledger keys.
const DateLayout = "2006-01-02"

// Status is the lifecycle state stored on every ledger record.
type Status string

const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
)

// Key identifies a prediction across both ledgers. It never changes after creation.
type Key struct {
	Date     string
	HomeTeam string
	AwayTeam string
}

func (k Key) String() string {
	return k.Date + "/" + k.HomeTeam + "-" + k.AwayTeam
}

// DateOf returns the calendar day of t in loc.
func DateOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// Pending is an unresolved prediction held in the active ledger.
type Pending struct {
	Date                 string
	HomeTeam             string
	AwayTeam             string
	PredictedProbability float64
	// GameID is the schedule provider's event id, used to match results when present.
	GameID    string
	Odds      *Odds
	CreatedAt time.Time
}

// Key returns the ledger key of the record.
func (p Pending) Key() Key {
	return Key{Date: p.Date, HomeTeam: p.HomeTeam, AwayTeam: p.AwayTeam}
}

// PredictedWinner is the home team when the home win probability is at least 0.5.
func (p Pending) PredictedWinner() string {
	if p.PredictedProbability >= 0.5 {
		return p.HomeTeam
	}
	return p.AwayTeam
}

// Validate checks the identity fields and the probability range.
func (p Pending) Validate() error {
	if _, err := time.Parse(DateLayout, p.Date); err != nil {
		return fmt.Errorf("%w: date %q", ErrInvalidRecord, p.Date)
	}
	if p.HomeTeam == "" || p.AwayTeam == "" {
		return fmt.Errorf("%w: missing team", ErrInvalidRecord)
	}
	if p.HomeTeam == p.AwayTeam {
		return fmt.Errorf("%w: %s plays itself", ErrInvalidRecord, p.HomeTeam)
	}
	if p.PredictedProbability < 0 || p.PredictedProbability > 1 {
		return fmt.Errorf("%w: probability %v out of range", ErrInvalidRecord, p.PredictedProbability)
	}
	return nil
}

// Resolve settles the prediction against a finished outcome.
func (p Pending) Resolve(outcome Outcome, at time.Time) (Resolved, error) {
	winner, err := outcome.Winner(p.HomeTeam, p.AwayTeam)
	if err != nil {
		return Resolved{}, err
	}
	return Resolved{
		Pending:      p,
		ActualWinner: winner,
		Correct:      p.PredictedWinner() == winner,
		ResolvedAt:   at.UTC(),
		HomeScore:    outcome.HomeScore,
		AwayScore:    outcome.AwayScore,
	}, nil
}

// Resolved is a settled prediction held in the history ledger. It is immutable.
type Resolved struct {
	Pending
	ActualWinner string
	Correct      bool
	ResolvedAt   time.Time
	HomeScore    int
	AwayScore    int
}

type pendingWire struct {
	Date                 string     `json:"date"`
	HomeTeam             string     `json:"home_team"`
	AwayTeam             string     `json:"away_team"`
	PredictedProbability float64    `json:"predicted_probability"`
	PredictedWinner      string     `json:"predicted_winner"`
	Status               Status     `json:"status"`
	GameID               string     `json:"game_id,omitempty"`
	Odds                 *Odds      `json:"odds,omitempty"`
	CreatedAt            *time.Time `json:"created_at,omitempty"`
}

type resolvedWire struct {
	pendingWire
	ActualWinner string    `json:"actual_winner"`
	Correct      bool      `json:"correct"`
	ResolvedAt   time.Time `json:"resolved_at"`
	HomeScore    int       `json:"home_score,omitempty"`
	AwayScore    int       `json:"away_score,omitempty"`
}

func (p Pending) wire(status Status) pendingWire {
	w := pendingWire{
		Date:                 p.Date,
		HomeTeam:             p.HomeTeam,
		AwayTeam:             p.AwayTeam,
		PredictedProbability: p.PredictedProbability,
		PredictedWinner:      p.PredictedWinner(),
		Status:               status,
		GameID:               p.GameID,
		Odds:                 p.Odds,
	}
	if !p.CreatedAt.IsZero() {
		created := p.CreatedAt.UTC()
		w.CreatedAt = &created
	}
	return w
}

func (w pendingWire) pending() Pending {
	p := Pending{
		Date:                 w.Date,
		HomeTeam:             w.HomeTeam,
		AwayTeam:             w.AwayTeam,
		PredictedProbability: w.PredictedProbability,
		GameID:               w.GameID,
		Odds:                 w.Odds,
	}
	if w.CreatedAt != nil {
		p.CreatedAt = *w.CreatedAt
	}
	return p
}

// MarshalJSON writes the record with its status and derived winner.
func (p Pending) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.wire(StatusPending))
}

// UnmarshalJSON rejects records that are not pending. A missing status is read as pending.
func (p *Pending) UnmarshalJSON(data []byte) error {
	var w pendingWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Status != "" && w.Status != StatusPending {
		return fmt.Errorf("%w: status %q in active ledger", ErrInvalidRecord, w.Status)
	}
	decoded := w.pending()
	if err := decoded.Validate(); err != nil {
		return err
	}
	*p = decoded
	return nil
}

// MarshalJSON writes the record with status "resolved".
func (r Resolved) MarshalJSON() ([]byte, error) {
	return json.Marshal(resolvedWire{
		pendingWire:  r.Pending.wire(StatusResolved),
		ActualWinner: r.ActualWinner,
		Correct:      r.Correct,
		ResolvedAt:   r.ResolvedAt.UTC(),
		HomeScore:    r.HomeScore,
		AwayScore:    r.AwayScore,
	})
}

// UnmarshalJSON rejects records that are not resolved.
func (r *Resolved) UnmarshalJSON(data []byte) error {
	var w resolvedWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Status != StatusResolved {
		return fmt.Errorf("%w: status %q in history ledger", ErrInvalidRecord, w.Status)
	}
	pending := w.pendingWire.pending()
	if err := pending.Validate(); err != nil {
		return err
	}
	if w.ActualWinner != pending.HomeTeam && w.ActualWinner != pending.AwayTeam {
		return fmt.Errorf("%w: actual winner %q did not play", ErrInvalidRecord, w.ActualWinner)
	}
	*r = Resolved{
		Pending:      pending,
		ActualWinner: w.ActualWinner,
		Correct:      w.Correct,
		ResolvedAt:   w.ResolvedAt,
		HomeScore:    w.HomeScore,
		AwayScore:    w.AwayScore,
	}
	return nil
}
