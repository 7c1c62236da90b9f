// Package ledger reads and writes the Active and History documents.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/markusmuilu/Predicting-Nba/internal/models"
	"github.com/markusmuilu/Predicting-Nba/internal/store"
)

// Well-known store keys.
const (
	ActiveKey  = "current/current_predictions.json"
	HistoryKey = "history/prediction_history.json"
	TeamsKey   = "teams/teams.json"
	ModelKey   = "models/prediction_model.json"
)

// legacyPlaceholder marks an Active document written on a day without games.
const legacyPlaceholder = "NO_GAMES_TODAY"

// ErrCorrupt is returned when a stored document cannot be decoded.
var ErrCorrupt = errors.New("ledger: corrupt document")

// Ledger is the typed view over the store. It is not safe for concurrent
// writers across processes.
type Ledger struct {
	store  store.Store
	logger *zap.SugaredLogger
}

func New(s store.Store, logger *zap.Logger) *Ledger {
	return &Ledger{store: s, logger: logger.Sugar()}
}

// Store returns the underlying object store.
func (l *Ledger) Store() store.Store {
	return l.store
}

// LoadActive returns the Active ledger. A missing document is an empty ledger.
func (l *Ledger) LoadActive(ctx context.Context) (*Active, error) {
	raw, err := l.getArray(ctx, ActiveKey)
	if err != nil {
		return nil, err
	}
	active := NewActive()
	for i, item := range raw {
		if isPlaceholder(item) {
			l.logger.Infow("Dropping legacy placeholder row", "key", ActiveKey)
			continue
		}
		var p models.Pending
		if err := json.Unmarshal(item, &p); err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %v", ErrCorrupt, ActiveKey, i, err)
		}
		active.Upsert(p)
	}
	return active, nil
}

// SaveActive replaces the Active document.
func (l *Ledger) SaveActive(ctx context.Context, active *Active) error {
	return l.putJSON(ctx, ActiveKey, active.Records())
}

// LoadHistory returns the History ledger. A missing document is an empty ledger.
func (l *Ledger) LoadHistory(ctx context.Context) (*History, error) {
	raw, err := l.getArray(ctx, HistoryKey)
	if err != nil {
		return nil, err
	}
	history := NewHistory()
	for i, item := range raw {
		var r models.Resolved
		if err := json.Unmarshal(item, &r); err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %v", ErrCorrupt, HistoryKey, i, err)
		}
		history.Append(r)
	}
	return history, nil
}

// AppendHistory re-reads History, appends the records whose key is not
// already present and writes it back. It returns how many were added.
func (l *Ledger) AppendHistory(ctx context.Context, records []models.Resolved) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	history, err := l.LoadHistory(ctx)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, r := range records {
		if history.Append(r) {
			added++
		} else {
			l.logger.Warnw("Record already in history, not appending", "key", r.Key().String())
		}
	}
	if added == 0 {
		return 0, nil
	}
	if err := l.putJSON(ctx, HistoryKey, history.Records()); err != nil {
		return 0, err
	}
	return added, nil
}

// LoadTeams reads the team directory.
func (l *Ledger) LoadTeams(ctx context.Context) (models.TeamDirectory, error) {
	var dir models.TeamDirectory
	b, err := l.store.Get(ctx, TeamsKey)
	if err != nil {
		return dir, fmt.Errorf("load %s: %w", TeamsKey, err)
	}
	if err := json.Unmarshal(b, &dir); err != nil {
		return dir, fmt.Errorf("%w: %s: %v", ErrCorrupt, TeamsKey, err)
	}
	return dir, nil
}

// SaveTeams writes the team directory.
func (l *Ledger) SaveTeams(ctx context.Context, dir models.TeamDirectory) error {
	return l.putJSON(ctx, TeamsKey, dir)
}

func (l *Ledger) getArray(ctx context.Context, key string) ([]json.RawMessage, error) {
	b, err := l.store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return raw, nil
}

func (l *Ledger) putJSON(ctx context.Context, key string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := l.store.Put(ctx, key, b); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func isPlaceholder(item json.RawMessage) bool {
	var row struct {
		Team     string `json:"team"`
		HomeTeam string `json:"home_team"`
	}
	if err := json.Unmarshal(item, &row); err != nil {
		return false
	}
	return row.Team == legacyPlaceholder || row.HomeTeam == legacyPlaceholder
}
