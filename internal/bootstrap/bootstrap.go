// Package bootstrap makes sure a trained model is in the store before the
// long-running processes start.
package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/markusmuilu/Predicting-Nba/internal/ledger"
	"github.com/markusmuilu/Predicting-Nba/internal/models"
	"github.com/markusmuilu/Predicting-Nba/internal/providers/pbpstats"
	"github.com/markusmuilu/Predicting-Nba/internal/store"
	"github.com/markusmuilu/Predicting-Nba/internal/training"
)

// SeasonSource supplies the team list and completed seasons.
type SeasonSource interface {
	Teams(ctx context.Context) (models.TeamDirectory, error)
	SeasonGameLogs(ctx context.Context, season string, teamID int64) ([]models.GameLog, error)
	Games(ctx context.Context, season string) (map[string]pbpstats.Schedule, error)
}

type Config struct {
	Store       store.Store
	Source      SeasonSource
	Seasons     []string
	MinGames    int
	Concurrency int
	Train       training.Options
	Logger      *zap.Logger
}

// Result describes what a run did.
type Result struct {
	ModelExisted bool
	TeamsCreated bool
	Rows         int
	Version      string
}

type Bootstrapper struct {
	config Config
	ledger *ledger.Ledger
	logger *zap.SugaredLogger
}

func New(cfg Config) *Bootstrapper {
	if cfg.MinGames <= 0 {
		cfg.MinGames = 5
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Bootstrapper{
		config: cfg,
		ledger: ledger.New(cfg.Store, cfg.Logger),
		logger: cfg.Logger.Sugar(),
	}
}

// Run exits early when the model already exists. Otherwise it ensures the
// team directory, collects the configured seasons, trains and uploads.
func (b *Bootstrapper) Run(ctx context.Context) (Result, error) {
	var res Result

	exists, err := b.config.Store.Exists(ctx, ledger.ModelKey)
	if err != nil {
		return res, fmt.Errorf("check %s: %w", ledger.ModelKey, err)
	}
	if exists {
		b.logger.Infow("Model already present, nothing to do", "key", ledger.ModelKey)
		res.ModelExisted = true
		return res, nil
	}

	teams, created, err := b.ensureTeams(ctx)
	if err != nil {
		return res, err
	}
	res.TeamsCreated = created

	if len(b.config.Seasons) == 0 {
		return res, errors.New("bootstrap: no seasons configured")
	}
	sets := make([]training.Dataset, 0, len(b.config.Seasons))
	for _, season := range b.config.Seasons {
		ds, err := b.collectSeason(ctx, season, teams)
		if err != nil {
			return res, err
		}
		sets = append(sets, ds)
	}
	ds := training.Merge(sets...)
	res.Rows = ds.Len()

	model, err := training.Train(ds, b.config.Train, b.config.Logger)
	if err != nil {
		return res, fmt.Errorf("train: %w", err)
	}
	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return res, fmt.Errorf("encode model: %w", err)
	}
	if err := b.config.Store.Put(ctx, ledger.ModelKey, data); err != nil {
		return res, fmt.Errorf("save %s: %w", ledger.ModelKey, err)
	}
	res.Version = model.Version
	b.logger.Infow("Model uploaded", "key", ledger.ModelKey, "version", model.Version, "rows", res.Rows)
	return res, nil
}

func (b *Bootstrapper) ensureTeams(ctx context.Context) (models.TeamDirectory, bool, error) {
	dir, err := b.ledger.LoadTeams(ctx)
	if err == nil && len(dir.Teams) > 0 {
		return dir, false, nil
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return dir, false, err
	}

	dir, err = b.config.Source.Teams(ctx)
	if err != nil {
		return dir, false, fmt.Errorf("fetch teams: %w", err)
	}
	if len(dir.Teams) == 0 {
		return dir, false, errors.New("bootstrap: provider returned no teams")
	}
	if err := b.ledger.SaveTeams(ctx, dir); err != nil {
		return dir, false, err
	}
	b.logger.Infow("Team directory created", "key", ledger.TeamsKey, "teams", len(dir.Teams))
	return dir, true, nil
}

func (b *Bootstrapper) collectSeason(ctx context.Context, season string, teams models.TeamDirectory) (training.Dataset, error) {
	var (
		mu   sync.Mutex
		logs = make(map[string][]models.GameLog, len(teams.Teams))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.config.Concurrency)
	for _, team := range teams.Teams {
		g.Go(func() error {
			rows, err := b.config.Source.SeasonGameLogs(gctx, season, team.ID)
			if err != nil {
				return fmt.Errorf("game logs %s %s: %w", season, team.Name, err)
			}
			mu.Lock()
			logs[team.Name] = rows
			mu.Unlock()
			return nil
		})
	}
	var schedule map[string]pbpstats.Schedule
	g.Go(func() error {
		s, err := b.config.Source.Games(gctx, season)
		if err != nil {
			return fmt.Errorf("games %s: %w", season, err)
		}
		schedule = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return training.Dataset{}, err
	}

	fixtures := make([]training.Fixture, 0, len(schedule))
	for _, s := range schedule {
		fixtures = append(fixtures, training.Fixture{GameID: s.GameID, HomeTeam: s.HomeTeam, AwayTeam: s.AwayTeam})
	}
	games := training.Games(fixtures, logs)
	ds, skipped := training.BuildDataset(games, logs, b.config.MinGames)
	b.logger.Infow("Season collected",
		"season", season,
		"teams", len(logs),
		"games", len(games),
		"rows", ds.Len(),
		"skipped", skipped,
	)
	return ds, nil
}
