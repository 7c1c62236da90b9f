// Package app wires configuration into the store, providers, model and
// services shared by the binaries.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/markusmuilu/Predicting-Nba/internal/config"
	"github.com/markusmuilu/Predicting-Nba/internal/features"
	"github.com/markusmuilu/Predicting-Nba/internal/ledger"
	"github.com/markusmuilu/Predicting-Nba/internal/logic"
	"github.com/markusmuilu/Predicting-Nba/internal/models"
	"github.com/markusmuilu/Predicting-Nba/internal/notify"
	"github.com/markusmuilu/Predicting-Nba/internal/providers"
	"github.com/markusmuilu/Predicting-Nba/internal/providers/espn"
	"github.com/markusmuilu/Predicting-Nba/internal/providers/odds"
	"github.com/markusmuilu/Predicting-Nba/internal/providers/pbpstats"
	"github.com/markusmuilu/Predicting-Nba/internal/readiness"
	"github.com/markusmuilu/Predicting-Nba/internal/scoring"
	"github.com/markusmuilu/Predicting-Nba/internal/store"
)

// RequiredKeys must exist before the api or the automation loop serves.
var RequiredKeys = []string{ledger.TeamsKey, ledger.ModelKey}

// ErrArtifactsMissing is returned when the readiness gate times out.
var ErrArtifactsMissing = errors.New("required artifacts missing")

// NewLogger builds a JSON production logger, or a console logger when ENV
// selects development.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	zcfg := zap.NewProductionConfig()
	if cfg.IsDevelopment() {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

// OpenStore opens the backend named by LEDGER_STORE_URL.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	return store.Open(ctx, cfg.StoreURL, store.Options{
		Prefix:     cfg.KeyPrefix,
		AWSRegion:  cfg.AWSRegion,
		S3Endpoint: cfg.S3Endpoint,
	})
}

// Providers groups the external data sources.
type Providers struct {
	ESPN  *espn.Client
	Stats *pbpstats.Client
	Odds  *odds.Client
}

func NewProviders(cfg *config.Config, logger *zap.Logger) Providers {
	fetcher := providers.NewFetcher(providers.FetcherConfig{
		Timeout:       cfg.ProviderTimeout,
		RatePerSecond: cfg.ProviderRatePerSecond,
		Logger:        logger,
	})
	return Providers{
		ESPN: espn.New(espn.Config{
			BaseURL: cfg.ESPNBaseURL,
			League:  cfg.LeagueLocation(),
			Fetcher: fetcher,
			Logger:  logger,
		}),
		Stats: pbpstats.New(pbpstats.Config{
			BaseURL: cfg.PbpstatsBaseURL,
			Season:  cfg.CurrentSeason,
			Fetcher: fetcher,
			Logger:  logger,
		}),
		Odds: odds.New(odds.Config{
			BaseURL: cfg.OddsAPIURL,
			APIKey:  cfg.OddsAPIKey,
			League:  cfg.LeagueLocation(),
			Fetcher: fetcher,
			Logger:  logger,
		}),
	}
}

// AwaitArtifacts blocks until RequiredKeys exist or READY_MAX_WAIT elapses.
func AwaitArtifacts(ctx context.Context, cfg *config.Config, s store.Store, logger *zap.Logger) error {
	status, err := readiness.New(s, logger).AwaitReady(ctx, RequiredKeys, cfg.ReadyPollInterval, cfg.ReadyMaxWait)
	if err != nil {
		return err
	}
	if status != readiness.Ready {
		return fmt.Errorf("%w after %s", ErrArtifactsMissing, cfg.ReadyMaxWait)
	}
	return nil
}

// LoadModel reads and validates the scoring artifact.
func LoadModel(ctx context.Context, s store.Store) (*scoring.Model, error) {
	data, err := s.Get(ctx, ledger.ModelKey)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ledger.ModelKey, err)
	}
	return scoring.Load(data, features.Names())
}

// Services is everything the api and the automation loop run on.
type Services struct {
	Store     store.Store
	Ledger    *ledger.Ledger
	Model     *scoring.Model
	Teams     models.TeamDirectory
	Predictor logic.Predictor
	Cycle     *logic.Cycle
}

// Build loads the team directory and model, then assembles the cycle. A
// model that fails to load is an error.
func Build(ctx context.Context, cfg *config.Config, s store.Store, p Providers, logger *zap.Logger) (*Services, error) {
	l := ledger.New(s, logger)

	teams, err := l.LoadTeams(ctx)
	if err != nil {
		return nil, err
	}
	model, err := LoadModel(ctx, s)
	if err != nil {
		return nil, err
	}
	logger.Sugar().Infow("Model loaded", "version", model.Version, "layers", model.Layers, "teams", len(teams.Teams))

	predictor := logic.NewPredictor(logic.PredictorConfig{
		Teams:  teams,
		Stats:  p.Stats,
		Scorer: model,
		Logger: logger,
	})
	resolver := logic.NewResolver(logic.ResolverConfig{
		Ledger:     l,
		Results:    p.ESPN,
		Teams:      teams,
		League:     cfg.LeagueLocation(),
		StaleAfter: cfg.StaleAfter,
		Logger:     logger,
	})
	generator := logic.NewGenerator(logic.GeneratorConfig{
		Ledger:    l,
		Schedule:  p.ESPN,
		Predictor: predictor,
		Odds:      p.Odds,
		League:    cfg.LeagueLocation(),
		Limiter:   rate.NewLimiter(rate.Limit(cfg.ProviderRatePerSecond), 1),
		Logger:    logger,
	})

	return &Services{
		Store:     s,
		Ledger:    l,
		Model:     model,
		Teams:     teams,
		Predictor: predictor,
		Cycle:     logic.NewCycle(resolver, generator, logger),
	}, nil
}

// NewNotifier returns a Telegram notifier when configured, otherwise a no-op.
func NewNotifier(cfg *config.Config, service string, logger *zap.Logger) notify.Notifier {
	if !cfg.TelegramEnabled() {
		return notify.Nop{}
	}
	tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, service)
	if err != nil {
		logger.Sugar().Warnw("Telegram notifier disabled", "error", err)
		return notify.Nop{}
	}
	return tg
}
