// Package handlers exposes the inference gateway: single-match predictions,
// a manual cycle trigger and read-only views of the ledgers.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/markusmuilu/Predicting-Nba/internal/ledger"
	"github.com/markusmuilu/Predicting-Nba/internal/logic"
)

// CycleRunner runs one resolve-then-generate pass.
type CycleRunner interface {
	Run(ctx context.Context) (logic.CycleReport, error)
}

// LedgerReader is the read side of the ledger used by the views.
type LedgerReader interface {
	LoadActive(ctx context.Context) (*ledger.Active, error)
	LoadHistory(ctx context.Context) (*ledger.History, error)
}

// ExistenceChecker reports whether a stored artifact is present.
type ExistenceChecker interface {
	Exists(ctx context.Context, key string) (bool, error)
}

type Config struct {
	Predictor      logic.Predictor
	Cycle          CycleRunner
	Ledger         LedgerReader
	Store          ExistenceChecker
	ModelVersion   string
	League         *time.Location
	Now            func() time.Time
	AllowedOrigins []string
	RequestTimeout time.Duration
	// UpdateTimeout bounds a manual cycle. It is detached from the request.
	UpdateTimeout time.Duration
	Logger        *zap.Logger
}

type Handler struct {
	predictor      logic.Predictor
	cycle          CycleRunner
	ledger         LedgerReader
	store          ExistenceChecker
	modelVersion   string
	league         *time.Location
	now            func() time.Time
	allowedOrigins []string
	requestTimeout time.Duration
	updateTimeout  time.Duration
	logger         *zap.SugaredLogger
	validator      *validator.Validate
}

func New(cfg Config) *Handler {
	if cfg.League == nil {
		cfg.League = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if cfg.UpdateTimeout <= 0 {
		cfg.UpdateTimeout = 10 * time.Minute
	}
	return &Handler{
		predictor:      cfg.Predictor,
		cycle:          cfg.Cycle,
		ledger:         cfg.Ledger,
		store:          cfg.Store,
		modelVersion:   cfg.ModelVersion,
		league:         cfg.League,
		now:            cfg.Now,
		allowedOrigins: cfg.AllowedOrigins,
		requestTimeout: cfg.RequestTimeout,
		updateTimeout:  cfg.UpdateTimeout,
		logger:         cfg.Logger.Sugar(),
		validator:      validator.New(),
	}
}

// Routes builds the router with the standard middleware stack.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(chimiddleware.Recoverer)

	origins := h.allowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// the manual cycle runs on its own deadline
	r.Post("/update", h.Update)

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(h.requestTimeout))

		r.Get("/health", h.Health)
		r.Get("/ready", h.Ready)
		r.Handle("/metrics", promhttp.Handler())

		r.Get("/predict", h.Predict)

		r.Route("/predictions", func(r chi.Router) {
			r.Get("/current", h.CurrentPredictions)
			r.Get("/history", h.PredictionHistory)
		})
	})

	return r
}
