// Package espn reads the public ESPN scoreboard for schedules and results.
package espn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/markusmuilu/Predicting-Nba/internal/models"
	"github.com/markusmuilu/Predicting-Nba/internal/providers"
)

const (
	BaseURL   = "https://site.api.espn.com/apis/site/v2/sports"
	sportPath = "basketball/nba"
)

// ErrGameNotFound is returned when a scoreboard has no event for a record.
var ErrGameNotFound = errors.New("espn: game not on scoreboard")

// abbreviationFixes maps ESPN codes that differ from the team directory.
var abbreviationFixes = map[string]string{
	"GS":   "GSW",
	"NY":   "NYK",
	"SA":   "SAS",
	"NO":   "NOP",
	"UTAH": "UTA",
	"WSH":  "WAS",
}

// NormalizeAbbreviation converts an ESPN team code to the directory code.
func NormalizeAbbreviation(raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if fixed, ok := abbreviationFixes[code]; ok {
		return fixed
	}
	return code
}

// Game is one scoreboard event with its current score.
type Game struct {
	models.Matchup
	Completed bool
	HomeScore int
	AwayScore int
	// ScoreErr is set when the event is final but its score could not be read.
	ScoreErr error
}

// Config configures a Client.
type Config struct {
	BaseURL  string
	League   *time.Location
	CacheTTL time.Duration
	Fetcher  *providers.Fetcher
	Logger   *zap.Logger
}

type cachedBoard struct {
	games     []Game
	fetchedAt time.Time
}

// Client implements both the schedule and the results provider. Scoreboards
// are memoised per date for CacheTTL so one cycle fetches each date once.
type Client struct {
	baseURL  string
	league   *time.Location
	cacheTTL time.Duration
	fetcher  *providers.Fetcher
	logger   *zap.SugaredLogger
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]cachedBoard
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}
	if cfg.League == nil {
		cfg.League = time.UTC
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Fetcher == nil {
		cfg.Fetcher = providers.NewFetcher(providers.FetcherConfig{Logger: cfg.Logger})
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		league:   cfg.League,
		cacheTTL: cfg.CacheTTL,
		fetcher:  cfg.Fetcher,
		logger:   cfg.Logger.Sugar(),
		now:      time.Now,
		cache:    make(map[string]cachedBoard),
	}
}

// Scoreboard returns every event ESPN lists for date (YYYY-MM-DD).
func (c *Client) Scoreboard(ctx context.Context, date string) ([]Game, error) {
	c.mu.Lock()
	if cached, ok := c.cache[date]; ok && c.now().Sub(cached.fetchedAt) < c.cacheTTL {
		c.mu.Unlock()
		return cached.games, nil
	}
	c.mu.Unlock()

	day, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("espn: parse date %q: %w", date, err)
	}

	var board scoreboardResponse
	url := fmt.Sprintf("%s/%s/scoreboard", c.baseURL, sportPath)
	query := map[string][]string{"dates": {day.Format("20060102")}}
	if err := c.fetcher.GetJSON(ctx, url, query, &board); err != nil {
		return nil, fmt.Errorf("espn: scoreboard %s: %w", date, err)
	}

	games := make([]Game, 0, len(board.Events))
	for _, ev := range board.Events {
		g, err := c.toGame(ev)
		if err != nil {
			c.logger.Warnw("Skipping scoreboard event", "event_id", ev.ID, "date", date, "error", err)
			continue
		}
		games = append(games, g)
	}

	c.mu.Lock()
	c.cache[date] = cachedBoard{games: games, fetchedAt: c.now()}
	c.mu.Unlock()
	return games, nil
}

// Matchups returns the games scheduled on date in the league time zone.
func (c *Client) Matchups(ctx context.Context, date string) ([]models.Matchup, error) {
	games, err := c.Scoreboard(ctx, date)
	if err != nil {
		return nil, err
	}
	out := make([]models.Matchup, 0, len(games))
	for _, g := range games {
		if g.Date != date {
			continue
		}
		out = append(out, g.Matchup)
	}
	return out, nil
}

// Outcome looks up the result for a pending record, matching by event id
// when the record has one and by team codes otherwise.
func (c *Client) Outcome(ctx context.Context, p models.Pending) (models.Outcome, error) {
	games, err := c.Scoreboard(ctx, p.Date)
	if err != nil {
		return models.Outcome{}, err
	}
	g, ok := findGame(games, p)
	if !ok {
		return models.Outcome{}, fmt.Errorf("%w: %s", ErrGameNotFound, p.Key())
	}
	if !g.Completed {
		return models.Outcome{Finished: false}, nil
	}
	if g.ScoreErr != nil {
		return models.Outcome{}, g.ScoreErr
	}
	return models.Outcome{Finished: true, HomeScore: g.HomeScore, AwayScore: g.AwayScore}, nil
}

func findGame(games []Game, p models.Pending) (Game, bool) {
	if p.GameID != "" {
		for _, g := range games {
			if g.GameID == p.GameID {
				return g, true
			}
		}
	}
	for _, g := range games {
		if g.HomeTeam == p.HomeTeam && g.AwayTeam == p.AwayTeam {
			return g, true
		}
	}
	return Game{}, false
}

func (c *Client) toGame(ev event) (Game, error) {
	if len(ev.Competitions) == 0 {
		return Game{}, fmt.Errorf("%w: event without competitions", providers.ErrMalformed)
	}
	start, err := parseEventTime(ev.Date)
	if err != nil {
		return Game{}, err
	}
	comp := ev.Competitions[0]
	status := comp.Status
	if status.Type.State == "" {
		status = ev.Status
	}

	g := Game{
		Matchup: models.Matchup{
			Date:     models.DateOf(start, c.league),
			GameID:   ev.ID,
			StartsAt: start,
			State:    models.GameState(status.Type.State),
		},
		Completed: status.Type.Completed && status.Type.State == string(models.GameFinal),
	}

	var homeScore, awayScore string
	for _, team := range comp.Competitors {
		code := NormalizeAbbreviation(team.Team.Abbreviation)
		switch team.HomeAway {
		case "home":
			g.HomeTeam, homeScore = code, string(team.Score)
		case "away":
			g.AwayTeam, awayScore = code, string(team.Score)
		}
	}
	if g.HomeTeam == "" || g.AwayTeam == "" {
		return Game{}, fmt.Errorf("%w: event %s missing home or away team", providers.ErrMalformed, ev.ID)
	}

	if g.Completed {
		h, herr := models.ParseScore(homeScore)
		a, aerr := models.ParseScore(awayScore)
		if herr != nil || aerr != nil {
			g.ScoreErr = fmt.Errorf("%w: event %s score %q-%q", providers.ErrMalformed, ev.ID, homeScore, awayScore)
		}
		g.HomeScore, g.AwayScore = h, a
	}
	return g, nil
}

// parseEventTime accepts ESPN's minute-precision timestamps ("2024-01-06T00:30Z").
func parseEventTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04Z07:00", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: event date %q", providers.ErrMalformed, s)
}
