// Package pbpstats reads team lists, game logs and schedules from api.pbpstats.com.
package pbpstats

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/markusmuilu/Predicting-Nba/internal/models"
	"github.com/markusmuilu/Predicting-Nba/internal/providers"
)

const (
	BaseURL           = "https://api.pbpstats.com"
	regularSeasonType = "Regular Season"
)

// Config configures a Client.
type Config struct {
	BaseURL string
	// Season is used by GameLogs, e.g. "2025-26". Empty means the season of today.
	Season  string
	Fetcher *providers.Fetcher
	Logger  *zap.Logger
}

// Client is the team statistics provider.
type Client struct {
	baseURL string
	season  string
	fetcher *providers.Fetcher
	logger  *zap.SugaredLogger
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Fetcher == nil {
		cfg.Fetcher = providers.NewFetcher(providers.FetcherConfig{Logger: cfg.Logger})
	}
	if cfg.Season == "" {
		cfg.Season = SeasonFor(time.Now())
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		season:  cfg.Season,
		fetcher: cfg.Fetcher,
		logger:  cfg.Logger.Sugar(),
	}
}

// SeasonFor returns the season label containing t. Seasons start in October.
func SeasonFor(t time.Time) string {
	start := t.Year()
	if t.Month() < time.October {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

// Teams fetches the team directory.
func (c *Client) Teams(ctx context.Context) (models.TeamDirectory, error) {
	var resp struct {
		Teams []struct {
			ID   json.RawMessage `json:"id"`
			Text string          `json:"text"`
		} `json:"teams"`
	}
	if err := c.fetcher.GetJSON(ctx, c.baseURL+"/get-teams/nba", nil, &resp); err != nil {
		return models.TeamDirectory{}, fmt.Errorf("pbpstats: teams: %w", err)
	}
	if len(resp.Teams) == 0 {
		return models.TeamDirectory{}, fmt.Errorf("%w: pbpstats returned no teams", providers.ErrMalformed)
	}

	dir := models.TeamDirectory{Teams: make([]models.Team, 0, len(resp.Teams))}
	for _, t := range resp.Teams {
		id, err := strconv.ParseInt(strings.Trim(string(t.ID), `"`), 10, 64)
		if err != nil {
			return models.TeamDirectory{}, fmt.Errorf("%w: team %q id %s", providers.ErrMalformed, t.Text, t.ID)
		}
		dir.Teams = append(dir.Teams, models.Team{ID: id, Name: strings.ToUpper(t.Text)})
	}
	return dir, nil
}

// SeasonGameLogs fetches one team's regular-season logs, oldest first.
func (c *Client) SeasonGameLogs(ctx context.Context, season string, teamID int64) ([]models.GameLog, error) {
	query := url.Values{
		"Season":     {season},
		"SeasonType": {regularSeasonType},
		"EntityType": {"Team"},
		"EntityId":   {strconv.FormatInt(teamID, 10)},
	}
	var resp struct {
		Rows []models.GameLog `json:"multi_row_table_data"`
	}
	if err := c.fetcher.GetJSON(ctx, c.baseURL+"/get-game-logs/nba", query, &resp); err != nil {
		return nil, fmt.Errorf("pbpstats: game logs %d %s: %w", teamID, season, err)
	}
	models.SortGameLogs(resp.Rows)
	return resp.Rows, nil
}

// GameLogs fetches the configured season's logs for team.
func (c *Client) GameLogs(ctx context.Context, team models.Team) ([]models.GameLog, error) {
	return c.SeasonGameLogs(ctx, c.season, team.ID)
}

// Schedule is the home and away side of one game.
type Schedule struct {
	GameID     string
	HomeTeam   string
	AwayTeam   string
	HomePoints float64
	AwayPoints float64
}

// Games maps game id to the home/away sides for a season.
func (c *Client) Games(ctx context.Context, season string) (map[string]Schedule, error) {
	query := url.Values{"Season": {season}, "SeasonType": {regularSeasonType}}
	var resp struct {
		Results []struct {
			GameID     json.RawMessage `json:"GameId"`
			HomeTeam   string          `json:"HomeTeamAbbreviation"`
			AwayTeam   string          `json:"AwayTeamAbbreviation"`
			HomePoints float64         `json:"HomePoints"`
			AwayPoints float64         `json:"AwayPoints"`
		} `json:"results"`
	}
	if err := c.fetcher.GetJSON(ctx, c.baseURL+"/get-games/nba", query, &resp); err != nil {
		return nil, fmt.Errorf("pbpstats: games %s: %w", season, err)
	}

	out := make(map[string]Schedule, len(resp.Results))
	for _, g := range resp.Results {
		id := padGameID(strings.Trim(string(g.GameID), `"`))
		if id == "" || g.HomeTeam == "" || g.AwayTeam == "" {
			continue
		}
		out[id] = Schedule{
			GameID:     id,
			HomeTeam:   strings.ToUpper(g.HomeTeam),
			AwayTeam:   strings.ToUpper(g.AwayTeam),
			HomePoints: g.HomePoints,
			AwayPoints: g.AwayPoints,
		}
	}
	c.logger.Debugw("Fetched schedule", "season", season, "games", len(out))
	return out, nil
}

func padGameID(id string) string {
	if id == "" || len(id) >= 10 {
		return id
	}
	return strings.Repeat("0", 10-len(id)) + id
}
