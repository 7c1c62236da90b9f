// Package odds fetches reference moneyline prices from the-odds-api.
// Prices are display data only and never feed the model.
package odds

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/markusmuilu/Predicting-Nba/internal/models"
	"github.com/markusmuilu/Predicting-Nba/internal/providers"
)

const (
	BaseURL          = "https://api.the-odds-api.com"
	DefaultBookmaker = "pinnacle"
	h2hMarket        = "h2h"
)

// Config configures a Client.
type Config struct {
	BaseURL   string
	APIKey    string
	Bookmaker string
	League    *time.Location
	Fetcher   *providers.Fetcher
	Logger    *zap.Logger
}

// Client is the odds provider.
type Client struct {
	baseURL   string
	apiKey    string
	bookmaker string
	league    *time.Location
	fetcher   *providers.Fetcher
	logger    *zap.SugaredLogger
	now       func() time.Time
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}
	if cfg.Bookmaker == "" {
		cfg.Bookmaker = DefaultBookmaker
	}
	if cfg.League == nil {
		cfg.League = time.UTC
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Fetcher == nil {
		cfg.Fetcher = providers.NewFetcher(providers.FetcherConfig{Logger: cfg.Logger})
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		bookmaker: cfg.Bookmaker,
		league:    cfg.League,
		fetcher:   cfg.Fetcher,
		logger:    cfg.Logger.Sugar(),
		now:       time.Now,
	}
}

type oddsEvent struct {
	ID           string    `json:"id"`
	CommenceTime time.Time `json:"commence_time"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	Bookmakers   []struct {
		Key     string `json:"key"`
		Markets []struct {
			Key      string `json:"key"`
			Outcomes []struct {
				Name  string  `json:"name"`
				Price float64 `json:"price"`
			} `json:"outcomes"`
		} `json:"markets"`
	} `json:"bookmakers"`
}

// Odds returns the bookmaker's decimal h2h prices keyed by matchup for
// games starting on date in the league time zone.
func (c *Client) Odds(ctx context.Context, date string) (map[models.Key]models.Odds, error) {
	if c.apiKey == "" {
		return nil, nil
	}
	query := url.Values{
		"apiKey":     {c.apiKey},
		"regions":    {"eu"},
		"markets":    {h2hMarket},
		"oddsFormat": {"decimal"},
		"dateFormat": {"iso"},
	}
	var events []oddsEvent
	if err := c.fetcher.GetJSON(ctx, c.baseURL+"/v4/sports/basketball_nba/odds", query, &events); err != nil {
		return nil, fmt.Errorf("odds: %w", err)
	}

	fetchedAt := c.now().UTC()
	out := make(map[models.Key]models.Odds)
	for _, ev := range events {
		if models.DateOf(ev.CommenceTime, c.league) != date {
			continue
		}
		home, away := TeamCode(ev.HomeTeam), TeamCode(ev.AwayTeam)
		if home == "" || away == "" {
			c.logger.Warnw("Unknown team name in odds feed", "home", ev.HomeTeam, "away", ev.AwayTeam)
			continue
		}
		prices, ok := c.h2h(ev)
		if !ok {
			continue
		}
		out[models.Key{Date: date, HomeTeam: home, AwayTeam: away}] = models.Odds{
			Bookmaker: c.bookmaker,
			HomeOdds:  prices[ev.HomeTeam],
			AwayOdds:  prices[ev.AwayTeam],
			FetchedAt: fetchedAt,
		}
	}
	return out, nil
}

func (c *Client) h2h(ev oddsEvent) (map[string]float64, bool) {
	for _, b := range ev.Bookmakers {
		if b.Key != c.bookmaker {
			continue
		}
		for _, m := range b.Markets {
			if m.Key != h2hMarket {
				continue
			}
			prices := make(map[string]float64, len(m.Outcomes))
			for _, o := range m.Outcomes {
				prices[o.Name] = o.Price
			}
			return prices, true
		}
	}
	return nil, false
}
