package espn

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/markusmuilu/Predicting-Nba/internal/models"
	"github.com/markusmuilu/Predicting-Nba/internal/providers"
)

const scoreboardJSON = `{
  "events": [
    {
      "id": "401585123",
      "date": "2024-01-06T00:30Z",
      "competitions": [{
        "status": {"type": {"state": "post", "completed": true}},
        "competitors": [
          {"homeAway": "home", "score": "110", "team": {"abbreviation": "BOS"}},
          {"homeAway": "away", "score": "102", "team": {"abbreviation": "LAL"}}
        ]
      }]
    },
    {
      "id": "401585124",
      "date": "2024-01-06T03:00Z",
      "competitions": [{
        "status": {"type": {"state": "pre", "completed": false}},
        "competitors": [
          {"homeAway": "home", "score": "0", "team": {"abbreviation": "GS"}},
          {"homeAway": "away", "score": 0, "team": {"abbreviation": "UTAH"}}
        ]
      }]
    },
    {
      "id": "401585125",
      "date": "2024-01-06T01:00Z",
      "competitions": [{
        "status": {"type": {"state": "post", "completed": true}},
        "competitors": [
          {"homeAway": "home", "score": "", "team": {"abbreviation": "NY"}},
          {"homeAway": "away", "score": "99", "team": {"abbreviation": "WSH"}}
        ]
      }]
    }
  ]
}`

func newTestClient(t *testing.T, calls *int32) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.URL.Path != "/basketball/nba/scoreboard" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("dates") != "20240105" {
			w.Write([]byte(`{"events":[]}`))
			return
		}
		w.Write([]byte(scoreboardJSON))
	}))
	t.Cleanup(server.Close)

	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	return New(Config{
		BaseURL: server.URL,
		League:  ny,
		Fetcher: providers.NewFetcher(providers.FetcherConfig{RatePerSecond: 1000, MaxElapsed: time.Second}),
	})
}

func TestNormalizeAbbreviation(t *testing.T) {
	tests := map[string]string{
		"GS": "GSW", "NY": "NYK", "SA": "SAS", "NO": "NOP", "UTAH": "UTA", "WSH": "WAS",
		"bos": "BOS", "LAL": "LAL",
	}
	for in, want := range tests {
		if got := NormalizeAbbreviation(in); got != want {
			t.Errorf("NormalizeAbbreviation(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMatchups(t *testing.T) {
	var calls int32
	c := newTestClient(t, &calls)

	games, err := c.Matchups(context.Background(), "2024-01-05")
	if err != nil {
		t.Fatalf("Matchups: %v", err)
	}
	if len(games) != 3 {
		t.Fatalf("got %d matchups, want 3", len(games))
	}
	// UTC evening of the 6th is still the 5th in New York
	for _, g := range games {
		if g.Date != "2024-01-05" {
			t.Errorf("matchup %s date = %s", g.GameID, g.Date)
		}
	}
	if games[1].HomeTeam != "GSW" || games[1].AwayTeam != "UTA" || games[1].State != models.GameScheduled {
		t.Errorf("second matchup = %+v", games[1])
	}
}

func TestOutcome(t *testing.T) {
	var calls int32
	c := newTestClient(t, &calls)
	ctx := context.Background()

	out, err := c.Outcome(ctx, models.Pending{Date: "2024-01-05", HomeTeam: "BOS", AwayTeam: "LAL"})
	if err != nil {
		t.Fatalf("Outcome: %v", err)
	}
	if !out.Finished || out.HomeScore != 110 || out.AwayScore != 102 {
		t.Errorf("Outcome = %+v", out)
	}

	out, err = c.Outcome(ctx, models.Pending{Date: "2024-01-05", HomeTeam: "GSW", AwayTeam: "UTA"})
	if err != nil || out.Finished {
		t.Errorf("scheduled game Outcome = %+v, %v", out, err)
	}

	// matched by event id even when codes differ
	out, err = c.Outcome(ctx, models.Pending{Date: "2024-01-05", HomeTeam: "XXX", AwayTeam: "YYY", GameID: "401585123"})
	if err != nil || !out.Finished {
		t.Errorf("Outcome by id = %+v, %v", out, err)
	}

	if _, err := c.Outcome(ctx, models.Pending{Date: "2024-01-05", HomeTeam: "NYK", AwayTeam: "WAS"}); !errors.Is(err, providers.ErrMalformed) {
		t.Errorf("missing score err = %v, want ErrMalformed", err)
	}

	if _, err := c.Outcome(ctx, models.Pending{Date: "2024-01-05", HomeTeam: "MIA", AwayTeam: "CHI"}); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("absent game err = %v, want ErrGameNotFound", err)
	}

	if calls != 1 {
		t.Errorf("scoreboard fetched %d times, want 1", calls)
	}
}

func TestParseEventTime(t *testing.T) {
	for _, s := range []string{"2024-01-06T00:30Z", "2024-01-06T00:30:00Z"} {
		got, err := parseEventTime(s)
		if err != nil {
			t.Fatalf("parseEventTime(%q): %v", s, err)
		}
		if !got.Equal(time.Date(2024, 1, 6, 0, 30, 0, 0, time.UTC)) {
			t.Errorf("parseEventTime(%q) = %v", s, got)
		}
	}
	if _, err := parseEventTime("tomorrow"); !errors.Is(err, providers.ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
}
