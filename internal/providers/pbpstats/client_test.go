package pbpstats

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/markusmuilu/Predicting-Nba/internal/models"
	"github.com/markusmuilu/Predicting-Nba/internal/providers"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(Config{
		BaseURL: server.URL,
		Season:  "2024-25",
		Fetcher: providers.NewFetcher(providers.FetcherConfig{RatePerSecond: 1000, MaxElapsed: time.Second}),
	})
}

func TestSeasonFor(t *testing.T) {
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC), "2024-25"},
		{time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "2024-25"},
		{time.Date(2099, 10, 1, 0, 0, 0, 0, time.UTC), "2099-00"},
	}
	for _, tt := range tests {
		if got := SeasonFor(tt.t); got != tt.want {
			t.Errorf("SeasonFor(%v) = %s, want %s", tt.t, got, tt.want)
		}
	}
}

func TestTeams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get-teams/nba" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"teams":[{"id":"1610612738","text":"BOS"},{"id":1610612747,"text":"lal"}]}`))
	})
	dir, err := c.Teams(context.Background())
	if err != nil {
		t.Fatalf("Teams: %v", err)
	}
	if len(dir.Teams) != 2 {
		t.Fatalf("got %d teams", len(dir.Teams))
	}
	if team, ok := dir.Lookup("LAL"); !ok || team.ID != 1610612747 {
		t.Errorf("Lookup(LAL) = %+v, %v", team, ok)
	}
}

func TestGameLogs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("EntityId") != "1610612738" || q.Get("Season") != "2024-25" || q.Get("EntityType") != "Team" || q.Get("SeasonType") != "Regular Season" {
			t.Errorf("query = %v", q)
		}
		w.Write([]byte(`{"multi_row_table_data":[
			{"Date":"2024-10-24","GameId":"0022400020","Points":"122","OffPoss":"101"},
			{"Date":"2024-10-22","GameId":22400001,"Points":132,"OffPoss":99}
		]}`))
	})
	logs, err := c.GameLogs(context.Background(), models.Team{ID: 1610612738, Name: "BOS"})
	if err != nil {
		t.Fatalf("GameLogs: %v", err)
	}
	if len(logs) != 2 || logs[0].Date != "2024-10-22" || logs[0].GameID != "0022400001" {
		t.Errorf("logs = %+v", logs)
	}
	if logs[1].Points != 122 {
		t.Errorf("Points = %v, want 122", logs[1].Points)
	}
}

func TestGames(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[
			{"GameId":"0022400001","HomeTeamAbbreviation":"BOS","AwayTeamAbbreviation":"NYK","HomePoints":132,"AwayPoints":109},
			{"GameId":22400002,"HomeTeamAbbreviation":"LAL","AwayTeamAbbreviation":"MIN"},
			{"GameId":"","HomeTeamAbbreviation":"X"}
		]}`))
	})
	games, err := c.Games(context.Background(), "2024-25")
	if err != nil {
		t.Fatalf("Games: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("got %d games, want 2", len(games))
	}
	if g := games["0022400002"]; g.HomeTeam != "LAL" || g.AwayTeam != "MIN" {
		t.Errorf("game = %+v", g)
	}
}
