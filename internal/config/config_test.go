package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEDGER_STORE_URL", "mem://")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 || cfg.Env != "development" || !cfg.IsDevelopment() {
		t.Errorf("server defaults = %d %q", cfg.Port, cfg.Env)
	}
	if h, m := cfg.ScheduleClock(); h != 12 || m != 0 {
		t.Errorf("schedule clock = %02d:%02d", h, m)
	}
	if cfg.ScheduleLocation().String() != "Europe/Helsinki" {
		t.Errorf("schedule zone = %s", cfg.ScheduleLocation())
	}
	if cfg.LeagueLocation().String() != "America/New_York" {
		t.Errorf("league zone = %s", cfg.LeagueLocation())
	}
	if cfg.ReadyPollInterval != 5*time.Second || cfg.ReadyMaxWait != 0 {
		t.Errorf("readiness = %v / %v", cfg.ReadyPollInterval, cfg.ReadyMaxWait)
	}
	if cfg.StaleAfter != 7*24*time.Hour {
		t.Errorf("stale after = %v", cfg.StaleAfter)
	}
	if len(cfg.BootstrapSeasons) != 3 || cfg.BootstrapSeasons[0] != "2022-23" {
		t.Errorf("bootstrap seasons = %v", cfg.BootstrapSeasons)
	}
	if len(cfg.TrainHidden) != 1 || cfg.TrainHidden[0] != 32 {
		t.Errorf("train hidden = %v", cfg.TrainHidden)
	}
	if cfg.TelegramEnabled() {
		t.Error("telegram should be disabled by default")
	}
}

func TestLoad_MissingStoreURL(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEDGER_STORE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing LEDGER_STORE_URL")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEDGER_STORE_URL", "s3://nba-ledger/prod")
	t.Setenv("ENV", "production")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("SCHEDULE_TIME", "06:30")
	t.Setenv("SCHEDULE_TIMEZONE", "UTC")
	t.Setenv("READY_MAX_WAIT", "10m")
	t.Setenv("TRAIN_HIDDEN", "64,32")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IsDevelopment() {
		t.Error("production reported as development")
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Errorf("origins = %v", cfg.AllowedOrigins)
	}
	if h, m := cfg.ScheduleClock(); h != 6 || m != 30 {
		t.Errorf("schedule clock = %02d:%02d", h, m)
	}
	if cfg.ReadyMaxWait != 10*time.Minute {
		t.Errorf("max wait = %v", cfg.ReadyMaxWait)
	}
	if len(cfg.TrainHidden) != 2 || cfg.TrainHidden[0] != 64 {
		t.Errorf("train hidden = %v", cfg.TrainHidden)
	}
	if !cfg.TelegramEnabled() {
		t.Error("telegram should be enabled")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad schedule time", "SCHEDULE_TIME", "noon"},
		{"bad schedule zone", "SCHEDULE_TIMEZONE", "Mars/Olympus"},
		{"bad league zone", "LEAGUE_TIMEZONE", "Nowhere"},
		{"zero poll", "READY_POLL_INTERVAL", "0s"},
		{"bad duration", "STALE_AFTER", "weekly"},
		{"telegram token without chat", "TELEGRAM_BOT_TOKEN", "token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("LEDGER_STORE_URL", "mem://")
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
