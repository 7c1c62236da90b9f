package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     int    `env:"PORT"      envDefault:"8080"`
	Env      string `env:"ENV"       envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORS
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// Ledger store
	StoreURL   string `env:"LEDGER_STORE_URL,required,notEmpty"`
	KeyPrefix  string `env:"LEDGER_KEY_PREFIX"`
	AWSRegion  string `env:"AWS_REGION"  envDefault:"eu-north-1"`
	S3Endpoint string `env:"S3_ENDPOINT"`

	// Scheduling
	ScheduleTimezone string `env:"SCHEDULE_TIMEZONE" envDefault:"Europe/Helsinki"`
	ScheduleTime     string `env:"SCHEDULE_TIME"     envDefault:"12:00"`
	LeagueTimezone   string `env:"LEAGUE_TIMEZONE"   envDefault:"America/New_York"`

	// Readiness and resolution
	ReadyPollInterval time.Duration `env:"READY_POLL_INTERVAL" envDefault:"5s"`
	ReadyMaxWait      time.Duration `env:"READY_MAX_WAIT"      envDefault:"0s"`
	StaleAfter        time.Duration `env:"STALE_AFTER"         envDefault:"168h"`

	// Providers. Empty base URLs use the public endpoints.
	ESPNBaseURL           string        `env:"ESPN_BASE_URL"`
	PbpstatsBaseURL       string        `env:"PBPSTATS_BASE_URL"`
	OddsAPIURL            string        `env:"ODDS_API_URL"`
	OddsAPIKey            string        `env:"ODDS_API_KEY"`
	CurrentSeason         string        `env:"CURRENT_SEASON"`
	ProviderTimeout       time.Duration `env:"PROVIDER_TIMEOUT"         envDefault:"15s"`
	ProviderRatePerSecond float64       `env:"PROVIDER_RATE_PER_SECOND" envDefault:"2"`

	// Automation
	MetricsAddr      string `env:"METRICS_ADDR" envDefault:":9090"`
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `env:"TELEGRAM_CHAT_ID"`

	// Bootstrap
	BootstrapSeasons []string `env:"BOOTSTRAP_SEASONS" envSeparator:"," envDefault:"2022-23,2023-24,2024-25"`
	TrainEpochs      int      `env:"TRAIN_EPOCHS"      envDefault:"50"`
	TrainHidden      []int    `env:"TRAIN_HIDDEN"      envSeparator:"," envDefault:"32"`

	scheduleLoc  *time.Location
	leagueLoc    *time.Location
	scheduleHour int
	scheduleMin  int
}

// Load loads configuration from environment variables, after reading a
// .env file from the working directory if one exists.
// It returns an error if critical configuration is missing.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var err error
	if c.scheduleLoc, err = time.LoadLocation(c.ScheduleTimezone); err != nil {
		return fmt.Errorf("invalid SCHEDULE_TIMEZONE %q: %w", c.ScheduleTimezone, err)
	}
	if c.leagueLoc, err = time.LoadLocation(c.LeagueTimezone); err != nil {
		return fmt.Errorf("invalid LEAGUE_TIMEZONE %q: %w", c.LeagueTimezone, err)
	}
	clock, err := time.Parse("15:04", strings.TrimSpace(c.ScheduleTime))
	if err != nil {
		return fmt.Errorf("invalid SCHEDULE_TIME %q: want HH:MM", c.ScheduleTime)
	}
	c.scheduleHour, c.scheduleMin = clock.Hour(), clock.Minute()

	if c.ReadyPollInterval <= 0 {
		return fmt.Errorf("READY_POLL_INTERVAL must be positive")
	}
	if c.ProviderRatePerSecond <= 0 {
		return fmt.Errorf("PROVIDER_RATE_PER_SECOND must be positive")
	}
	if (c.TelegramBotToken == "") != (c.TelegramChatID == "") {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}
	for _, h := range c.TrainHidden {
		if h <= 0 {
			return fmt.Errorf("TRAIN_HIDDEN sizes must be positive")
		}
	}
	return nil
}

// IsDevelopment reports whether ENV selects the development profile.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development") || strings.EqualFold(c.Env, "dev")
}

// ScheduleLocation is the zone the daily trigger is expressed in.
func (c *Config) ScheduleLocation() *time.Location { return c.scheduleLoc }

// LeagueLocation is the zone that defines a league calendar day.
func (c *Config) LeagueLocation() *time.Location { return c.leagueLoc }

// ScheduleClock returns the daily trigger as hour and minute.
func (c *Config) ScheduleClock() (hour, minute int) { return c.scheduleHour, c.scheduleMin }

// TelegramEnabled reports whether degraded-cycle alerts are configured.
func (c *Config) TelegramEnabled() bool { return c.TelegramBotToken != "" }
