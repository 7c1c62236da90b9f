// Package providers holds the HTTP plumbing shared by the external data
// sources: a request throttle, retries with exponential backoff and
// JSON decoding.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrMalformed is returned when a provider answers with a payload that
// cannot be interpreted. It is never retried.
var ErrMalformed = errors.New("provider: malformed response")

// StatusError is a non-200 answer.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider: %s returned status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Temporary reports whether retrying may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	// MaxElapsed bounds all retries of one request.
	MaxElapsed time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Fetcher performs throttled GET requests with retries.
type Fetcher struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	maxElapsed time.Duration
	userAgent  string
	logger     *zap.SugaredLogger
}

func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.MaxElapsed <= 0 {
		cfg.MaxElapsed = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "predicting-nba/1.0"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Fetcher{
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		maxElapsed: cfg.MaxElapsed,
		userAgent:  cfg.UserAgent,
		logger:     cfg.Logger.Sugar(),
	}
}

// GetJSON fetches rawURL with query appended and decodes the body into dst.
func (f *Fetcher) GetJSON(ctx context.Context, rawURL string, query url.Values, dst any) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	target := u.String()

	var body []byte
	attempt := 0
	operation := func() error {
		attempt++
		if err := f.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate limiter: %w", err))
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", f.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := f.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("http request failed: %w", err)
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response body: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			serr := &StatusError{URL: u.Host + u.Path, StatusCode: resp.StatusCode, Body: truncate(string(b), 200)}
			if serr.Temporary() {
				return serr
			}
			return backoff.Permanent(serr)
		}
		body = b
		return nil
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = f.maxElapsed
	notify := func(err error, wait time.Duration) {
		f.logger.Warnw("Provider request failed, retrying", "host", u.Host, "path", u.Path, "attempt", attempt, "wait", wait.String(), "error", err)
	}
	if err := backoff.RetryNotify(operation, backoff.WithContext(strategy, ctx), notify); err != nil {
		return fmt.Errorf("GET %s%s: %w", u.Host, u.Path, err)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %s%s: %v", ErrMalformed, u.Host, u.Path, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
