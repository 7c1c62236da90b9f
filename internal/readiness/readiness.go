// Package readiness blocks process startup until required artifacts exist
// in the object store.
package readiness

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Status is the outcome of AwaitReady.
type Status int

const (
	Ready Status = iota
	TimedOut
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case TimedOut:
		return "timed_out"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Checker reports whether a key exists. store.Store satisfies it.
type Checker interface {
	Exists(ctx context.Context, key string) (bool, error)
}

// Gate polls a Checker for a set of keys.
type Gate struct {
	checker Checker
	logger  *zap.SugaredLogger
}

func New(checker Checker, logger *zap.Logger) *Gate {
	return &Gate{checker: checker, logger: logger.Sugar()}
}

// AwaitReady polls every key each poll interval until all exist. A maxWait
// of zero or less waits until ctx is cancelled. Exists errors count as
// "not yet". When maxWait elapses one last check runs before TimedOut is
// returned; a cancelled ctx returns its error.
func (g *Gate) AwaitReady(ctx context.Context, keys []string, poll, maxWait time.Duration) (Status, error) {
	if poll <= 0 {
		return TimedOut, fmt.Errorf("readiness: poll interval must be positive")
	}

	var deadline time.Time
	if maxWait > 0 {
		deadline = time.Now().Add(maxWait)
	}

	for {
		absent := g.checkAll(ctx, keys)
		if len(absent) == 0 {
			g.logger.Infow("All required artifacts present", "keys", keys)
			return Ready, nil
		}

		wait := poll
		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				g.logger.Warnw("Timed out waiting for artifacts", "missing", absent, "max_wait", maxWait.String())
				return TimedOut, nil
			}
			if remaining < wait {
				wait = remaining
			}
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return TimedOut, fmt.Errorf("wait for artifacts: %w", ctx.Err())
		case <-timer.C:
		}

		// deadline reached: one final check
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			absent = g.checkAll(ctx, keys)
			if len(absent) == 0 {
				g.logger.Infow("All required artifacts present", "keys", keys)
				return Ready, nil
			}
			g.logger.Warnw("Timed out waiting for artifacts", "missing", absent, "max_wait", maxWait.String())
			return TimedOut, nil
		}
	}
}

// checkAll queries every key and returns the ones not present. Keys seen in
// an earlier round are queried again.
func (g *Gate) checkAll(ctx context.Context, keys []string) []string {
	var absent []string
	for _, key := range keys {
		ok, err := g.checker.Exists(ctx, key)
		if err != nil {
			g.logger.Warnw("Artifact check failed", "key", key, "error", err)
			absent = append(absent, key)
			continue
		}
		if !ok {
			absent = append(absent, key)
		}
	}
	return absent
}
