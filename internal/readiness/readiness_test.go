package readiness

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type mockChecker struct {
	mu         sync.Mutex
	calls      map[string]int
	ExistsFunc func(key string, call int) (bool, error)
}

func (m *mockChecker) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[key]++
	call := m.calls[key]
	m.mu.Unlock()
	return m.ExistsFunc(key, call)
}

func TestAwaitReady_AlreadyPresent(t *testing.T) {
	c := &mockChecker{ExistsFunc: func(string, int) (bool, error) { return true, nil }}
	status, err := New(c, zap.NewNop()).AwaitReady(context.Background(), []string{"a", "b"}, time.Millisecond, time.Second)
	if err != nil || status != Ready {
		t.Fatalf("AwaitReady = %v, %v", status, err)
	}
}

func TestAwaitReady_AppearsLater(t *testing.T) {
	c := &mockChecker{ExistsFunc: func(key string, call int) (bool, error) {
		if key == "models/prediction_model.json" {
			return call >= 3, nil
		}
		return true, nil
	}}
	keys := []string{"teams/teams.json", "models/prediction_model.json"}
	status, err := New(c, zap.NewNop()).AwaitReady(context.Background(), keys, 5*time.Millisecond, 0)
	if err != nil || status != Ready {
		t.Fatalf("AwaitReady = %v, %v", status, err)
	}
	if c.calls["teams/teams.json"] != c.calls["models/prediction_model.json"] {
		t.Errorf("teams polled %d times, model %d; every key is checked each round",
			c.calls["teams/teams.json"], c.calls["models/prediction_model.json"])
	}
}

func TestAwaitReady_KeyRemovedAfterSeen(t *testing.T) {
	// model exists on the first round only; teams exists from the second round on
	c := &mockChecker{ExistsFunc: func(key string, call int) (bool, error) {
		if key == "model" {
			return call == 1, nil
		}
		return call >= 2, nil
	}}
	status, err := New(c, zap.NewNop()).AwaitReady(context.Background(), []string{"model", "teams"}, 5*time.Millisecond, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("AwaitReady err = %v", err)
	}
	if status != TimedOut {
		t.Fatalf("status = %v, want TimedOut while model is absent", status)
	}
	if c.calls["model"] < 2 {
		t.Errorf("model checked %d times, want a re-check every round", c.calls["model"])
	}
}

func TestAwaitReady_ErrorsAreNotYet(t *testing.T) {
	c := &mockChecker{ExistsFunc: func(_ string, call int) (bool, error) {
		if call < 3 {
			return false, errors.New("connection refused")
		}
		return true, nil
	}}
	status, err := New(c, zap.NewNop()).AwaitReady(context.Background(), []string{"a"}, time.Millisecond, time.Second)
	if err != nil || status != Ready {
		t.Fatalf("AwaitReady = %v, %v", status, err)
	}
}

func TestAwaitReady_TimesOut(t *testing.T) {
	c := &mockChecker{ExistsFunc: func(string, int) (bool, error) { return false, nil }}
	start := time.Now()
	status, err := New(c, zap.NewNop()).AwaitReady(context.Background(), []string{"a"}, 10*time.Millisecond, 35*time.Millisecond)
	if err != nil {
		t.Fatalf("AwaitReady err = %v", err)
	}
	if status != TimedOut {
		t.Fatalf("status = %v, want TimedOut", status)
	}
	if elapsed := time.Since(start); elapsed < 35*time.Millisecond {
		t.Errorf("returned after %v, before max wait", elapsed)
	}
}

func TestAwaitReady_FinalCheckAtDeadline(t *testing.T) {
	// poll interval far exceeds max wait: the key appears only on the check at the deadline
	c := &mockChecker{ExistsFunc: func(_ string, call int) (bool, error) { return call >= 2, nil }}
	status, err := New(c, zap.NewNop()).AwaitReady(context.Background(), []string{"a"}, time.Hour, 20*time.Millisecond)
	if err != nil || status != Ready {
		t.Fatalf("AwaitReady = %v, %v", status, err)
	}
}

func TestAwaitReady_ContextCancelled(t *testing.T) {
	c := &mockChecker{ExistsFunc: func(string, int) (bool, error) { return false, nil }}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := New(c, zap.NewNop()).AwaitReady(ctx, []string{"a"}, 5*time.Millisecond, 0)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestStatusString(t *testing.T) {
	if Ready.String() != "ready" || TimedOut.String() != "timed_out" {
		t.Errorf("got %s, %s", Ready, TimedOut)
	}
}
