package logic

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrCycleRunning is returned when a cycle is already in progress in this process.
var ErrCycleRunning = errors.New("cycle already running")

// CycleReport summarises one resolve-then-generate pass.
type CycleReport struct {
	ID         string         `json:"id"`
	Resolve    ResolveReport  `json:"resolve"`
	Generate   GenerateReport `json:"generate"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Cycle runs the Resolver and then the Generator. Runs never overlap within
// a process; a second caller gets ErrCycleRunning instead of waiting.
type Cycle struct {
	resolver  *Resolver
	generator *Generator
	logger    *zap.SugaredLogger
	mu        sync.Mutex
}

func NewCycle(resolver *Resolver, generator *Generator, logger *zap.Logger) *Cycle {
	return &Cycle{resolver: resolver, generator: generator, logger: logger.Sugar()}
}

// Run resolves, then generates. A resolver error aborts the cycle before
// anything is generated.
func (c *Cycle) Run(ctx context.Context) (CycleReport, error) {
	if !c.mu.TryLock() {
		cycleRejectedTotal.Inc()
		return CycleReport{}, ErrCycleRunning
	}
	defer c.mu.Unlock()

	report := CycleReport{ID: uuid.NewString(), StartedAt: time.Now().UTC()}
	log := c.logger.With("cycle_id", report.ID)
	log.Infow("Cycle started")

	resolved, err := c.resolver.Resolve(ctx)
	report.Resolve = resolved
	if err != nil {
		report.FinishedAt = time.Now().UTC()
		log.Errorw("Resolve failed, cycle aborted", "error", err)
		return report, fmt.Errorf("resolve: %w", err)
	}
	log.Infow("Resolve finished", "resolved", resolved.Resolved, "skipped", resolved.Skipped,
		"pending", resolved.Pending, "stale", resolved.Stale)

	generated, err := c.generator.Generate(ctx)
	report.Generate = generated
	report.FinishedAt = time.Now().UTC()
	if err != nil {
		log.Errorw("Generate failed", "error", err)
		return report, fmt.Errorf("generate: %w", err)
	}
	log.Infow("Cycle finished", "generated", generated.Generated, "skipped", generated.Skipped,
		"duration", report.FinishedAt.Sub(report.StartedAt).String())
	return report, nil
}
