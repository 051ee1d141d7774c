package usage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Pruner deletes usage records past the retention window on a cron
// schedule.
type Pruner struct {
	store         *Store
	retentionDays int
	schedule      string
	cron          *cron.Cron
	logger        *slog.Logger
}

// NewPruner creates a pruner over store. schedule is a standard cron
// expression; empty disables scheduling (Prune can still be called
// directly).
func NewPruner(store *Store, retentionDays int, schedule string) *Pruner {
	return &Pruner{
		store:         store,
		retentionDays: retentionDays,
		schedule:      schedule,
		cron:          cron.New(),
		logger:        slog.Default().With("component", "usage.pruner"),
	}
}

// Start begins scheduled pruning. The scheduler stops when ctx is
// cancelled.
func (p *Pruner) Start(ctx context.Context) error {
	if p.schedule == "" {
		p.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(p.schedule); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", p.schedule, err)
	}

	if _, err := p.cron.AddFunc(p.schedule, func() {
		if _, err := p.Prune(ctx); err != nil {
			p.logger.Error("scheduled usage pruning failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule usage pruning: %w", err)
	}

	p.cron.Start()
	p.logger.Info("usage pruner started",
		"schedule", p.schedule,
		"retention_days", p.retentionDays,
	)

	go func() {
		<-ctx.Done()
		p.cron.Stop()
	}()

	return nil
}

// Prune deletes records older than the retention window and returns how
// many were removed.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -p.retentionDays)
	deleted, err := p.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		p.logger.Info("pruned usage records", "deleted", deleted, "cutoff", cutoff)
	}
	return deleted, nil
}
