package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/Kinsa/parking-attendant/internal/parking/store"
)

// EntryPruner periodically deletes entries older than a retention period.
// It runs as a background goroutine and is stopped via its context or Stop.
//
// A retention of 0 disables pruning entirely. Lookups never delete entries;
// this is a storage lifecycle job.
type EntryPruner struct {
	store     store.EntryStore
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
	now       func() time.Time
	loc       *time.Location
	cancel    context.CancelFunc
	done      chan struct{}
}

// PrunerConfig holds the parameters for NewEntryPruner.
type PrunerConfig struct {
	// RetentionDays is how many days of entries to keep.
	// 0 means keep everything (pruner will not start).
	RetentionDays int

	// IntervalHours is how often the pruner runs. Defaults to 6.
	IntervalHours int

	// Location must match the one entries are recorded in.
	Location *time.Location
}

// NewEntryPruner creates a pruner but does not start it.
func NewEntryPruner(s store.EntryStore, cfg PrunerConfig, logger *slog.Logger) *EntryPruner {
	interval := time.Duration(cfg.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	return &EntryPruner{
		store:     s,
		retention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
		loc:       loc,
		done:      make(chan struct{}),
	}
}

// Enabled reports whether a retention period is configured.
func (p *EntryPruner) Enabled() bool { return p.retention > 0 }

// Start begins the background loop: an immediate prune, then one every
// interval until ctx is cancelled or Stop is called.
func (p *EntryPruner) Start(ctx context.Context) {
	if !p.Enabled() {
		p.logger.Info("entry pruner disabled", slog.Int("retention_days", 0))
		close(p.done)
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)

	go p.loop(ctx)

	p.logger.Info("entry pruner started",
		slog.Int("retention_days", int(p.retention.Hours()/24)),
		slog.Int("interval_hours", int(p.interval.Hours())),
	)
}

// Stop signals the pruner to exit and waits for it to finish.
func (p *EntryPruner) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	<-p.done
}

// PruneOnce deletes entries older than the retention period and returns the
// number removed. It does nothing when pruning is disabled.
func (p *EntryPruner) PruneOnce(ctx context.Context) (int64, error) {
	if !p.Enabled() {
		return 0, nil
	}
	cutoff := p.now().In(p.loc).Add(-p.retention)
	deleted, err := p.store.PruneOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	entriesPruned.Add(float64(deleted))
	if deleted > 0 {
		p.logger.InfoContext(ctx, "entry prune",
			slog.Int64("deleted", deleted),
			slog.String("cutoff", cutoff.Format(store.TimeLayout)),
		)
	}
	return deleted, nil
}

func (p *EntryPruner) loop(ctx context.Context) {
	defer close(p.done)

	// Run immediately on startup to clean up any backlog.
	p.prune(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *EntryPruner) prune(ctx context.Context) {
	if _, err := p.PruneOnce(ctx); err != nil {
		p.logger.ErrorContext(ctx, "entry prune failed", slog.String("error", err.Error()))
	}
}
