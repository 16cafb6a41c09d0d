package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/trackar/server/internal/trackar/store"
)

// EventPruner periodically deletes access events older than a configurable
// retention period.  It runs as a background goroutine and is stopped via
// its context or the Stop method.
//
// A retention of 0 disables pruning entirely.
type EventPruner struct {
	store     store.AccessEventStore
	retention time.Duration
	interval  time.Duration
	logger    *log.Logger

	cancel   context.CancelFunc
	done     chan struct{}
	doneOnce sync.Once
}

// PrunerConfig holds the parameters for NewEventPruner.
type PrunerConfig struct {
	// RetentionDays is how many days of event history to keep.
	// 0 means keep everything (pruner will not start).
	RetentionDays int

	// IntervalHours is how often the pruner runs.  Defaults to 6.
	IntervalHours int
}

// NewEventPruner creates a pruner but does not start it.
func NewEventPruner(s store.AccessEventStore, cfg PrunerConfig, logger *log.Logger) *EventPruner {
	interval := time.Duration(cfg.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	return &EventPruner{
		store:     s,
		retention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		interval:  interval,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start runs an immediate prune, then repeats on the configured interval
// until ctx is cancelled or Stop is called.
func (p *EventPruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		p.logger.Printf("event pruner disabled (retention=0)")
		p.doneOnce.Do(func() { close(p.done) })
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)

	go p.loop(ctx)

	p.logger.Printf("event pruner started (retention=%dd, interval=%dh)",
		int(p.retention.Hours()/24), int(p.interval.Hours()))
}

// Stop signals the pruner to exit and waits for it to finish.  Calling Stop
// on a pruner that was never started returns immediately.
func (p *EventPruner) Stop() {
	if p.cancel == nil {
		p.doneOnce.Do(func() { close(p.done) })
	} else {
		p.cancel()
	}
	<-p.done
}

// PruneOnce deletes everything older than the retention cutoff relative to
// now and returns the number of events removed.
func (p *EventPruner) PruneOnce(ctx context.Context, now time.Time) (int64, error) {
	if p.retention <= 0 {
		return 0, nil
	}
	return p.store.PruneOlderThan(ctx, now.UTC().Add(-p.retention))
}

func (p *EventPruner) loop(ctx context.Context) {
	defer p.doneOnce.Do(func() { close(p.done) })

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

func (p *EventPruner) prune(ctx context.Context) {
	now := time.Now().UTC()
	deleted, err := p.PruneOnce(ctx, now)
	if err != nil {
		p.logger.Printf("event prune error: %v", err)
		return
	}
	if deleted > 0 {
		p.logger.Printf("event prune: deleted %d events older than %s",
			deleted, now.Add(-p.retention).Format(time.RFC3339))
	}
}
