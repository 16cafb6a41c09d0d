package service_test

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/trackar/server/internal/trackar/service"
	"github.com/trackar/server/internal/trackar/store"
	"github.com/trackar/server/internal/trackar/store/memory"
)

func silentLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestEventPruner_DisabledWhenRetentionZero(t *testing.T) {
	es := memory.NewAccessEventStore()
	pruner := service.NewEventPruner(es, service.PrunerConfig{
		RetentionDays: 0,
		IntervalHours: 1,
	}, silentLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pruner.Start(ctx)
	// Stop should return immediately without error.
	pruner.Stop()

	deleted, err := pruner.PruneOnce(ctx, time.Now())
	if err != nil || deleted != 0 {
		t.Errorf("expected disabled prune to be a no-op, got %d, %v", deleted, err)
	}
}

func TestEventPruner_PruneOnce_KeepsRecent(t *testing.T) {
	es := memory.NewAccessEventStore()
	ctx := context.Background()
	now := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)

	for _, rec := range []store.AccessEventRecord{
		{EventID: "old", PersonID: "p1", Action: "check_in", OccurredAt: now.AddDate(0, 0, -40)},
		{EventID: "recent", PersonID: "p1", Action: "check_in", OccurredAt: now.AddDate(0, 0, -1)},
	} {
		if err := es.RecordEvent(ctx, rec); err != nil {
			t.Fatalf("RecordEvent: %v", err)
		}
	}

	pruner := service.NewEventPruner(es, service.PrunerConfig{RetentionDays: 30}, silentLogger())
	deleted, err := pruner.PruneOnce(ctx, now)
	if err != nil {
		t.Fatalf("PruneOnce: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 pruned, got %d", deleted)
	}

	left := es.Events()
	if len(left) != 1 || left[0].EventID != "recent" {
		t.Errorf("expected only the recent event to survive, got %+v", left)
	}
}

func TestEventPruner_StartPrunesImmediately(t *testing.T) {
	es := memory.NewAccessEventStore()
	ctx := context.Background()

	if err := es.RecordEvent(ctx, store.AccessEventRecord{
		EventID: "old", PersonID: "p1", Action: "check_in",
		OccurredAt: time.Now().UTC().AddDate(0, 0, -100),
	}); err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}

	pruner := service.NewEventPruner(es, service.PrunerConfig{RetentionDays: 90, IntervalHours: 1}, silentLogger())
	pruner.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for len(es.Events()) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("startup prune did not run")
		}
		time.Sleep(5 * time.Millisecond)
	}
	pruner.Stop()
}

func TestEventPruner_StopIsIdempotent(t *testing.T) {
	es := memory.NewAccessEventStore()
	pruner := service.NewEventPruner(es, service.PrunerConfig{
		RetentionDays: 30,
		IntervalHours: 1,
	}, silentLogger())

	ctx, cancel := context.WithCancel(context.Background())
	pruner.Start(ctx)

	cancel()
	// Multiple stops should not panic.
	pruner.Stop()
	pruner.Stop()
}

func TestEventPruner_StopWithoutStart(t *testing.T) {
	pruner := service.NewEventPruner(memory.NewAccessEventStore(), service.PrunerConfig{RetentionDays: 30}, silentLogger())
	pruner.Stop()
}
