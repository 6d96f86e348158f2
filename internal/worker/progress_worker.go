package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	applog "fintrack/internal/log"
)

// EventProcessor applies one transaction event to goal progress.
type EventProcessor interface {
	HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) (int, error)
}

// ProgressWorker consumes transaction events and updates goal progress.
// Broker redeliveries of an already applied event are acknowledged
// without being applied twice.
type ProgressWorker struct {
	processor EventProcessor
	seen      *cache.RecentSet
}

func NewProgressWorker(processor EventProcessor, seen *cache.RecentSet) *ProgressWorker {
	if seen == nil {
		seen = cache.NewRecentSet(10000, 24*time.Hour)
	}
	return &ProgressWorker{processor: processor, seen: seen}
}

// HandleEvent is an amqp.EventHandler.
func (w *ProgressWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	if !w.seen.Add(ev.ID) {
		slog.InfoContext(ctx, "Skipping already applied event",
			applog.FieldEventID, ev.ID,
			applog.FieldEventKind, ev.Kind)
		return nil
	}

	slog.InfoContext(ctx, "Processing transaction event",
		applog.FieldEventID, ev.ID,
		applog.FieldEventKind, ev.Kind,
		applog.FieldAmountCents, ev.Transaction.Amount.Cents,
		applog.FieldCategory, ev.Transaction.Category.Name)

	updated, err := w.processor.HandleEvent(ctx, ev)
	if err != nil {
		// Let the requeued delivery try again.
		w.seen.Forget(ev.ID)
		slog.ErrorContext(ctx, "Failed to apply transaction event",
			applog.FieldEventID, ev.ID,
			applog.FieldError, err)
		return fmt.Errorf("apply event %s: %w", ev.ID, err)
	}

	slog.InfoContext(ctx, "Transaction event applied",
		applog.FieldEventID, ev.ID,
		applog.FieldGoalsUpdated, updated)
	return nil
}

// Seen exposes the dedupe set so callers can run its janitor.
func (w *ProgressWorker) Seen() *cache.RecentSet {
	return w.seen
}
