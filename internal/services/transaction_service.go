package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/store"
)

// EventPublisher is the part of the AMQP client the service needs.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, ev *amqp.TransactionEvent) error
}

// TransactionService orchestrates writes across the store and the broker.
type TransactionService struct {
	store     store.Store
	publisher EventPublisher
	progress  *GoalProgressProcessor
}

// NewTransactionService wires the write path. publisher may be nil, in which
// case goal progress is applied before the call returns.
func NewTransactionService(s store.Store, publisher EventPublisher) *TransactionService {
	return &TransactionService{
		store:     s,
		publisher: publisher,
		progress:  NewGoalProgressProcessor(s),
	}
}

// CreateTransaction validates and stores tx, then publishes a created event.
func (s *TransactionService) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	// Write first; a broker outage must not lose the transaction.
	saved, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.dispatch(ctx, amqp.NewTransactionEvent(amqp.TransactionCreated, saved))
	return saved, nil
}

// DeleteTransaction removes a transaction and publishes a deleted event
// carrying the removed data.
func (s *TransactionService) DeleteTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	deleted, err := s.store.DeleteTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("delete transaction: %w", err)
	}

	s.dispatch(ctx, amqp.NewTransactionEvent(amqp.TransactionDeleted, deleted))

	slog.InfoContext(ctx, "Transaction deleted",
		applog.FieldTxID, id,
		applog.FieldOperation, applog.OpDelete)
	return deleted, nil
}

func (s *TransactionService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	saved, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("save category: %w", err)
	}
	return saved, nil
}

func (s *TransactionService) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if g.Status == "" {
		g.Status = core.GoalActive
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	saved, err := s.store.CreateGoal(ctx, g)
	if err != nil {
		return core.Goal{}, fmt.Errorf("save goal: %w", err)
	}
	return saved, nil
}

// CancelGoal marks a goal CANCELLED. Its history and progress are kept.
func (s *TransactionService) CancelGoal(ctx context.Context, id int64) (core.Goal, error) {
	g, err := s.store.CancelGoal(ctx, id)
	if err != nil {
		return core.Goal{}, fmt.Errorf("cancel goal: %w", err)
	}
	slog.InfoContext(ctx, "Goal cancelled",
		applog.FieldGoalID, id,
		applog.FieldOperation, applog.OpUpdate)
	return g, nil
}

// dispatch hands the event to the broker, or applies it inline when there is
// no broker or publishing fails. Failures are logged, never returned: the
// write already succeeded.
func (s *TransactionService) dispatch(ctx context.Context, ev *amqp.TransactionEvent) {
	if s.publisher != nil {
		err := s.publisher.PublishTransactionEvent(ctx, ev)
		if err == nil {
			return
		}
		slog.ErrorContext(ctx, "Failed to publish transaction event, applying inline",
			applog.FieldOperation, applog.OpPublish,
			applog.FieldEventID, ev.ID,
			applog.FieldEventKind, ev.Kind,
			applog.FieldError, err)
	}

	if _, err := s.progress.HandleEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to apply goal progress",
			applog.FieldEventID, ev.ID,
			applog.FieldEventKind, ev.Kind,
			applog.FieldError, err)
	}
}

// Ping reports whether the backing store is reachable.
func (s *TransactionService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Close closes the publisher if it can be closed.
func (s *TransactionService) Close() error {
	var errs []error

	if c, ok := s.publisher.(interface{ Close() error }); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %w", errors.Join(errs...))
	}
	return nil
}
