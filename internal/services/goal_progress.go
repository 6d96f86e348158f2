package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/goals"
	applog "fintrack/internal/log"
	"fintrack/internal/store"
)

// GoalProgressProcessor moves active goals when transactions are created or
// deleted. The API calls it inline when no broker is configured; otherwise
// the worker calls it for each consumed event.
type GoalProgressProcessor struct {
	goals  store.GoalUpdater
	now    func() time.Time
	logger *slog.Logger
}

func NewGoalProgressProcessor(updater store.GoalUpdater) *GoalProgressProcessor {
	return &GoalProgressProcessor{
		goals:  updater,
		now:    time.Now,
		logger: slog.Default().With(applog.FieldComponent, applog.ComponentGoals),
	}
}

// HandleEvent applies one transaction event and returns how many goals
// changed. Matching goals are moved in a single atomic store call, so a
// failed event leaves no partial progress behind for its redelivery.
func (p *GoalProgressProcessor) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) (int, error) {
	if ev == nil {
		return 0, errors.New("nil event")
	}

	var sign int64
	switch ev.Kind {
	case amqp.TransactionCreated:
		sign = 1
	case amqp.TransactionDeleted:
		sign = -1
	default:
		return 0, fmt.Errorf("%w: event kind %q", core.ErrUnknownEnumVariant, ev.Kind)
	}

	active, err := p.goals.ActiveGoals(ctx)
	if err != nil {
		return 0, fmt.Errorf("load active goals: %w", err)
	}

	deltas := make([]store.GoalDelta, 0, len(active))
	for _, g := range active {
		if g.ID == nil || !goals.Matches(g, ev.Transaction) {
			continue
		}
		deltas = append(deltas, store.GoalDelta{
			GoalID: *g.ID,
			Amount: core.Money{Cents: sign * ev.Transaction.Amount.Cents},
		})
	}

	updated := 0
	if len(deltas) > 0 {
		updated, err = p.goals.AccrueGoals(ctx, deltas, core.DateOf(p.now()))
		if err != nil {
			return 0, fmt.Errorf("accrue %d goals: %w", len(deltas), err)
		}
	}

	p.logger.DebugContext(ctx, "Applied transaction event to goals",
		applog.FieldOperation, applog.OpAccrue,
		applog.FieldEventID, ev.ID,
		applog.FieldEventKind, ev.Kind,
		applog.FieldGoalsUpdated, updated)

	return updated, nil
}
