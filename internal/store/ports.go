// Package store declares the ports every data backend implements.
package store

import (
	"context"

	"fintrack/internal/core"
)

// GoalDelta moves one goal's progress by a signed amount.
type GoalDelta struct {
	GoalID int64
	Amount core.Money
}

// Ports for outbound adapters.
type (
	// SnapshotReader returns every transaction, category and goal in one
	// consistent read. Builds never mix data from two snapshots.
	SnapshotReader interface {
		Snapshot(ctx context.Context) (core.Snapshot, error)
	}

	TransactionWriter interface {
		// CreateTransaction stores tx and returns it with its assigned ID and
		// its category resolved from the store.
		CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		// DeleteTransaction removes the transaction and returns what was deleted.
		DeleteTransaction(ctx context.Context, id int64) (core.Transaction, error)
	}

	CategoryWriter interface {
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	}

	GoalWriter interface {
		CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
		// CancelGoal marks the goal CANCELLED and returns it. Goals are
		// never removed.
		CancelGoal(ctx context.Context, id int64) (core.Goal, error)
	}

	// GoalUpdater is what progress accrual needs.
	GoalUpdater interface {
		ActiveGoals(ctx context.Context) ([]core.Goal, error)
		// AccrueGoals adds every delta to the stored progress in one atomic
		// step: all goals move or none do. Goals that are no longer ACTIVE
		// are skipped, and a SAVINGS goal that a positive delta brings to
		// its target is completed on the given date. It returns how many
		// goals moved.
		AccrueGoals(ctx context.Context, deltas []GoalDelta, on core.Date) (int, error)
	}

	Pinger interface {
		Ping(ctx context.Context) error
	}

	// Store is the full set of operations a backend provides. Read-only
	// backends return core.ErrReadOnly from the writers.
	Store interface {
		SnapshotReader
		TransactionWriter
		CategoryWriter
		GoalWriter
		GoalUpdater
		Pinger
	}
)
