package goals

import (
	"fmt"
	"time"

	"fintrack/internal/core"
)

// Accruer decides whether a transaction counts toward a goal of some type.
type Accruer interface {
	Accrues(tx core.Transaction) bool
}

// TypeAccruer accrues transactions of one transaction type.
type TypeAccruer struct {
	Type core.TransactionType
}

func (a TypeAccruer) Accrues(tx core.Transaction) bool {
	return tx.Type == a.Type
}

// accrualStrategies maps goal types to the transactions that move them.
var accrualStrategies = map[core.GoalType]Accruer{
	core.Savings:      TypeAccruer{Type: core.Income},
	core.ExpenseLimit: TypeAccruer{Type: core.Expense},
	core.DebtPayment:  TypeAccruer{Type: core.Expense},
}

// GetAccruer returns the accrual strategy for a goal type.
func GetAccruer(t core.GoalType) (Accruer, error) {
	a, ok := accrualStrategies[t]
	if !ok {
		return nil, fmt.Errorf("%w: goal type %q", core.ErrUnknownEnumVariant, string(t))
	}
	return a, nil
}

// Matches reports whether tx should move g: the goal must be active, its
// category (if any) must be the transaction's, and the goal type's strategy
// must accept the transaction.
func Matches(g core.Goal, tx core.Transaction) bool {
	if g.Status != core.GoalActive {
		return false
	}
	if g.Category != nil && !core.SameCategory(*g.Category, tx.Category) {
		return false
	}
	a, err := GetAccruer(g.Type)
	if err != nil {
		return false
	}
	return a.Accrues(tx)
}

// ApplyTransaction adds tx to g's progress. It returns the updated copy and
// whether anything changed. A savings goal that reaches its target is
// marked completed as of now.
func ApplyTransaction(g core.Goal, tx core.Transaction, now time.Time) (core.Goal, bool) {
	if !Matches(g, tx) {
		return g, false
	}
	return AddProgress(g, tx.Amount, core.DateOf(now)), true
}

// RevertTransaction removes a deleted transaction from g's progress.
// Completed goals are left alone.
func RevertTransaction(g core.Goal, tx core.Transaction) (core.Goal, bool) {
	if !Matches(g, tx) {
		return g, false
	}
	return AddProgress(g, tx.Amount.Neg(), core.Date{}), true
}

// AddProgress moves g by a signed delta. A savings goal that a positive
// delta brings to its target is completed on the given date. Stores apply
// the same rule when they accrue deltas.
func AddProgress(g core.Goal, delta core.Money, on core.Date) core.Goal {
	g.CurrentAmount = g.CurrentAmount.Add(delta)
	if delta.IsPositive() && g.Type == core.Savings && g.CurrentAmount.Cmp(g.TargetAmount) >= 0 {
		g.Status = core.GoalCompleted
		g.CompletedAt = &on
	}
	return g
}
