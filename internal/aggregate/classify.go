// Package aggregate folds transaction sets into totals and breakdowns.
//
// Every function here is pure: inputs are never mutated and results are
// freshly allocated, so callers may share one snapshot across goroutines.
package aggregate

import "fintrack/internal/core"

// PartitionCategories splits categories by declared type, preserving order.
// Any type outside {INCOME, EXPENSE} fails the whole call.
func PartitionCategories(cats []core.Category) (income, expense []core.Category, err error) {
	income = make([]core.Category, 0, len(cats))
	expense = make([]core.Category, 0, len(cats))
	for _, c := range cats {
		switch c.Type {
		case core.Income:
			income = append(income, c)
		case core.Expense:
			expense = append(expense, c)
		default:
			return nil, nil, c.Type.Validate()
		}
	}
	return income, expense, nil
}

// PartitionTransactions is PartitionCategories for transactions.
func PartitionTransactions(txs []core.Transaction) (income, expense []core.Transaction, err error) {
	income = make([]core.Transaction, 0, len(txs))
	expense = make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			income = append(income, tx)
		case core.Expense:
			expense = append(expense, tx)
		default:
			return nil, nil, tx.Type.Validate()
		}
	}
	return income, expense, nil
}
