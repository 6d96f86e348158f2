// Package report builds the dashboard and the monthly and yearly reports
// from a single snapshot.
package report

import (
	"time"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
)

// DefaultRecentLimit is the number of recent transactions on the dashboard.
const DefaultRecentLimit = 10

// BuildDashboard summarizes lifetime totals, the totals of now's calendar
// month, the most recent transactions and the number of active goals.
func BuildDashboard(txs []core.Transaction, recentLimit int, goals []core.Goal, now time.Time) core.DashboardSummary {
	today := core.DateOf(now)
	month := aggregate.FilterByPeriod(txs, today.Year(), today.Month())

	active := 0
	for _, g := range goals {
		if g.Status == core.GoalActive {
			active++
		}
	}

	return core.DashboardSummary{
		TotalIncome:        aggregate.SumByType(txs, core.Income),
		TotalExpense:       aggregate.SumByType(txs, core.Expense),
		Balance:            aggregate.Balance(txs),
		MonthlyIncome:      aggregate.SumByType(month, core.Income),
		MonthlyExpense:     aggregate.SumByType(month, core.Expense),
		RecentTransactions: aggregate.SortRecent(txs, recentLimit),
		ActiveGoalsCount:   active,
	}
}
