package report

import (
	"strings"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
)

// BuildReport produces the report of one calendar month. A month with no
// transactions, or outside 1-12, yields an all-zero report.
func BuildReport(txs []core.Transaction, categories []core.Category, year, month int) core.MonthlyReport {
	period := aggregate.FilterByPeriod(txs, year, month)
	lookup := categoryIndex(categories)

	return core.MonthlyReport{
		Year:              year,
		Month:             month,
		TotalIncome:       aggregate.SumByType(period, core.Income),
		TotalExpense:      aggregate.SumByType(period, core.Expense),
		Balance:           aggregate.Balance(period),
		IncomeByCategory:  enrich(aggregate.GroupByCategory(aggregate.FilterByType(period, core.Income)), lookup),
		ExpenseByCategory: enrich(aggregate.GroupByCategory(aggregate.FilterByType(period, core.Expense)), lookup),
		Transactions:      period,
	}
}

func categoryIndex(categories []core.Category) map[string]core.Category {
	idx := make(map[string]core.Category, len(categories))
	for _, c := range categories {
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if _, ok := idx[key]; !ok {
			idx[key] = c
		}
	}
	return idx
}

// enrich fills missing color and icon from the category list.
func enrich(rows []core.CategoryAmount, idx map[string]core.Category) []core.CategoryAmount {
	for i := range rows {
		c, ok := idx[strings.ToLower(strings.TrimSpace(rows[i].Name))]
		if !ok {
			continue
		}
		if rows[i].Color == "" {
			rows[i].Color = c.Color
		}
		if rows[i].Icon == "" {
			rows[i].Icon = c.Icon
		}
	}
	return rows
}
