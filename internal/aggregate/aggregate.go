package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// SumByType returns the sum of amounts of transactions with the given type.
func SumByType(txs []core.Transaction, typ core.TransactionType) core.Money {
	var total core.Money
	for _, tx := range txs {
		if tx.Type == typ {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// Balance is income minus expense.
func Balance(txs []core.Transaction) core.Money {
	return SumByType(txs, core.Income).Sub(SumByType(txs, core.Expense))
}

// FilterByPeriod keeps transactions dated within the calendar month.
// A month outside 1-12 matches nothing.
func FilterByPeriod(txs []core.Transaction, year, month int) []core.Transaction {
	out := make([]core.Transaction, 0)
	if month < 1 || month > 12 {
		return out
	}
	for _, tx := range txs {
		if tx.Date.InMonth(year, month) {
			out = append(out, tx)
		}
	}
	return out
}

// FilterByYear keeps transactions dated within the calendar year.
func FilterByYear(txs []core.Transaction, year int) []core.Transaction {
	out := make([]core.Transaction, 0)
	for _, tx := range txs {
		if tx.Date.Year() == year {
			out = append(out, tx)
		}
	}
	return out
}

// FilterByType keeps transactions of the given type.
func FilterByType(txs []core.Transaction, typ core.TransactionType) []core.Transaction {
	out := make([]core.Transaction, 0)
	for _, tx := range txs {
		if tx.Type == typ {
			out = append(out, tx)
		}
	}
	return out
}

// GroupByCategory sums amounts per category name in first-seen order.
// Each entry also carries its share of the grouped total, rounded to two
// decimals, and the display color/icon of the first transaction seen.
func GroupByCategory(txs []core.Transaction) []core.CategoryAmount {
	out := make([]core.CategoryAmount, 0)
	index := make(map[string]int)
	var total core.Money

	for _, tx := range txs {
		name := tx.Category.Name
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, core.CategoryAmount{
				Name:  name,
				Color: tx.Category.Color,
				Icon:  tx.Category.Icon,
			})
		}
		out[i].Amount = out[i].Amount.Add(tx.Amount)
		out[i].Count++
		total = total.Add(tx.Amount)
	}

	if total.IsZero() {
		return out
	}
	hundred := decimal.NewFromInt(100)
	for i := range out {
		pct := out[i].Amount.Decimal().Div(total.Decimal()).Mul(hundred).Round(2)
		out[i].Percentage, _ = pct.Float64()
	}
	return out
}

// SortRecent returns up to limit transactions ordered by date descending.
// Transactions on the same date keep their input order. A negative limit
// returns all of them.
func SortRecent(txs []core.Transaction, limit int) []core.Transaction {
	sorted := make([]core.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	if limit >= 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted
}
