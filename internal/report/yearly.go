package report

import (
	"context"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
)

// BuildYear builds the twelve monthly reports of year concurrently over
// one snapshot and totals them.
func BuildYear(ctx context.Context, snap core.Snapshot, year int) (core.YearlyReport, error) {
	months := make([]core.MonthlyReport, 12)

	g, ctx := errgroup.WithContext(ctx)
	for i := range months {
		month := i + 1
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			months[month-1] = BuildReport(snap.Transactions, snap.Categories, year, month)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return core.YearlyReport{}, err
	}

	out := core.YearlyReport{Year: year, Months: months}
	for _, m := range months {
		out.TotalIncome = out.TotalIncome.Add(m.TotalIncome)
		out.TotalExpense = out.TotalExpense.Add(m.TotalExpense)
	}
	out.Balance = out.TotalIncome.Sub(out.TotalExpense)
	return out, nil
}
