package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
	"fintrack/internal/goals"
	"fintrack/internal/report"
	"fintrack/internal/store"
)

// CategoryLists is the category list split by flow direction.
type CategoryLists struct {
	Income  []core.Category `json:"income"`
	Expense []core.Category `json:"expense"`
}

// TransactionFilter narrows Transactions. A zero Year lists every period
// and Month is only honoured together with Year. An empty Type keeps both
// flows.
type TransactionFilter struct {
	Year  int
	Month int
	Type  core.TransactionType
}

// ReportService answers read queries. Every call takes exactly one snapshot
// and builds its result from it.
type ReportService struct {
	reader      store.SnapshotReader
	recentLimit int
	years       []int
	now         func() time.Time
}

func NewReportService(reader store.SnapshotReader, recentLimit int, years []int) *ReportService {
	if recentLimit <= 0 {
		recentLimit = report.DefaultRecentLimit
	}
	return &ReportService{
		reader:      reader,
		recentLimit: recentLimit,
		years:       append([]int(nil), years...),
		now:         time.Now,
	}
}

func (s *ReportService) snapshot(ctx context.Context) (core.Snapshot, error) {
	snap, err := s.reader.Snapshot(ctx)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

// Dashboard builds the dashboard. recent <= 0 selects the configured limit.
func (s *ReportService) Dashboard(ctx context.Context, recent int) (core.DashboardSummary, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return core.DashboardSummary{}, err
	}
	if recent <= 0 {
		recent = s.recentLimit
	}
	return report.BuildDashboard(snap.Transactions, recent, snap.Goals, s.now()), nil
}

func (s *ReportService) MonthlyReport(ctx context.Context, year, month int) (core.MonthlyReport, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return core.MonthlyReport{}, err
	}
	return report.BuildReport(snap.Transactions, snap.Categories, year, month), nil
}

func (s *ReportService) YearlyReport(ctx context.Context, year int) (core.YearlyReport, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return core.YearlyReport{}, err
	}
	return report.BuildYear(ctx, snap, year)
}

// Goals evaluates every goal against the current time.
func (s *ReportService) Goals(ctx context.Context) ([]core.GoalView, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	views, err := goals.EvaluateAll(snap.Goals, s.now())
	if err != nil {
		return nil, fmt.Errorf("evaluate goals: %w", err)
	}
	return views, nil
}

// Transactions lists transactions matching f, newest first.
func (s *ReportService) Transactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	txs := snap.Transactions
	switch {
	case f.Year != 0 && f.Month != 0:
		txs = aggregate.FilterByPeriod(txs, f.Year, f.Month)
	case f.Year != 0:
		txs = aggregate.FilterByYear(txs, f.Year)
	}
	if f.Type != "" {
		txs = aggregate.FilterByType(txs, f.Type)
	}
	return aggregate.SortRecent(txs, -1), nil
}

// OverdueGoals returns the evaluated goals that are overdue now.
func (s *ReportService) OverdueGoals(ctx context.Context) ([]core.GoalView, error) {
	views, err := s.Goals(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.GoalView, 0)
	for _, v := range views {
		if v.Overdue {
			out = append(out, v)
		}
	}
	return out, nil
}

// CategoriesByType returns the categories of one flow direction.
func (s *ReportService) CategoriesByType(ctx context.Context, typ core.TransactionType) ([]core.Category, error) {
	if err := typ.Validate(); err != nil {
		return nil, err
	}
	lists, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if typ == core.Income {
		return lists.Income, nil
	}
	return lists.Expense, nil
}

func (s *ReportService) Categories(ctx context.Context) (CategoryLists, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return CategoryLists{}, err
	}
	income, expense, err := aggregate.PartitionCategories(snap.Categories)
	if err != nil {
		return CategoryLists{}, fmt.Errorf("partition categories: %w", err)
	}
	return CategoryLists{Income: income, Expense: expense}, nil
}

// Years returns the selectable report years, oldest first.
func (s *ReportService) Years() []int {
	return append([]int(nil), s.years...)
}
