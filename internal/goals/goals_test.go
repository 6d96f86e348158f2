package goals

import (
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
)

func goal(target, current int64) core.Goal {
	g := core.NewGoal("Trip", core.Money{Cents: target}, core.Savings, core.NewDate(2024, 1, 1), core.NewDate(2024, 12, 31))
	g.CurrentAmount = core.Money{Cents: current}
	return g
}

func TestProgressPercentage(t *testing.T) {
	tests := []struct {
		name    string
		target  int64
		current int64
		want    float64
	}{
		{"capped above target", 20000, 25000, 100},
		{"zero target", 0, 0, 0},
		{"zero target with progress", 0, 500, 0},
		{"half", 20000, 10000, 50},
		{"one third rounds to four places", 30000, 10000, 33.33},
		{"two thirds rounds half up", 30000, 20000, 66.67},
		{"negative progress clamps to zero", 10000, -500, 0},
		{"exact target", 10000, 10000, 100},
		{"unfinished never shows 100", 1000000, 999950, 99.99},
		{"display rounds up below threshold", 100000, 89995, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProgressPercentage(goal(tt.target, tt.current))
			if got != tt.want {
				t.Errorf("ProgressPercentage() = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 100 {
				t.Errorf("ProgressPercentage() = %v out of range", got)
			}
		})
	}
}

func TestProgressTier(t *testing.T) {
	tests := []struct {
		current int64
		want    Tier
		color   string
	}{
		{95000, TierHigh, "primary"},
		{90000, TierHigh, "primary"},
		{89995, TierMedium, "accent"},
		{89999, TierMedium, "accent"},
		{50000, TierMedium, "accent"},
		{49999, TierLow, "warn"},
		{0, TierLow, "warn"},
		{-100, TierLow, "warn"},
	}
	for _, tt := range tests {
		got := ProgressTier(goal(100000, tt.current))
		if got != tt.want {
			t.Errorf("ProgressTier(%d) = %s, want %s", tt.current, got, tt.want)
		}
		if got.Color() != tt.color {
			t.Errorf("Tier(%s).Color() = %s, want %s", got, got.Color(), tt.color)
		}
	}
}

func TestIsOverdue(t *testing.T) {
	g := goal(10000, 0)
	g.TargetDate = core.NewDate(2024, 1, 1)
	now := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

	if !IsOverdue(g, now) {
		t.Fatal("active goal past its target date should be overdue")
	}

	for _, st := range []core.GoalStatus{core.GoalCompleted, core.GoalCancelled, core.GoalPaused} {
		g.Status = st
		if IsOverdue(g, now) {
			t.Errorf("%s goal should never be overdue", st)
		}
	}

	g.Status = core.GoalActive
	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"day before", time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC), false},
		{"midnight of target date", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"during target date", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		if got := IsOverdue(g, tt.now); got != tt.want {
			t.Errorf("%s: IsOverdue() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRemainingAmount(t *testing.T) {
	if got := RemainingAmount(goal(10000, 2500)); got.Cents != 7500 {
		t.Errorf("RemainingAmount() = %s, want 75.00", got)
	}
	if got := RemainingAmount(goal(10000, 12000)); !got.IsZero() {
		t.Errorf("RemainingAmount() = %s, want 0.00", got)
	}
}

func TestLabels(t *testing.T) {
	for typ, want := range map[core.GoalType][3]string{
		core.Savings:      {"Savings", "savings", "primary"},
		core.ExpenseLimit: {"Expense Limit", "trending_down", "warn"},
		core.DebtPayment:  {"Debt Payment", "payment", "accent"},
	} {
		label, _ := TypeLabel(typ)
		icon, _ := IconFor(typ)
		color, _ := TypeColor(typ)
		if label != want[0] || icon != want[1] || color != want[2] {
			t.Errorf("%s: got (%s, %s, %s), want %v", typ, label, icon, color, want)
		}
	}

	if _, err := TypeLabel("BOGUS"); !errors.Is(err, core.ErrUnknownEnumVariant) {
		t.Errorf("TypeLabel(BOGUS) error = %v", err)
	}
	if _, err := StatusColor("ARCHIVED"); !errors.Is(err, core.ErrUnknownEnumVariant) {
		t.Errorf("StatusColor(ARCHIVED) error = %v", err)
	}
	if l, err := StatusLabel(core.GoalPaused); err != nil || l != "Paused" {
		t.Errorf("StatusLabel(PAUSED) = %q, %v", l, err)
	}
}

func TestEvaluate(t *testing.T) {
	g := goal(20000, 25000)
	g.TargetDate = core.NewDate(2024, 1, 1)
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	v, err := Evaluate(g, now)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if v.Percentage != 100 || v.Tier != string(TierHigh) || !v.Overdue || !v.Remaining.IsZero() {
		t.Errorf("unexpected view: %+v", v)
	}

	g.Type = "UNKNOWN"
	if _, err := Evaluate(g, now); !errors.Is(err, core.ErrUnknownEnumVariant) {
		t.Errorf("Evaluate() with bad type error = %v", err)
	}
}

func TestApplyTransaction(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	salary := core.Category{ID: core.Int64Ptr(1), Name: "Salary", Type: core.Income}
	food := core.Category{ID: core.Int64Ptr(2), Name: "Food", Type: core.Expense}
	income := core.Transaction{Description: "pay", Amount: core.Money{Cents: 6000}, Type: core.Income, Date: core.NewDate(2024, 6, 10), Category: salary}
	expense := core.Transaction{Description: "lunch", Amount: core.Money{Cents: 1500}, Type: core.Expense, Date: core.NewDate(2024, 6, 10), Category: food}

	t.Run("savings accrues income and completes", func(t *testing.T) {
		g := goal(10000, 5000)
		got, changed := ApplyTransaction(g, income, now)
		if !changed || got.CurrentAmount.Cents != 11000 {
			t.Fatalf("got %+v changed=%v", got, changed)
		}
		if got.Status != core.GoalCompleted || got.CompletedAt == nil || !got.CompletedAt.Equal(core.NewDate(2024, 6, 10)) {
			t.Fatalf("savings goal should complete: %+v", got)
		}
		if g.Status != core.GoalActive {
			t.Fatal("input goal was mutated")
		}
	})

	t.Run("savings ignores expenses", func(t *testing.T) {
		if _, changed := ApplyTransaction(goal(10000, 0), expense, now); changed {
			t.Fatal("expense should not move a savings goal")
		}
	})

	t.Run("expense limit accrues expense without completing", func(t *testing.T) {
		g := goal(1000, 0)
		g.Type = core.ExpenseLimit
		got, changed := ApplyTransaction(g, expense, now)
		if !changed || got.CurrentAmount.Cents != 1500 || got.Status != core.GoalActive {
			t.Fatalf("got %+v changed=%v", got, changed)
		}
	})

	t.Run("category filter", func(t *testing.T) {
		g := goal(10000, 0)
		g.Type = core.DebtPayment
		g.Category = &core.Category{ID: core.Int64Ptr(9), Name: "Loans", Type: core.Expense}
		if _, changed := ApplyTransaction(g, expense, now); changed {
			t.Fatal("transaction in another category should not accrue")
		}
		g.Category = &food
		if _, changed := ApplyTransaction(g, expense, now); !changed {
			t.Fatal("transaction in the goal's category should accrue")
		}
	})

	t.Run("inactive goals do not accrue", func(t *testing.T) {
		g := goal(10000, 0)
		g.Status = core.GoalPaused
		if _, changed := ApplyTransaction(g, income, now); changed {
			t.Fatal("paused goal should not accrue")
		}
	})
}

func TestRevertTransaction(t *testing.T) {
	salary := core.Category{Name: "Salary", Type: core.Income}
	tx := core.Transaction{Description: "pay", Amount: core.Money{Cents: 2000}, Type: core.Income, Date: core.NewDate(2024, 6, 10), Category: salary}

	got, changed := RevertTransaction(goal(10000, 5000), tx)
	if !changed || got.CurrentAmount.Cents != 3000 {
		t.Fatalf("got %+v changed=%v", got, changed)
	}

	done := goal(10000, 10000)
	done.Status = core.GoalCompleted
	if _, changed := RevertTransaction(done, tx); changed {
		t.Fatal("completed goals are not reopened")
	}
}

func TestGetAccruer(t *testing.T) {
	if _, err := GetAccruer("NOPE"); !errors.Is(err, core.ErrUnknownEnumVariant) {
		t.Fatalf("GetAccruer(NOPE) error = %v", err)
	}
	a, err := GetAccruer(core.DebtPayment)
	if err != nil {
		t.Fatalf("GetAccruer(DEBT_PAYMENT) error = %v", err)
	}
	if !a.Accrues(core.Transaction{Type: core.Expense}) || a.Accrues(core.Transaction{Type: core.Income}) {
		t.Error("debt payment goals accrue expenses only")
	}
}
