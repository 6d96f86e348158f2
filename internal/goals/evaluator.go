// Package goals derives progress figures and display metadata for goals,
// and applies transactions to goal progress.
package goals

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Tier is a coarse progress classification.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

const (
	highThreshold   = 90
	mediumThreshold = 50
)

// Color returns the palette name used to render the tier.
func (t Tier) Color() string {
	switch t {
	case TierHigh:
		return "primary"
	case TierMedium:
		return "accent"
	default:
		return "warn"
	}
}

// ProgressPercentage returns current/target as a percentage in [0, 100] for
// display. The ratio is rounded half-up to four places before scaling, so
// 1/3 reads as 33.33. An unfinished goal never reads 100. A zero target
// yields 0.
func ProgressPercentage(g core.Goal) float64 {
	if g.TargetAmount.IsZero() {
		return 0
	}
	hundred := decimal.NewFromInt(100)
	ratio := g.CurrentAmount.Decimal().DivRound(g.TargetAmount.Decimal(), 4)
	pct := ratio.Mul(hundred)
	switch {
	case pct.IsNegative():
		return 0
	case g.CurrentAmount.Cmp(g.TargetAmount) < 0 && pct.GreaterThanOrEqual(hundred):
		pct = maxUnfinished
	case pct.GreaterThan(hundred):
		pct = hundred
	}
	f, _ := pct.Float64()
	return f
}

var maxUnfinished = decimal.RequireFromString("99.99")

// ProgressTier buckets the exact current/target ratio, not the rounded
// display figure: 89.995% is medium.
func ProgressTier(g core.Goal) Tier {
	if g.TargetAmount.Cents <= 0 {
		return TierLow
	}
	scaled := g.CurrentAmount.Decimal().Mul(decimal.NewFromInt(100))
	target := g.TargetAmount.Decimal()
	switch {
	case scaled.GreaterThanOrEqual(target.Mul(decimal.NewFromInt(highThreshold))):
		return TierHigh
	case scaled.GreaterThanOrEqual(target.Mul(decimal.NewFromInt(mediumThreshold))):
		return TierMedium
	default:
		return TierLow
	}
}

// IsOverdue reports whether an active goal's target date has begun before
// now, i.e. now is past UTC midnight of the target date. Only ACTIVE goals
// can be overdue.
func IsOverdue(g core.Goal, now time.Time) bool {
	if g.Status != core.GoalActive {
		return false
	}
	return now.After(g.TargetDate.Time)
}

// RemainingAmount is what is left to reach the target, never negative.
func RemainingAmount(g core.Goal) core.Money {
	rem := g.TargetAmount.Sub(g.CurrentAmount)
	if rem.Cmp(core.Money{}) < 0 {
		return core.Money{}
	}
	return rem
}

// Evaluate computes every derived figure for g at now.
func Evaluate(g core.Goal, now time.Time) (core.GoalView, error) {
	typeLabel, err := TypeLabel(g.Type)
	if err != nil {
		return core.GoalView{}, err
	}
	typeColor, err := TypeColor(g.Type)
	if err != nil {
		return core.GoalView{}, err
	}
	icon, err := IconFor(g.Type)
	if err != nil {
		return core.GoalView{}, err
	}
	statusLabel, err := StatusLabel(g.Status)
	if err != nil {
		return core.GoalView{}, err
	}
	statusColor, err := StatusColor(g.Status)
	if err != nil {
		return core.GoalView{}, err
	}

	tier := ProgressTier(g)
	return core.GoalView{
		Goal:        g,
		Percentage:  ProgressPercentage(g),
		Tier:        string(tier),
		TierColor:   tier.Color(),
		Overdue:     IsOverdue(g, now),
		Remaining:   RemainingAmount(g),
		TypeLabel:   typeLabel,
		StatusLabel: statusLabel,
		Icon:        icon,
		TypeColor:   typeColor,
		StatusColor: statusColor,
	}, nil
}

// EvaluateAll evaluates goals in order, stopping at the first unknown variant.
func EvaluateAll(gs []core.Goal, now time.Time) ([]core.GoalView, error) {
	out := make([]core.GoalView, 0, len(gs))
	for _, g := range gs {
		v, err := Evaluate(g, now)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
