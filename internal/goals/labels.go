package goals

import (
	"fmt"

	"fintrack/internal/core"
)

type goalTypeMeta struct {
	label string
	icon  string
	color string
}

var typeMeta = map[core.GoalType]goalTypeMeta{
	core.Savings:      {label: "Savings", icon: "savings", color: "primary"},
	core.ExpenseLimit: {label: "Expense Limit", icon: "trending_down", color: "warn"},
	core.DebtPayment:  {label: "Debt Payment", icon: "payment", color: "accent"},
}

type goalStatusMeta struct {
	label string
	color string
}

var statusMeta = map[core.GoalStatus]goalStatusMeta{
	core.GoalActive:    {label: "Active", color: "primary"},
	core.GoalCompleted: {label: "Completed", color: "primary"},
	core.GoalCancelled: {label: "Cancelled", color: "warn"},
	core.GoalPaused:    {label: "Paused", color: "accent"},
}

func lookupType(t core.GoalType) (goalTypeMeta, error) {
	m, ok := typeMeta[t]
	if !ok {
		return goalTypeMeta{}, fmt.Errorf("%w: goal type %q", core.ErrUnknownEnumVariant, string(t))
	}
	return m, nil
}

func lookupStatus(s core.GoalStatus) (goalStatusMeta, error) {
	m, ok := statusMeta[s]
	if !ok {
		return goalStatusMeta{}, fmt.Errorf("%w: goal status %q", core.ErrUnknownEnumVariant, string(s))
	}
	return m, nil
}

func TypeLabel(t core.GoalType) (string, error) {
	m, err := lookupType(t)
	return m.label, err
}

func IconFor(t core.GoalType) (string, error) {
	m, err := lookupType(t)
	return m.icon, err
}

func TypeColor(t core.GoalType) (string, error) {
	m, err := lookupType(t)
	return m.color, err
}

func StatusLabel(s core.GoalStatus) (string, error) {
	m, err := lookupStatus(s)
	return m.label, err
}

func StatusColor(s core.GoalStatus) (string, error) {
	m, err := lookupStatus(s)
	return m.color, err
}
