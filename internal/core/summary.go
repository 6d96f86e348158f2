package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name       string  `json:"categoryName"`
	Amount     Money   `json:"amount"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color,omitempty"`
	Icon       string  `json:"icon,omitempty"`
}

// DashboardSummary is recomputed on every request and never persisted.
type DashboardSummary struct {
	TotalIncome        Money         `json:"totalIncome"`
	TotalExpense       Money         `json:"totalExpense"`
	Balance            Money         `json:"balance"`
	MonthlyIncome      Money         `json:"monthlyIncome"`
	MonthlyExpense     Money         `json:"monthlyExpense"`
	RecentTransactions []Transaction `json:"recentTransactions"`
	ActiveGoalsCount   int           `json:"activeGoalsCount"`
}

// MonthlyReport is a summary restricted to one calendar month.
type MonthlyReport struct {
	Year              int              `json:"year"`
	Month             int              `json:"month"` // 1-12
	TotalIncome       Money            `json:"totalIncome"`
	TotalExpense      Money            `json:"totalExpense"`
	Balance           Money            `json:"balance"`
	IncomeByCategory  []CategoryAmount `json:"incomeByCategory"`
	ExpenseByCategory []CategoryAmount `json:"expenseByCategory"`
	Transactions      []Transaction    `json:"transactions"`
}

// YearlyReport collects the twelve monthly reports of a year.
type YearlyReport struct {
	Year         int             `json:"year"`
	TotalIncome  Money           `json:"totalIncome"`
	TotalExpense Money           `json:"totalExpense"`
	Balance      Money           `json:"balance"`
	Months       []MonthlyReport `json:"months"`
}

// GoalView is a goal with its derived display figures.
type GoalView struct {
	Goal        Goal    `json:"goal"`
	Percentage  float64 `json:"progressPercentage"`
	Tier        string  `json:"progressTier"`
	TierColor   string  `json:"progressColor"`
	Overdue     bool    `json:"overdue"`
	Remaining   Money   `json:"remainingAmount"`
	TypeLabel   string  `json:"typeLabel"`
	StatusLabel string  `json:"statusLabel"`
	Icon        string  `json:"icon"`
	TypeColor   string  `json:"typeColor"`
	StatusColor string  `json:"statusColor"`
}
