package core

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

const (
	Savings      GoalType = "SAVINGS"
	ExpenseLimit GoalType = "EXPENSE_LIMIT"
	DebtPayment  GoalType = "DEBT_PAYMENT"
)

const (
	GoalActive    GoalStatus = "ACTIVE"
	GoalCompleted GoalStatus = "COMPLETED"
	GoalCancelled GoalStatus = "CANCELLED"
	GoalPaused    GoalStatus = "PAUSED"
)

type (
	TransactionType string
	GoalType        string
	GoalStatus      string

	Category struct {
		ID          *int64          `json:"id,omitempty"`
		Name        string          `json:"name"`
		Description string          `json:"description,omitempty"`
		Type        TransactionType `json:"type"`
		Color       string          `json:"color"`
		Icon        string          `json:"icon"`
		Active      bool            `json:"active"`
	}

	Transaction struct {
		ID          *int64          `json:"id,omitempty"`
		Description string          `json:"description"`
		Amount      Money           `json:"amount"`
		Type        TransactionType `json:"type"`
		Date        Date            `json:"transactionDate"`
		Notes       string          `json:"notes,omitempty"`
		Category    Category        `json:"category"`
	}

	Goal struct {
		ID            *int64     `json:"id,omitempty"`
		Name          string     `json:"name"`
		Description   string     `json:"description,omitempty"`
		TargetAmount  Money      `json:"targetAmount"`
		CurrentAmount Money      `json:"currentAmount"`
		Type          GoalType   `json:"type"`
		Status        GoalStatus `json:"status"`
		StartDate     Date       `json:"startDate"`
		TargetDate    Date       `json:"targetDate"`
		CompletedAt   *Date      `json:"completedAt,omitempty"`
		EmailAlerts   bool       `json:"emailAlerts"`
		Category      *Category  `json:"category,omitempty"`
	}

	// Snapshot is the immutable input set a single build reads from.
	Snapshot struct {
		Transactions []Transaction
		Categories   []Category
		Goals        []Goal
		TakenAt      time.Time
	}
)

var (
	ErrInvalidCategoryType  = errors.New("invalid category type")
	ErrUnknownEnumVariant   = errors.New("unknown enum variant")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidDate          = errors.New("invalid date")
	ErrEmptyDescription     = errors.New("empty description")
	ErrEmptyName            = errors.New("empty name")
	ErrInvalidColor         = errors.New("invalid color")
	ErrFieldLength          = errors.New("field length out of range")
	ErrCategoryTypeMismatch = errors.New("transaction type does not match category type")
	ErrNotFound             = errors.New("not found")
	ErrDuplicateCategory    = errors.New("category already exists")
	ErrReadOnly             = errors.New("backend is read-only")
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ParseTransactionType normalizes s ("income", " EXPENSE ") to a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCategoryType, string(t))
	}
}

func ParseGoalType(s string) (GoalType, error) {
	t := GoalType(strings.ToUpper(strings.TrimSpace(s)))
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

func (t GoalType) Validate() error {
	switch t {
	case Savings, ExpenseLimit, DebtPayment:
		return nil
	default:
		return fmt.Errorf("%w: goal type %q", ErrUnknownEnumVariant, string(t))
	}
}

func ParseGoalStatus(s string) (GoalStatus, error) {
	st := GoalStatus(strings.ToUpper(strings.TrimSpace(s)))
	if err := st.Validate(); err != nil {
		return "", err
	}
	return st, nil
}

func (s GoalStatus) Validate() error {
	switch s {
	case GoalActive, GoalCompleted, GoalCancelled, GoalPaused:
		return nil
	default:
		return fmt.Errorf("%w: goal status %q", ErrUnknownEnumVariant, string(s))
	}
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return fmt.Errorf("%w: category name longer than 100 characters", ErrFieldLength)
	}
	if err := c.Type.Validate(); err != nil {
		return err
	}
	if c.Color != "" && !hexColor.MatchString(c.Color) {
		return fmt.Errorf("%w: %q", ErrInvalidColor, c.Color)
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return fmt.Errorf("%w: description longer than 200 characters", ErrFieldLength)
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if err := t.Category.Validate(); err != nil {
		return fmt.Errorf("category: %w", err)
	}
	if t.Type != t.Category.Type {
		return fmt.Errorf("%w: %s in %s category %q", ErrCategoryTypeMismatch, t.Type, t.Category.Type, t.Category.Name)
	}
	return nil
}

// NewGoal creates an active goal with no accumulated progress.
func NewGoal(name string, target Money, typ GoalType, start, end Date) Goal {
	return Goal{
		Name:         name,
		TargetAmount: target,
		Type:         typ,
		Status:       GoalActive,
		StartDate:    start,
		TargetDate:   end,
		EmailAlerts:  true,
	}
}

func (g Goal) Validate() error {
	name := strings.TrimSpace(g.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) < 2 || len(name) > 100 {
		return fmt.Errorf("%w: goal name must be between 2 and 100 characters", ErrFieldLength)
	}
	if !g.TargetAmount.IsPositive() {
		return fmt.Errorf("%w: target must be positive", ErrInvalidAmount)
	}
	if err := g.Type.Validate(); err != nil {
		return err
	}
	if err := g.Status.Validate(); err != nil {
		return err
	}
	if err := g.StartDate.Validate(); err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	if err := g.TargetDate.Validate(); err != nil {
		return fmt.Errorf("target date: %w", err)
	}
	if g.TargetDate.Before(g.StartDate) {
		return fmt.Errorf("%w: target date before start date", ErrInvalidDate)
	}
	if g.Category != nil {
		if err := g.Category.Validate(); err != nil {
			return fmt.Errorf("category: %w", err)
		}
	}
	return nil
}

// SameCategory reports whether two categories are the same bucket: by ID when
// both carry one, otherwise by name.
func SameCategory(a, b Category) bool {
	if a.ID != nil && b.ID != nil {
		return *a.ID == *b.ID
	}
	return strings.EqualFold(strings.TrimSpace(a.Name), strings.TrimSpace(b.Name))
}

// Int64Ptr is a helper for optional identifiers.
func Int64Ptr(v int64) *int64 { return &v }
