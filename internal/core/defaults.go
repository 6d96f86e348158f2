package core

// DefaultCategories returns the categories a fresh store starts with.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Salary", Description: "Monthly salary", Type: Income, Color: "#28a745", Icon: "money", Active: true},
		{Name: "Freelance", Description: "Extra work", Type: Income, Color: "#17a2b8", Icon: "briefcase", Active: true},
		{Name: "Food", Description: "Groceries and eating out", Type: Expense, Color: "#dc3545", Icon: "utensils", Active: true},
		{Name: "Transport", Description: "Fuel, tickets and rides", Type: Expense, Color: "#ffc107", Icon: "car", Active: true},
		{Name: "Housing", Description: "Rent, mortgage and bills", Type: Expense, Color: "#6f42c1", Icon: "home", Active: true},
		{Name: "Leisure", Description: "Entertainment", Type: Expense, Color: "#fd7e14", Icon: "gamepad", Active: true},
	}
}
