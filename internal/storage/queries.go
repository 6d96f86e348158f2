package storage

const (
	countCategories = `SELECT COUNT(*) FROM categories`

	insertCategory = `
INSERT INTO categories (name, description, type, color, icon, active)
VALUES (?, ?, ?, ?, ?, ?)`

	selectCategories = `
SELECT id, name, description, type, color, icon, active
FROM categories
ORDER BY id`

	selectCategoryByID = `
SELECT id, name, description, type, color, icon, active
FROM categories
WHERE id = ?`

	selectCategoryByName = `
SELECT id, name, description, type, color, icon, active
FROM categories
WHERE name = ? COLLATE NOCASE`

	transactionColumns = `
SELECT t.id, t.description, t.amount_cents, t.type, t.transaction_date, t.notes,
       c.id, c.name, c.description, c.type, c.color, c.icon, c.active
FROM transactions t
JOIN categories c ON c.id = t.category_id`

	selectTransactions = transactionColumns + `
ORDER BY t.transaction_date, t.id`

	selectTransactionByID = transactionColumns + `
WHERE t.id = ?`

	insertTransaction = `
INSERT INTO transactions (description, amount_cents, type, transaction_date, notes, category_id)
VALUES (?, ?, ?, ?, ?, ?)`

	deleteTransaction = `DELETE FROM transactions WHERE id = ?`

	goalColumns = `
SELECT g.id, g.name, g.description, g.target_amount_cents, g.current_amount_cents,
       g.type, g.status, g.start_date, g.target_date, g.completed_at, g.email_alerts,
       c.id, c.name, c.description, c.type, c.color, c.icon, c.active
FROM goals g
LEFT JOIN categories c ON c.id = g.category_id`

	selectGoals = goalColumns + `
ORDER BY g.id`

	selectActiveGoals = goalColumns + `
WHERE g.status = 'ACTIVE'
ORDER BY g.id`

	insertGoal = `
INSERT INTO goals (name, description, target_amount_cents, current_amount_cents, type, status,
                   start_date, target_date, completed_at, email_alerts, category_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectGoalByID = goalColumns + `
WHERE g.id = ?`

	selectGoalStatus = `SELECT status FROM goals WHERE id = ?`

	// accrueGoal adds a signed delta to an active goal. SET expressions see
	// the old row, so the completion checks use current + delta.
	accrueGoal = `
UPDATE goals
SET current_amount_cents = current_amount_cents + ?,
    status = CASE
        WHEN ? > 0 AND type = 'SAVINGS' AND current_amount_cents + ? >= target_amount_cents THEN 'COMPLETED'
        ELSE status END,
    completed_at = CASE
        WHEN ? > 0 AND type = 'SAVINGS' AND current_amount_cents + ? >= target_amount_cents THEN ?
        ELSE completed_at END,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND status = 'ACTIVE'`

	cancelGoal = `
UPDATE goals
SET status = 'CANCELLED', updated_at = CURRENT_TIMESTAMP
WHERE id = ?`
)
