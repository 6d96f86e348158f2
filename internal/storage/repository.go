// Package storage is the SQLite backend. The schema is managed by embedded
// golang-migrate migrations and every snapshot is read in one transaction.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/store"
)

var _ store.Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	repo := &SQLiteRepository{
		db:     db,
		logger: slog.Default().With(applog.FieldComponent, applog.ComponentStorage),
	}

	if err := repo.seedCategories(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed categories: %w", err)
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// seedCategories inserts the default categories into an empty table.
func (r *SQLiteRepository) seedCategories(ctx context.Context) error {
	var n int64
	if err := r.db.QueryRowContext(ctx, countCategories).Scan(&n); err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, c := range core.DefaultCategories() {
		if _, err := r.insertCategory(ctx, r.db, c); err != nil {
			return err
		}
	}
	r.logger.Info("Seeded default categories", "count", len(core.DefaultCategories()))
	return nil
}

// Snapshot reads everything inside one read-only transaction.
func (r *SQLiteRepository) Snapshot(ctx context.Context) (core.Snapshot, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	cats, err := r.listCategories(ctx, tx)
	if err != nil {
		return core.Snapshot{}, err
	}
	txs, err := r.listTransactions(ctx, tx, selectTransactions)
	if err != nil {
		return core.Snapshot{}, err
	}
	goals, err := r.listGoals(ctx, tx, selectGoals)
	if err != nil {
		return core.Snapshot{}, err
	}
	if err := tx.Commit(); err != nil {
		return core.Snapshot{}, fmt.Errorf("commit snapshot: %w", err)
	}

	return core.Snapshot{
		Transactions: txs,
		Categories:   cats,
		Goals:        goals,
		TakenAt:      nowFunc(),
	}, nil
}

// CreateCategory implements store.CategoryWriter
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	id, err := r.insertCategory(ctx, r.db, c)
	if err != nil {
		return core.Category{}, err
	}
	c.ID = &id
	return c, nil
}

func (r *SQLiteRepository) insertCategory(ctx context.Context, q queryer, c core.Category) (int64, error) {
	res, err := q.ExecContext(ctx, insertCategory, c.Name, c.Description, string(c.Type), c.Color, c.Icon, c.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %q", core.ErrDuplicateCategory, c.Name)
		}
		return 0, fmt.Errorf("insert category: %w", err)
	}
	return res.LastInsertId()
}

// CreateTransaction implements store.TransactionWriter. The category is
// resolved by ID, or by name when no ID is given, and must match the
// transaction type.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	cat, err := r.resolveCategory(ctx, r.db, t.Category)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Category = cat
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	res, err := r.db.ExecContext(ctx, insertTransaction,
		t.Description, t.Amount.Cents, string(t.Type), t.Date.String(), t.Notes, *cat.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("last insert id: %w", err)
	}
	t.ID = &id

	r.logger.DebugContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"type", t.Type,
		"amount_cents", t.Amount.Cents,
		"category", cat.Name,
		"date", t.Date.String())

	return t, nil
}

// DeleteTransaction implements store.TransactionWriter
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	txs, err := r.listTransactions(ctx, tx, selectTransactionByID, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if len(txs) == 0 {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	if _, err := tx.ExecContext(ctx, deleteTransaction, id); err != nil {
		return core.Transaction{}, fmt.Errorf("delete transaction: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit delete: %w", err)
	}
	return txs[0], nil
}

// CreateGoal implements store.GoalWriter
func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	var categoryID any
	if g.Category != nil {
		cat, err := r.resolveCategory(ctx, r.db, *g.Category)
		if err != nil {
			return core.Goal{}, err
		}
		g.Category = &cat
		categoryID = *cat.ID
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}

	res, err := r.db.ExecContext(ctx, insertGoal,
		g.Name, g.Description, g.TargetAmount.Cents, g.CurrentAmount.Cents,
		string(g.Type), string(g.Status), g.StartDate.String(), g.TargetDate.String(),
		nullableDate(g.CompletedAt), g.EmailAlerts, categoryID)
	if err != nil {
		return core.Goal{}, fmt.Errorf("insert goal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Goal{}, fmt.Errorf("last insert id: %w", err)
	}
	g.ID = &id
	return g, nil
}

// ActiveGoals implements store.GoalUpdater
func (r *SQLiteRepository) ActiveGoals(ctx context.Context) ([]core.Goal, error) {
	return r.listGoals(ctx, r.db, selectActiveGoals)
}

// AccrueGoals implements store.GoalUpdater. Every delta is added in SQL
// inside one transaction, so concurrent accruals never overwrite each other
// and a failure leaves no goal moved.
func (r *SQLiteRepository) AccrueGoals(ctx context.Context, deltas []store.GoalDelta, on core.Date) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin accrual: %w", err)
	}
	defer tx.Rollback()

	updated := 0
	for _, d := range deltas {
		c := d.Amount.Cents
		res, err := tx.ExecContext(ctx, accrueGoal, c, c, c, c, c, on.String(), d.GoalID)
		if err != nil {
			return 0, fmt.Errorf("accrue goal %d: %w", d.GoalID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		if n > 0 {
			updated++
			continue
		}
		// Not moved: either gone or no longer active.
		var status string
		err = tx.QueryRowContext(ctx, selectGoalStatus, d.GoalID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("goal %d: %w", d.GoalID, core.ErrNotFound)
		}
		if err != nil {
			return 0, fmt.Errorf("load goal %d: %w", d.GoalID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit accrual: %w", err)
	}
	r.logger.DebugContext(ctx, "Goal progress accrued",
		applog.FieldOperation, applog.OpAccrue,
		"deltas", len(deltas),
		applog.FieldGoalsUpdated, updated)
	return updated, nil
}

// CancelGoal implements store.GoalWriter
func (r *SQLiteRepository) CancelGoal(ctx context.Context, id int64) (core.Goal, error) {
	res, err := r.db.ExecContext(ctx, cancelGoal, id)
	if err != nil {
		return core.Goal{}, fmt.Errorf("cancel goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Goal{}, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.Goal{}, fmt.Errorf("goal %d: %w", id, core.ErrNotFound)
	}
	gs, err := r.listGoals(ctx, r.db, selectGoalByID, id)
	if err != nil {
		return core.Goal{}, err
	}
	if len(gs) == 0 {
		return core.Goal{}, fmt.Errorf("goal %d: %w", id, core.ErrNotFound)
	}
	return gs[0], nil
}

func (r *SQLiteRepository) resolveCategory(ctx context.Context, q queryer, ref core.Category) (core.Category, error) {
	var (
		row   *sql.Row
		label string
	)
	if ref.ID != nil {
		row = q.QueryRowContext(ctx, selectCategoryByID, *ref.ID)
		label = fmt.Sprintf("category %d", *ref.ID)
	} else {
		row = q.QueryRowContext(ctx, selectCategoryByName, ref.Name)
		label = fmt.Sprintf("category %q", ref.Name)
	}
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("%s: %w", label, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("load %s: %w", label, err)
	}
	return c, nil
}

func (r *SQLiteRepository) listCategories(ctx context.Context, q queryer) ([]core.Category, error) {
	rows, err := q.QueryContext(ctx, selectCategories)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	out := make([]core.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) listTransactions(ctx context.Context, q queryer, query string, args ...any) ([]core.Transaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) listGoals(ctx context.Context, q queryer, query string, args ...any) ([]core.Goal, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	out := make([]core.Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
