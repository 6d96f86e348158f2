// Package google is a read-only backend over a Google spreadsheet with
// Transactions, Categories and Goals tabs.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/store"
)

var _ store.Store = (*Client)(nil)

// Options configures the client. Empty tab names fall back to defaults.
type Options struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string

	TransactionsSheet string
	CategoriesSheet   string
	GoalsSheet        string
}

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	categoriesSheet   string
	goalsSheet        string
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	id := strings.TrimSpace(opts.SpreadsheetID)
	if id == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	creds, err := loadCredentials(ctx, opts)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:               svc,
		spreadsheetID:     id,
		transactionsSheet: orDefault(opts.TransactionsSheet, "Transactions"),
		categoriesSheet:   orDefault(opts.CategoriesSheet, "Categories"),
		goalsSheet:        orDefault(opts.GoalsSheet, "Goals"),
	}, nil
}

func loadCredentials(ctx context.Context, opts Options) ([]byte, error) {
	inline := strings.TrimSpace(opts.CredentialsJSON)
	file := strings.TrimSpace(opts.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		slog.InfoContext(ctx, "Using inline service account credentials", applog.FieldComponent, applog.ComponentSheets)
		return []byte(inline), nil
	case file != "":
		slog.InfoContext(ctx, "Reading service account credentials", applog.FieldComponent, applog.ComponentSheets, "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

// Snapshot fetches the three tabs with a single BatchGet.
func (c *Client) Snapshot(ctx context.Context) (core.Snapshot, error) {
	resp, err := c.svc.Spreadsheets.Values.BatchGet(c.spreadsheetID).
		Ranges(
			fmt.Sprintf("%s!A:Z", c.categoriesSheet),
			fmt.Sprintf("%s!A:Z", c.transactionsSheet),
			fmt.Sprintf("%s!A:Z", c.goalsSheet),
		).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("batch get: %w", err)
	}
	if len(resp.ValueRanges) != 3 {
		return core.Snapshot{}, fmt.Errorf("batch get: expected 3 ranges, got %d", len(resp.ValueRanges))
	}

	cats, err := parseCategories(resp.ValueRanges[0].Values)
	if err != nil {
		return core.Snapshot{}, err
	}
	txs, err := parseTransactions(resp.ValueRanges[1].Values, cats)
	if err != nil {
		return core.Snapshot{}, err
	}
	goals, err := parseGoals(resp.ValueRanges[2].Values, cats)
	if err != nil {
		return core.Snapshot{}, err
	}

	return core.Snapshot{
		Transactions: txs,
		Categories:   cats,
		Goals:        goals,
		TakenAt:      time.Now(),
	}, nil
}

// Ping checks the spreadsheet is reachable with the configured credentials.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	return nil
}

// ActiveGoals reads the Goals tab through a full snapshot.
func (c *Client) ActiveGoals(ctx context.Context) ([]core.Goal, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.Goal, 0, len(snap.Goals))
	for _, g := range snap.Goals {
		if g.Status == core.GoalActive {
			out = append(out, g)
		}
	}
	return out, nil
}

func (c *Client) CreateTransaction(context.Context, core.Transaction) (core.Transaction, error) {
	return core.Transaction{}, core.ErrReadOnly
}

func (c *Client) DeleteTransaction(context.Context, int64) (core.Transaction, error) {
	return core.Transaction{}, core.ErrReadOnly
}

func (c *Client) CreateCategory(context.Context, core.Category) (core.Category, error) {
	return core.Category{}, core.ErrReadOnly
}

func (c *Client) CreateGoal(context.Context, core.Goal) (core.Goal, error) {
	return core.Goal{}, core.ErrReadOnly
}

func (c *Client) CancelGoal(context.Context, int64) (core.Goal, error) {
	return core.Goal{}, core.ErrReadOnly
}

func (c *Client) AccrueGoals(context.Context, []store.GoalDelta, core.Date) (int, error) {
	return 0, core.ErrReadOnly
}
