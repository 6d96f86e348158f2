package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/store/memory"
)

type readOnlyWriter struct{}

func (readOnlyWriter) CreateTransaction(context.Context, core.Transaction) (core.Transaction, error) {
	return core.Transaction{}, core.ErrReadOnly
}
func (readOnlyWriter) DeleteTransaction(context.Context, int64) (core.Transaction, error) {
	return core.Transaction{}, core.ErrReadOnly
}
func (readOnlyWriter) CreateCategory(context.Context, core.Category) (core.Category, error) {
	return core.Category{}, core.ErrReadOnly
}
func (readOnlyWriter) CreateGoal(context.Context, core.Goal) (core.Goal, error) {
	return core.Goal{}, core.ErrReadOnly
}
func (readOnlyWriter) CancelGoal(context.Context, int64) (core.Goal, error) {
	return core.Goal{}, core.ErrReadOnly
}
func (readOnlyWriter) Ping(context.Context) error { return errors.New("unreachable") }

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	st := memory.New(nil)
	srv := NewServer(Options{
		Addr:               ":0",
		Reports:            services.NewReportService(st, 10, []int{2023, 2024}),
		Writer:             services.NewTransactionService(st, nil),
		Logger:             applog.New(applog.Config{Output: io.Discard}),
		RateLimitPerMinute: 1000,
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, st
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := do(t, srv, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rec.Code)
		}
		if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Errorf("%s missing security headers", path)
		}
		if rec.Header().Get("X-Request-ID") == "" {
			t.Errorf("%s missing request id", path)
		}
	}

	down := NewServer(Options{
		Reports: services.NewReportService(memory.New(nil), 0, nil),
		Writer:  readOnlyWriter{},
		Logger:  applog.New(applog.Config{Output: io.Discard}),
	})
	defer down.Shutdown(context.Background())
	if rec := do(t, down, http.MethodGet, "/readyz", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz with failing backend status=%d", rec.Code)
	}
}

func TestCreateTransactionAndReports(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/transactions",
		`{"description":"March salary","amount":"2500,00","type":"income","transactionDate":"2024-03-01","categoryName":"Salary"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rec.Code, rec.Body)
	}
	var created core.Transaction
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.ID == nil || created.Amount.Cents != 250000 || created.Type != core.Income {
		t.Fatalf("unexpected transaction %+v", created)
	}

	rec = do(t, srv, http.MethodPost, "/api/transactions",
		`{"description":"Groceries","amount":42.5,"type":"EXPENSE","transactionDate":"2024-03-02","categoryName":"food"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense status=%d body=%s", rec.Code, rec.Body)
	}

	rec = do(t, srv, http.MethodGet, "/api/reports/2024/3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("monthly status=%d", rec.Code)
	}
	var month core.MonthlyReport
	if err := json.NewDecoder(rec.Body).Decode(&month); err != nil {
		t.Fatal(err)
	}
	if month.TotalIncome.Cents != 250000 || month.TotalExpense.Cents != 4250 || month.Balance.Cents != 245750 {
		t.Errorf("totals = %s / %s / %s", month.TotalIncome, month.TotalExpense, month.Balance)
	}
	if len(month.ExpenseByCategory) != 1 || month.ExpenseByCategory[0].Name != "Food" {
		t.Errorf("expense breakdown = %+v", month.ExpenseByCategory)
	}

	rec = do(t, srv, http.MethodGet, "/api/reports/2024", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("yearly status=%d", rec.Code)
	}
	var year core.YearlyReport
	if err := json.NewDecoder(rec.Body).Decode(&year); err != nil {
		t.Fatal(err)
	}
	if len(year.Months) != 12 || year.Balance.Cents != 245750 {
		t.Errorf("year = %d months, balance %s", len(year.Months), year.Balance)
	}

	rec = do(t, srv, http.MethodGet, "/api/dashboard?recent=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status=%d", rec.Code)
	}
	var dash core.DashboardSummary
	if err := json.NewDecoder(rec.Body).Decode(&dash); err != nil {
		t.Fatal(err)
	}
	if len(dash.RecentTransactions) != 1 || dash.RecentTransactions[0].Description != "Groceries" {
		t.Errorf("recent = %+v", dash.RecentTransactions)
	}
}

func TestCreateTransactionLogsOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Output: &buf, Format: "json"})
	prev := slog.Default()
	applog.SetDefault(logger)
	t.Cleanup(func() { slog.SetDefault(prev) })

	st := memory.New(nil)
	srv := NewServer(Options{
		Addr:               ":0",
		Reports:            services.NewReportService(st, 10, []int{2024}),
		Writer:             services.NewTransactionService(st, nil),
		Logger:             logger,
		RateLimitPerMinute: 1000,
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	rec := do(t, srv, http.MethodPost, "/api/transactions",
		`{"description":"Rent","amount":"700","type":"EXPENSE","transactionDate":"2024-03-01","categoryName":"Housing"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
	if n := strings.Count(buf.String(), `"msg":"Transaction created"`); n != 1 {
		t.Errorf("got %d creation log lines, want 1:\n%s", n, buf.String())
	}
}

func TestMonthOutOfRangeIsEmpty(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, m := range []string{"0", "13", "-1"} {
		rec := do(t, srv, http.MethodGet, "/api/reports/2024/"+m, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("month %s status=%d", m, rec.Code)
		}
		var rep core.MonthlyReport
		if err := json.NewDecoder(rec.Body).Decode(&rep); err != nil {
			t.Fatal(err)
		}
		if len(rep.Transactions) != 0 || !rep.Balance.IsZero() {
			t.Errorf("month %s report not empty: %+v", m, rep)
		}
	}
}

func TestErrorMapping(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
		code   string
	}{
		{"malformed json", http.MethodPost, "/api/transactions", `{"description":`, 400, "malformed_request"},
		{"unknown field", http.MethodPost, "/api/transactions", `{"foo":1}`, 400, "malformed_request"},
		{"negative amount", http.MethodPost, "/api/transactions",
			`{"description":"x","amount":"-5","type":"EXPENSE","transactionDate":"2024-01-01","categoryName":"Food"}`, 422, "validation_failed"},
		{"bad type", http.MethodPost, "/api/transactions",
			`{"description":"x","amount":"5","type":"TRANSFER","transactionDate":"2024-01-01","categoryName":"Food"}`, 422, "validation_failed"},
		{"bad date", http.MethodPost, "/api/transactions",
			`{"description":"x","amount":"5","type":"EXPENSE","transactionDate":"01/02/2024","categoryName":"Food"}`, 422, "validation_failed"},
		{"type mismatch", http.MethodPost, "/api/transactions",
			`{"description":"x","amount":"5","type":"INCOME","transactionDate":"2024-01-01","categoryName":"Food"}`, 422, "validation_failed"},
		{"unknown category", http.MethodPost, "/api/transactions",
			`{"description":"x","amount":"5","type":"EXPENSE","transactionDate":"2024-01-01","categoryName":"Yachts"}`, 404, "not_found"},
		{"duplicate category", http.MethodPost, "/api/categories", `{"name":"Food","type":"EXPENSE"}`, 409, "duplicate"},
		{"bad color", http.MethodPost, "/api/categories", `{"name":"Pets","type":"EXPENSE","color":"red"}`, 422, "validation_failed"},
		{"delete missing", http.MethodDelete, "/api/transactions/999", "", 404, "not_found"},
		{"delete bad id", http.MethodDelete, "/api/transactions/abc", "", 400, "malformed_request"},
		{"bad year", http.MethodGet, "/api/reports/twenty", "", 400, "malformed_request"},
		{"bad recent", http.MethodGet, "/api/dashboard?recent=-3", "", 400, "malformed_request"},
		{"goal dates reversed", http.MethodPost, "/api/goals",
			`{"name":"Trip","targetAmount":"100","type":"SAVINGS","startDate":"2024-06-01","targetDate":"2024-01-01"}`, 422, "validation_failed"},
		{"unknown route", http.MethodGet, "/api/nope", "", 404, "not_found"},
		{"cancel missing goal", http.MethodDelete, "/api/goals/999", "", 404, "not_found"},
		{"cancel bad id", http.MethodDelete, "/api/goals/0", "", 400, "malformed_request"},
		{"list month without year", http.MethodGet, "/api/transactions?month=3", "", 400, "malformed_request"},
		{"list bad type", http.MethodGet, "/api/transactions?type=TRANSFER", "", 422, "validation_failed"},
		{"categories bad type", http.MethodGet, "/api/categories?type=gift", "", 422, "validation_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, tt.method, tt.target, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status=%d want %d body=%s", rec.Code, tt.want, rec.Body)
			}
			var body errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("error body not JSON: %v", err)
			}
			if body.Code != tt.code {
				t.Errorf("code=%q want %q", body.Code, tt.code)
			}
		})
	}
}

func TestReadOnlyBackend(t *testing.T) {
	srv := NewServer(Options{
		Reports: services.NewReportService(memory.New(nil), 0, nil),
		Writer:  readOnlyWriter{},
		Logger:  applog.New(applog.Config{Output: io.Discard}),
	})
	defer srv.Shutdown(context.Background())

	rec := do(t, srv, http.MethodPost, "/api/categories", `{"name":"Pets","type":"EXPENSE"}`)
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status=%d want 501", rec.Code)
	}
}

func TestGoalsAndCategories(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/goals",
		`{"name":"Food budget","targetAmount":"400","type":"EXPENSE_LIMIT","startDate":"2024-01-01","targetDate":"2099-12-31","categoryName":"Food"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create goal status=%d body=%s", rec.Code, rec.Body)
	}

	rec = do(t, srv, http.MethodPost, "/api/transactions",
		`{"description":"Dinner","amount":"100","type":"EXPENSE","transactionDate":"2024-02-10","categoryName":"Food"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create tx status=%d", rec.Code)
	}

	rec = do(t, srv, http.MethodGet, "/api/goals", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("goals status=%d", rec.Code)
	}
	var views []core.GoalView
	if err := json.NewDecoder(rec.Body).Decode(&views); err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 {
		t.Fatalf("got %d goals", len(views))
	}
	if views[0].Percentage != 25 || views[0].Tier != "low" || views[0].TypeLabel != "Expense Limit" {
		t.Errorf("view = %+v", views[0])
	}

	rec = do(t, srv, http.MethodPost, "/api/categories", `{"name":"Pets","type":"expense","color":"#123abc","icon":"paw"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category status=%d body=%s", rec.Code, rec.Body)
	}

	rec = do(t, srv, http.MethodGet, "/api/categories", "")
	var lists services.CategoryLists
	if err := json.NewDecoder(rec.Body).Decode(&lists); err != nil {
		t.Fatal(err)
	}
	if len(lists.Income) != 2 || len(lists.Expense) != 5 {
		t.Errorf("categories = %d income / %d expense", len(lists.Income), len(lists.Expense))
	}

	rec = do(t, srv, http.MethodGet, "/api/reports/years", "")
	if !strings.Contains(rec.Body.String(), "[2023,2024]") {
		t.Errorf("years body = %s", rec.Body)
	}
}

func TestDeleteTransaction(t *testing.T) {
	srv, st := newTestServer(t)
	saved, err := st.CreateTransaction(context.Background(), core.Transaction{
		Description: "Bus", Amount: core.Money{Cents: 250}, Type: core.Expense,
		Date: core.NewDate(2024, 1, 5), Category: core.Category{Name: "Transport"},
	})
	if err != nil {
		t.Fatal(err)
	}

	target := "/api/transactions/" + strconv.FormatInt(*saved.ID, 10)
	if rec := do(t, srv, http.MethodDelete, target, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rec.Code)
	}
	if rec := do(t, srv, http.MethodDelete, target, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status=%d", rec.Code)
	}
}

func TestRateLimitOnWrites(t *testing.T) {
	st := memory.New(nil)
	srv := NewServer(Options{
		Reports:            services.NewReportService(st, 0, nil),
		Writer:             services.NewTransactionService(st, nil),
		Logger:             applog.New(applog.Config{Output: io.Discard}),
		RateLimitPerMinute: 1,
	})
	defer srv.Shutdown(context.Background())

	body := `{"name":"Pets","type":"EXPENSE"}`
	if rec := do(t, srv, http.MethodPost, "/api/categories", body); rec.Code != http.StatusCreated {
		t.Fatalf("first write status=%d", rec.Code)
	}
	if rec := do(t, srv, http.MethodPost, "/api/categories", body); rec.Code != http.StatusTooManyRequests {
		t.Errorf("second write status=%d want 429", rec.Code)
	}
	if rec := do(t, srv, http.MethodGet, "/api/categories", ""); rec.Code != http.StatusOK {
		t.Errorf("reads must not be limited, status=%d", rec.Code)
	}
}

func TestListTransactions(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()
	for _, tx := range []core.Transaction{
		{Description: "Salary", Amount: core.Money{Cents: 300000}, Type: core.Income, Date: core.NewDate(2024, 3, 1), Category: core.Category{Name: "Salary"}},
		{Description: "Rent", Amount: core.Money{Cents: 90000}, Type: core.Expense, Date: core.NewDate(2024, 3, 2), Category: core.Category{Name: "Housing"}},
		{Description: "Train", Amount: core.Money{Cents: 1500}, Type: core.Expense, Date: core.NewDate(2024, 4, 9), Category: core.Category{Name: "Transport"}},
	} {
		if _, err := st.CreateTransaction(ctx, tx); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		target string
		want   []string
	}{
		{"/api/transactions", []string{"Train", "Rent", "Salary"}},
		{"/api/transactions?year=2024&month=3", []string{"Rent", "Salary"}},
		{"/api/transactions?year=2024&month=3&type=expense", []string{"Rent"}},
		{"/api/transactions?year=2023", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, tt.target, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
			}
			var got []core.Transaction
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d transactions, want %d", len(got), len(tt.want))
			}
			for i, tx := range got {
				if tx.Description != tt.want[i] {
					t.Errorf("[%d] = %q, want %q", i, tx.Description, tt.want[i])
				}
			}
		})
	}
}

func TestOverdueAndCancelGoal(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()
	past, err := st.CreateGoal(ctx, core.NewGoal("Old plan", core.Money{Cents: 10000}, core.Savings, core.NewDate(2020, 1, 1), core.NewDate(2020, 6, 1)))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.CreateGoal(ctx, core.NewGoal("Future plan", core.Money{Cents: 10000}, core.Savings, core.NewDate(2024, 1, 1), core.NewDate(2099, 1, 1))); err != nil {
		t.Fatal(err)
	}

	rec := do(t, srv, http.MethodGet, "/api/goals/overdue", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("overdue status=%d", rec.Code)
	}
	var views []core.GoalView
	if err := json.NewDecoder(rec.Body).Decode(&views); err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 || views[0].Goal.Name != "Old plan" || !views[0].Overdue {
		t.Fatalf("overdue = %+v", views)
	}

	target := "/api/goals/" + strconv.FormatInt(*past.ID, 10)
	if rec := do(t, srv, http.MethodDelete, target, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("cancel status=%d body=%s", rec.Code, rec.Body)
	}

	rec = do(t, srv, http.MethodGet, "/api/goals/overdue", "")
	views = nil
	if err := json.NewDecoder(rec.Body).Decode(&views); err != nil {
		t.Fatal(err)
	}
	if len(views) != 0 {
		t.Errorf("cancelled goal still overdue: %+v", views)
	}

	rec = do(t, srv, http.MethodGet, "/api/goals", "")
	views = nil
	if err := json.NewDecoder(rec.Body).Decode(&views); err != nil {
		t.Fatal(err)
	}
	if len(views) != 2 || views[0].Goal.Status != core.GoalCancelled {
		t.Errorf("cancelled goal should be kept: %+v", views)
	}
}

func TestCategoriesByType(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/categories?type=income", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	var cats []core.Category
	if err := json.NewDecoder(rec.Body).Decode(&cats); err != nil {
		t.Fatal(err)
	}
	if len(cats) != 2 {
		t.Fatalf("got %d income categories, want 2", len(cats))
	}
	for _, c := range cats {
		if c.Type != core.Income {
			t.Errorf("category %q has type %s", c.Name, c.Type)
		}
	}
}
