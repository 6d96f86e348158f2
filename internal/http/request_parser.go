// Package http provides HTTP server and handler implementations.
//
// This file decodes request bodies and path/query parameters into domain
// values. Decoding failures wrap errMalformed; domain rule violations keep
// the core sentinel so the response builder can tell them apart.

package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/core"
)

const maxBodyBytes = 1 << 20

type transactionRequest struct {
	Description  string          `json:"description"`
	Amount       json.RawMessage `json:"amount"`
	Type         string          `json:"type"`
	Date         string          `json:"transactionDate"`
	Notes        string          `json:"notes"`
	CategoryID   *int64          `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

type goalRequest struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	TargetAmount json.RawMessage `json:"targetAmount"`
	Type         string          `json:"type"`
	StartDate    string          `json:"startDate"`
	TargetDate   string          `json:"targetDate"`
	EmailAlerts  *bool           `json:"emailAlerts"`
	CategoryID   *int64          `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
}

// decodeJSON reads one JSON object from the body, rejecting unknown fields
// and trailing data.
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", errMalformed, err)
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("%w: body larger than %d bytes", errMalformed, maxBodyBytes)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON object", errMalformed)
	}
	return nil
}

// parseAmount accepts "12.34", "12,34" or a bare JSON number.
func parseAmount(raw json.RawMessage) (core.Money, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return core.Money{}, fmt.Errorf("%w: amount is required", core.ErrInvalidAmount)
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(raw, &s); err != nil {
			return core.Money{}, fmt.Errorf("%w: %v", errMalformed, err)
		}
	}
	return core.ParseMoney(s)
}

// sanitizeInput removes control characters except tab and newlines, then trims.
func sanitizeInput(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

func categoryRef(id *int64, name string) core.Category {
	return core.Category{ID: id, Name: sanitizeInput(name)}
}

func (req transactionRequest) toTransaction() (core.Transaction, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	typ, err := core.ParseTransactionType(req.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	if req.CategoryID == nil && strings.TrimSpace(req.CategoryName) == "" {
		return core.Transaction{}, fmt.Errorf("%w: categoryId or categoryName is required", core.ErrEmptyName)
	}
	return core.Transaction{
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		Type:        typ,
		Date:        date,
		Notes:       sanitizeInput(req.Notes),
		Category:    categoryRef(req.CategoryID, req.CategoryName),
	}, nil
}

func (req categoryRequest) toCategory() (core.Category, error) {
	typ, err := core.ParseTransactionType(req.Type)
	if err != nil {
		return core.Category{}, err
	}
	return core.Category{
		Name:        sanitizeInput(req.Name),
		Description: sanitizeInput(req.Description),
		Type:        typ,
		Color:       strings.TrimSpace(req.Color),
		Icon:        sanitizeInput(req.Icon),
		Active:      true,
	}, nil
}

func (req goalRequest) toGoal() (core.Goal, error) {
	target, err := parseAmount(req.TargetAmount)
	if err != nil {
		return core.Goal{}, err
	}
	typ, err := core.ParseGoalType(req.Type)
	if err != nil {
		return core.Goal{}, err
	}
	start, err := core.ParseDate(req.StartDate)
	if err != nil {
		return core.Goal{}, fmt.Errorf("start date: %w", err)
	}
	end, err := core.ParseDate(req.TargetDate)
	if err != nil {
		return core.Goal{}, fmt.Errorf("target date: %w", err)
	}

	g := core.NewGoal(sanitizeInput(req.Name), target, typ, start, end)
	g.Description = sanitizeInput(req.Description)
	if req.EmailAlerts != nil {
		g.EmailAlerts = *req.EmailAlerts
	}
	if req.CategoryID != nil || strings.TrimSpace(req.CategoryName) != "" {
		c := categoryRef(req.CategoryID, req.CategoryName)
		g.Category = &c
	}
	return g, nil
}

// pathInt reads a chi URL parameter as an integer.
func pathInt(r *http.Request, name string) (int, error) {
	v := chi.URLParam(r, name)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", errMalformed, name, v)
	}
	return n, nil
}

// pathID reads the positive {id} URL parameter.
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id %q", errMalformed, raw)
	}
	return id, nil
}

// queryInt reads an optional integer query parameter; absent means def.
func queryInt(r *http.Request, name string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", errMalformed, name)
	}
	return n, nil
}
