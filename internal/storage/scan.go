package storage

import (
	"database/sql"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// nowFunc is replaced in tests.
var nowFunc = time.Now

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(s scanner) (core.Category, error) {
	var (
		c   core.Category
		id  int64
		typ string
	)
	if err := s.Scan(&id, &c.Name, &c.Description, &typ, &c.Color, &c.Icon, &c.Active); err != nil {
		return core.Category{}, err
	}
	c.ID = &id
	c.Type = core.TransactionType(typ)
	return c, nil
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		t         core.Transaction
		id, catID int64
		cents     int64
		typ, date string
		catType   string
	)
	err := s.Scan(&id, &t.Description, &cents, &typ, &date, &t.Notes,
		&catID, &t.Category.Name, &t.Category.Description, &catType,
		&t.Category.Color, &t.Category.Icon, &t.Category.Active)
	if err != nil {
		return core.Transaction{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, err)
	}
	t.ID = &id
	t.Amount = core.Money{Cents: cents}
	t.Type = core.TransactionType(typ)
	t.Date = d
	t.Category.ID = &catID
	t.Category.Type = core.TransactionType(catType)
	return t, nil
}

func scanGoal(s scanner) (core.Goal, error) {
	var (
		g                 core.Goal
		id                int64
		target, current   int64
		typ, status       string
		start, end        string
		completed         sql.NullString
		catID             sql.NullInt64
		catName, catDesc  sql.NullString
		catType, catColor sql.NullString
		catIcon           sql.NullString
		catActive         sql.NullBool
	)
	err := s.Scan(&id, &g.Name, &g.Description, &target, &current,
		&typ, &status, &start, &end, &completed, &g.EmailAlerts,
		&catID, &catName, &catDesc, &catType, &catColor, &catIcon, &catActive)
	if err != nil {
		return core.Goal{}, err
	}

	g.ID = &id
	g.TargetAmount = core.Money{Cents: target}
	g.CurrentAmount = core.Money{Cents: current}
	g.Type = core.GoalType(typ)
	g.Status = core.GoalStatus(status)
	if g.StartDate, err = core.ParseDate(start); err != nil {
		return core.Goal{}, fmt.Errorf("goal %d start date: %w", id, err)
	}
	if g.TargetDate, err = core.ParseDate(end); err != nil {
		return core.Goal{}, fmt.Errorf("goal %d target date: %w", id, err)
	}
	if completed.Valid && completed.String != "" {
		d, err := core.ParseDate(completed.String)
		if err != nil {
			return core.Goal{}, fmt.Errorf("goal %d completed date: %w", id, err)
		}
		g.CompletedAt = &d
	}
	if catID.Valid {
		cid := catID.Int64
		g.Category = &core.Category{
			ID:          &cid,
			Name:        catName.String,
			Description: catDesc.String,
			Type:        core.TransactionType(catType.String),
			Color:       catColor.String,
			Icon:        catIcon.String,
			Active:      catActive.Bool,
		}
	}
	return g, nil
}

func nullableDate(d *core.Date) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.String()
}
