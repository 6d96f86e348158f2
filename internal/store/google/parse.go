package google

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// parseCategories reads a Categories tab. The header row must name at
// least Name and Type; Color, Icon, Description and Active are optional.
// Row numbers become IDs so transactions can be matched back to them.
func parseCategories(values [][]interface{}) ([]core.Category, error) {
	out := make([]core.Category, 0)
	if len(values) == 0 {
		return out, nil
	}
	h := toStrings(values[0])
	cols, err := requireColumns(h, "Name", "Type")
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	colColor, colIcon := indexOf(h, "Color"), indexOf(h, "Icon")
	colDesc, colActive := indexOf(h, "Description"), indexOf(h, "Active")

	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if blank(row) {
			continue
		}
		typ, err := core.ParseTransactionType(safeGet(row, cols[1]))
		if err != nil {
			return nil, fmt.Errorf("categories row %d: %w", i+1, err)
		}
		c := core.Category{
			ID:          core.Int64Ptr(int64(i)),
			Name:        safeGet(row, cols[0]),
			Description: safeGet(row, colDesc),
			Type:        typ,
			Color:       safeGet(row, colColor),
			Icon:        safeGet(row, colIcon),
			Active:      parseBool(safeGet(row, colActive), true),
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("categories row %d: %w", i+1, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// parseTransactions reads a Transactions tab with Date, Description,
// Amount, Type and Category columns and an optional Notes column.
// Categories are looked up by name.
func parseTransactions(values [][]interface{}, cats []core.Category) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0)
	if len(values) == 0 {
		return out, nil
	}
	h := toStrings(values[0])
	cols, err := requireColumns(h, "Date", "Description", "Amount", "Type", "Category")
	if err != nil {
		return nil, fmt.Errorf("transactions: %w", err)
	}
	colNotes := indexOf(h, "Notes")

	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if blank(row) {
			continue
		}
		date, err := core.ParseDate(safeGet(row, cols[0]))
		if err != nil {
			return nil, fmt.Errorf("transactions row %d: %w", i+1, err)
		}
		amount, err := parseAmount(cell(values[i], cols[2]))
		if err != nil {
			return nil, fmt.Errorf("transactions row %d: %w", i+1, err)
		}
		typ, err := core.ParseTransactionType(safeGet(row, cols[3]))
		if err != nil {
			return nil, fmt.Errorf("transactions row %d: %w", i+1, err)
		}
		cat, ok := findCategory(cats, safeGet(row, cols[4]))
		if !ok {
			return nil, fmt.Errorf("transactions row %d: category %q: %w", i+1, safeGet(row, cols[4]), core.ErrNotFound)
		}
		tx := core.Transaction{
			ID:          core.Int64Ptr(int64(i)),
			Description: safeGet(row, cols[1]),
			Amount:      amount,
			Type:        typ,
			Date:        date,
			Notes:       safeGet(row, colNotes),
			Category:    cat,
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("transactions row %d: %w", i+1, err)
		}
		out = append(out, tx)
	}
	return out, nil
}

// parseGoals reads a Goals tab. Status defaults to ACTIVE, Current to zero
// and Category is optional.
func parseGoals(values [][]interface{}, cats []core.Category) ([]core.Goal, error) {
	out := make([]core.Goal, 0)
	if len(values) == 0 {
		return out, nil
	}
	h := toStrings(values[0])
	cols, err := requireColumns(h, "Name", "Type", "Target", "Start", "Deadline")
	if err != nil {
		return nil, fmt.Errorf("goals: %w", err)
	}
	colStatus, colCurrent := indexOf(h, "Status"), indexOf(h, "Current")
	colCategory, colDesc := indexOf(h, "Category"), indexOf(h, "Description")

	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if blank(row) {
			continue
		}
		rowErr := func(err error) error { return fmt.Errorf("goals row %d: %w", i+1, err) }

		typ, err := core.ParseGoalType(safeGet(row, cols[1]))
		if err != nil {
			return nil, rowErr(err)
		}
		target, err := parseAmount(cell(values[i], cols[2]))
		if err != nil {
			return nil, rowErr(err)
		}
		start, err := core.ParseDate(safeGet(row, cols[3]))
		if err != nil {
			return nil, rowErr(err)
		}
		deadline, err := core.ParseDate(safeGet(row, cols[4]))
		if err != nil {
			return nil, rowErr(err)
		}

		g := core.NewGoal(safeGet(row, cols[0]), target, typ, start, deadline)
		g.ID = core.Int64Ptr(int64(i))
		g.Description = safeGet(row, colDesc)
		if s := safeGet(row, colStatus); s != "" {
			if g.Status, err = core.ParseGoalStatus(s); err != nil {
				return nil, rowErr(err)
			}
		}
		if v := cell(values[i], colCurrent); v != nil && strings.TrimSpace(fmt.Sprint(v)) != "" {
			if g.CurrentAmount, err = parseAmount(v); err != nil {
				return nil, rowErr(err)
			}
		}
		if name := safeGet(row, colCategory); name != "" {
			cat, ok := findCategory(cats, name)
			if !ok {
				return nil, rowErr(fmt.Errorf("category %q: %w", name, core.ErrNotFound))
			}
			g.Category = &cat
		}
		if err := g.Validate(); err != nil {
			return nil, rowErr(err)
		}
		out = append(out, g)
	}
	return out, nil
}

// parseAmount accepts a number cell or a decimal string with either
// separator. Negative values are rejected.
func parseAmount(v interface{}) (core.Money, error) {
	var (
		d   decimal.Decimal
		err error
	)
	switch x := v.(type) {
	case float64:
		d = decimal.NewFromFloat(x)
	case int:
		d = decimal.NewFromInt(int64(x))
	case int64:
		d = decimal.NewFromInt(x)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", ".")
		d, err = decimal.NewFromString(s)
	default:
		err = fmt.Errorf("unsupported cell %T", v)
	}
	if err != nil || d.IsNegative() {
		return core.Money{}, fmt.Errorf("%w: %v", core.ErrInvalidAmount, v)
	}
	return core.NewMoneyFromDecimal(d), nil
}

func parseBool(s string, def bool) bool {
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.ToLower(s))
	if err != nil {
		return def
	}
	return b
}

func findCategory(cats []core.Category, name string) (core.Category, bool) {
	for _, c := range cats {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return c, true
		}
	}
	return core.Category{}, false
}

func requireColumns(headers []string, names ...string) ([]int, error) {
	idx := make([]int, len(names))
	var missing []string
	for i, n := range names {
		idx[i] = indexOf(headers, n)
		if idx[i] == -1 {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unexpected header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}
	return idx, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

func cell(row []interface{}, idx int) interface{} {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

func blank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
