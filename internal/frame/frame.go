// Package frame holds a fully materialized query result in memory.
package frame

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Table is an in-memory table: column names plus rows of driver values.
// Values are nil, int64, float64, bool, string or time.Time; []byte from
// the driver is converted to string on load.
type Table struct {
	Columns []string
	Rows    [][]any

	index map[string]int
}

// New builds a table from columns and rows. Rows are not copied.
func New(columns []string, rows [][]any) *Table {
	t := &Table{Columns: columns, Rows: rows}
	t.buildIndex()
	return t
}

// FromRows drains rows into a table. The caller still owns rows and must close it.
func FromRows(rows *sql.Rows) (*Table, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	t := &Table{Columns: cols}
	for rows.Next() {
		// Scan all columns dynamically
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", len(t.Rows)+1, err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		t.Rows = append(t.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	t.buildIndex()
	return t, nil
}

func (t *Table) buildIndex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		// First occurrence wins; SQLite allows duplicate names in SELECT * over views.
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of a column.
func (t *Table) Index(column string) (int, bool) {
	if t.index == nil {
		t.buildIndex()
	}
	i, ok := t.index[column]
	return i, ok
}

// Has reports whether the table has a column.
func (t *Table) Has(column string) bool {
	_, ok := t.Index(column)
	return ok
}

// Missing returns the columns from want that the table lacks, in want order.
func (t *Table) Missing(want ...string) []string {
	var missing []string
	for _, c := range want {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Column returns every value of a column, or nil if it does not exist.
func (t *Table) Column(column string) []any {
	i, ok := t.Index(column)
	if !ok {
		return nil
	}
	out := make([]any, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

// Text renders a category value. Non-text values are formatted with %v.
// Only nil is missing; an empty string is a value of its own.
func Text(v any) (s string, ok bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case []byte:
		return Text(string(x))
	default:
		return fmt.Sprint(x), true
	}
}

// Number reads a numeric value. Numeric text is accepted.
func Number(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case []byte:
		return Number(string(x))
	}
	return 0, false
}
