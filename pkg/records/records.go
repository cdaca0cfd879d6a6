// Package records holds the in-memory tabular model that flows through the
// ETL: an ordered column list plus rows keyed by column name.
//
// Every stage consumes a *Table and returns a new one. Operations never
// mutate the receiver; rows that pass through unchanged may share their
// Record maps with the input, so callers that need to write into a row must
// use Clone first.
package records

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is one row: column name -> cell value. Cell values are nil (null),
// string, float64, or int64.
type Record map[string]any

// Table is an ordered set of columns and the rows that carry them.
//
// Lines, when non-nil, is parallel to Rows and holds the 1-based line (or
// spreadsheet row) number each record was read from. It is used only for
// diagnostics.
type Table struct {
	Columns []string
	Rows    []Record
	Lines   []int
}

// New returns a table with the given columns and rows. Lines are left nil.
func New(columns []string, rows []Record) *Table {
	return &Table{Columns: append([]string(nil), columns...), Rows: rows}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Has reports whether col is one of the table's columns.
func (t *Table) Has(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Line returns the source line for row i, or i+2 (header on line 1) when the
// table does not track lines.
func (t *Table) Line(i int) int {
	if i < len(t.Lines) {
		return t.Lines[i]
	}
	return i + 2
}

// Values returns the cells of col in row order. Missing cells are nil.
func (t *Table) Values(col string) []any {
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[col]
	}
	return out
}

// Clone returns a copy of t whose rows are fresh maps.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Record, len(t.Rows)),
	}
	if t.Lines != nil {
		out.Lines = append([]int(nil), t.Lines...)
	}
	for i, r := range t.Rows {
		cp := make(Record, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}

// Filter returns a table with only the rows for which keep returns true.
// Row order is preserved.
func (t *Table) Filter(keep func(i int, r Record) bool) *Table {
	out := &Table{Columns: append([]string(nil), t.Columns...), Rows: make([]Record, 0, len(t.Rows))}
	if t.Lines != nil {
		out.Lines = make([]int, 0, len(t.Rows))
	}
	for i, r := range t.Rows {
		if !keep(i, r) {
			continue
		}
		out.Rows = append(out.Rows, r)
		if t.Lines != nil {
			out.Lines = append(out.Lines, t.Lines[i])
		}
	}
	return out
}

// Project returns a table restricted to cols, in the order given. Columns
// not present in t are skipped.
func (t *Table) Project(cols []string) *Table {
	keep := make([]string, 0, len(cols))
	for _, c := range cols {
		if t.Has(c) {
			keep = append(keep, c)
		}
	}
	out := &Table{Columns: keep, Rows: make([]Record, len(t.Rows))}
	if t.Lines != nil {
		out.Lines = append([]int(nil), t.Lines...)
	}
	for i, r := range t.Rows {
		nr := make(Record, len(keep))
		for _, c := range keep {
			nr[c] = r[c]
		}
		out.Rows[i] = nr
	}
	return out
}

// Rename returns a table whose columns listed in m are renamed to m[col].
// Columns without an entry keep their name.
func (t *Table) Rename(m map[string]string) *Table {
	name := func(c string) string {
		if n, ok := m[c]; ok && n != "" {
			return n
		}
		return c
	}
	out := &Table{Columns: make([]string, len(t.Columns)), Rows: make([]Record, len(t.Rows))}
	for i, c := range t.Columns {
		out.Columns[i] = name(c)
	}
	if t.Lines != nil {
		out.Lines = append([]int(nil), t.Lines...)
	}
	for i, r := range t.Rows {
		nr := make(Record, len(r))
		for k, v := range r {
			nr[name(k)] = v
		}
		out.Rows[i] = nr
	}
	return out
}

// WithColumn returns a copy of t with col set to v on every row. The column
// is appended if it does not exist yet.
func (t *Table) WithColumn(col string, v any) *Table {
	out := t.Clone()
	if !out.Has(col) {
		out.Columns = append(out.Columns, col)
	}
	for _, r := range out.Rows {
		r[col] = v
	}
	return out
}

// IsNull reports whether v counts as an empty cell: nil, a blank string, or
// a NaN float.
func IsNull(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case float64:
		return math.IsNaN(t)
	}
	return false
}

// KeyString renders a cell as a comparable key. Integral floats drop their
// fractional part so 1001 and 1001.0 collide.
func KeyString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}

// FormatCell renders a cell for text output (CSV). Null is the empty string.
func FormatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if math.IsNaN(t) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
