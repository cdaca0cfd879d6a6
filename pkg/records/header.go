package records

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeHeader folds compatibility characters (non-breaking spaces,
// full-width punctuation) with NFKC and trims surrounding whitespace.
func NormalizeHeader(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

// NormalizeHeaders normalizes every header cell, names blank cells
// "column_<n>" and suffixes repeated names with ".1", ".2", ... so the
// result can key a Record.
func NormalizeHeaders(in []string) []string {
	out := make([]string, len(in))
	seen := make(map[string]int, len(in))
	for i, h := range in {
		name := NormalizeHeader(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		out[i] = name
	}
	return out
}

// FromRows builds a Table from a raw header and raw data rows. The header is
// widened to the longest row so cells under a blank or missing header keep a
// "column_<n>" name instead of being lost. Empty cells become nil.
func FromRows(header []string, rows [][]string, lines []int) *Table {
	width := len(header)
	for _, r := range rows {
		width = max(width, len(r))
	}
	raw := make([]string, width)
	copy(raw, header)
	cols := NormalizeHeaders(raw)

	t := &Table{Columns: cols, Rows: make([]Record, 0, len(rows)), Lines: lines}
	if t.Lines == nil {
		t.Lines = []int{}
	}
	for _, r := range rows {
		rec := make(Record, len(cols))
		for i, col := range cols {
			if i < len(r) && r[i] != "" {
				rec[col] = r[i]
			} else {
				rec[col] = nil
			}
		}
		t.Rows = append(t.Rows, rec)
	}
	return t
}
