// Package csv reads comma-separated exports of the yearly spreadsheet.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"etl/pkg/records"
)

// Options configures the reader. The zero value reads comma-separated input.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune
}

// Parser parses CSV input. It is safe to reuse across inputs but not
// concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse reads the header and every row of r. Short rows leave the trailing
// columns nil; cells beyond the header land in "column_<n>" columns. Empty
// cells become nil. Lines record the 1-based physical record number (header
// is 1).
func (p *Parser) Parse(r io.Reader) (*records.Table, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	h, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return records.New(nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var (
		rows  [][]string
		lines []int
	)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		rows = append(rows, row)
		lines = append(lines, line)
	}
	return records.FromRows(StripHeaderBOM(h), rows, lines), nil
}
