// Package xlsx reads the first worksheet of an Excel workbook.
package xlsx

import (
	"errors"
	"fmt"
	"io"

	"etl/pkg/records"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheets is returned for a workbook without worksheets.
var ErrNoSheets = errors.New("workbook has no sheets")

// Parser reads workbooks with excelize.
type Parser struct {
	// Sheet selects a worksheet by name. Empty means the first one.
	Sheet string
}

// NewParser returns a Parser for the first worksheet.
func NewParser() *Parser { return &Parser{} }

// Parse reads the selected sheet. Cells are returned as their raw stored text
// so numbers keep full precision; empty cells are nil. Excel omits trailing
// blank header cells, so data beyond the header gets a "column_<n>" column.
// Lines hold the spreadsheet row numbers.
func (p *Parser) Parse(r io.Reader) (*records.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := p.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoSheets
		}
		sheet = sheets[0]
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	var (
		header []string
		cells  [][]string
		lines  []int
	)
	for line := 1; rows.Next(); line++ {
		row, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q row %d: %w", sheet, line, err)
		}
		if line == 1 {
			header = row
			continue
		}
		cells = append(cells, row)
		lines = append(lines, line)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return records.FromRows(header, cells, lines), nil
}
