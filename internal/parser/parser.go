// Package parser reads an input file into a records.Table. The first row is
// the header; every later row becomes a record keyed by normalized header.
package parser

import (
	"io"

	"etl/pkg/records"
)

// Parser reads one tabular document.
type Parser interface {
	Parse(r io.Reader) (*records.Table, error)
}
