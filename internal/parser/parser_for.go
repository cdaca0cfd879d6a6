package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"etl/internal/parser/csv"
	"etl/internal/parser/xlsx"
)

// ForPath picks a parser from the file extension.
func ForPath(path string) (Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return xlsx.NewParser(), nil
	case ".csv":
		return csv.NewParser(csv.Options{}), nil
	default:
		return nil, fmt.Errorf("unsupported input type %q", ext)
	}
}
