package datasource

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoYear is returned when a file name does not start with YEnn.
var ErrNoYear = errors.New("file name does not start with YE<2-digit year>")

var yearPrefix = regexp.MustCompile(`(?i)^YE(\d{2})`)

// ExtractYear reads the reporting year from the base name of path. "YE24"
// becomes 2024; every two-digit value maps into 2000..2099.
func ExtractYear(path string) (int, bool) {
	m := yearPrefix.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0, false
	}
	yy, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return 2000 + yy, true
}

// YearFromFilename is ExtractYear with the absence turned into ErrNoYear.
func YearFromFilename(path string) (int, error) {
	year, ok := ExtractYear(path)
	if !ok {
		return 0, fmt.Errorf("%q: %w", filepath.Base(path), ErrNoYear)
	}
	return year, nil
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
