// Package skiplog records rows dropped during cleaning to a CSV file so they
// can be inspected after a run.
package skiplog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"etl/internal/cleaning"
)

// Header is the first row of every skip log.
var Header = []string{"reason", "row_number", "store_no"}

// Log counts rejections per reason while writing them out.
type Log struct {
	reasons map[string]int
	f       *os.File
	w       *csv.Writer
}

// PathFor returns <dir>/<stem>_<year>_skipped.csv.
func PathFor(dir, stem string, year int) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%d_skipped.csv", stem, year))
}

// Create opens path for writing, creating its directory, and writes the
// header.
func Create(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		f.Close()
		return nil, err
	}
	return &Log{reasons: make(map[string]int), f: f, w: w}, nil
}

// Add writes one rejected row.
func (l *Log) Add(reason string, line int, storeNo string) error {
	l.reasons[reason]++
	return l.w.Write([]string{reason, strconv.Itoa(line), storeNo})
}

// Reasons returns the per-reason counts written so far.
func (l *Log) Reasons() map[string]int {
	out := make(map[string]int, len(l.reasons))
	for k, v := range l.reasons {
		out[k] = v
	}
	return out
}

// Close flushes and closes the file.
func (l *Log) Close() error {
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		l.f.Close()
		return err
	}
	return l.f.Close()
}

// WriteRejections writes every rejection from a cleaning run to path.
func WriteRejections(path string, rejected []cleaning.Rejection) (counts map[string]int, err error) {
	l, err := Create(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := l.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	for _, r := range rejected {
		if err := l.Add(r.Reason, r.Line, r.Key); err != nil {
			return nil, err
		}
	}
	return l.Reasons(), nil
}
