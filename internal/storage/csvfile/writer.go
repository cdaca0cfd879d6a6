// Package csvfile writes the location and trend record sets as CSV files,
// one pair per input file.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"etl/pkg/records"

	"golang.org/x/sync/errgroup"
)

// Paths are the files written for one run.
type Paths struct {
	Locations string
	Trends    string
}

// PathsFor returns <dir>/<stem>_<year>_locations.csv and the trends twin.
func PathsFor(dir, stem string, year int) Paths {
	return Paths{
		Locations: filepath.Join(dir, fmt.Sprintf("%s_%d_locations.csv", stem, year)),
		Trends:    filepath.Join(dir, fmt.Sprintf("%s_%d_trends.csv", stem, year)),
	}
}

// Export creates dir if needed and writes both tables concurrently. The
// header row is the table's columns; nulls are written as empty cells.
func Export(ctx context.Context, dir, stem string, year int, locations, trends *records.Table) (Paths, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	p := PathsFor(dir, stem, year)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return WriteFile(ctx, p.Locations, locations) })
	g.Go(func() error { return WriteFile(ctx, p.Trends, trends) })
	if err := g.Wait(); err != nil {
		return Paths{}, err
	}
	return p, nil
}

// WriteFile writes t to path, replacing any existing file.
func WriteFile(ctx context.Context, path string, t *records.Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	row := make([]string, len(t.Columns))
	for i, r := range t.Rows {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for j, c := range t.Columns {
			row[j] = records.FormatCell(r[c])
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
