// Package split turns the cleaned spreadsheet table into the location and
// trend record sets. Both outputs keep external column names; mapping to
// field names happens afterwards.
package split

import (
	"etl/internal/mapping"
	"etl/internal/transformer/builtin"
	"etl/pkg/records"
)

// Result holds the two record sets plus how many rows each dedupe pass
// removed.
type Result struct {
	Locations *records.Table
	Trends    *records.Table

	LocationDuplicates int
	TrendDuplicates    int
}

// Split projects the location and trend columns out of t. Locations are
// deduplicated on STORE_NO and trends on (STORE_NO, YEAR), keeping the first
// row. Every trend row is stamped with year.
func Split(t *records.Table, year int) Result {
	var res Result

	loc := t.Project(mapping.LocationSourceColumns())
	loc, dups := builtin.DeDup{Keys: []string{mapping.SourceStoreNo}}.Apply(loc)
	res.Locations, res.LocationDuplicates = loc, len(dups)

	tr := t.Project(mapping.TrendSourceColumns()).WithColumn(mapping.SourceYear, int64(year))
	tr, dups = builtin.DeDup{Keys: []string{mapping.SourceStoreNo, mapping.SourceYear}}.Apply(tr)
	res.Trends, res.TrendDuplicates = tr, len(dups)

	return res
}
