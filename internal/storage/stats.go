package storage

import (
	"context"
	"fmt"

	"etl/internal/ddl"
	"etl/internal/mapping"
)

// LoadStats describes the store after a load.
type LoadStats struct {
	TotalLocations              int64
	TotalTrends                 int64
	LocationsWithVerifiedCoords int64
	MinYear                     *int64
	MaxYear                     *int64
}

// YearRange renders the trend years as "min-max", or "no data".
func (s LoadStats) YearRange() string {
	if s.MinYear == nil || s.MaxYear == nil {
		return "no data"
	}
	return fmt.Sprintf("%d-%d", *s.MinYear, *s.MaxYear)
}

// Stats queries the table totals.
func (l *Loader) Stats(ctx context.Context) (LoadStats, error) {
	var s LoadStats
	loc, tr := ddl.QuoteFQN(LocationTable), ddl.QuoteFQN(TrendTable)
	year := ddl.QuoteIdent(mapping.FieldYear)

	queries := []struct {
		sql  string
		dest []any
	}{
		{"SELECT COUNT(*) FROM " + loc, []any{&s.TotalLocations}},
		{"SELECT COUNT(*) FROM " + tr, []any{&s.TotalTrends}},
		{fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NOT NULL AND %s IS NOT NULL",
			loc, ddl.QuoteIdent(ColVerifiedLatitude), ddl.QuoteIdent(ColVerifiedLongitude)),
			[]any{&s.LocationsWithVerifiedCoords}},
		{fmt.Sprintf("SELECT MIN(%s), MAX(%s) FROM %s", year, year, tr), []any{&s.MinYear, &s.MaxYear}},
	}
	for _, q := range queries {
		if err := l.db.QueryRow(ctx, q.sql).Scan(q.dest...); err != nil {
			return LoadStats{}, fmt.Errorf("stats: %w", err)
		}
	}
	return s, nil
}
