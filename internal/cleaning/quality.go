package cleaning

import (
	"fmt"
	"strconv"
	"strings"

	"etl/internal/mapping"
	"etl/pkg/records"
)

// NullWarnPercent is the null share above which a key column is flagged.
const NullWarnPercent = 10.0

// QualityColumns are the columns whose null share is measured.
var QualityColumns = []string{
	mapping.SourceStoreNo,
	mapping.SourceChain,
	mapping.SourceState,
	mapping.SourceLat,
	mapping.SourceLon,
}

// CheckQuality records null percentages, distinct counts and coordinate
// range problems. It never drops rows.
func CheckQuality(t *records.Table, s Stats) (*records.Table, Stats) {
	q := Quality{Rows: t.Len(), NullPercent: map[string]float64{}}

	if missing := missingExpected(t); len(missing) > 0 {
		s = s.Warn(fmt.Sprintf("%d expected columns missing from input: %v", len(missing), missing))
	}

	if t.Len() > 0 {
		for _, col := range QualityColumns {
			if !t.Has(col) {
				continue
			}
			nulls := 0
			for _, v := range t.Values(col) {
				if records.IsNull(v) {
					nulls++
				}
			}
			pct := float64(nulls) * 100 / float64(t.Len())
			q.NullPercent[col] = pct
			if pct > NullWarnPercent {
				s = s.Warn(fmt.Sprintf("column %s has %.1f%% null values", col, pct))
			}
		}
	}

	q.UniqueStores = distinct(t, mapping.SourceStoreNo)
	q.UniqueChains = distinct(t, mapping.SourceChain)
	q.UniqueStates = distinct(t, mapping.SourceState)

	if t.Has(mapping.SourceLat) && t.Has(mapping.SourceLon) {
		bad := 0
		for _, r := range t.Rows {
			if !ValidCoordinates(r[mapping.SourceLat], r[mapping.SourceLon]) {
				bad++
			}
		}
		s.InvalidCoordinates = bad
		if bad > 0 {
			s = s.Warn(fmt.Sprintf("invalid_coords: %d rows have out-of-range coordinates", bad))
		}
	}

	s.Quality = q
	return t, s
}

// ValidCoordinates reports whether lat/lon are in range. Null or
// non-numeric values are not checked and count as valid.
func ValidCoordinates(lat, lon any) bool {
	if la, ok := number(lat); ok && (la < -90 || la > 90) {
		return false
	}
	if lo, ok := number(lon); ok && (lo < -180 || lo > 180) {
		return false
	}
	return true
}

func number(v any) (float64, bool) {
	if records.IsNull(v) {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func distinct(t *records.Table, col string) int {
	if !t.Has(col) {
		return 0
	}
	seen := map[string]struct{}{}
	for _, v := range t.Values(col) {
		if records.IsNull(v) {
			continue
		}
		seen[records.KeyString(v)] = struct{}{}
	}
	return len(seen)
}

func missingExpected(t *records.Table) []string {
	var out []string
	for _, c := range mapping.ExpectedSourceColumns() {
		if !t.Has(c) {
			out = append(out, c)
		}
	}
	return out
}
