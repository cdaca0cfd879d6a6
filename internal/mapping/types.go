package mapping

import (
	"etl/internal/transformer/builtin"
	"etl/pkg/records"
)

// Field types by database name. Everything else in a set is text.
var (
	LocationNumeric = []string{"latitude", "longitude", "verified_latitude", "verified_longitude"}
	LocationInteger = []string{"yr_built"}

	TrendNumeric = []string{
		"curr_natl_index", "curr_annual_sls_k", "curr_mkt_index",
		"past_natl_index", "past_annual_sls_k", "past_mkt_index",
	}
	TrendInteger = []string{
		"year",
		"survey_yr_last_c", "survey_yr_next_c", "ttl_no_surveys_c",
		"past_yrs",
		"survey_yr_last_p", "survey_yr_next_p", "ttl_no_surveys_p",
	}
)

// TypeLocations coerces a mapped location table. It returns, per field, the
// number of non-empty cells that could not be parsed.
func TypeLocations(t *records.Table) (*records.Table, map[string]int) {
	return applyTypes(t, LocationFields(), LocationNumeric, LocationInteger)
}

// TypeTrends coerces a mapped trend table.
func TypeTrends(t *records.Table) (*records.Table, map[string]int) {
	return applyTypes(t, TrendFields(), TrendNumeric, TrendInteger)
}

func applyTypes(t *records.Table, all, numeric, integer []string) (*records.Table, map[string]int) {
	typed := map[string]bool{}
	for _, f := range append(append([]string{}, numeric...), integer...) {
		typed[f] = true
	}
	var text []string
	for _, f := range all {
		if !typed[f] {
			text = append(text, f)
		}
	}

	degraded := map[string]int{}
	out, d := builtin.NumericColumns(t, numeric...)
	merge(degraded, d)
	out, d = builtin.IntegerColumns(out, integer...)
	merge(degraded, d)
	out, _ = builtin.TextColumns(out, text...)
	return out, degraded
}

func merge(dst, src map[string]int) {
	for k, v := range src {
		dst[k] += v
	}
}
