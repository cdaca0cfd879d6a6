// Package mapping is the contract between the yearly spreadsheet's column
// names and the relational field names of restaurant_location and
// restaurant_trend.
//
// STORE_NO belongs to both field sets. YEAR is listed in the trend set but
// never read from the spreadsheet; the splitter stamps it from the file name.
package mapping

import (
	"sort"

	"etl/pkg/records"
)

// Column pairs a spreadsheet header with its database field.
type Column struct {
	Source string
	Field  string
}

const (
	SourceStoreNo = "STORE_NO"
	SourceYear    = "YEAR"
	SourceChain   = "CHAIN"
	SourceState   = "GEOSTATE"
	SourceLat     = "LATITUDE"
	SourceLon     = "LONGITUDE"

	FieldStoreNo = "store_no"
	FieldYear    = "year"
)

// Location lists the restaurant_location columns in output order.
var Location = []Column{
	{"STORE_NO", "store_no"},
	{"CHAIN_NO", "chain_no"},
	{"CHAIN", "chain"},
	{"GEOADDRESS", "geoaddress"},
	{"GEOCITY", "geocity"},
	{"GEOSTATE", "geostate"},
	{"GEOZIP", "geozip"},
	{"GEOZIP4", "geozip4"},
	{"COUNTY", "county"},
	{"DMA(MARKET)", "dma_market"},
	{"DMA_NO", "dma_no"},
	{"SEGMENT", "segment"},
	{"SUBSEGMENT", "subsegment"},
	{"CATEGORY", "category"},
	{"LATITUDE", "latitude"},
	{"LONGITUDE", "longitude"},
	{"GEOQUALITY", "geoquality"},
	{"YR_BUILT", "yr_built"},
	{"CO/FR", "co_fr"},
	{"CO/FR_NO", "co_fr_no"},
	{"SEG_NO", "seg_no"},
}

// Trend lists the restaurant_trend columns in output order.
var Trend = []Column{
	{"STORE_NO", "store_no"},
	{"YEAR", "year"},
	{"CNG(CURR_NATL_GRADE)", "curr_natl_grade"},
	{"CNI(CURR_NATL_INDEX)", "curr_natl_index"},
	{"CURR_ANNUAL_SLS($000)", "curr_annual_sls_k"},
	{"CMG(CURR_MKT_GRADE)", "curr_mkt_grade"},
	{"LABEL(CNG/CMG)", "label_cng_cmg"},
	{"LABEL(CNG<PNG)", "label_cng_lt_png"},
	{"CMI(CURR_MKT_INDEX)", "curr_mkt_index"},
	{"SURVEY_YR(LAST/C)", "survey_yr_last_c"},
	{"SURVEY_YR(NEXT/C)", "survey_yr_next_c"},
	{"TTL_NO_SURVEYS(C)", "ttl_no_surveys_c"},
	{"PAST_YRS", "past_yrs"},
	{"PNG(PAST_NATL_GRADE)", "past_natl_grade"},
	{"LABEL(PNG)", "label_png"},
	{"PNI(PAST_NATL_INDEX)", "past_natl_index"},
	{"PAST_ANNUAL_SLS($000)", "past_annual_sls_k"},
	{"PMG(PAST_MKT_GRADE)", "past_mkt_grade"},
	{"LABEL(PNG/PMG)", "label_png_pmg"},
	{"PMI(PAST_MKT_INDEX)", "past_mkt_index"},
	{"SURVEY_YR(LAST/P)", "survey_yr_last_p"},
	{"SURVEY_YR(NEXT/P)", "survey_yr_next_p"},
	{"TTL_NO_SURVEYS(P)", "ttl_no_surveys_p"},
}

// LocationSourceColumns returns the spreadsheet headers of the location set.
func LocationSourceColumns() []string {
	return sources(Location, "")
}

// TrendSourceColumns returns the spreadsheet headers of the trend set,
// without YEAR.
func TrendSourceColumns() []string {
	return sources(Trend, SourceYear)
}

// ExpectedSourceColumns is every header the spreadsheet should carry: the
// union of both sets, STORE_NO once, YEAR excluded. Order follows Location
// then Trend.
func ExpectedSourceColumns() []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range append(LocationSourceColumns(), TrendSourceColumns()...) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// AllSourceColumns returns the sorted union of both sets including YEAR.
func AllSourceColumns() []string {
	out := append(ExpectedSourceColumns(), SourceYear)
	sort.Strings(out)
	return out
}

// LocationFields returns the database field names of the location set.
func LocationFields() []string { return fields(Location) }

// TrendFields returns the database field names of the trend set.
func TrendFields() []string { return fields(Trend) }

// MapLocation renames location headers present in t to field names.
func MapLocation(t *records.Table) *records.Table { return t.Rename(renames(Location)) }

// MapTrend renames trend headers present in t to field names.
func MapTrend(t *records.Table) *records.Table { return t.Rename(renames(Trend)) }

func sources(cols []Column, skip string) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if c.Source != skip {
			out = append(out, c.Source)
		}
	}
	return out
}

func fields(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Field
	}
	return out
}

func renames(cols []Column) map[string]string {
	m := make(map[string]string, len(cols))
	for _, c := range cols {
		m[c.Source] = c.Field
	}
	return m
}
