package cleaning

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"etl/pkg/records"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func sample() *records.Table {
	cols := []string{"STORE_NO", "CHAIN", "GEOSTATE", "LATITUDE", "LONGITUDE"}
	return &records.Table{
		Columns: cols,
		Rows: []records.Record{
			{"STORE_NO": "A1", "CHAIN": "Acme", "GEOSTATE": "TX", "LATITUDE": 30.2, "LONGITUDE": -97.7},
			{"STORE_NO": nil, "CHAIN": nil, "GEOSTATE": "", "LATITUDE": nil, "LONGITUDE": nil},
			{"STORE_NO": "  ", "CHAIN": "Acme", "GEOSTATE": "TX", "LATITUDE": 1.0, "LONGITUDE": 1.0},
			{"STORE_NO": "A1", "CHAIN": "Other", "GEOSTATE": "CA", "LATITUDE": 1.0, "LONGITUDE": 1.0},
			{"STORE_NO": "B2", "CHAIN": "Acme", "GEOSTATE": "CA", "LATITUDE": 95.0, "LONGITUDE": 10.0},
		},
		Lines: []int{2, 3, 4, 5, 6},
	}
}

func TestClean_DropsByReason(t *testing.T) {
	out, stats, err := Clean(sample(), quietLogger())
	require.NoError(t, err)

	require.Equal(t, 2, out.Len())
	assert.Equal(t, "A1", out.Rows[0]["STORE_NO"])
	assert.Equal(t, "Acme", out.Rows[0]["CHAIN"], "first occurrence kept")
	assert.Equal(t, "B2", out.Rows[1]["STORE_NO"])

	assert.Equal(t, 5, stats.TotalRows)
	assert.Equal(t, 1, stats.EmptyRowsDropped)
	assert.Equal(t, 1, stats.MissingKeyDropped)
	assert.Equal(t, 1, stats.DuplicateDropped)
	assert.Equal(t, 0, stats.IdenticalDuplicates)
	assert.Equal(t, []string{"A1"}, stats.DuplicateSamples)
	assert.Equal(t, 2, stats.FinalCount())
	assert.Equal(t, 1, stats.InvalidCoordinates)

	require.Len(t, stats.Rejections, 3)
	assert.Equal(t, Rejection{Reason: ReasonEmpty, Line: 3}, stats.Rejections[0])
	assert.Equal(t, Rejection{Reason: ReasonMissingKey, Line: 4}, stats.Rejections[1])
	assert.Equal(t, Rejection{Reason: ReasonDuplicate, Line: 5, Key: "A1"}, stats.Rejections[2])
}

func TestClean_Idempotent(t *testing.T) {
	once, _, err := Clean(sample(), quietLogger())
	require.NoError(t, err)

	twice, stats, err := Clean(once, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, once.Rows, twice.Rows)
	assert.Zero(t, stats.EmptyRowsDropped+stats.MissingKeyDropped+stats.DuplicateDropped)
}

func TestClean_EmptyResult(t *testing.T) {
	in := records.New([]string{"STORE_NO"}, []records.Record{{"STORE_NO": ""}, {"STORE_NO": nil}})
	out, stats, err := Clean(in, quietLogger())
	require.ErrorIs(t, err, ErrNoRows)
	assert.Zero(t, out.Len())
	assert.Equal(t, 2, stats.EmptyRowsDropped)
}

func TestDropMissingKey_NoColumnWarns(t *testing.T) {
	in := records.New([]string{"CHAIN"}, []records.Record{{"CHAIN": "x"}})
	out, stats := DropMissingKey(in, Stats{})
	assert.Same(t, in, out)
	require.Len(t, stats.Warnings, 1)
	assert.Contains(t, stats.Warnings[0], "STORE_NO")
}

func TestDropDuplicateKeys_IdenticalAndSampleCap(t *testing.T) {
	var rows []records.Record
	for i := 0; i < 8; i++ {
		k := string(rune('a' + i))
		rows = append(rows, records.Record{"STORE_NO": k, "CHAIN": "c"}, records.Record{"STORE_NO": k, "CHAIN": "c"})
	}
	in := records.New([]string{"STORE_NO", "CHAIN"}, rows)

	out, stats := DropDuplicateKeys(in, Stats{})
	assert.Equal(t, 8, out.Len())
	assert.Equal(t, 8, stats.DuplicateDropped)
	assert.Equal(t, 8, stats.IdenticalDuplicates)
	assert.Len(t, stats.DuplicateSamples, 5)
}

func TestStepsDoNotShareAccumulator(t *testing.T) {
	base := Stats{Warnings: make([]string, 0, 4)}
	a := base.Warn("first")
	b := base.Warn("second")
	assert.Equal(t, []string{"first"}, a.Warnings)
	assert.Equal(t, []string{"second"}, b.Warnings)
	assert.Empty(t, base.Warnings)
}

func TestCheckQuality(t *testing.T) {
	in := records.New(
		[]string{"STORE_NO", "CHAIN", "GEOSTATE"},
		[]records.Record{
			{"STORE_NO": "1", "CHAIN": "x", "GEOSTATE": "TX"},
			{"STORE_NO": "2", "CHAIN": nil, "GEOSTATE": "TX"},
			{"STORE_NO": "3", "CHAIN": "y", "GEOSTATE": "CA"},
			{"STORE_NO": "4", "CHAIN": "x", "GEOSTATE": "CA"},
		},
	)
	out, stats := CheckQuality(in, Stats{})
	assert.Same(t, in, out)
	assert.Equal(t, 0.0, stats.Quality.NullPercent["STORE_NO"])
	assert.Equal(t, 25.0, stats.Quality.NullPercent["CHAIN"])
	assert.NotContains(t, stats.Quality.NullPercent, "LATITUDE")
	assert.Equal(t, 4, stats.Quality.UniqueStores)
	assert.Equal(t, 2, stats.Quality.UniqueChains)
	assert.Equal(t, 2, stats.Quality.UniqueStates)

	var nullWarn, missingWarn bool
	for _, w := range stats.Warnings {
		if w == "column CHAIN has 25.0% null values" {
			nullWarn = true
		}
		if strings.Contains(w, "expected columns missing") {
			missingWarn = true
		}
	}
	assert.True(t, nullWarn)
	assert.True(t, missingWarn)
}

func TestValidCoordinates(t *testing.T) {
	tests := []struct {
		lat, lon any
		want     bool
	}{
		{nil, nil, true},
		{45.0, -120.0, true},
		{"45.5", "10", true},
		{-90.0, 180.0, true},
		{90.1, 0.0, false},
		{0.0, -180.5, false},
		{"91", nil, false},
		{"n/a", 500.0, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidCoordinates(tt.lat, tt.lon), "%v,%v", tt.lat, tt.lon)
	}
}

func TestValidate(t *testing.T) {
	loc := records.New([]string{"store_no", "chain"}, nil)
	require.NoError(t, ValidateLocations(loc))

	err := ValidateTrends(loc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchema))
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "trends", se.Set)
	assert.Equal(t, []string{"year"}, se.Missing)

	ok, missing := ValidateRequired(records.New(nil, nil), RequiredTrend)
	assert.False(t, ok)
	assert.Equal(t, []string{"store_no", "year"}, missing)
}

func TestLogSummary_TruncatesWarnings(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := Stats{TotalRows: 1}
	for i := 0; i < 12; i++ {
		s = s.Warn("w")
	}
	s.LogSummary(logger)
	assert.Contains(t, buf.String(), "data cleaning summary")
	assert.Contains(t, buf.String(), "... and 2 more warnings")
}

func TestDropEmptyRows_WhitespaceAndUnnamedColumns(t *testing.T) {
	tbl := records.FromRows(
		[]string{"STORE_NO", "CHAIN"},
		[][]string{
			{" ", "\t"},
			{"", "", "orphan"},
		},
		[]int{2, 3},
	)

	out, stats := DropEmptyRows(tbl, Stats{})
	assert.Equal(t, 1, stats.EmptyRowsDropped, "a row of spaces is empty")
	require.Equal(t, 1, out.Len())
	assert.Equal(t, 3, out.Line(0))
	assert.Equal(t, "orphan", out.Rows[0]["column_3"])
}
