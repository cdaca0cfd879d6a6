// Package cleaning drops unusable rows from the raw spreadsheet table and
// measures what is left.
//
// The stage is a fixed chain of steps: empty rows, rows without STORE_NO,
// rows repeating an earlier STORE_NO, then quality metrics. Each step gets
// the Stats accumulator by value and hands back an updated copy.
//
// A cell that is null, "" or only whitespace counts as empty, both for empty
// rows and for a missing STORE_NO, so a row of spaces is dropped as empty.
package cleaning

import (
	"errors"
	"fmt"
	"log/slog"

	"etl/internal/mapping"
	"etl/internal/transformer"
	"etl/internal/transformer/builtin"
	"etl/pkg/records"
)

// ErrNoRows is returned when nothing survives cleaning.
var ErrNoRows = errors.New("no rows left after cleaning")

// Steps is the cleaning chain in the order it must run.
var Steps = transformer.Chain[Stats]{
	DropEmptyRows,
	DropMissingKey,
	DropDuplicateKeys,
	CheckQuality,
}

// Clean runs Steps over t and logs the summary. It returns ErrNoRows, along
// with the statistics gathered so far, when the result is empty.
func Clean(t *records.Table, logger *slog.Logger) (*records.Table, Stats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	out, stats := Steps.Apply(t, Stats{TotalRows: t.Len()})
	stats.LogSummary(logger)
	if out.Len() == 0 {
		return out, stats, ErrNoRows
	}
	return out, stats, nil
}

// DropEmptyRows removes rows whose every cell is null or blank.
func DropEmptyRows(t *records.Table, s Stats) (*records.Table, Stats) {
	out, lines := builtin.DropEmpty{}.Apply(t)
	s.EmptyRowsDropped += len(lines)
	for _, l := range lines {
		s = s.reject(ReasonEmpty, l, "")
	}
	return out, s
}

// DropMissingKey removes rows with a null or blank STORE_NO. Without a
// STORE_NO column it only records a warning; schema validation catches the
// absence later.
func DropMissingKey(t *records.Table, s Stats) (*records.Table, Stats) {
	if !t.Has(mapping.SourceStoreNo) {
		return t, s.Warn(fmt.Sprintf("required column %s not found", mapping.SourceStoreNo))
	}
	out, lines := builtin.Require{Fields: []string{mapping.SourceStoreNo}}.Apply(t)
	s.MissingKeyDropped += len(lines)
	for _, l := range lines {
		s = s.reject(ReasonMissingKey, l, "")
	}
	if len(lines) > 0 {
		s = s.Warn(fmt.Sprintf("dropped %d rows with missing %s", len(lines), mapping.SourceStoreNo))
	}
	return out, s
}

// DropDuplicateKeys keeps the first row for each STORE_NO.
func DropDuplicateKeys(t *records.Table, s Stats) (*records.Table, Stats) {
	out, dups := builtin.DeDup{Keys: []string{mapping.SourceStoreNo}}.Apply(t)
	if len(dups) == 0 {
		return out, s
	}
	s.DuplicateDropped += len(dups)
	for _, d := range dups {
		s = s.reject(ReasonDuplicate, d.Line, d.Key)
		if d.Identical {
			s.IdenticalDuplicates++
		}
		if len(s.DuplicateSamples) < maxDuplicateSamples {
			s.DuplicateSamples = append(s.DuplicateSamples[:len(s.DuplicateSamples):len(s.DuplicateSamples)], d.Key)
		}
	}
	s = s.Warn(fmt.Sprintf("dropped %d duplicate %s rows (sample: %v)",
		len(dups), mapping.SourceStoreNo, s.DuplicateSamples))
	return out, s
}

func (s Stats) reject(reason string, line int, key string) Stats {
	s.Rejections = append(s.Rejections[:len(s.Rejections):len(s.Rejections)],
		Rejection{Reason: reason, Line: line, Key: key})
	return s
}
