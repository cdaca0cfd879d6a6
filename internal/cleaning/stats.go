package cleaning

import (
	"fmt"
	"log/slog"
)

// Rejected row reasons.
const (
	ReasonEmpty      = "empty_row"
	ReasonMissingKey = "missing_store_no"
	ReasonDuplicate  = "duplicate_store_no"
)

const (
	maxDuplicateSamples = 5
	maxLoggedWarnings   = 10
)

// Rejection is one row dropped by cleaning.
type Rejection struct {
	Reason string
	Line   int
	Key    string
}

// Stats accumulates what cleaning did to one table. It is passed by value
// into each step and returned updated; nothing is shared between runs.
type Stats struct {
	TotalRows           int
	EmptyRowsDropped    int
	MissingKeyDropped   int
	DuplicateDropped    int
	IdenticalDuplicates int
	InvalidCoordinates  int

	DuplicateSamples []string
	Rejections       []Rejection
	Warnings         []string

	Quality Quality
}

// Quality holds the data-quality metrics computed after the drops.
type Quality struct {
	Rows         int
	NullPercent  map[string]float64
	UniqueStores int
	UniqueChains int
	UniqueStates int
}

// FinalCount is the number of rows expected to survive cleaning.
func (s Stats) FinalCount() int {
	return s.TotalRows - s.EmptyRowsDropped - s.MissingKeyDropped - s.DuplicateDropped
}

// Warn returns s with msg appended to its warnings.
func (s Stats) Warn(msg string) Stats {
	s.Warnings = append(s.Warnings[:len(s.Warnings):len(s.Warnings)], msg)
	return s
}

// LogSummary writes the cleaning summary, then at most ten warnings.
func (s Stats) LogSummary(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("data cleaning summary",
		slog.Int("total_rows", s.TotalRows),
		slog.Int("empty_rows_dropped", s.EmptyRowsDropped),
		slog.Int("missing_store_no_dropped", s.MissingKeyDropped),
		slog.Int("duplicate_rows_dropped", s.DuplicateDropped),
		slog.Int("identical_duplicates", s.IdenticalDuplicates),
		slog.Int("invalid_coordinates", s.InvalidCoordinates),
		slog.Int("final_rows", s.FinalCount()),
	)
	if len(s.Warnings) == 0 {
		return
	}
	logger.Warn("cleaning warnings", slog.Int("total", len(s.Warnings)))
	for i, w := range s.Warnings {
		if i == maxLoggedWarnings {
			logger.Warn(fmt.Sprintf("... and %d more warnings", len(s.Warnings)-maxLoggedWarnings))
			break
		}
		logger.Warn(w)
	}
}
