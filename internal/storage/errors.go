package storage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrForeignKey marks a trend batch that references unknown stores.
var ErrForeignKey = errors.New("trend records reference missing locations")

// MissingSample bounds how many missing keys are reported.
const MissingSample = 10

// ForeignKeyError reports how many store numbers were missing and the first
// few of them.
type ForeignKeyError struct {
	Count  int
	Sample []string
}

// NewForeignKeyError builds the error from the full missing list.
func NewForeignKeyError(missing []string) *ForeignKeyError {
	sample := missing
	if len(sample) > MissingSample {
		sample = sample[:MissingSample]
	}
	return &ForeignKeyError{Count: len(missing), Sample: append([]string(nil), sample...)}
}

func (e *ForeignKeyError) Error() string {
	return fmt.Sprintf("%d store_no values missing from %s (sample: %s)",
		e.Count, LocationTable, strings.Join(e.Sample, ", "))
}

func (e *ForeignKeyError) Unwrap() error { return ErrForeignKey }
