package cleaning

import (
	"errors"
	"fmt"
	"strings"

	"etl/internal/mapping"
	"etl/pkg/records"
)

// ErrSchema marks a record set that lacks required fields.
var ErrSchema = errors.New("schema validation failed")

// SchemaError names the record set and the fields it is missing.
type SchemaError struct {
	Set     string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required fields: %s", e.Set, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// Required fields per record set, in internal names.
var (
	RequiredLocation = []string{mapping.FieldStoreNo}
	RequiredTrend    = []string{mapping.FieldStoreNo, mapping.FieldYear}
)

// ValidateRequired reports whether every field in required is a column of
// t, plus the ones that are not.
func ValidateRequired(t *records.Table, required []string) (bool, []string) {
	var missing []string
	for _, f := range required {
		if !t.Has(f) {
			missing = append(missing, f)
		}
	}
	return len(missing) == 0, missing
}

// ValidateLocations checks the mapped location table.
func ValidateLocations(t *records.Table) error {
	return validate("locations", t, RequiredLocation)
}

// ValidateTrends checks the mapped trend table.
func ValidateTrends(t *records.Table) error {
	return validate("trends", t, RequiredTrend)
}

func validate(set string, t *records.Table, required []string) error {
	if ok, missing := ValidateRequired(t, required); !ok {
		return &SchemaError{Set: set, Missing: missing}
	}
	return nil
}
