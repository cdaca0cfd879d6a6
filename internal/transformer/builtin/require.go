package builtin

import "etl/pkg/records"

// Require removes any record with a null or blank value in one of Fields.
type Require struct {
	Fields []string
}

// Apply returns the surviving records and the 1-based lines of the ones it
// removed. A field that is not a column of the table counts as missing on
// every row, so callers that want a no-op must check Has first.
func (r Require) Apply(in *records.Table) (*records.Table, []int) {
	var dropped []int
	out := in.Filter(func(i int, rec records.Record) bool {
		for _, f := range r.Fields {
			if records.IsNull(rec[f]) {
				dropped = append(dropped, in.Line(i))
				return false
			}
		}
		return true
	})
	return out, dropped
}
