package builtin

import "etl/pkg/records"

// DropEmpty removes rows whose every cell is null or blank.
type DropEmpty struct{}

// Apply returns the non-empty rows and the lines of the dropped ones.
func (DropEmpty) Apply(in *records.Table) (*records.Table, []int) {
	var dropped []int
	out := in.Filter(func(i int, r records.Record) bool {
		for _, c := range in.Columns {
			if !records.IsNull(r[c]) {
				return true
			}
		}
		dropped = append(dropped, in.Line(i))
		return false
	})
	return out, dropped
}
