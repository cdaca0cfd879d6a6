package transformer

import "etl/pkg/records"

// Step transforms a table and threads an accumulator S (e.g. cleaning
// statistics) through explicitly instead of sharing it.
type Step[S any] func(*records.Table, S) (*records.Table, S)

// Chain is an ordered list of steps.
type Chain[S any] []Step[S]

// Apply runs every step in order, feeding each one the previous output.
func (c Chain[S]) Apply(in *records.Table, acc S) (*records.Table, S) {
	out := in
	for _, step := range c {
		out, acc = step(out, acc)
	}
	return out, acc
}
