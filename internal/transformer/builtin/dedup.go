// Package builtin contains reusable ETL transformers.
//
// DeDup collapses records sharing a business key and keeps the earliest
// occurrence in input order. Every dropped row is reported back so callers
// can count it and keep a diagnostic sample. Each dropped row is also
// fingerprinted with xxh3 and compared to the kept row, which separates
// harmless repeats (identical content) from conflicting ones.
package builtin

import (
	"strings"

	"etl/pkg/records"

	"github.com/zeebo/xxh3"
)

// DeDup implements keep-first de-duplication over one or more key columns.
type DeDup struct {
	// Keys are the columns that form the business key, e.g. ["STORE_NO"].
	Keys []string
}

// Duplicate describes one row removed by DeDup.
type Duplicate struct {
	Line      int
	Key       string
	Identical bool // same content as the row that was kept
}

// Apply returns the table without repeated keys plus the rows it dropped.
// If any key column is missing from the table, the input is returned as-is.
func (d DeDup) Apply(in *records.Table) (*records.Table, []Duplicate) {
	if in.Len() == 0 || len(d.Keys) == 0 {
		return in, nil
	}
	for _, k := range d.Keys {
		if !in.Has(k) {
			return in, nil
		}
	}

	first := make(map[string]uint64, in.Len())
	var dups []Duplicate
	out := in.Filter(func(i int, r records.Record) bool {
		key := d.keyOf(r)
		fp := fingerprint(in.Columns, r)
		kept, seen := first[key]
		if !seen {
			first[key] = fp
			return true
		}
		dups = append(dups, Duplicate{Line: in.Line(i), Key: key, Identical: kept == fp})
		return false
	})
	return out, dups
}

func (d DeDup) keyOf(r records.Record) string {
	if len(d.Keys) == 1 {
		return records.KeyString(r[d.Keys[0]])
	}
	var b strings.Builder
	for i, k := range d.Keys {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(records.KeyString(r[k]))
	}
	return b.String()
}

// fingerprint hashes the row's cells in column order.
func fingerprint(cols []string, r records.Record) uint64 {
	h := xxh3.New()
	for _, c := range cols {
		_, _ = h.WriteString(records.FormatCell(r[c]))
		_, _ = h.Write([]byte{0x1f})
	}
	return h.Sum64()
}
