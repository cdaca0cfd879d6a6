package storage

import (
	"slices"

	"etl/internal/ddl"
	"etl/internal/mapping"
)

// Table and column names owned by the store.
const (
	LocationTable = "restaurant_location"
	TrendTable    = "restaurant_trend"

	ColTrendID           = "trend_id"
	ColCreatedAt         = "created_at"
	ColVerifiedLatitude  = "verified_latitude"
	ColVerifiedLongitude = "verified_longitude"
)

// Types maps logical column kinds to one backend's SQL types.
type Types struct {
	Text      string
	Real      string
	Integer   string
	Serial    string // auto-incrementing surrogate key
	Timestamp string
	Now       string // default expression for created_at
}

// LocationTableDef describes restaurant_location for a backend.
func LocationTableDef(ty Types) ddl.TableDef {
	t := ddl.TableDef{FQN: LocationTable}
	for _, f := range mapping.LocationFields() {
		c := ddl.ColumnDef{Name: f, SQLType: fieldType(ty, f, mapping.LocationNumeric, mapping.LocationInteger), Nullable: true}
		if f == mapping.FieldStoreNo {
			c.Nullable, c.PrimaryKey = false, true
		}
		t.Columns = append(t.Columns, c)
	}
	t.Columns = append(t.Columns,
		ddl.ColumnDef{Name: ColVerifiedLatitude, SQLType: ty.Real, Nullable: true},
		ddl.ColumnDef{Name: ColVerifiedLongitude, SQLType: ty.Real, Nullable: true},
		ddl.ColumnDef{Name: ColCreatedAt, SQLType: ty.Timestamp, Nullable: true, Default: ty.Now},
	)
	return t
}

// TrendTableDef describes restaurant_trend for a backend. store_no is a
// logical reference to restaurant_location and is checked by the loader,
// not by a constraint.
func TrendTableDef(ty Types) ddl.TableDef {
	t := ddl.TableDef{
		FQN:     TrendTable,
		Columns: []ddl.ColumnDef{{Name: ColTrendID, SQLType: ty.Serial, PrimaryKey: true}},
		Unique:  [][]string{TrendKey},
	}
	for _, f := range mapping.TrendFields() {
		c := ddl.ColumnDef{Name: f, SQLType: fieldType(ty, f, mapping.TrendNumeric, mapping.TrendInteger), Nullable: true}
		if f == mapping.FieldStoreNo || f == mapping.FieldYear {
			c.Nullable = false
		}
		t.Columns = append(t.Columns, c)
	}
	t.Columns = append(t.Columns,
		ddl.ColumnDef{Name: ColCreatedAt, SQLType: ty.Timestamp, Nullable: true, Default: ty.Now},
	)
	return t
}

// Conflict keys of the two tables.
var (
	LocationKey = []string{mapping.FieldStoreNo}
	TrendKey    = []string{mapping.FieldStoreNo, mapping.FieldYear}
)

func fieldType(ty Types, f string, numeric, integer []string) string {
	switch {
	case slices.Contains(numeric, f):
		return ty.Real
	case slices.Contains(integer, f):
		return ty.Integer
	default:
		return ty.Text
	}
}
