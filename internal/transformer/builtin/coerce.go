package builtin

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"etl/pkg/records"
)

// ToNumeric converts v to a float64. Null, empty and unparseable input
// yields nil, or 0.0 when allowNull is false.
func ToNumeric(v any, allowNull bool) any {
	f, ok := parseFloat(v)
	if !ok {
		if allowNull {
			return nil
		}
		return 0.0
	}
	return f
}

// ToInteger parses v as a float and truncates toward zero, so "12.7" is 12.
// Null, empty and unparseable input yields nil, or int64(0) when allowNull is
// false.
func ToInteger(v any, allowNull bool) any {
	f, ok := parseFloat(v)
	if !ok || f >= math.MaxInt64 || f <= math.MinInt64 {
		if allowNull {
			return nil
		}
		return int64(0)
	}
	return int64(f)
}

// ToText stringifies v and trims surrounding whitespace. Only nil is null;
// an empty string stays empty. With allowNull false, nil becomes "".
func ToText(v any, allowNull bool) any {
	if v == nil {
		if allowNull {
			return nil
		}
		return ""
	}
	return strings.TrimSpace(records.FormatCell(v))
}

func parseFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = t
	case int64:
		f = float64(t)
	case int:
		f = float64(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		p, err := strconv.ParseFloat(strings.TrimSpace(fmt.Sprint(t)), 64)
		if err != nil {
			return 0, false
		}
		f = p
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// CoerceFunc is one of ToNumeric, ToInteger or ToText.
type CoerceFunc func(v any, allowNull bool) any

// Coerce applies a CoerceFunc to named columns. Columns absent from the
// table are left alone; row count and order never change.
type Coerce struct {
	Columns   []string
	Fn        CoerceFunc
	AllowNull bool
}

// Apply returns the coerced table and, per column, how many non-empty cells
// degraded to null. Degradations to the zero fallback are not counted.
func (c Coerce) Apply(in *records.Table) (*records.Table, map[string]int) {
	out := in.Clone()
	degraded := map[string]int{}
	for _, col := range c.Columns {
		if !out.Has(col) {
			continue
		}
		for _, r := range out.Rows {
			before := r[col]
			after := c.Fn(before, c.AllowNull)
			if after == nil && !records.IsNull(before) {
				degraded[col]++
			}
			r[col] = after
		}
	}
	return out, degraded
}

// NumericColumns coerces cols with ToNumeric (null-allowing).
func NumericColumns(in *records.Table, cols ...string) (*records.Table, map[string]int) {
	return Coerce{Columns: cols, Fn: ToNumeric, AllowNull: true}.Apply(in)
}

// IntegerColumns coerces cols with ToInteger (null-allowing).
func IntegerColumns(in *records.Table, cols ...string) (*records.Table, map[string]int) {
	return Coerce{Columns: cols, Fn: ToInteger, AllowNull: true}.Apply(in)
}

// TextColumns coerces cols with ToText (null-allowing).
func TextColumns(in *records.Table, cols ...string) (*records.Table, map[string]int) {
	return Coerce{Columns: cols, Fn: ToText, AllowNull: true}.Apply(in)
}
