// Package fires defines the wildfire record shapes shared by the reducer,
// the store and the report.
package fires

import "database/sql"

// Source column names.
const (
	ColDiscoveryDate = "DISCOVERY_DATE"
	ColContDate      = "CONT_DATE"
	ColState         = "STATE"
	ColFireSize      = "FIRE_SIZE"
	ColFireSizeClass = "FIRE_SIZE_CLASS"
	ColGeneralCause  = "NWCG_GENERAL_CAUSE"
)

// Derived and output-only column names.
const (
	ColDiscoveryMonth = "DISCOVERY_MONTH"
	ColDiscoveryYear  = "DISCOVERY_YEAR"
	ColCount          = "COUNT"
)

// RequiredColumns must be present in the source table for the projection.
// CONT_DATE and FIRE_SIZE only feed the diagnostics report.
var RequiredColumns = []string{
	ColState,
	ColFireSizeClass,
	ColDiscoveryDate,
	ColGeneralCause,
}

// KeyColumns is the projected tuple, in output order.
var KeyColumns = []string{
	ColState,
	ColFireSizeClass,
	ColDiscoveryMonth,
	ColDiscoveryYear,
	ColGeneralCause,
}

// OutputColumns is the exact schema of the destination table.
var OutputColumns = append(append([]string(nil), KeyColumns...), ColCount)

// Key is a projected record. Every field is nullable and a null only
// equals another null, so Key is usable directly as a map key.
// Invalid fields always carry the zero String/Int64.
type Key struct {
	State          sql.NullString
	FireSizeClass  sql.NullString
	DiscoveryMonth sql.NullInt64
	DiscoveryYear  sql.NullInt64
	GeneralCause   sql.NullString
}

// Group is one coalesced output row.
type Group struct {
	Key
	Count int64
}

// String returns a valid NullString, or the null value when ok is false.
func String(s string, ok bool) sql.NullString {
	if !ok {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Int returns a valid NullInt64, or the null value when ok is false.
func Int(n int64, ok bool) sql.NullInt64 {
	if !ok {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: n, Valid: true}
}

// Less orders keys field by field, nulls first.
func (k Key) Less(o Key) bool {
	if c := compareString(k.State, o.State); c != 0 {
		return c < 0
	}
	if c := compareString(k.FireSizeClass, o.FireSizeClass); c != 0 {
		return c < 0
	}
	if c := compareInt(k.DiscoveryMonth, o.DiscoveryMonth); c != 0 {
		return c < 0
	}
	if c := compareInt(k.DiscoveryYear, o.DiscoveryYear); c != 0 {
		return c < 0
	}
	return compareString(k.GeneralCause, o.GeneralCause) < 0
}

// Values returns the key as driver values in KeyColumns order.
func (k Key) Values() []any {
	return []any{k.State, k.FireSizeClass, k.DiscoveryMonth, k.DiscoveryYear, k.GeneralCause}
}

func compareString(a, b sql.NullString) int {
	switch {
	case a.Valid != b.Valid:
		if !a.Valid {
			return -1
		}
		return 1
	case a.String < b.String:
		return -1
	case a.String > b.String:
		return 1
	}
	return 0
}

func compareInt(a, b sql.NullInt64) int {
	switch {
	case a.Valid != b.Valid:
		if !a.Valid {
			return -1
		}
		return 1
	case a.Int64 < b.Int64:
		return -1
	case a.Int64 > b.Int64:
		return 1
	}
	return 0
}
