package table

import (
	"strconv"
	"time"
)

// Typed access helpers. Drivers hand back int64 for integer columns, string
// for text and NUMERIC (normalized from []byte on scan) and time.Time for
// timestamps; these helpers absorb that variance so stores stay small.

// Int64 returns the column as int64, or 0 when absent or unconvertible.
func (r Row) Int64(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

// Float64 returns the column as float64, or 0 when absent or unconvertible.
func (r Row) Float64(col string) float64 {
	switch v := r[col].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

// String returns the column as string, or "" when absent.
func (r Row) String(col string) string {
	if v, ok := r[col].(string); ok {
		return v
	}
	return ""
}

// Time returns the column as time.Time, or the zero time when absent.
func (r Row) Time(col string) time.Time {
	if v, ok := r[col].(time.Time); ok {
		return v
	}
	return time.Time{}
}
