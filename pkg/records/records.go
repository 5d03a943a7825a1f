// Package records defines the generic record shape passed between pipeline
// stages. A Record maps canonical column names to cell values; values are
// strings as read from the source until a stage coerces them (e.g. year to
// int64). nil marks a missing or empty cell.
package records

import (
	"fmt"
	"strconv"
)

// Record is one row keyed by canonical column name.
type Record map[string]any

// String returns the value under key rendered as a string, or "" when the key
// is absent or nil. Common scalar types avoid the fmt.Sprint allocation path.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok {
		return ""
	}
	return AsString(v)
}

// Has reports whether key is present with a non-nil, non-empty value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr && s == "" {
		return false
	}
	return true
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// AsString converts common value types to their string form.
func AsString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(t)
	}
}
