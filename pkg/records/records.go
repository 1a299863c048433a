// Package records defines the record value type shared by every pipeline
// stage. A Record is a single row keyed by column name; values start life as
// strings (or nil) and are replaced by typed values as coercion progresses.
package records

import (
	"fmt"
	"strconv"
	"time"
)

// Record is one row of loosely-typed data keyed by column name.
type Record map[string]any

// Clone returns a shallow copy of the record. Stages that add or replace
// values operate on clones so earlier snapshots stay intact.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// IsNull reports whether the named field is absent or nil. An empty string
// is not null: it is a recorded value (no crew, unknown duration) and must
// survive null-row removal.
func (r Record) IsNull(field string) bool {
	v, ok := r[field]
	return !ok || v == nil
}

// String returns the field's value rendered as a string, or "" when the
// field is absent or nil. Typed values use their canonical text form.
func (r Record) String(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	return Stringify(v)
}

// Stringify converts common value types to their canonical string form
// without going through fmt for the hot cases.
func Stringify(v any) string {
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
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format("2006-01-02")
	default:
		return fmt.Sprint(t)
	}
}
