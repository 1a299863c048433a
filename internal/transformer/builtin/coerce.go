package builtin

import (
	"strconv"
	"time"

	"spacewalks/pkg/records"
)

// dateLayouts are tried in order when coercing date text. The NASA export
// carries millisecond timestamps; hand-edited files often hold bare dates.
var dateLayouts = []string{
	"2006-01-02T15:04:05.000",
	time.RFC3339,
	"2006-01-02",
}

// Coerce converts string values to their target types: "number" fields to
// float64 and "date" fields to time.Time. A value that cannot be coerced is
// set to nil rather than reported, which hands the row to DropNull.
type Coerce struct {
	Numbers []string // fields coerced to float64
	Dates   []string // fields coerced to time.Time
}

func (c Coerce) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for _, field := range c.Numbers {
			s, ok := stringValue(r, field)
			if !ok {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				r[field] = f
			} else {
				r[field] = nil
			}
		}
		for _, field := range c.Dates {
			s, ok := stringValue(r, field)
			if !ok {
				continue
			}
			if t, ok := parseDate(s); ok {
				r[field] = t
			} else {
				r[field] = nil
			}
		}
	}
	return in
}

// stringValue returns the field's string value when it is a non-empty,
// still-uncoerced string. Nil, absent, and already-typed values are skipped;
// empty strings coerce to nil so incompleteness is uniform for DropNull.
func stringValue(r records.Record, field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", false
	}
	s, isStr := v.(string)
	if !isStr {
		return "", false
	}
	if s == "" {
		r[field] = nil
		return "", false
	}
	return s, true
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
