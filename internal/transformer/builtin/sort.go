package builtin

import (
	"sort"
	"time"

	"spacewalks/pkg/records"
)

// SortByDate stably sorts records ascending by the time.Time value in Field.
// It runs after coercion and null-row removal, so every surviving record is
// expected to carry a real time; anything else orders after all dated rows.
type SortByDate struct {
	Field string
}

func (s SortByDate) Apply(in []records.Record) []records.Record {
	sort.SliceStable(in, func(i, j int) bool {
		ti, iOK := in[i][s.Field].(time.Time)
		tj, jOK := in[j][s.Field].(time.Time)
		if !iOK || !jOK {
			return iOK && !jOK
		}
		return ti.Before(tj)
	})
	return in
}
