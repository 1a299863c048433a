package builtin

import "spacewalks/pkg/records"

// DropNull removes any record holding a null (absent or nil) value in any of
// the listed columns. Empty strings are recorded values and survive; only
// genuine nulls (load-time nulls and failed coercions) remove a row.
type DropNull struct {
	Columns []string
}

// Apply returns a filtered slice containing only complete records. It
// filters in place by reslicing the input.
func (d DropNull) Apply(in []records.Record) []records.Record {
	out := in[:0]
	for _, rec := range in {
		ok := true
		for _, col := range d.Columns {
			if rec.IsNull(col) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out
}
