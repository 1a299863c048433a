package builtin

import (
	"strings"

	"github.com/zeebo/xxh3"

	"spacewalks/pkg/records"
)

// DeDup collapses records sharing the same business key, keeping the first
// occurrence. The NASA export occasionally repeats an EVA row verbatim after
// manual edits; keying on eva+date removes those without touching distinct
// events. Records missing a key field pass through untouched.
type DeDup struct {
	Keys []string
}

// Apply returns the surviving records in their original relative order.
func (d DeDup) Apply(in []records.Record) []records.Record {
	if len(in) == 0 || len(d.Keys) == 0 {
		return in
	}

	seen := make(map[uint64]struct{}, len(in))
	out := in[:0]
	for _, rec := range in {
		key, ok := d.keyOf(rec)
		if !ok {
			out = append(out, rec)
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// keyOf hashes the concatenated key fields. A missing field (as opposed to a
// nil one) takes the record out of the de-dup domain.
func (d DeDup) keyOf(r records.Record) (uint64, bool) {
	var b strings.Builder
	for i, k := range d.Keys {
		v, ok := r[k]
		if !ok {
			return 0, false
		}
		if i > 0 {
			b.WriteByte('\x1f')
		}
		if v == nil {
			b.WriteByte('\x00')
		} else {
			b.WriteString(records.Stringify(v))
		}
	}
	return xxh3.HashString(b.String()), true
}
