// Package builtin contains the reusable transformers the cleaning stage is
// assembled from.
package builtin

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"spacewalks/pkg/records"
)

// Normalize trims surrounding whitespace from every string value and applies
// unicode NFC normalization so visually identical crew and country names
// compare equal downstream.
type Normalize struct{}

func (Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			if s, ok := v.(string); ok {
				r[k] = norm.NFC.String(strings.TrimSpace(s))
			}
		}
	}
	return in
}
