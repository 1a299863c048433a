package transformer

import "spacewalks/pkg/records"

// Transformer reshapes a batch of records. Implementations may filter rows
// or set values on the record maps they are given; callers that need an
// untouched snapshot pass in cloned rows.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Chain is an ordered list of transformers.
type Chain []Transformer

func (c Chain) Apply(in []records.Record) []records.Record {
	if len(c) == 0 {
		return in
	}

	out := in
	for _, t := range c {
		if t == nil {
			continue
		}
		out = t.Apply(out)
	}
	return out
}
