// Package derive computes the analytical columns of the derived table:
// duration_hours, crew_size, and cumulative_time. The field functions are
// pure; the transformer wrappers apply them row-wise so they slot into the
// same chain machinery as the cleaning stages.
package derive

import (
	"fmt"
	"strconv"
	"strings"

	"spacewalks/pkg/records"
)

// DurationToHours converts H:MM / HH:MM duration text to fractional hours.
// The text is guaranteed well-formed post-validation; a malformed value here
// means a stage was skipped and is reported as an error.
func DurationToHours(text string) (float64, error) {
	h, m, ok := strings.Cut(text, ":")
	if !ok {
		return 0, fmt.Errorf("derive: duration %q has no ':' separator", text)
	}
	hours, err := strconv.Atoi(h)
	if err != nil {
		return 0, fmt.Errorf("derive: duration %q: bad hours: %w", text, err)
	}
	minutes, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("derive: duration %q: bad minutes: %w", text, err)
	}
	return float64(hours) + float64(minutes)/60, nil
}

// CrewSize counts semicolon-delimited crew entries. The count is the number
// of ';' occurrences: the terminated list form "A;B;C;" yields 3, and an
// unterminated "A;B;C" yields 2 by the same rule. ok is false for an
// empty string: no crew was recorded, and the derived value is null.
func CrewSize(text string) (n int, ok bool) {
	if text == "" {
		return 0, false
	}
	return strings.Count(text, ";"), true
}

// DurationHours sets Target (float64) from the duration text in Source.
// Rows whose duration cannot be parsed keep a nil Target; the cleaner's
// contract means this does not happen on validated input.
type DurationHours struct {
	Source string
	Target string
}

func (d DurationHours) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		hours, err := DurationToHours(r.String(d.Source))
		if err != nil {
			r[d.Target] = nil
			continue
		}
		r[d.Target] = hours
	}
	return in
}

// CrewCount sets Target (int, or nil when no crew is recorded) from the
// semicolon-delimited crew text in Source.
type CrewCount struct {
	Source string
	Target string
}

func (c CrewCount) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		if n, ok := CrewSize(r.String(c.Source)); ok {
			r[c.Target] = n
		} else {
			r[c.Target] = nil
		}
	}
	return in
}

// CumulativeSum sets Target to the running sum of the float64 values in
// Source, in record order. It assumes the batch is already in its intended
// order; it never re-sorts.
type CumulativeSum struct {
	Source string
	Target string
}

func (c CumulativeSum) Apply(in []records.Record) []records.Record {
	var total float64
	for _, r := range in {
		if v, ok := r[c.Source].(float64); ok {
			total += v
		}
		r[c.Target] = total
	}
	return in
}
