// Package aggregate tabulates distributions over table columns.
package aggregate

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"spacewalks/internal/table"
	"spacewalks/pkg/records"
)

// ErrColumnNotFound marks an aggregation request against a column the table
// does not have. No partial computation is performed.
var ErrColumnNotFound = errors.New("column not found")

// Bucket is one distinct-value group in a categorical summary. Missing is
// true for the null bucket, whose Value is empty.
type Bucket struct {
	Value      string
	Missing    bool
	Count      int
	Percentage float64
}

// Summary is the distribution of one categorical column.
type Summary struct {
	Column  string
	Buckets []Bucket
}

// Summarize groups the table's rows by the named column's value (nulls form
// their own bucket), counts occurrences, and computes each bucket's share of
// all rows rounded to the nearest whole percent. Buckets are ordered by
// value ascending with the null bucket last.
func Summarize(tbl table.Table, column string) (Summary, error) {
	if !tbl.HasColumn(column) {
		return Summary{}, fmt.Errorf("summarize %q: %w", column, ErrColumnNotFound)
	}

	counts := make(map[string]int)
	missing := 0
	for _, rec := range tbl.Rows {
		if rec.IsNull(column) {
			missing++
			continue
		}
		counts[records.Stringify(rec[column])]++
	}

	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Strings(values)

	total := tbl.Len()
	pct := func(n int) float64 {
		if total == 0 {
			return 0
		}
		return math.Round(100 * float64(n) / float64(total))
	}

	sum := Summary{Column: column}
	for _, v := range values {
		sum.Buckets = append(sum.Buckets, Bucket{
			Value:      v,
			Count:      counts[v],
			Percentage: pct(counts[v]),
		})
	}
	if missing > 0 {
		sum.Buckets = append(sum.Buckets, Bucket{
			Missing:    true,
			Count:      missing,
			Percentage: pct(missing),
		})
	}
	return sum, nil
}

// CumulativeSum returns the inclusive running sum of the named numeric
// column in the table's current row order. The table is expected to already
// be in its intended order; no re-sorting happens here.
func CumulativeSum(tbl table.Table, column string) ([]float64, error) {
	if !tbl.HasColumn(column) {
		return nil, fmt.Errorf("cumulative sum %q: %w", column, ErrColumnNotFound)
	}

	out := make([]float64, tbl.Len())
	var total float64
	for i, rec := range tbl.Rows {
		if v, ok := rec[column].(float64); ok {
			total += v
		}
		out[i] = total
	}
	return out, nil
}
