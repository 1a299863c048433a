package aggregate

import (
	"errors"
	"reflect"
	"testing"

	"spacewalks/internal/table"
	"spacewalks/pkg/records"
)

func countryTable(values []any) table.Table {
	rows := make([]records.Record, len(values))
	for i, v := range values {
		rows[i] = records.Record{"country": v}
	}
	return table.New([]string{"country"}, rows)
}

/*
TestSummarize verifies counts, whole-percent percentages, and ascending
value order for a simple distribution.
*/
func TestSummarize(t *testing.T) {
	tbl := countryTable([]any{"USA", "USA", "USA", "Russia", "Russia"})

	sum, err := Summarize(tbl, "country")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	want := []Bucket{
		{Value: "Russia", Count: 2, Percentage: 40},
		{Value: "USA", Count: 3, Percentage: 60},
	}
	if !reflect.DeepEqual(sum.Buckets, want) {
		t.Fatalf("buckets=%+v; want %+v", sum.Buckets, want)
	}
}

/*
TestSummarize_Missing verifies nulls form their own bucket, counted in the
total and always sorted last.
*/
func TestSummarize_Missing(t *testing.T) {
	tbl := countryTable([]any{"USA", "USA", "USA", "Russia", nil})

	sum, err := Summarize(tbl, "country")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	want := []Bucket{
		{Value: "Russia", Count: 1, Percentage: 20},
		{Value: "USA", Count: 3, Percentage: 60},
		{Missing: true, Count: 1, Percentage: 20},
	}
	if !reflect.DeepEqual(sum.Buckets, want) {
		t.Fatalf("buckets=%+v; want %+v", sum.Buckets, want)
	}
}

/*
TestSummarize_Totals verifies the conservation properties: bucket counts sum
to the row count and percentages sum to 100 within rounding slack bounded by
the bucket count.
*/
func TestSummarize_Totals(t *testing.T) {
	tbl := countryTable([]any{"a", "b", "b", "c", "c", "c", nil})

	sum, err := Summarize(tbl, "country")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	n := 0
	pct := 0.0
	for _, b := range sum.Buckets {
		n += b.Count
		pct += b.Percentage
	}
	if n != tbl.Len() {
		t.Errorf("counts sum to %d; want %d", n, tbl.Len())
	}
	slack := float64(len(sum.Buckets))
	if pct < 100-slack || pct > 100+slack {
		t.Errorf("percentages sum to %v; want 100 within %v", pct, slack)
	}
}

/*
TestSummarize_UnknownColumn verifies ErrColumnNotFound with no partial
result.
*/
func TestSummarize_UnknownColumn(t *testing.T) {
	tbl := countryTable([]any{"USA"})
	sum, err := Summarize(tbl, "country-2")
	if !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("err=%v; want ErrColumnNotFound", err)
	}
	if sum.Buckets != nil {
		t.Fatalf("partial summary returned: %+v", sum)
	}
}

/*
TestCumulativeSum verifies inclusive prefix sums in row order and the
unknown-column error.
*/
func TestCumulativeSum(t *testing.T) {
	rows := []records.Record{
		{"duration_hours": 0.6},
		{"duration_hours": 2.0},
		{"duration_hours": 0.4},
	}
	tbl := table.New([]string{"duration_hours"}, rows)

	got, err := CumulativeSum(tbl, "duration_hours")
	if err != nil {
		t.Fatalf("CumulativeSum: %v", err)
	}
	want := []float64{0.6, 2.6, 3.0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sums=%v; want %v", got, want)
	}

	if _, err := CumulativeSum(tbl, "nope"); !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("err=%v; want ErrColumnNotFound", err)
	}
}
