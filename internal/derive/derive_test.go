package derive

import (
	"math"
	"testing"

	"spacewalks/pkg/records"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

/*
TestDurationToHours pins the conversion against ground-truth values: whole
hours, fractional minutes, and the zero-duration EVA.
*/
func TestDurationToHours(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"10:00", 10.0},
		{"10:20", 10.0 + 20.0/60.0},
		{"0:00", 0.0},
		{"0:30", 0.5},
		{"1:00", 1.0},
		{"2:45", 2.75},
	}
	for _, c := range cases {
		got, err := DurationToHours(c.in)
		if err != nil {
			t.Errorf("DurationToHours(%q): %v", c.in, err)
			continue
		}
		if !approx(got, c.want) {
			t.Errorf("DurationToHours(%q)=%v; want %v", c.in, got, c.want)
		}
	}
}

/*
TestDurationToHours_Malformed verifies malformed text errors instead of
silently producing a number.
*/
func TestDurationToHours_Malformed(t *testing.T) {
	for _, in := range []string{"", "90", "x:10", "1:yy"} {
		if _, err := DurationToHours(in); err == nil {
			t.Errorf("DurationToHours(%q): expected error", in)
		}
	}
}

/*
TestCrewSize pins the count-separators rule: a trailing-terminated list
"A;B;C;" yields 3, not 4, and an empty string means no recorded crew.
*/
func TestCrewSize(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"", 0, false},
		{"Valentina Tereshkova;", 1, true},
		{"Judith Resnik; Sally Ride;", 2, true},
		{"Richard Gordon;Buzz Aldrin;John Glenn;", 3, true},
		{"Richard Gordon;Buzz Aldrin;John Glenn", 2, true}, // no trailing terminator
	}
	for _, c := range cases {
		got, ok := CrewSize(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("CrewSize(%q)=(%d,%v); want (%d,%v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

/*
TestDurationHours_Apply verifies the row-wise wrapper adds duration_hours
without disturbing the source column.
*/
func TestDurationHours_Apply(t *testing.T) {
	in := []records.Record{
		{"duration": "2:07"},
		{"duration": "0:00"},
		{"duration": "0:36"},
	}
	out := DurationHours{Source: "duration", Target: "duration_hours"}.Apply(in)

	want := []float64{2.0 + 7.0/60.0, 0, 0.6}
	for i, w := range want {
		got, ok := out[i]["duration_hours"].(float64)
		if !ok || !approx(got, w) {
			t.Errorf("row %d: duration_hours=%v; want %v", i, out[i]["duration_hours"], w)
		}
		if out[i]["duration"] == nil {
			t.Errorf("row %d: source column disturbed", i)
		}
	}
}

/*
TestCrewCount_Apply verifies crew_size values including the null for an
empty crew field.
*/
func TestCrewCount_Apply(t *testing.T) {
	in := []records.Record{
		{"crew": ""},
		{"crew": "Richard Gordon;"},
		{"crew": "Richard Gordon;Buzz Aldrin;"},
		{"crew": "Richard Gordon;Buzz Aldrin;John Glenn;"},
	}
	out := CrewCount{Source: "crew", Target: "crew_size"}.Apply(in)

	want := []any{nil, 1, 2, 3}
	for i, w := range want {
		if out[i]["crew_size"] != w {
			t.Errorf("row %d: crew_size=%v; want %v", i, out[i]["crew_size"], w)
		}
	}
}

/*
TestCumulativeSum_Apply verifies inclusive prefix sums in row order over the
ground-truth pair of durations.
*/
func TestCumulativeSum_Apply(t *testing.T) {
	in := []records.Record{
		{"duration_hours": 0.6},
		{"duration_hours": 2.0 + 7.0/60.0},
	}
	out := CumulativeSum{Source: "duration_hours", Target: "cumulative_time"}.Apply(in)

	want := []float64{0.6, 2.716667}
	for i, w := range want {
		got, ok := out[i]["cumulative_time"].(float64)
		if !ok || !approx(got, w) {
			t.Errorf("row %d: cumulative_time=%v; want %v", i, out[i]["cumulative_time"], w)
		}
	}
}
