package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"spacewalks/internal/config"
)

const rawInput = `[
  {"eva": "1", "country": "USA", "crew": "Ed White;", "vehicle": "Gemini IV",
   "date": "1965-06-03T00:00:00.000", "duration": "0:36", "purpose": "First American spacewalk"},
  {"eva": "2", "country": "USA", "crew": "Eugene Cernan;", "vehicle": "Gemini IX-A",
   "date": "1966-06-05T00:00:00.000", "duration": "2:07", "purpose": "Umbilical EVA"},
  {"eva": "3", "country": "USA", "crew": "Michael Collins;", "vehicle": "Gemini X",
   "date": null, "duration": "0:50", "purpose": "Retrieve experiment package"},
  {"eva": "1", "country": "USA", "crew": "Ed White;", "vehicle": "Gemini IV",
   "date": "1965-06-03T00:00:00.000", "duration": "0:36", "purpose": "First American spacewalk"}
]`

func testRun(t *testing.T, input string) config.Run {
	t.Helper()
	dir := t.TempDir()

	path := filepath.Join(dir, "eva-data.json")
	if err := os.WriteFile(path, []byte(input), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	r := config.Default()
	r.SetInput(path)
	r.Output.Table = filepath.Join(dir, "eva-data.csv")
	r.Output.Summary = filepath.Join(dir, "eva-summary.csv")
	r.Output.Chart = filepath.Join(dir, "cumulative_eva_graph.png")
	return r
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	rows, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return rows
}

func field(t *testing.T, header []string, row []string, name string) string {
	t.Helper()
	for i, h := range header {
		if h == name {
			return row[i]
		}
	}
	t.Fatalf("column %q not in header %v", name, header)
	return ""
}

func floatField(t *testing.T, header []string, row []string, name string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(field(t, header, row, name), 64)
	if err != nil {
		t.Fatalf("column %q = %q is not numeric: %v", name, field(t, header, row, name), err)
	}
	return v
}

/*
TestPipeline_Run_EndToEnd drives a complete run over four raw records: two
good ones out of order with a duplicate and a null-date row mixed in.
Cleaning must drop two rows, derivation must add the three analytical
columns, and all three artifacts must land on disk.
*/
func TestPipeline_Run_EndToEnd(t *testing.T) {
	run := testRun(t, rawInput)

	res, err := New(run).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.SchemaOK {
		t.Fatalf("SchemaOK=false; violations=%d", res.Violations)
	}
	if res.Loaded != 4 || res.Dropped != 2 || res.Exported != 2 {
		t.Fatalf("counts = %+v; want loaded=4 dropped=2 exported=2", res)
	}

	rows := readCSV(t, run.Output.Table)
	if len(rows) != 3 {
		t.Fatalf("table rows = %d; want header + 2", len(rows))
	}
	header := rows[0]
	wantHeader := []string{"eva", "country", "crew", "vehicle", "date", "duration", "purpose",
		"duration_hours", "crew_size", "cumulative_time"}
	for i, h := range wantHeader {
		if header[i] != h {
			t.Fatalf("header = %v; want %v", header, wantHeader)
		}
	}

	// Sorted ascending by date, derived columns populated.
	if got := field(t, header, rows[1], "date"); got != "1965-06-03" {
		t.Errorf("first row date = %q", got)
	}
	if got := field(t, header, rows[2], "date"); got != "1966-06-05" {
		t.Errorf("second row date = %q", got)
	}
	if got := floatField(t, header, rows[1], "duration_hours"); math.Abs(got-0.6) > 1e-9 {
		t.Errorf("duration_hours[0] = %v; want 0.6", got)
	}
	if got := floatField(t, header, rows[2], "cumulative_time"); math.Abs(got-2.716667) > 1e-5 {
		t.Errorf("cumulative_time[1] = %v; want 2.716667", got)
	}
	for _, row := range rows[1:] {
		if got := field(t, header, row, "crew_size"); got != "1" {
			t.Errorf("crew_size = %q; want 1", got)
		}
	}

	sum := readCSV(t, run.Output.Summary)
	if len(sum) != 2 {
		t.Fatalf("summary rows = %v", sum)
	}
	if sum[0][0] != "country" || sum[0][1] != "count" || sum[0][2] != "percentage" {
		t.Fatalf("summary header = %v", sum[0])
	}
	if sum[1][0] != "USA" || sum[1][1] != "2" || sum[1][2] != "100" {
		t.Fatalf("summary row = %v", sum[1])
	}

	png, err := os.ReadFile(run.Output.Chart)
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	if len(png) < 8 || !bytes.Equal(png[:4], []byte("\x89PNG")) {
		t.Fatalf("chart is not a PNG (%d bytes)", len(png))
	}
}

/*
TestPipeline_Run_AdvisorySchemaFailure verifies the default policy: a table
that fails the contract produces no error and no artifacts, only a report.
*/
func TestPipeline_Run_AdvisorySchemaFailure(t *testing.T) {
	run := testRun(t, `[
	  {"eva": "1", "country": "USA", "crew": "Ed White;", "vehicle": "Gemini IV",
	   "date": "1965-06-03T00:00:00.000", "duration": "1h30", "purpose": "x"}
	]`)

	res, err := New(run).Run(context.Background())
	if err != nil {
		t.Fatalf("advisory run must not error: %v", err)
	}
	if res.SchemaOK || res.Violations == 0 {
		t.Fatalf("expected violations, got %+v", res)
	}
	if _, err := os.Stat(run.Output.Table); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("table artifact written despite schema failure")
	}
}

/*
TestPipeline_Run_StrictSchemaFailure verifies strict mode turns the same
condition into ErrSchema.
*/
func TestPipeline_Run_StrictSchemaFailure(t *testing.T) {
	run := testRun(t, `[
	  {"eva": "1", "country": "USA", "crew": "no separator", "vehicle": "Gemini IV",
	   "date": "1965-06-03T00:00:00.000", "duration": "0:36", "purpose": "x"}
	]`)

	p := New(run)
	p.Strict = true
	_, err := p.Run(context.Background())
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("err = %v; want ErrSchema", err)
	}
}

/*
TestPipeline_Run_DisabledArtifacts verifies switching off the summary and
chart leaves only the table CSV.
*/
func TestPipeline_Run_DisabledArtifacts(t *testing.T) {
	run := testRun(t, rawInput)

	p := New(run)
	p.WriteSummary = false
	p.WriteChart = false
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := os.Stat(run.Output.Table); err != nil {
		t.Fatalf("table artifact missing: %v", err)
	}
	for _, path := range []string{run.Output.Summary, run.Output.Chart} {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("disabled artifact %s was written", path)
		}
	}
}

/*
TestPipeline_Run_MissingInput verifies a missing input file fails the run
with a wrapped filesystem error.
*/
func TestPipeline_Run_MissingInput(t *testing.T) {
	run := config.Default()
	run.SetInput(filepath.Join(t.TempDir(), "absent.json"))
	run.Output.Table = filepath.Join(t.TempDir(), "out.csv")

	_, err := New(run).Run(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v; want os.ErrNotExist in chain", err)
	}
}
