// Package pipeline wires the full analysis run: load raw EVA records,
// validate them against the contract, clean, derive the analytical columns,
// and fan out to the configured sinks (table CSV, summary CSV, chart PNG,
// optional database snapshot).
//
// Stage order is fixed; configuration selects sources, parsers, and sinks
// but not the stage sequence. A failed schema check is advisory by default:
// the run logs every violation, skips the downstream stages, and reports
// SchemaOK=false so the caller can decide the exit code. Strict mode turns
// the same condition into an error.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"spacewalks/internal/aggregate"
	"spacewalks/internal/chart"
	"spacewalks/internal/config"
	"spacewalks/internal/datasource"
	"spacewalks/internal/datasource/file"
	"spacewalks/internal/datasource/httpds"
	"spacewalks/internal/derive"
	"spacewalks/internal/exporter"
	"spacewalks/internal/metrics"
	"spacewalks/internal/parser"
	csvparser "spacewalks/internal/parser/csv"
	jsonparser "spacewalks/internal/parser/json"
	"spacewalks/internal/schema"
	"spacewalks/internal/storage"
	"spacewalks/internal/table"
	"spacewalks/internal/transformer"
	"spacewalks/internal/transformer/builtin"
	"spacewalks/internal/validator"
	"spacewalks/pkg/records"
)

// ErrSchema marks a strict-mode run aborted by schema violations.
var ErrSchema = errors.New("schema validation failed")

// Derived column names added to the cleaned table.
const (
	ColDurationHours = "duration_hours"
	ColCrewSize      = "crew_size"
	ColCumulative    = "cumulative_time"
)

// Pipeline executes one analysis run.
type Pipeline struct {
	run config.Run

	// Strict turns schema violations into a run error instead of an
	// advisory skip.
	Strict bool

	// WriteSummary and WriteChart switch the secondary artifacts; the
	// cleaned table CSV is always written.
	WriteSummary bool
	WriteChart   bool
}

// Result is the run accounting reported back to the caller.
type Result struct {
	// SchemaOK is false when validation found violations. In advisory mode
	// the run still returns a nil error; nothing downstream ran.
	SchemaOK   bool
	Loaded     int // records parsed from the source
	Violations int // schema violations found
	Dropped    int // rows removed by cleaning (nulls and duplicates)
	Exported   int // rows written to the table CSV
	Stored     int64
}

// New builds a Pipeline over a validated run configuration. Summary and
// chart artifacts default to on.
func New(run config.Run) *Pipeline {
	return &Pipeline{run: run, WriteSummary: true, WriteChart: true}
}

// Run executes the pipeline end to end.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	var res Result

	tbl, err := p.load(ctx)
	if err != nil {
		return res, err
	}
	res.Loaded = tbl.Len()

	rep, err := p.validate(tbl)
	if err != nil {
		return res, err
	}
	res.Violations = len(rep.Violations)
	res.SchemaOK = rep.OK()
	if !res.SchemaOK {
		for _, v := range rep.Violations {
			log.Printf("schema violation: %s", v)
		}
		if p.Strict {
			return res, fmt.Errorf("%w: %d violations", ErrSchema, res.Violations)
		}
		log.Printf("msg=\"schema check failed, skipping downstream stages\" violations=%d", res.Violations)
		return res, nil
	}

	cleaned := p.clean(tbl)
	res.Dropped = tbl.Len() - cleaned.Len()
	metrics.RecordRows("dropped", int64(res.Dropped))

	derived := p.derive(cleaned)

	if err := p.export(ctx, derived, &res); err != nil {
		return res, err
	}
	res.Exported = derived.Len()
	metrics.RecordRows("exported", int64(res.Exported))

	log.Printf("msg=\"run complete\" loaded=%d dropped=%d exported=%d stored=%d",
		res.Loaded, res.Dropped, res.Exported, res.Stored)
	return res, nil
}

// load opens the configured source, parses it, and builds the raw table
// with the contract columns ordered first.
func (p *Pipeline) load(ctx context.Context) (table.Table, error) {
	start := time.Now()

	src, err := p.source()
	if err != nil {
		metrics.RecordStep("load", err, time.Since(start))
		return table.Table{}, err
	}
	prs, err := p.parser()
	if err != nil {
		metrics.RecordStep("load", err, time.Since(start))
		return table.Table{}, err
	}

	rc, err := src.Open(ctx)
	if err != nil {
		metrics.RecordStep("load", err, time.Since(start))
		return table.Table{}, fmt.Errorf("pipeline: open source: %w", err)
	}
	defer rc.Close()

	recs, total, err := prs.Parse(rc)
	metrics.RecordStep("load", err, time.Since(start))
	if err != nil {
		return table.Table{}, fmt.Errorf("pipeline: parse %s: %w", p.run.InputLocation(), err)
	}

	log.Printf("msg=\"loaded input\" location=%s records=%d read=%d", p.run.InputLocation(), len(recs), total)
	metrics.RecordRows("loaded", int64(len(recs)))
	return table.New(schema.EVA().Columns(), recs), nil
}

func (p *Pipeline) source() (datasource.Source, error) {
	switch p.run.Source.Kind {
	case "", "file":
		return file.NewLocal(p.run.Source.File.Path), nil
	case "http":
		h := p.run.Source.HTTP
		return httpds.NewRemote(h.URL, httpds.Config{
			Timeout:            time.Duration(h.TimeoutSeconds) * time.Second,
			MaxRetries:         h.MaxRetries,
			InsecureSkipVerify: h.InsecureSkipVerify,
		}), nil
	default:
		return nil, fmt.Errorf("pipeline: unknown source kind %q", p.run.Source.Kind)
	}
}

func (p *Pipeline) parser() (parser.Parser, error) {
	opt := p.run.Parser.Options
	switch p.run.Parser.Kind {
	case "", "json":
		return jsonparser.NewParser(), nil
	case "csv":
		return csvparser.NewParser(csvparser.Options{
			Comma:     opt.Rune("comma", ','),
			TrimSpace: opt.Bool("trim_space", false),
			HeaderMap: opt.StringMap("header_map"),
		}), nil
	default:
		return nil, fmt.Errorf("pipeline: unknown parser kind %q", p.run.Parser.Kind)
	}
}

// validate checks the raw table against the EVA contract without mutating it.
func (p *Pipeline) validate(tbl table.Table) (validator.Report, error) {
	start := time.Now()
	v, err := validator.New(schema.EVA())
	if err != nil {
		metrics.RecordStep("validate", err, time.Since(start))
		return validator.Report{}, err
	}
	rep := v.Check(tbl)
	metrics.RecordStep("validate", nil, time.Since(start))
	metrics.RecordRows("violations", int64(len(rep.Violations)))
	return rep, nil
}

// clean runs the cleaning chain over copies of the raw rows: normalize
// text, coerce eva numbers and dates, drop incomplete rows, drop
// duplicates, and sort by date.
func (p *Pipeline) clean(tbl table.Table) table.Table {
	start := time.Now()

	chain := transformer.Chain{
		builtin.Normalize{},
		builtin.Coerce{Numbers: []string{"eva"}, Dates: []string{"date"}},
		builtin.DropNull{Columns: schema.EVA().Columns()},
		builtin.DeDup{Keys: []string{"eva", "date"}},
		builtin.SortByDate{Field: "date"},
	}
	out := tbl.WithRows(chain.Apply(tbl.CloneRows()))

	metrics.RecordStep("clean", nil, time.Since(start))
	log.Printf("msg=\"cleaned table\" in=%d out=%d", tbl.Len(), out.Len())
	return out
}

// derive appends duration_hours, crew_size, and cumulative_time. The rows
// already belong to the pipeline after cleaning, so the derivation chain
// works in place.
func (p *Pipeline) derive(tbl table.Table) table.Table {
	start := time.Now()

	rows := transformer.Chain{
		derive.DurationHours{Source: "duration", Target: ColDurationHours},
		derive.CrewCount{Source: "crew", Target: ColCrewSize},
		derive.CumulativeSum{Source: ColDurationHours, Target: ColCumulative},
	}.Apply(tbl.Rows)

	out := tbl.WithColumn(ColDurationHours, rows)
	out = out.WithColumn(ColCrewSize, rows)
	out = out.WithColumn(ColCumulative, rows)

	metrics.RecordStep("derive", nil, time.Since(start))
	return out
}

// export fans the derived table out to all configured sinks concurrently.
// Any sink failure fails the run; the others still finish their writes.
func (p *Pipeline) export(ctx context.Context, tbl table.Table, res *Result) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return p.writeTable(tbl) })
	if p.WriteSummary {
		g.Go(func() error { return p.writeSummary(tbl) })
	}
	if p.WriteChart {
		g.Go(func() error { return p.writeChart(tbl) })
	}
	if p.run.Storage.Enabled {
		g.Go(func() error {
			n, err := p.store(ctx, tbl)
			res.Stored = n
			return err
		})
	}

	return g.Wait()
}

func (p *Pipeline) writeTable(tbl table.Table) error {
	start := time.Now()
	err := writeFile(p.run.Output.Table, func(f *os.File) error {
		return exporter.WriteTable(f, tbl)
	})
	metrics.RecordStep("export", err, time.Since(start))
	if err == nil {
		log.Printf("msg=\"wrote table\" path=%s rows=%d", p.run.Output.Table, tbl.Len())
	}
	return err
}

func (p *Pipeline) writeSummary(tbl table.Table) error {
	start := time.Now()
	sum, err := aggregate.Summarize(tbl, p.run.Summary.Column)
	if err == nil {
		err = writeFile(p.run.Output.Summary, func(f *os.File) error {
			return exporter.WriteSummary(f, sum)
		})
	}
	metrics.RecordStep("summary", err, time.Since(start))
	if err == nil {
		log.Printf("msg=\"wrote summary\" path=%s column=%s buckets=%d",
			p.run.Output.Summary, p.run.Summary.Column, len(sum.Buckets))
	}
	return err
}

func (p *Pipeline) writeChart(tbl table.Table) error {
	start := time.Now()
	points, err := chart.CumulativePoints(tbl, "date", ColCumulative)
	if err == nil {
		err = writeFile(p.run.Output.Chart, func(f *os.File) error {
			return chart.RenderCumulative(f, points)
		})
	}
	metrics.RecordStep("chart", err, time.Since(start))
	if err == nil {
		log.Printf("msg=\"wrote chart\" path=%s points=%d", p.run.Output.Chart, len(points))
	}
	return err
}

// store snapshots the derived table into the configured database backend.
func (p *Pipeline) store(ctx context.Context, tbl table.Table) (int64, error) {
	start := time.Now()

	repo, err := storage.New(ctx, storage.Config{
		Kind:            p.run.Storage.Kind,
		DSN:             p.run.Storage.DB.DSN,
		Table:           p.run.Storage.DB.Table,
		Columns:         tbl.Columns,
		AutoCreateTable: p.run.Storage.DB.AutoCreateTable,
	})
	if err != nil {
		metrics.RecordStep("store", err, time.Since(start))
		return 0, err
	}
	defer repo.Close()

	if p.run.Storage.DB.AutoCreateTable {
		cols := make([]storage.Column, len(tbl.Columns))
		for i, name := range tbl.Columns {
			cols[i] = storage.Column{Name: name, SQLType: sqlTypeFor(name)}
		}
		if err := repo.CreateTable(ctx, cols); err != nil {
			metrics.RecordStep("store", err, time.Since(start))
			return 0, err
		}
	}

	rows := make([][]any, tbl.Len())
	for i, rec := range tbl.Rows {
		row := make([]any, len(tbl.Columns))
		for j, col := range tbl.Columns {
			row[j] = sqlValue(rec, col)
		}
		rows[i] = row
	}

	n, err := repo.CopyFrom(ctx, rows)
	metrics.RecordStep("store", err, time.Since(start))
	if err != nil {
		return n, fmt.Errorf("pipeline: store: %w", err)
	}
	metrics.RecordRows("stored", n)
	log.Printf("msg=\"stored snapshot\" kind=%s table=%s rows=%d",
		p.run.Storage.Kind, p.run.Storage.DB.Table, n)
	return n, nil
}

// sqlTypeFor maps derived-table columns to portable SQL types. Numbers that
// came through coercion or derivation are REAL/INTEGER; everything else,
// dates included, stores as TEXT in its rendered form.
func sqlTypeFor(column string) string {
	switch column {
	case "eva", ColDurationHours, ColCumulative:
		return "REAL"
	case ColCrewSize:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

// sqlValue renders a record value for insertion: numeric types pass through
// natively, nulls stay nil, and everything else (dates included) uses the
// same rendering as the CSV export.
func sqlValue(rec records.Record, column string) any {
	v, ok := rec[column]
	if !ok || v == nil {
		return nil
	}
	switch v.(type) {
	case float64, int, int64:
		return v
	default:
		return records.Stringify(v)
	}
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
