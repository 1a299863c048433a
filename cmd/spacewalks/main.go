package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"spacewalks/internal/config"
	"spacewalks/internal/metrics"
	"spacewalks/internal/metrics/prompush"
	"spacewalks/internal/pipeline"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "spacewalks/internal/storage/all"
)

// main is the entry point for the spacewalks binary. It loads the run
// config, applies CLI overrides, optionally initializes a metrics backend,
// and executes the analysis run.
//
// Usage:
//
//	spacewalks [flags] [input] [output]
//
// input may be a local path or an http(s) URL; output is the cleaned table
// CSV path. Both fall back to the configured (or default) locations.
func main() {
	var (
		cfgPath           string
		summaryColumn     string
		metricsBackendFlg string
		pushGatewayURLFlg string
		strict            bool
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "", "run config JSON path (optional)")
	flag.StringVar(&summaryColumn, "summary-column", "", "column to summarize (default country)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&strict, "strict", false, "treat schema violations as fatal")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	summary := flag.Bool("summary", true, "write the categorical summary CSV")
	chart := flag.Bool("chart", true, "write the cumulative EVA chart PNG")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	run := config.Default()
	if cfgPath != "" {
		var err error
		run, err = config.Load(cfgPath)
		if err != nil {
			fatalf("load config: %v", err)
		}
	}

	// Positional arguments override the run file: input then output.
	args := flag.Args()
	if len(args) > 2 {
		fatalf("too many arguments: want [input] [output], got %v", args)
	}
	if len(args) == 0 {
		log.Printf("using default input and output filenames: input=%s output=%s",
			run.InputLocation(), run.Output.Table)
	}
	if len(args) >= 1 {
		run.SetInput(args[0])
	}
	if len(args) == 2 {
		run.Output.Table = args[1]
	}
	if summaryColumn != "" {
		run.Summary.Column = summaryColumn
	}
	if metricsBackendFlg != "" {
		run.Metrics.Backend = metricsBackendFlg
	}
	if pushGatewayURLFlg != "" {
		run.Metrics.PushgatewayURL = pushGatewayURLFlg
	}

	issues := config.ValidateRun(run)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("configuration is invalid")
		os.Exit(1)
	}
	if validate {
		log.Printf("configuration is valid")
		os.Exit(0)
	}

	initMetrics(run.Metrics, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	p := pipeline.New(run)
	p.Strict = strict
	p.WriteSummary = *summary
	p.WriteChart = *chart

	ctx := context.Background()
	start := time.Now()

	if *verbose {
		log.Printf("run: source=%s parser=%s table=%s summary_column=%s",
			run.Source.Kind, run.Parser.Kind, run.Output.Table, run.Summary.Column)
	}

	res, err := p.Run(ctx)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if !res.SchemaOK {
		// Advisory policy: report, write nothing, exit clean.
		log.Printf("schema check failed: violations=%d (use -strict to make this fatal)", res.Violations)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// initMetrics decides the metrics backend: flag/config → env → disabled.
func initMetrics(m config.Metrics, verbose bool) {
	backendName := m.Backend
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}

	switch backendName {
	case "pushgateway":
		gwURL := m.PushgatewayURL
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		b, err := prompush.NewBackend(m.JobName, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, m.JobName)
		metrics.SetBackend(b)

	case "", "none", "nop":
		// metrics disabled; nop backend remains
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
