// Package config defines the canonical, JSON-serializable configuration model
// for a spacewalks analysis run. It is intentionally small, explicit, and
// dependency-free so that run files can be loaded from disk and passed through
// the program without additional glue code.
//
// Design goals:
//
//  1. Stability: changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: field names in Go mirror the JSON structure used in run files.
//  3. Minimalism: decoding is performed by the standard library, with a light
//     Options helper for typed access to parser-specific settings.
//
// Example (trimmed):
//
//	{
//	  "source":  { "kind": "file", "file": { "path": "./eva-data.json" } },
//	  "parser":  { "kind": "json" },
//	  "output":  { "table": "./eva-data.csv", "summary": "./eva-summary.csv", "chart": "./cumulative_eva_graph.png" },
//	  "summary": { "column": "country" },
//	  "storage": { "enabled": true, "kind": "sqlite", "db": { "dsn": "./eva.db", "table": "eva" } }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Defaults used when a run file or CLI flag leaves a field empty. These
// mirror the conventional dataset filenames for this analysis.
const (
	DefaultInputPath   = "./eva-data.json"
	DefaultOutputTable = "./eva-data.csv"
	DefaultSummaryPath = "./eva-summary.csv"
	DefaultChartPath   = "./cumulative_eva_graph.png"

	DefaultParserKind    = "json"
	DefaultSummaryColumn = "country"
)

// Run describes a full analysis run in JSON. It is the top-level object
// decoded from a run file.
type Run struct {
	// Source describes where the raw EVA data comes from (local file or HTTP).
	Source Source `json:"source"`

	// Parser configures how raw bytes are turned into records.
	Parser Parser `json:"parser"`

	// Output names the artifacts the run writes.
	Output Output `json:"output"`

	// Summary configures the categorical summary.
	Summary Summary `json:"summary"`

	// Storage optionally persists the analysis-ready table to a database.
	Storage Storage `json:"storage"`

	// Metrics configures the metrics backend.
	Metrics Metrics `json:"metrics"`
}

// Source identifies the data source. Additional kinds can be added over time.
type Source struct {
	// Kind selects the source implementation: "file" or "http".
	Kind string `json:"kind"`

	// File carries options for the "file" source kind.
	File SourceFile `json:"file"`

	// HTTP carries options for the "http" source kind.
	HTTP SourceHTTP `json:"http"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is the local filesystem path to the input file.
	Path string `json:"path"`
}

// SourceHTTP holds configuration for the "http" source kind.
type SourceHTTP struct {
	// URL is the location of the input data.
	URL string `json:"url"`

	// MaxRetries is the number of retry attempts after the initial request.
	MaxRetries int `json:"max_retries"`

	// TimeoutSeconds is the per-request timeout.
	TimeoutSeconds int `json:"timeout_seconds"`

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool `json:"insecure_skip_verify"`
}

// Parser selects how to parse the raw source into records.
type Parser struct {
	// Kind selects the parser implementation: "json" or "csv".
	Kind string `json:"kind"`

	// Options is a free-form map interpreted by the parser implementation.
	// For CSV, typical keys include: comma (string), trim_space (bool),
	// header_map (object).
	Options Options `json:"options"`
}

// Output names the artifacts the run writes. Empty fields fall back to the
// package defaults; Summary and Chart can additionally be switched off at the
// CLI level.
type Output struct {
	// Table is the path of the cleaned, analysis-ready CSV.
	Table string `json:"table"`

	// Summary is the path of the categorical summary CSV.
	Summary string `json:"summary"`

	// Chart is the path of the cumulative EVA time PNG.
	Chart string `json:"chart"`
}

// Summary configures the categorical summary.
type Summary struct {
	// Column is the column to summarize. Defaults to "country".
	Column string `json:"column"`
}

// Storage selects an optional database sink for the analysis-ready table.
type Storage struct {
	// Enabled switches the database sink on. The default is off; the CSV
	// artifacts are always written.
	Enabled bool `json:"enabled"`

	// Kind selects the storage backend ("sqlite", "postgres").
	Kind string `json:"kind"`

	// DB configures the database sink.
	DB DBConfig `json:"db"`
}

// DBConfig configures the database sink.
type DBConfig struct {
	// DSN is the connection string (file path for sqlite, postgresql://...
	// for postgres).
	DSN string `json:"dsn"`

	// Table is the destination table name.
	Table string `json:"table"`

	// AutoCreateTable creates the destination table when it does not exist.
	AutoCreateTable bool `json:"auto_create_table"`
}

// Metrics configures the metrics backend.
type Metrics struct {
	// Backend selects the metrics implementation: "" / "nop" or "pushgateway".
	Backend string `json:"backend"`

	// PushgatewayURL is the base URL of the Pushgateway server, required when
	// Backend is "pushgateway".
	PushgatewayURL string `json:"pushgateway_url"`

	// JobName is the Pushgateway job grouping. Defaults to "spacewalks".
	JobName string `json:"job_name"`
}

// Default returns a Run populated with the conventional defaults: JSON input
// from ./eva-data.json, all three artifacts written next to it, summary by
// country, no database sink, no metrics backend.
func Default() Run {
	var r Run
	r.ApplyDefaults()
	return r
}

// ApplyDefaults fills empty fields in place with the package defaults.
func (r *Run) ApplyDefaults() {
	if r.Source.Kind == "" {
		r.Source.Kind = "file"
	}
	if r.Source.Kind == "file" && r.Source.File.Path == "" {
		r.Source.File.Path = DefaultInputPath
	}
	if r.Parser.Kind == "" {
		r.Parser.Kind = DefaultParserKind
	}
	if r.Parser.Options == nil {
		r.Parser.Options = Options{}
	}
	if r.Output.Table == "" {
		r.Output.Table = DefaultOutputTable
	}
	if r.Output.Summary == "" {
		r.Output.Summary = DefaultSummaryPath
	}
	if r.Output.Chart == "" {
		r.Output.Chart = DefaultChartPath
	}
	if r.Summary.Column == "" {
		r.Summary.Column = DefaultSummaryColumn
	}
	if r.Metrics.JobName == "" {
		r.Metrics.JobName = "spacewalks"
	}
}

// Load reads and decodes a run file, then applies defaults. Unknown fields
// are rejected so typos in run files surface immediately.
func Load(path string) (Run, error) {
	var r Run

	f, err := os.Open(path)
	if err != nil {
		return r, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&r); err != nil {
		return r, fmt.Errorf("config: decode %s: %w", path, err)
	}
	r.ApplyDefaults()
	return r, nil
}

// InputLocation returns the effective input location for the configured
// source kind: the file path for "file", the URL for "http".
func (r Run) InputLocation() string {
	if r.Source.Kind == "http" {
		return r.Source.HTTP.URL
	}
	return r.Source.File.Path
}

// SetInput points the source at the given location, switching the source
// kind to "http" when the location looks like a URL. Used to apply a CLI
// positional argument over a loaded run file.
func (r *Run) SetInput(location string) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		r.Source.Kind = "http"
		r.Source.HTTP.URL = location
		return
	}
	r.Source.Kind = "file"
	r.Source.File.Path = location
}

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without introducing third-party configuration libraries. It performs only
// minimal type coercion and returns provided defaults when a key is absent
// or of an unexpected type.
//
// Options is used for parser-specific configuration where the shape varies
// by implementation.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers are decoded as
// float64 by encoding/json, so this method accepts float64 and casts to int.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. Useful for single-character parser settings such as a
// CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored. Returns an empty
// map when the key is missing or the value is not an object.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null
// "options" object decodes to a non-nil, empty Options map. This removes the
// need to nil-check Options at call sites.
func (o *Options) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	var tmp map[string]any
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
