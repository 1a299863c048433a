// Package json implements the JSON loader that turns EVA record exports into
// records.Record maps.
//
// It is deliberately simple and conservative:
//
//   - The primary shape is a single top-level array of flat objects, which is
//     what data.nasa.gov's eva.json export looks like.
//   - Newline-delimited JSON objects (NDJSON) are also accepted, since
//     post-download edits sometimes leave the file in that form.
//   - Nested objects or arrays inside a record are rejected: the schema is
//     flat key/value by definition.
//
// All scalar values are normalized to strings (or nil), matching the
// load-time typing rule that downstream coercion relies on.
package json

import (
	"encoding/json"
	"fmt"
	"io"

	"spacewalks/internal/parser"
	"spacewalks/pkg/records"
)

// Parser parses a JSON document into records. The zero value is ready to use.
type Parser struct{}

// NewParser constructs a JSON Parser.
func NewParser() *Parser { return &Parser{} }

// Parse reads all records from r. A top-level array is expanded; a stream of
// top-level objects is consumed one by one. Any other shape, or any record
// field holding a nested structure, fails with parser.ErrParse.
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	dec := json.NewDecoder(r)
	// UseNumber keeps numeric fields in their exact textual form.
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		if err == io.EOF {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("json parser: decode root: %w: %v", parser.ErrParse, err)
	}

	var out []records.Record
	seen := 0

	switch v := root.(type) {
	case []any:
		for i, elem := range v {
			seen++
			obj, ok := elem.(map[string]any)
			if !ok {
				return nil, seen, fmt.Errorf("json parser: element %d in array is not an object: %w", i, parser.ErrParse)
			}
			rec, err := toRecord(obj)
			if err != nil {
				return nil, seen, fmt.Errorf("json parser: element %d: %w", i, err)
			}
			out = append(out, rec)
		}

	case map[string]any:
		seen++
		rec, err := toRecord(v)
		if err != nil {
			return nil, seen, fmt.Errorf("json parser: object 0: %w", err)
		}
		out = append(out, rec)

		// NDJSON: keep decoding trailing objects until the stream ends.
		for {
			var next any
			if err := dec.Decode(&next); err != nil {
				if err == io.EOF {
					break
				}
				return nil, seen, fmt.Errorf("json parser: decode: %w: %v", parser.ErrParse, err)
			}
			seen++
			obj, ok := next.(map[string]any)
			if !ok {
				return nil, seen, fmt.Errorf("json parser: item %d is not an object: %w", seen-1, parser.ErrParse)
			}
			rec, err := toRecord(obj)
			if err != nil {
				return nil, seen, fmt.Errorf("json parser: object %d: %w", seen-1, err)
			}
			out = append(out, rec)
		}

	default:
		return nil, 0, fmt.Errorf("json parser: unsupported top-level JSON type %T: %w", v, parser.ErrParse)
	}

	return out, seen, nil
}

// toRecord flattens a decoded object into a Record with string (or nil)
// values. Nested structures violate the flat-record input contract.
func toRecord(obj map[string]any) (records.Record, error) {
	rec := make(records.Record, len(obj))
	for k, v := range obj {
		switch t := v.(type) {
		case nil:
			rec[k] = nil
		case string:
			rec[k] = t
		case json.Number:
			rec[k] = t.String()
		case bool:
			if t {
				rec[k] = "true"
			} else {
				rec[k] = "false"
			}
		case map[string]any, []any:
			return nil, fmt.Errorf("field %q holds a nested %T: %w", k, t, parser.ErrParse)
		default:
			return nil, fmt.Errorf("field %q holds unsupported type %T: %w", k, t, parser.ErrParse)
		}
	}
	return rec, nil
}
