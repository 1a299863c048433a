// Package csv implements the CSV loader used for the post-download CSV form
// of the EVA dataset. It maps header names to record keys and performs no
// type coercion; short rows load with nil for the missing trailing fields.
package csv

import (
	stdcsv "encoding/csv"
	"fmt"
	"io"
	"strings"

	"spacewalks/internal/parser"
	"spacewalks/pkg/records"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\ufeff"

// Options configures the CSV parser. All fields are optional; sensible
// defaults are applied when a field is zero.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// HeaderMap maps source header names to canonical keys.
	HeaderMap map[string]string
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse reads the header row and all data rows from r. The int result is the
// number of data rows read.
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	cr := stdcsv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = p.opt.TrimSpace

	header, err := cr.Read()
	if err == io.EOF {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("csv parser: read header: %w: %v", parser.ErrParse, err)
	}

	keys := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.TrimSpace(h)
		if mapped, ok := p.opt.HeaderMap[h]; ok && mapped != "" {
			h = mapped
		}
		keys[i] = h
	}

	var out []records.Record
	seen := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, seen, fmt.Errorf("csv parser: row %d: %w: %v", seen+1, parser.ErrParse, err)
		}
		seen++

		rec := make(records.Record, len(keys))
		for i, k := range keys {
			if k == "" {
				continue
			}
			if i >= len(row) {
				rec[k] = nil
				continue
			}
			v := row[i]
			if p.opt.TrimSpace {
				v = strings.TrimSpace(v)
			}
			rec[k] = v
		}
		out = append(out, rec)
	}
	return out, seen, nil
}
