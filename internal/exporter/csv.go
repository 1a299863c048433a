// Package exporter renders tables and summaries as CSV.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"spacewalks/internal/aggregate"
	"spacewalks/internal/table"
	"spacewalks/pkg/records"
)

// WriteTable writes the table as CSV: one header row in table column order,
// one data row per record, no index column. Dates render ISO-8601
// (2006-01-02), floats in their shortest exact form, and nulls as empty
// fields.
func WriteTable(w io.Writer, tbl table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tbl.Columns); err != nil {
		return fmt.Errorf("exporter: write header: %w", err)
	}

	row := make([]string, len(tbl.Columns))
	for i, rec := range tbl.Rows {
		for j, col := range tbl.Columns {
			row[j] = rec.String(col)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("exporter: write row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("exporter: flush: %w", err)
	}
	return nil
}

// WriteSummary writes a categorical summary as CSV with the header
// <column>,count,percentage. The missing-value bucket renders with an empty
// value field.
func WriteSummary(w io.Writer, sum aggregate.Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{sum.Column, "count", "percentage"}); err != nil {
		return fmt.Errorf("exporter: write summary header: %w", err)
	}

	for _, b := range sum.Buckets {
		value := b.Value
		if b.Missing {
			value = ""
		}
		row := []string{
			value,
			strconv.Itoa(b.Count),
			records.Stringify(b.Percentage),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("exporter: write summary row %q: %w", value, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("exporter: flush summary: %w", err)
	}
	return nil
}
