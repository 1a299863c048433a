// Package table provides the ordered-column, in-memory table passed between
// pipeline stages. Column order is significant: exports and storage inserts
// emit columns in table order, so the loader fixes canonical columns first
// and appends any extra observed columns in first-seen order.
package table

import (
	"spacewalks/pkg/records"
)

// Table is a batch of records with an explicit column order. Stages never
// mutate a received Table; they build and return a new one.
type Table struct {
	Columns []string
	Rows    []records.Record
}

// New builds a Table over rows, ordering columns canonical-first and then by
// first appearance across rows.
func New(canonical []string, rows []records.Record) Table {
	seen := make(map[string]struct{}, len(canonical))
	cols := make([]string, 0, len(canonical))
	for _, c := range canonical {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		cols = append(cols, c)
	}
	for _, r := range rows {
		for k := range r {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				cols = append(cols, k)
			}
		}
	}
	return Table{Columns: cols, Rows: rows}
}

// HasColumn reports whether name is one of the table's columns.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// WithRows returns a new Table sharing this table's column order but holding
// the provided rows.
func (t Table) WithRows(rows []records.Record) Table {
	cols := make([]string, len(t.Columns))
	copy(cols, t.Columns)
	return Table{Columns: cols, Rows: rows}
}

// WithColumn returns a new Table whose column list includes name (appended
// when absent) and whose rows are the provided ones.
func (t Table) WithColumn(name string, rows []records.Record) Table {
	out := t.WithRows(rows)
	if !out.HasColumn(name) {
		out.Columns = append(out.Columns, name)
	}
	return out
}

// CloneRows returns deep-enough copies of all rows (maps are copied, values
// are shared). Transformers that set or replace values work on these copies.
func (t Table) CloneRows() []records.Record {
	out := make([]records.Record, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Clone()
	}
	return out
}
