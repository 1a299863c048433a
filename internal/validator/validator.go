// Package validator checks a loaded table against a schema.Contract.
//
// Unlike the row-dropping transformers later in the pipeline, validation is a
// pure read: it never mutates or filters the table. Evaluation is exhaustive,
// so a failing run reports every offending row and column, not just the
// first. The caller decides whether a failed report aborts the run or merely
// skips downstream processing.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"spacewalks/internal/schema"
	"spacewalks/internal/table"
)

// Violation describes a single schema failure. Row is -1 for table-level
// violations such as a missing column.
type Violation struct {
	Row    int
	Column string
	Value  string
	Reason string
}

// String renders the violation the way run logs print it.
func (v Violation) String() string {
	if v.Row < 0 {
		return fmt.Sprintf("column %q: %s", v.Column, v.Reason)
	}
	return fmt.Sprintf("row %d, column %q: %s (value %q)", v.Row, v.Column, v.Reason, v.Value)
}

// Report is the outcome of validating one table.
type Report struct {
	Violations []Violation
}

// OK reports whether the table satisfied the contract.
func (r Report) OK() bool { return len(r.Violations) == 0 }

// fieldMeta carries the precompiled per-field constraint state.
type fieldMeta struct {
	field   schema.Field
	pattern *regexp.Regexp
}

// Validator validates tables against a single contract. Construct with New
// so patterns compile once.
type Validator struct {
	contract schema.Contract
	meta     []fieldMeta
}

// New builds a Validator for the contract. Invalid constraint patterns are a
// programming error in the contract and fail construction.
func New(c schema.Contract) (*Validator, error) {
	v := &Validator{contract: c}
	for _, f := range c.Fields {
		m := fieldMeta{field: f}
		if f.Pattern != "" {
			re, err := regexp.Compile(f.Pattern)
			if err != nil {
				return nil, fmt.Errorf("validator: field %q: compile pattern: %w", f.Name, err)
			}
			m.pattern = re
		}
		v.meta = append(v.meta, m)
	}
	return v, nil
}

// Check validates the table and returns the full report. Column presence is
// checked first; value constraints apply per row only to columns that exist.
// Null and empty values always pass value-level constraints: nullability is
// universal at load time, and incompleteness is the cleaner's concern.
func (v *Validator) Check(tbl table.Table) Report {
	var rep Report

	for _, m := range v.meta {
		f := m.field
		if f.Required && !tbl.HasColumn(f.Name) {
			rep.Violations = append(rep.Violations, Violation{
				Row:    -1,
				Column: f.Name,
				Reason: "required column missing",
			})
			continue
		}

		if m.pattern == nil && f.ListSep == "" {
			continue
		}
		for i, rec := range tbl.Rows {
			val, ok := rec[f.Name]
			if !ok || val == nil {
				continue
			}
			s, isStr := val.(string)
			if !isStr || s == "" {
				continue
			}

			if f.ListSep != "" && !strings.Contains(s, f.ListSep) {
				rep.Violations = append(rep.Violations, Violation{
					Row:    i,
					Column: f.Name,
					Value:  s,
					Reason: fmt.Sprintf("value must be empty or contain %q", f.ListSep),
				})
			}
			if m.pattern != nil && !m.pattern.MatchString(s) {
				rep.Violations = append(rep.Violations, Violation{
					Row:    i,
					Column: f.Name,
					Value:  s,
					Reason: fmt.Sprintf("value must be empty or match %s", f.Pattern),
				})
			}
		}
	}

	return rep
}
