// Package parser defines the contract between data sources and the rest of
// the pipeline: a Parser turns raw bytes into loosely-typed records.
package parser

import (
	"errors"
	"io"

	"spacewalks/pkg/records"
)

// ErrParse marks input that is not well-formed structured data. Parse
// failures are fatal for the run; callers test with errors.Is.
var ErrParse = errors.New("malformed input")

// Parser converts raw input into records. The int result is the number of
// top-level items read, including any that were skipped.
type Parser interface {
	Parse(r io.Reader) ([]records.Record, int, error)
}
