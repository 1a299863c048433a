// Package datasource defines where raw EVA data comes from.
//
// A Source yields a stream of bytes; the parser layer decides what those
// bytes mean. Concrete sources live in subpackages (local files, HTTP).
package datasource

import (
	"context"
	"io"
)

// Source opens a raw byte stream of input data. The caller owns the
// returned ReadCloser and must close it.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
