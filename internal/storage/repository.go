// Package storage contains storage-agnostic contracts for the optional
// derived-table snapshot sink. Concrete backends register themselves by kind
// (blank-import spacewalks/internal/storage/all to get all of them) and the
// factory hands back a Repository without the caller ever importing a
// database driver.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Config selects and configures a backend.
type Config struct {
	Kind            string   // "sqlite" | "postgres"
	DSN             string   // driver connection string
	Table           string   // destination table name
	Columns         []string // ordered destination columns
	AutoCreateTable bool     // create the table before inserting
}

// Column describes one destination column for table creation.
type Column struct {
	Name    string
	SQLType string // portable: TEXT, REAL, INTEGER
}

// Repository is the minimal write surface a backend must provide.
type Repository interface {
	// CreateTable creates the destination table if it does not exist.
	CreateTable(ctx context.Context, cols []Column) error
	// CopyFrom bulk-inserts rows aligned to the configured column order and
	// returns the number of rows inserted.
	CopyFrom(ctx context.Context, rows [][]any) (int64, error)
	Close() error
}

// Factory constructs a Repository from a Config.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for a storage kind. Backends
// call this from init.
func Register(kind string, fn Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = fn
}

// New opens a Repository of the configured kind. Unknown kinds report the
// registered alternatives to make wiring mistakes obvious.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	fn, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown kind %q (registered: %v)", cfg.Kind, Kinds())
	}
	return fn(ctx, cfg)
}

// Kinds returns the registered backend kinds, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
