// Package postgres implements a Postgres storage.Repository using pgx v5.
// Bulk inserts use the COPY protocol via pgx.CopyFrom.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"spacewalks/internal/storage"
)

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg)
	})
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  storage.Config
}

// NewRepository connects a pgx pool using the configured DSN.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: pgxpool: %w", err)
	}
	return &Repository{pool: pool, cfg: cfg}, nil
}

// pgIdent quotes an identifier for safe interpolation into DDL/COPY SQL.
func pgIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// sqlType maps the portable column types onto Postgres ones.
func sqlType(portable string) string {
	switch strings.ToUpper(portable) {
	case "REAL":
		return "double precision"
	case "INTEGER":
		return "bigint"
	default:
		return "text"
	}
}

// CreateTable creates the destination table if it does not exist.
func (r *Repository) CreateTable(ctx context.Context, cols []storage.Column) error {
	if len(cols) == 0 {
		return fmt.Errorf("postgres: CreateTable: no columns")
	}
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = fmt.Sprintf("%s %s", pgIdent(c.Name), sqlType(c.SQLType))
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", pgIdent(r.cfg.Table), strings.Join(defs, ", "))
	if _, err := r.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("postgres: create table: %w", err)
	}
	return nil
}

// CopyFrom streams the rows into the destination table with the COPY
// protocol.
func (r *Repository) CopyFrom(ctx context.Context, rows [][]any) (int64, error) {
	if len(r.cfg.Columns) == 0 {
		return 0, fmt.Errorf("postgres: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{r.cfg.Table},
		r.cfg.Columns,
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return n, fmt.Errorf("postgres: copy: %w", err)
	}
	return n, nil
}

// Close releases the pool.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}
