package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"github.com/neboloop/callbridge/internal/logging"
)

//go:embed sql
var embedded embed.FS

// QuietMode suppresses per-migration log lines (used by CLI subcommands).
var QuietMode bool

// NewProvider returns a goose provider over the embedded SQL for the given
// dialect ("sqlite" or "postgres").
func NewProvider(db *sql.DB, dialect string) (*goose.Provider, error) {
	var (
		d   goose.Dialect
		dir string
	)
	switch dialect {
	case "sqlite":
		d, dir = goose.DialectSQLite3, "sql/sqlite"
	case "postgres":
		d, dir = goose.DialectPostgres, "sql/postgres"
	default:
		return nil, fmt.Errorf("no migrations for dialect %q", dialect)
	}

	fsys, err := fs.Sub(embedded, dir)
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(d, db, fsys)
}

// Run applies every pending migration.
func Run(ctx context.Context, db *sql.DB, dialect string) error {
	p, err := NewProvider(db, dialect)
	if err != nil {
		return err
	}
	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	if !QuietMode {
		for _, r := range results {
			logging.Infof("applied migration %s (%s)", r.Source.Path, r.Duration)
		}
	}
	return nil
}

// Status reports the state of every known migration.
func Status(ctx context.Context, db *sql.DB, dialect string) ([]*goose.MigrationStatus, error) {
	p, err := NewProvider(db, dialect)
	if err != nil {
		return nil, err
	}
	return p.Status(ctx)
}
