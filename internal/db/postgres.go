package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/neboloop/callbridge/internal/db/migrations"
	"github.com/neboloop/callbridge/internal/logging"
)

// NewPostgres connects to a Postgres server, runs migrations, and returns a Store
func NewPostgres(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrations.Run(ctx, db, string(DialectPostgres)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logging.Infof("Postgres database initialized")
	return NewStore(db, DialectPostgres), nil
}

// Open selects the backend named by driver.
func Open(ctx context.Context, driver, path, dsn string) (*Store, error) {
	switch Dialect(driver) {
	case DialectSQLite:
		return NewSQLite(ctx, path)
	case DialectPostgres:
		return NewPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}
