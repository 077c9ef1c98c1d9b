package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Dialect identifies the SQL backend behind a Store.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// TimeLayout is the fixed-width UTC text form of every stored timestamp.
// Lexical order matches chronological order and the first ten characters are the date.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// Store wraps the database connection and the sqlc queries built on it.
type Store struct {
	*Queries
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
	newID   func() string
}

// NewStore wraps an open, migrated connection.
func NewStore(db *sql.DB, dialect Dialect) *Store {
	s := &Store{
		db:      db,
		dialect: dialect,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	s.Queries = New(s.bind(db))
	return s
}

// DB returns the underlying connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the backend dialect.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx returns queries that run inside tx.
func (s *Store) withTx(tx *sql.Tx) *Queries {
	return New(s.bind(tx))
}

// bind adapts conn to the dialect's placeholder style. The generated queries
// use ? placeholders.
func (s *Store) bind(conn DBTX) DBTX {
	if s.dialect != DialectPostgres {
		return conn
	}
	return &rebinder{conn: conn, bindType: sqlx.BindType("pgx")}
}

func (s *Store) timestamp() (time.Time, string) {
	t := s.now().UTC()
	return t, t.Format(TimeLayout)
}

// rebinder rewrites placeholders before each statement reaches the driver.
type rebinder struct {
	conn     DBTX
	bindType int
}

func (r *rebinder) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return r.conn.ExecContext(ctx, sqlx.Rebind(r.bindType, query), args...)
}

func (r *rebinder) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return r.conn.PrepareContext(ctx, sqlx.Rebind(r.bindType, query))
}

func (r *rebinder) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return r.conn.QueryContext(ctx, sqlx.Rebind(r.bindType, query), args...)
}

func (r *rebinder) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return r.conn.QueryRowContext(ctx, sqlx.Rebind(r.bindType, query), args...)
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
