// Package db reads the wide-format fact tables from PostgreSQL (pgx) or
// SQLite (modernc). The tables are read-only; schema changes go through the
// embedded migrations.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"

	"whomortality/internal/query"
	"whomortality/migrations"
)

// DB wraps either a pgxpool connection pool or a SQLite handle. Exactly one
// of Pool and SQL is set.
type DB struct {
	Pool    *pgxpool.Pool
	SQL     *sql.DB
	dialect query.Dialect
}

// sqlitePath returns the file path of a sqlite:// or sqlite3:// URL.
func sqlitePath(connString string) (string, bool) {
	for _, prefix := range []string{"sqlite://", "sqlite3://"} {
		if strings.HasPrefix(connString, prefix) {
			return strings.TrimPrefix(connString, prefix), true
		}
	}
	return "", false
}

// New opens a database connection. sqlite:// URLs open a SQLite file,
// postgres:// URLs a pgx pool.
func New(ctx context.Context, connString string) (*DB, error) {
	if path, ok := sqlitePath(connString); ok {
		return openSQLite(ctx, path)
	}
	if !strings.HasPrefix(connString, "postgres://") && !strings.HasPrefix(connString, "postgresql://") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDialect, schemeOf(connString))
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool, dialect: query.Postgres}, nil
}

func schemeOf(connString string) string {
	if i := strings.Index(connString, "://"); i >= 0 {
		return connString[:i]
	}
	return ""
}

func openSQLite(ctx context.Context, path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	return &DB{SQL: sqlDB, dialect: query.SQLite}, nil
}

// Dialect reports the SQL dialect of the connection.
func (d *DB) Dialect() query.Dialect {
	return d.dialect
}

// RunMigrations runs the embedded migrations of the connection's dialect.
func (d *DB) RunMigrations(connString string) error {
	dir := d.dialect.String()
	if path, ok := sqlitePath(connString); ok {
		connString = "sqlite://" + path
	}

	sourceDriver, err := iofs.New(migrations.FS, dir)
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, connString)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Ping verifies the connection is alive.
func (d *DB) Ping(ctx context.Context) error {
	if d.SQL != nil {
		return d.SQL.PingContext(ctx)
	}
	return d.Pool.Ping(ctx)
}

// Close closes the connection pool.
func (d *DB) Close() {
	if d.SQL != nil {
		_ = d.SQL.Close()
		return
	}
	d.Pool.Close()
}

// PoolStats is a dialect-independent snapshot of connection usage.
type PoolStats struct {
	Total  int
	Idle   int
	InUse  int
	Driver string
}

// Stats returns the current connection usage.
func (d *DB) Stats() PoolStats {
	if d.SQL != nil {
		s := d.SQL.Stats()
		return PoolStats{Total: s.OpenConnections, Idle: s.Idle, InUse: s.InUse, Driver: d.dialect.String()}
	}
	s := d.Pool.Stat()
	return PoolStats{
		Total:  int(s.TotalConns()),
		Idle:   int(s.IdleConns()),
		InUse:  int(s.AcquiredConns()),
		Driver: d.dialect.String(),
	}
}

// rows is the subset of pgx.Rows and *sql.Rows the readers use.
type rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

type sqlRows struct {
	*sql.Rows
}

func (r sqlRows) Close() {
	_ = r.Rows.Close()
}

// query runs the statement accumulated in b.
func (d *DB) query(ctx context.Context, b *query.Builder) (rows, error) {
	if d.SQL != nil {
		r, err := d.SQL.QueryContext(ctx, b.SQL(), b.Args()...)
		if err != nil {
			return nil, err
		}
		return sqlRows{r}, nil
	}
	r, err := d.Pool.Query(ctx, b.SQL(), b.Args()...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (d *DB) builder() *query.Builder {
	return query.New(d.dialect)
}
