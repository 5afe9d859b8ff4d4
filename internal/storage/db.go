// ABOUTME: SQL database connection and lifecycle for SQLite and Postgres.
// ABOUTME: SQLite uses modernc.org/sqlite (pure Go); Postgres uses the pgx stdlib driver.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/measure/internal/models"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sethvargo/go-retry"
	_ "modernc.org/sqlite"
)

// Postgres may still be starting when the CLI or server comes up.
const (
	pingRetries = 4
	pingBackoff = 250 * time.Millisecond
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

func (d dialect) String() string {
	if d == dialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// DB is the SQL-backed Repository.
type DB struct {
	db      *sql.DB
	dialect dialect
	dbPath  string
	catalog *models.Catalog
	log     *slog.Logger
}

var _ Repository = (*DB)(nil)

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *DB) { d.log = l }
}

func newDB(db *sql.DB, dl dialect, catalog *models.Catalog, opts []Option) *DB {
	d := &DB{
		db:      db,
		dialect: dl,
		catalog: catalog,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open opens or creates a SQLite database at the given path. Measurements are
// resolved against catalog.
func Open(dbPath string, catalog *models.Catalog, opts ...Option) (*DB, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	d := newDB(db, dialectSQLite, catalog, opts)
	d.dbPath = dbPath

	if err := d.configurePragmas(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure pragmas: %w", err)
	}

	// Set file permissions once the file exists
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		_ = db.Close()
		return nil, fmt.Errorf("set database permissions: %w", err)
	}

	if err := migrateUp(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	if err := d.seedTypes(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	d.log.Debug("opened database", "backend", d.dialect, "path", dbPath)
	return d, nil
}

// OpenPostgres connects to Postgres and applies the schema.
func OpenPostgres(ctx context.Context, dsn string, catalog *models.Catalog, opts ...Option) (*DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("open postgres: empty DSN")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	backoff := retry.WithMaxRetries(pingRetries, retry.NewExponential(pingBackoff))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		return retry.RetryableError(db.PingContext(ctx))
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	d := newDB(db, dialectPostgres, catalog, opts)
	if err := d.applyPostgresSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := d.seedTypes(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	d.log.Debug("opened database", "backend", d.dialect)
	return d, nil
}

// DataDir returns the default data directory under XDG_DATA_HOME.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "measure")
}

// DefaultDBPath returns the default database path under XDG_DATA_HOME.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "measure.db")
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Backend names the SQL dialect in use.
func (d *DB) Backend() string {
	return d.dialect.String()
}

// configurePragmas sets up SQLite for optimal performance.
func (d *DB) configurePragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := d.db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for Postgres.
func (d *DB) rebind(query string) string {
	if d.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.db.ExecContext(ctx, d.rebind(query), args...)
}

func (d *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, d.rebind(query), args...)
}

func (d *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return d.db.QueryRowContext(ctx, d.rebind(query), args...)
}
