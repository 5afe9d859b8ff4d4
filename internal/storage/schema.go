// ABOUTME: Schema management: golang-migrate for SQLite, inline DDL for Postgres.
// ABOUTME: Also seeds the tracking table with the built-in measure types.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migrateUp runs all pending SQLite migrations.
func migrateUp(db *sql.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	// m is not closed: that would close db, which the caller owns.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// SchemaVersion reports the applied SQLite migration version.
func (d *DB) SchemaVersion() (uint, bool, error) {
	if d.dialect != dialectSQLite {
		return 0, false, fmt.Errorf("schema versions are tracked for sqlite only")
	}
	m, err := newMigrate(d.db)
	if err != nil {
		return 0, false, fmt.Errorf("create migrate instance: %w", err)
	}
	return m.Version()
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	sourceDriver, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("create source driver: %w", err)
	}

	dbDriver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		_ = sourceDriver.Close()
		return nil, fmt.Errorf("create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		_ = sourceDriver.Close()
		return nil, fmt.Errorf("create migrate: %w", err)
	}
	return m, nil
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS measurements (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		value DOUBLE PRECISION NOT NULL,
		recorded_at BIGINT NOT NULL,
		comment TEXT,
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_measurements_type_recorded ON measurements(type, recorded_at)`,
	`CREATE INDEX IF NOT EXISTS idx_measurements_recorded ON measurements(recorded_at DESC)`,
	`CREATE TABLE IF NOT EXISTS tracking (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		unit TEXT NOT NULL,
		max_value DOUBLE PRECISION NOT NULL,
		small_step DOUBLE PRECISION NOT NULL,
		big_step DOUBLE PRECISION NOT NULL,
		enabled INTEGER NOT NULL DEFAULT 0,
		color TEXT NOT NULL DEFAULT ''
	)`,
}

func (d *DB) applyPostgresSchema(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute ddl: %w", err)
		}
	}
	return nil
}

// seedTypes inserts tracking rows for built-ins that have none yet.
func (d *DB) seedTypes(ctx context.Context) error {
	for _, t := range d.catalog.Builtins() {
		row := t.Row()
		_, err := d.exec(ctx, `
			INSERT INTO tracking (name, unit, max_value, small_step, big_step, enabled, color)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (name) DO NOTHING
		`, row.Name, string(row.Unit), row.MaxValue, row.SmallStep, row.BigStep, boolInt(row.Enabled), row.Color)
		if err != nil {
			return fmt.Errorf("seed type %s: %w", row.Name, err)
		}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
