// ABOUTME: Measurement CRUD operations for SQL storage.
// ABOUTME: Timestamps are stored as epoch milliseconds and types by registry name.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/measure/internal/models"
)

const measurementColumns = `id, type, value, recorded_at, comment`

// valueTolerance absorbs float noise from imperial round-trips in Exists.
const valueTolerance = 0.0005

// CreateMeasurement stores a new measurement, assigning an ID if it has none.
func (d *DB) CreateMeasurement(ctx context.Context, m *models.Measurement) error {
	if m.Type == nil {
		return fmt.Errorf("create measurement: %w", models.ErrNoType)
	}
	if !m.HasID() {
		m.ID = uuid.New()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	row := m.Row()
	_, err := d.exec(ctx, `
		INSERT INTO measurements (id, type, value, recorded_at, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, row.ID.String(), row.TypeName, row.Value, row.TimestampMillis, nullString(row.Comment), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("create measurement: %w", err)
	}
	d.log.Debug("created measurement", "id", row.ID, "type", row.TypeName, "value", row.Value)
	return nil
}

// UpdateMeasurement rewrites value, timestamp and comment of a stored measurement.
func (d *DB) UpdateMeasurement(ctx context.Context, m *models.Measurement) error {
	if !m.HasID() {
		return fmt.Errorf("update measurement: %w", ErrNotFound)
	}
	row := m.Row()
	result, err := d.exec(ctx, `
		UPDATE measurements SET value = ?, recorded_at = ?, comment = ?
		WHERE id = ?
	`, row.Value, row.TimestampMillis, nullString(row.Comment), row.ID.String())
	if err != nil {
		return fmt.Errorf("update measurement: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update measurement: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update measurement %s: %w", row.ID, ErrNotFound)
	}
	return nil
}

// GetMeasurement retrieves a measurement by ID or ID prefix.
func (d *DB) GetMeasurement(ctx context.Context, idOrPrefix string) (*models.Measurement, error) {
	id, err := d.resolveID(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}
	return d.scanOne(d.queryRow(ctx, `SELECT `+measurementColumns+` FROM measurements WHERE id = ?`, id))
}

// DeleteMeasurement removes a measurement by ID or prefix.
func (d *DB) DeleteMeasurement(ctx context.Context, idOrPrefix string) error {
	id, err := d.resolveID(ctx, idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete measurement: %w", err)
	}

	result, err := d.exec(ctx, "DELETE FROM measurements WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete measurement: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete measurement: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete measurement %s: %w", idOrPrefix, ErrNotFound)
	}
	return nil
}

// ListMeasurements lists newest first, optionally filtered by type.
func (d *DB) ListMeasurements(ctx context.Context, typeName string, limit int) ([]*models.Measurement, error) {
	query := `SELECT ` + measurementColumns + ` FROM measurements`
	var args []any
	if typeName != "" {
		query += ` WHERE type = ?`
		args = append(args, typeName)
	}
	query += ` ORDER BY recorded_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}
	defer rows.Close()
	return d.scanMany(rows)
}

// ListSince lists a type's entries at or after since, oldest first.
func (d *DB) ListSince(ctx context.Context, typeName string, since time.Time) ([]*models.Measurement, error) {
	rows, err := d.query(ctx, `
		SELECT `+measurementColumns+` FROM measurements
		WHERE type = ? AND recorded_at >= ?
		ORDER BY recorded_at ASC
	`, typeName, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list %s since: %w", typeName, err)
	}
	defer rows.Close()
	return d.scanMany(rows)
}

// FirstMeasurement returns the oldest entry of a type.
func (d *DB) FirstMeasurement(ctx context.Context, typeName string) (*models.Measurement, error) {
	return d.edge(ctx, typeName, "ASC")
}

// LatestMeasurement returns the newest entry of a type.
func (d *DB) LatestMeasurement(ctx context.Context, typeName string) (*models.Measurement, error) {
	return d.edge(ctx, typeName, "DESC")
}

func (d *DB) edge(ctx context.Context, typeName, order string) (*models.Measurement, error) {
	m, err := d.scanOne(d.queryRow(ctx, `
		SELECT `+measurementColumns+` FROM measurements
		WHERE type = ?
		ORDER BY recorded_at `+order+`
		LIMIT 1
	`, typeName))
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", typeName, models.ErrNoData)
	}
	return m, err
}

// CountMeasurements counts entries of a type, or all entries for "".
func (d *DB) CountMeasurements(ctx context.Context, typeName string) (int, error) {
	query := `SELECT COUNT(*) FROM measurements`
	var args []any
	if typeName != "" {
		query += ` WHERE type = ?`
		args = append(args, typeName)
	}
	var n int
	if err := d.queryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count measurements: %w", err)
	}
	return n, nil
}

// Exists matches on type, the timestamp's second and the value.
func (d *DB) Exists(ctx context.Context, m *models.Measurement) (bool, error) {
	sec := m.Timestamp.Unix() * 1000
	var n int
	err := d.queryRow(ctx, `
		SELECT COUNT(*) FROM measurements
		WHERE type = ? AND recorded_at >= ? AND recorded_at < ?
		AND value > ? AND value < ?
	`, m.TypeName(), sec, sec+1000, m.Value(true)-valueTolerance, m.Value(true)+valueTolerance).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check measurement exists: %w", err)
	}
	return n > 0, nil
}

// resolveID finds the full ID from a prefix.
func (d *DB) resolveID(ctx context.Context, idOrPrefix string) (string, error) {
	idOrPrefix = strings.ToLower(strings.TrimSpace(idOrPrefix))
	if idOrPrefix == "" {
		return "", fmt.Errorf("empty id: %w", ErrNotFound)
	}
	// If it looks like a full UUID, use it directly
	if _, err := uuid.Parse(idOrPrefix); err == nil && len(idOrPrefix) == 36 {
		return idOrPrefix, nil
	}
	// Only hex digits and dashes can appear in an ID; anything else would
	// also act as a LIKE wildcard.
	if strings.Trim(idOrPrefix, "0123456789abcdef-") != "" {
		return "", fmt.Errorf("%s: %w", idOrPrefix, ErrNotFound)
	}

	rows, err := d.query(ctx, `SELECT id FROM measurements WHERE id LIKE ?`, idOrPrefix+"%")
	if err != nil {
		return "", fmt.Errorf("resolve measurement ID: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan measurement ID: %w", err)
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve measurement ID: %w", err)
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s: %w", idOrPrefix, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s matches %d records: %w", idOrPrefix, len(matches), ErrAmbiguous)
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (models.Row, error) {
	var row models.Row
	var idStr string
	var comment sql.NullString
	if err := s.Scan(&idStr, &row.TypeName, &row.Value, &row.TimestampMillis, &comment); err != nil {
		return row, err
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return row, fmt.Errorf("parse id %q: %w", idStr, err)
	}
	row.ID = id
	row.Comment = comment.String
	return row, nil
}

// scanOne scans a single row into a Measurement.
func (d *DB) scanOne(r *sql.Row) (*models.Measurement, error) {
	row, err := scanRow(r)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan measurement: %w", err)
	}
	return d.catalog.FromRow(row)
}

// scanMany scans rows, skipping entries whose type is no longer registered.
func (d *DB) scanMany(rows *sql.Rows) ([]*models.Measurement, error) {
	var result []*models.Measurement
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan measurement: %w", err)
		}
		m, err := d.catalog.FromRow(row)
		if err != nil {
			d.log.Warn("skipping measurement", "id", row.ID, "type", row.TypeName, "error", err)
			continue
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
