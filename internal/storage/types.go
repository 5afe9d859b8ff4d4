// ABOUTME: Tracking table operations: list and upsert measure type rows.
// ABOUTME: Rows are merged into the catalog at startup.
package storage

import (
	"context"
	"fmt"

	"github.com/harperreed/measure/internal/models"
	"github.com/harperreed/measure/internal/units"
)

// ListTypes returns every tracking row in insertion order.
func (d *DB) ListTypes(ctx context.Context) ([]models.TypeRow, error) {
	rows, err := d.query(ctx, `
		SELECT id, name, unit, max_value, small_step, big_step, enabled, color
		FROM tracking
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list types: %w", err)
	}
	defer rows.Close()

	var result []models.TypeRow
	for rows.Next() {
		var row models.TypeRow
		var unit string
		var enabled int
		if err := rows.Scan(&row.RowID, &row.Name, &unit, &row.MaxValue, &row.SmallStep, &row.BigStep, &enabled, &row.Color); err != nil {
			return nil, fmt.Errorf("scan type: %w", err)
		}
		u, err := units.Parse(unit)
		if err != nil {
			d.log.Warn("skipping tracking row", "name", row.Name, "error", err)
			continue
		}
		row.Unit = u
		row.Enabled = enabled != 0
		result = append(result, row)
	}
	return result, rows.Err()
}

// SaveType inserts or updates a tracking row by name and returns it with its row id.
func (d *DB) SaveType(ctx context.Context, row models.TypeRow) (models.TypeRow, error) {
	if row.Name == "" {
		return row, fmt.Errorf("save type: empty name")
	}
	if _, err := units.Parse(string(row.Unit)); err != nil {
		return row, fmt.Errorf("save type %s: %w", row.Name, err)
	}
	err := d.queryRow(ctx, `
		INSERT INTO tracking (name, unit, max_value, small_step, big_step, enabled, color)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			unit = excluded.unit,
			max_value = excluded.max_value,
			small_step = excluded.small_step,
			big_step = excluded.big_step,
			enabled = excluded.enabled,
			color = excluded.color
		RETURNING id
	`, row.Name, string(row.Unit), row.MaxValue, row.SmallStep, row.BigStep, boolInt(row.Enabled), row.Color).Scan(&row.RowID)
	if err != nil {
		return row, fmt.Errorf("save type %s: %w", row.Name, err)
	}
	d.log.Debug("saved type", "name", row.Name, "id", row.RowID)
	return row, nil
}
