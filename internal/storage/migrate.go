// ABOUTME: Data migration between storage backends.
// ABOUTME: Copies tracking rows and measurements from source to destination.

package storage

import (
	"context"
	"fmt"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Types        int
	Measurements int
}

// MigrateData copies all data from src to dst storage. Tracking rows go first
// so custom types resolve in the destination. The destination should be empty
// before calling this function.
func MigrateData(ctx context.Context, src, dst Repository) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	types, err := src.ListTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list source types: %w", err)
	}
	for _, t := range types {
		t.RowID = 0
		if _, err := dst.SaveType(ctx, t); err != nil {
			return nil, fmt.Errorf("save type %s: %w", t.Name, err)
		}
		summary.Types++
	}

	ms, err := src.ListMeasurements(ctx, "", 0)
	if err != nil {
		return nil, fmt.Errorf("list source measurements: %w", err)
	}
	// Oldest first keeps insertion order chronological.
	for i := len(ms) - 1; i >= 0; i-- {
		m := ms[i]
		if err := dst.CreateMeasurement(ctx, m); err != nil {
			return nil, fmt.Errorf("create measurement %s: %w", m.ID, err)
		}
		summary.Measurements++
	}

	return summary, nil
}

// IsEmpty reports whether repo holds no measurements.
func IsEmpty(ctx context.Context, repo Repository) (bool, error) {
	n, err := repo.CountMeasurements(ctx, "")
	if err != nil {
		return false, err
	}
	return n == 0, nil
}
