// ABOUTME: Tests for the Prometheus measurement collector.
// ABOUTME: Scrapes a collector backed by a temporary SQLite store.
package metrics

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/measure/internal/logging"
	"github.com/harperreed/measure/internal/models"
	"github.com/harperreed/measure/internal/storage"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type profile struct {
	goal, height float64
	waist        bool
}

func (p profile) IsMetric() bool { return true }
func (p profile) IsEnabled(name string) bool {
	return name == models.TypeWeight || (p.waist && name == models.TypeWaist)
}
func (p profile) GoalKG() float64   { return p.goal }
func (p profile) HeightCM() float64 { return p.height }

func openStore(t *testing.T) (*storage.DB, *models.Catalog) {
	t.Helper()
	c := models.NewCatalog()
	db, err := storage.Open(filepath.Join(t.TempDir(), "measure.db"), c)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, c
}

func TestCollector(t *testing.T) {
	db, c := openStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local)
	for i, kg := range []float64{110, 100} {
		m := models.NewMeasurement(c.MustByName(models.TypeWeight)).WithTimestamp(base.AddDate(0, 0, i))
		m.SetValue(kg, true)
		require.NoError(t, db.CreateMeasurement(ctx, m))
	}

	col := NewCollector(db, c, profile{goal: 75, height: 200}, logging.Nop())

	want := `
# HELP measure_bmi Body mass index of the latest weight.
# TYPE measure_bmi gauge
measure_bmi 25
# HELP measure_latest_value Most recent measurement in metric units.
# TYPE measure_latest_value gauge
measure_latest_value{type="WEIGHT",unit="kg"} 100
# HELP measure_measurements_total Number of stored measurements.
# TYPE measure_measurements_total gauge
measure_measurements_total{type="WEIGHT"} 2
# HELP measure_storage_up Whether the last scrape could read storage.
# TYPE measure_storage_up gauge
measure_storage_up 1
# HELP measure_to_goal_kilograms Kilograms left to the goal weight.
# TYPE measure_to_goal_kilograms gauge
measure_to_goal_kilograms 25
`
	require.NoError(t, testutil.CollectAndCompare(col, strings.NewReader(want)))
}

func TestCollectorEmptyStore(t *testing.T) {
	db, c := openStore(t)
	col := NewCollector(db, c, profile{waist: true}, logging.Nop())

	// Two counts (WEIGHT, WAIST) plus storage_up.
	require.Equal(t, 3, testutil.CollectAndCount(col))
	require.Equal(t, 1, testutil.CollectAndCount(col, "measure_storage_up"))
}

func TestRegistry(t *testing.T) {
	db, c := openStore(t)
	reg := Registry(NewCollector(db, c, profile{}, logging.Nop()))
	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}
