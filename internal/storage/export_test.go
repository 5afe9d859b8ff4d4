// ABOUTME: Tests for export and import functionality.
// ABOUTME: Verifies JSON, YAML, and Markdown export formats and JSON restore.
package storage

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/measure/internal/models"
	"github.com/harperreed/measure/internal/units"
	"gopkg.in/yaml.v3"
)

func seedExportData(t *testing.T, db *DB, c *models.Catalog) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 4, 1, 7, 0, 0, 0, time.Local)

	if err := db.CreateMeasurement(ctx, weight(c, 82.5, base).WithComment("test note")); err != nil {
		t.Fatalf("CreateMeasurement failed: %v", err)
	}
	waist := models.NewMeasurement(c.MustByName(models.TypeWaist)).WithTimestamp(base.Add(time.Hour))
	waist.SetValue(91, true)
	if err := db.CreateMeasurement(ctx, waist); err != nil {
		t.Fatalf("CreateMeasurement failed: %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	db, c := setupTestDB(t)
	seedExportData(t, db, c)

	data, err := ExportJSON(context.Background(), db)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	var export ExportData
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	if export.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", export.Version)
	}
	if export.Tool != "measure" {
		t.Errorf("Expected tool measure, got %s", export.Tool)
	}
	if len(export.Types) != 4 {
		t.Errorf("Expected 4 types, got %d", len(export.Types))
	}
	if len(export.Measurements) != 2 {
		t.Fatalf("Expected 2 measurements, got %d", len(export.Measurements))
	}
	if export.Measurements[1].Type != models.TypeWeight || export.Measurements[1].Unit != "KG" {
		t.Errorf("unexpected measurement %+v", export.Measurements[1])
	}
}

func TestExportYAML(t *testing.T) {
	db, c := setupTestDB(t)
	seedExportData(t, db, c)

	data, err := ExportYAML(context.Background(), db)
	if err != nil {
		t.Fatalf("ExportYAML failed: %v", err)
	}

	var parsed struct {
		Tool         string                              `yaml:"tool"`
		Measurements map[string][]map[string]interface{} `yaml:"measurements"`
	}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Failed to parse YAML: %v", err)
	}
	if parsed.Tool != "measure" {
		t.Errorf("Expected tool measure, got %s", parsed.Tool)
	}
	if len(parsed.Measurements[models.TypeWeight]) != 1 || len(parsed.Measurements[models.TypeWaist]) != 1 {
		t.Errorf("expected measurements grouped by type, got %v", parsed.Measurements)
	}
	if id, _ := parsed.Measurements[models.TypeWeight][0]["id"].(string); len(id) != 8 {
		t.Errorf("expected short id, got %q", id)
	}
}

func TestExportMarkdown(t *testing.T) {
	db, c := setupTestDB(t)
	seedExportData(t, db, c)
	ctx := context.Background()

	md, err := ExportMarkdown(ctx, db, c, "", time.Time{}, true)
	if err != nil {
		t.Fatalf("ExportMarkdown failed: %v", err)
	}
	for _, want := range []string{"# Measurements Export", "## Weight", "## Waist", "82.5 kg", "test note"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "## Body fat") {
		t.Error("expected empty types to be omitted")
	}

	md, err = ExportMarkdown(ctx, db, c, models.TypeWeight, time.Time{}, false)
	if err != nil {
		t.Fatalf("ExportMarkdown filtered failed: %v", err)
	}
	if strings.Contains(md, "## Waist") || !strings.Contains(md, "181.5 lb") {
		t.Errorf("unexpected filtered markdown:\n%s", md)
	}

	md, err = ExportMarkdown(ctx, db, c, "", time.Date(2030, 1, 1, 0, 0, 0, 0, time.Local), true)
	if err != nil {
		t.Fatalf("ExportMarkdown since failed: %v", err)
	}
	if strings.Contains(md, "82.5") {
		t.Errorf("expected entries before since to be dropped:\n%s", md)
	}
}

func TestImportJSONRestoresIntoFreshStore(t *testing.T) {
	db, c := setupTestDB(t)
	ctx := context.Background()
	if _, err := db.SaveType(ctx, models.TypeRow{Name: "NECK", Unit: units.LengthCM, MaxValue: 80, SmallStep: 0.5, BigStep: 2, Enabled: true}); err != nil {
		t.Fatalf("SaveType failed: %v", err)
	}
	rows, _ := db.ListTypes(ctx)
	c.Load(rows)
	seedExportData(t, db, c)
	neck := models.NewMeasurement(c.MustByName("NECK"))
	neck.SetValue(38, true)
	if err := db.CreateMeasurement(ctx, neck); err != nil {
		t.Fatalf("CreateMeasurement failed: %v", err)
	}

	raw, err := ExportJSON(ctx, db)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	fresh, err := Open(filepath.Join(t.TempDir(), "restore.db"), models.NewCatalog())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer fresh.Close()

	summary, err := ImportJSON(ctx, fresh, raw)
	if err != nil {
		t.Fatalf("ImportJSON failed: %v", err)
	}
	if summary.Types != 5 || summary.Measurements != 3 || summary.Skipped != 0 {
		t.Errorf("summary = %+v", summary)
	}

	got, err := fresh.GetMeasurement(ctx, neck.ID.String())
	if err != nil || got.TypeName() != "NECK" || got.Value(true) != 38 {
		t.Errorf("restored custom measurement = %v, %v", got, err)
	}

	again, err := ImportJSON(ctx, fresh, raw)
	if err != nil {
		t.Fatalf("second ImportJSON failed: %v", err)
	}
	if again.Measurements != 0 || again.Skipped != 3 {
		t.Errorf("second import summary = %+v", again)
	}
}

func TestImportJSONInvalid(t *testing.T) {
	db, _ := setupTestDB(t)
	if _, err := ImportJSON(context.Background(), db, []byte("{not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
