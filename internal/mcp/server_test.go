// ABOUTME: Tests for MCP server, tools, and resources.
// ABOUTME: Covers NewServer, tool handlers, and resource handlers.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/measure/internal/config"
	"github.com/harperreed/measure/internal/logging"
	"github.com/harperreed/measure/internal/models"
	"github.com/harperreed/measure/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// setupTestServer creates a server over a test database in a temp directory.
func setupTestServer(t *testing.T, cfg *config.Config) (*Server, *storage.DB) {
	t.Helper()

	catalog := models.NewCatalog()
	db, err := storage.Open(filepath.Join(t.TempDir(), "measure.db"), catalog)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if cfg == nil {
		cfg = &config.Config{}
	}
	server, err := NewServer(db, catalog, cfg, logging.Nop())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server, db
}

func addWeight(t *testing.T, s *Server, kg float64, at string) measurementOutput {
	t.Helper()
	_, out, err := s.handleAddMeasurement(context.Background(), &mcp.CallToolRequest{}, addMeasurementInput{
		Value:      kg,
		RecordedAt: at,
	})
	if err != nil {
		t.Fatalf("handleAddMeasurement failed: %v", err)
	}
	return out
}

func TestNewServer(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	if server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if server.repo == nil {
		t.Error("Expected non-nil repo")
	}
}

func TestHandleAddMeasurement(t *testing.T) {
	server, _ := setupTestServer(t, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   addMeasurementInput
		wantErr error
	}{
		{
			name:  "default type is weight",
			input: addMeasurementInput{Value: 82.5},
		},
		{
			name:  "waist with comment",
			input: addMeasurementInput{Type: "waist", Value: 90, Comment: "after run"},
		},
		{
			name:  "RFC3339 timestamp",
			input: addMeasurementInput{Type: "BODYFAT", Value: 21.5, RecordedAt: "2025-01-31T08:00:00Z"},
		},
		{
			name:  "simple timestamp",
			input: addMeasurementInput{Value: 80, RecordedAt: "2025-01-31 08:00"},
		},
		{
			name:    "unknown type",
			input:   addMeasurementInput{Type: "NECK", Value: 40},
			wantErr: models.ErrUnknownType,
		},
		{
			name:    "too large",
			input:   addMeasurementInput{Value: 1200},
			wantErr: models.ErrTooLarge,
		},
		{
			name:    "negative",
			input:   addMeasurementInput{Value: -1},
			wantErr: models.ErrSubZero,
		},
		{
			name:    "bad timestamp",
			input:   addMeasurementInput{Value: 80, RecordedAt: "yesterday"},
			wantErr: models.ErrDateParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleAddMeasurement(ctx, &mcp.CallToolRequest{}, tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if output.Value != tt.input.Value {
				t.Errorf("Value = %f, want %f", output.Value, tt.input.Value)
			}
			if len(output.ID) != 8 {
				t.Errorf("Expected short ID, got %q", output.ID)
			}
			if output.Message == "" {
				t.Error("Expected non-empty Message")
			}
		})
	}
}

func TestHandleAddMeasurementImperial(t *testing.T) {
	server, db := setupTestServer(t, &config.Config{Imperial: true})

	out := addWeight(t, server, 176, "")
	if out.Unit != "lb" {
		t.Errorf("Unit = %q, want lb", out.Unit)
	}

	m, err := db.LatestMeasurement(context.Background(), models.TypeWeight)
	if err != nil {
		t.Fatalf("LatestMeasurement failed: %v", err)
	}
	if got := m.Value(true); got < 79.99 || got > 80.01 {
		t.Errorf("stored metric value = %v, want 80", got)
	}
}

func TestHandleListMeasurements(t *testing.T) {
	server, _ := setupTestServer(t, nil)
	ctx := context.Background()

	addWeight(t, server, 82, "2025-01-01 08:00")
	addWeight(t, server, 81, "2025-01-02 08:00")
	if _, _, err := server.handleAddMeasurement(ctx, &mcp.CallToolRequest{}, addMeasurementInput{Type: "WAIST", Value: 90}); err != nil {
		t.Fatalf("add waist failed: %v", err)
	}

	_, out, err := server.handleListMeasurements(ctx, &mcp.CallToolRequest{}, listMeasurementsInput{Type: "weight"})
	if err != nil {
		t.Fatalf("handleListMeasurements failed: %v", err)
	}
	if len(out.Measurements) != 2 {
		t.Fatalf("Expected 2 weights, got %d", len(out.Measurements))
	}
	if out.Measurements[0].Value != 81 {
		t.Errorf("Expected newest first, got %v", out.Measurements[0].Value)
	}

	_, out, _ = server.handleListMeasurements(ctx, &mcp.CallToolRequest{}, listMeasurementsInput{Limit: 1})
	if len(out.Measurements) != 1 {
		t.Errorf("Expected limit to apply, got %d", len(out.Measurements))
	}

	if _, _, err := server.handleListMeasurements(ctx, &mcp.CallToolRequest{}, listMeasurementsInput{Type: "NECK"}); !errors.Is(err, models.ErrUnknownType) {
		t.Errorf("Expected unknown type error, got %v", err)
	}
}

func TestHandleListMeasurementsEmpty(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	_, out, err := server.handleListMeasurements(context.Background(), &mcp.CallToolRequest{}, listMeasurementsInput{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.Message != "No measurements found." {
		t.Errorf("Message = %q", out.Message)
	}
}

func TestHandleDeleteMeasurement(t *testing.T) {
	server, db := setupTestServer(t, nil)
	ctx := context.Background()

	added := addWeight(t, server, 80, "")
	_, out, err := server.handleDeleteMeasurement(ctx, &mcp.CallToolRequest{}, deleteMeasurementInput{ID: added.ID})
	if err != nil {
		t.Fatalf("handleDeleteMeasurement failed: %v", err)
	}
	if out.Message == "" {
		t.Error("Expected non-empty message")
	}
	if n, _ := db.CountMeasurements(ctx, ""); n != 0 {
		t.Errorf("Expected empty store, got %d", n)
	}

	if _, _, err := server.handleDeleteMeasurement(ctx, &mcp.CallToolRequest{}, deleteMeasurementInput{ID: "ffffffff"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestHandleGetStatistics(t *testing.T) {
	server, _ := setupTestServer(t, &config.Config{Goal: 75, Height: 200})
	ctx := context.Background()

	_, empty, err := server.handleGetStatistics(ctx, &mcp.CallToolRequest{}, statisticsInput{})
	if err != nil {
		t.Fatalf("Unexpected error on empty store: %v", err)
	}
	if empty.Message == "" {
		t.Error("Expected a no-data message")
	}

	addWeight(t, server, 110, "2025-01-01 08:00")
	addWeight(t, server, 100, "2025-01-11 08:00")

	_, out, err := server.handleGetStatistics(ctx, &mcp.CallToolRequest{}, statisticsInput{})
	if err != nil {
		t.Fatalf("handleGetStatistics failed: %v", err)
	}
	if out.Start != 110 || out.Latest != 100 || out.Loss != 10 || out.ToGoal != 25 {
		t.Errorf("unexpected statistics %+v", out)
	}
	if out.ElapsedDays != 10 || out.AverageDailyLoss != 1 {
		t.Errorf("elapsed/average = %d/%v", out.ElapsedDays, out.AverageDailyLoss)
	}
	if out.BMI != 25 || out.BMICategory == "" {
		t.Errorf("BMI = %v (%q)", out.BMI, out.BMICategory)
	}
	if out.EstimatedGoalDate == "" {
		t.Error("Expected an estimated goal date")
	}
	if out.WaistToHeight != nil {
		t.Error("Expected no waist-to-height without waist tracking")
	}
}

func TestHandleListTypes(t *testing.T) {
	cfg := &config.Config{Imperial: true}
	cfg.SetEnabled(models.TypeWaist, true)
	server, _ := setupTestServer(t, cfg)

	_, out, err := server.handleListTypes(context.Background(), &mcp.CallToolRequest{}, listTypesInput{})
	if err != nil {
		t.Fatalf("handleListTypes failed: %v", err)
	}
	if len(out.Types) != 4 {
		t.Fatalf("Expected 4 built-in types, got %d", len(out.Types))
	}
	byName := make(map[string]typeOutput)
	for _, tt := range out.Types {
		byName[tt.Name] = tt
	}
	if !byName[models.TypeWeight].Tracked || !byName[models.TypeWaist].Tracked || byName[models.TypeBodyFat].Tracked {
		t.Errorf("unexpected tracking flags %+v", out.Types)
	}
	if byName[models.TypeWeight].Unit != "lb" {
		t.Errorf("Expected imperial label, got %q", byName[models.TypeWeight].Unit)
	}
}

func TestHandleGetChart(t *testing.T) {
	server, _ := setupTestServer(t, nil)
	ctx := context.Background()

	now := time.Now()
	for i, kg := range []float64{82, 81, 80} {
		at := now.AddDate(0, 0, i-3).Format("2006-01-02 15:04")
		addWeight(t, server, kg, at)
	}

	_, out, err := server.handleGetChart(ctx, &mcp.CallToolRequest{}, chartInput{Days: 7})
	if err != nil {
		t.Fatalf("handleGetChart failed: %v", err)
	}
	if out.Type != models.TypeWeight || out.Samples != 3 {
		t.Errorf("unexpected chart %+v", out)
	}
	if !strings.HasPrefix(out.SVG, "<svg") {
		t.Errorf("Expected SVG output, got %q", out.SVG[:min(len(out.SVG), 40)])
	}
	if out.Floor != 80 || out.Ceiling != 90 {
		t.Errorf("bounds = %d..%d", out.Floor, out.Ceiling)
	}
	if len([]rune(out.Sparkline)) != 3 {
		t.Errorf("sparkline = %q", out.Sparkline)
	}

	if _, _, err := server.handleGetChart(ctx, &mcp.CallToolRequest{}, chartInput{Type: "NECK"}); err == nil {
		t.Error("Expected error for unknown type")
	}
}

func TestHandleRecentResource(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	for i := 0; i < 15; i++ {
		addWeight(t, server, float64(80+i), "")
	}

	result, err := server.handleRecentResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleRecentResource failed: %v", err)
	}
	if len(result.Contents) != 1 || result.Contents[0].URI != recentURI {
		t.Fatalf("unexpected contents %+v", result.Contents)
	}

	var parsed struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Count != 10 {
		t.Errorf("Expected 10 recent entries, got %d", parsed.Count)
	}
}

func TestHandleSummaryResource(t *testing.T) {
	cfg := &config.Config{Goal: 75, Height: 180}
	cfg.SetEnabled(models.TypeWaist, true)
	server, _ := setupTestServer(t, cfg)
	ctx := context.Background()

	addWeight(t, server, 85, "2025-01-01 08:00")
	if _, _, err := server.handleAddMeasurement(ctx, &mcp.CallToolRequest{}, addMeasurementInput{Type: "WAIST", Value: 90}); err != nil {
		t.Fatalf("add waist failed: %v", err)
	}

	result, err := server.handleSummaryResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleSummaryResource failed: %v", err)
	}

	var parsed struct {
		Units      string                       `json:"units"`
		Latest     map[string]measurementOutput `json:"latest"`
		Statistics statisticsOutput             `json:"statistics"`
	}
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Units != "metric" {
		t.Errorf("units = %q", parsed.Units)
	}
	if len(parsed.Latest) != 2 {
		t.Errorf("Expected weight and waist, got %v", parsed.Latest)
	}
	if parsed.Statistics.WaistToHeight == nil {
		t.Error("Expected waist-to-height ratio")
	}
}

func TestHandleSummaryResourceEmpty(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	result, err := server.handleSummaryResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleSummaryResource failed: %v", err)
	}
	if !strings.Contains(result.Contents[0].Text, "No measurements recorded yet.") {
		t.Errorf("Expected no-data message, got %s", result.Contents[0].Text)
	}
}
