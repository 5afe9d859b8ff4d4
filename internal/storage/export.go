// ABOUTME: Export and import functionality for measurement data.
// ABOUTME: Supports JSON (full backup), YAML grouped by type, and Markdown tables.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/measure/internal/models"
	"github.com/harperreed/measure/internal/units"
	"gopkg.in/yaml.v3"
)

const exportVersion = "1.0"

// ExportData represents the full export format.
type ExportData struct {
	Version      string              `json:"version" yaml:"version"`
	ExportedAt   time.Time           `json:"exported_at" yaml:"exported_at"`
	Tool         string              `json:"tool" yaml:"tool"`
	Types        []ExportType        `json:"types" yaml:"types"`
	Measurements []ExportMeasurement `json:"measurements" yaml:"measurements"`
}

// ExportType is a tracking row in export form.
type ExportType struct {
	Name      string  `json:"name" yaml:"name"`
	Unit      string  `json:"unit" yaml:"unit"`
	MaxValue  float64 `json:"max_value" yaml:"max_value"`
	SmallStep float64 `json:"small_step" yaml:"small_step"`
	BigStep   float64 `json:"big_step" yaml:"big_step"`
	Enabled   bool    `json:"enabled" yaml:"enabled"`
	Color     string  `json:"color,omitempty" yaml:"color,omitempty"`
}

// ExportMeasurement is a measurement in export form, value always metric.
type ExportMeasurement struct {
	ID         string    `json:"id" yaml:"id"`
	Type       string    `json:"type" yaml:"type"`
	Value      float64   `json:"value" yaml:"value"`
	Unit       string    `json:"unit" yaml:"unit"`
	RecordedAt time.Time `json:"recorded_at" yaml:"recorded_at"`
	Comment    string    `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// ImportSummary counts what an import stored and skipped.
type ImportSummary struct {
	Types        int
	Measurements int
	Skipped      int
}

func exportMeasurement(m *models.Measurement) ExportMeasurement {
	return ExportMeasurement{
		ID:         m.ID.String(),
		Type:       m.TypeName(),
		Value:      m.Value(true),
		Unit:       string(m.Unit()),
		RecordedAt: m.Timestamp,
		Comment:    m.Comment,
	}
}

// GetAllData retrieves all data for export, measurements newest first.
func (d *DB) GetAllData(ctx context.Context) (*ExportData, error) {
	types, err := d.ListTypes(ctx)
	if err != nil {
		return nil, err
	}
	ms, err := d.ListMeasurements(ctx, "", 0)
	if err != nil {
		return nil, err
	}

	data := &ExportData{
		Version:      exportVersion,
		ExportedAt:   time.Now(),
		Tool:         "measure",
		Types:        make([]ExportType, 0, len(types)),
		Measurements: make([]ExportMeasurement, 0, len(ms)),
	}
	for _, t := range types {
		data.Types = append(data.Types, ExportType{
			Name:      t.Name,
			Unit:      string(t.Unit),
			MaxValue:  t.MaxValue,
			SmallStep: t.SmallStep,
			BigStep:   t.BigStep,
			Enabled:   t.Enabled,
			Color:     t.Color,
		})
	}
	for _, m := range ms {
		data.Measurements = append(data.Measurements, exportMeasurement(m))
	}
	return data, nil
}

// ImportData saves the tracking rows, merges them into the catalog and then
// imports measurements, skipping ones that already exist.
func (d *DB) ImportData(ctx context.Context, data *ExportData) (*ImportSummary, error) {
	summary := &ImportSummary{}
	var rows []models.TypeRow
	for _, t := range data.Types {
		u, err := units.Parse(t.Unit)
		if err != nil {
			return summary, fmt.Errorf("import type %s: %w", t.Name, err)
		}
		row, err := d.SaveType(ctx, models.TypeRow{
			Name:      t.Name,
			Unit:      u,
			MaxValue:  t.MaxValue,
			SmallStep: t.SmallStep,
			BigStep:   t.BigStep,
			Enabled:   t.Enabled,
			Color:     t.Color,
		})
		if err != nil {
			return summary, err
		}
		rows = append(rows, row)
		summary.Types++
	}
	d.catalog.Load(rows)

	ms := make([]*models.Measurement, 0, len(data.Measurements))
	for _, em := range data.Measurements {
		id, err := uuid.Parse(em.ID)
		if err != nil {
			id = uuid.Nil
		}
		m, err := d.catalog.FromRow(models.Row{
			ID:              id,
			Value:           em.Value,
			TimestampMillis: em.RecordedAt.UnixMilli(),
			TypeName:        em.Type,
			Comment:         em.Comment,
		})
		if err != nil {
			return summary, fmt.Errorf("import measurement %s: %w", em.ID, err)
		}
		ms = append(ms, m)
	}

	imported, err := ImportMeasurements(ctx, d, ms)
	summary.Measurements = imported.Measurements
	summary.Skipped = imported.Skipped
	if err != nil {
		return summary, err
	}
	d.log.Info("imported data", "types", summary.Types, "measurements", summary.Measurements, "skipped", summary.Skipped)
	return summary, nil
}

// ExportJSON exports all data as JSON.
func ExportJSON(ctx context.Context, repo Repository) ([]byte, error) {
	data, err := repo.GetAllData(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ImportJSON imports data from JSON bytes.
func ImportJSON(ctx context.Context, repo Repository, raw []byte) (*ImportSummary, error) {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	return repo.ImportData(ctx, &data)
}

type yamlMeasurement struct {
	ID         string  `yaml:"id"`
	Value      float64 `yaml:"value"`
	Unit       string  `yaml:"unit"`
	RecordedAt string  `yaml:"recorded_at"`
	Comment    string  `yaml:"comment,omitempty"`
}

// ExportYAML exports all data as YAML with measurements grouped by type.
func ExportYAML(ctx context.Context, repo Repository) ([]byte, error) {
	data, err := repo.GetAllData(ctx)
	if err != nil {
		return nil, err
	}

	yamlData := struct {
		Version      string                       `yaml:"version"`
		ExportedAt   string                       `yaml:"exported_at"`
		Tool         string                       `yaml:"tool"`
		Types        []ExportType                 `yaml:"types"`
		Measurements map[string][]yamlMeasurement `yaml:"measurements"`
	}{
		Version:      data.Version,
		ExportedAt:   data.ExportedAt.Format(time.RFC3339),
		Tool:         data.Tool,
		Types:        data.Types,
		Measurements: make(map[string][]yamlMeasurement),
	}

	for _, m := range data.Measurements {
		yamlData.Measurements[m.Type] = append(yamlData.Measurements[m.Type], yamlMeasurement{
			ID:         m.ID[:8],
			Value:      m.Value,
			Unit:       m.Unit,
			RecordedAt: m.RecordedAt.Format(time.RFC3339),
			Comment:    m.Comment,
		})
	}

	return yaml.Marshal(yamlData)
}

// ExportMarkdown renders one table per type in catalog order. typeName limits
// the output to one type; since drops older entries when non-zero.
func ExportMarkdown(ctx context.Context, repo Repository, catalog *models.Catalog, typeName string, since time.Time, metric bool) (string, error) {
	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Measurements Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	for _, t := range catalog.Types() {
		if typeName != "" && t.Name != typeName {
			continue
		}
		ms, err := repo.ListMeasurements(ctx, t.Name, 0)
		if err != nil {
			return "", err
		}
		var rows []*models.Measurement
		for _, m := range ms {
			if since.IsZero() || !m.Timestamp.Before(since) {
				rows = append(rows, m)
			}
		}
		if len(rows) == 0 && typeName == "" {
			continue
		}

		sb.WriteString(fmt.Sprintf("## %s\n\n", t.Label))
		sb.WriteString("| Date | Value | Comment |\n")
		sb.WriteString("|------|-------|---------|\n")
		for _, m := range rows {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
				m.Timestamp.Format("2006-01-02 15:04"),
				m.FormatWithUnit(metric),
				strings.ReplaceAll(m.Comment, "|", "\\|")))
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}
