// ABOUTME: MCP tool implementations for body measurements.
// ABOUTME: Provides add/list/delete, statistics, type listing and charts.
package mcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/measure/internal/chart"
	"github.com/harperreed/measure/internal/models"
	"github.com/harperreed/measure/internal/stats"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_measurement",
		Description: "Record a body measurement (weight, body fat, waist, height or a custom type)",
	}, s.handleAddMeasurement)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_measurements",
		Description: "List recent measurements, newest first, optionally filtered by type",
	}, s.handleListMeasurements)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_measurement",
		Description: "Delete a measurement by ID or ID prefix",
	}, s.handleDeleteMeasurement)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_statistics",
		Description: "Weight progress: BMI, loss, distance to goal, daily average and estimated goal date",
	}, s.handleGetStatistics)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_types",
		Description: "List measure types with units, bounds and whether they are tracked",
	}, s.handleListTypes)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_chart",
		Description: "Render an SVG line chart and sparkline for a type over the last N days",
	}, s.handleGetChart)
}

type addMeasurementInput struct {
	Type       string  `json:"type,omitempty" jsonschema:"Measure type name (WEIGHT, BODYFAT, WAIST, HEIGHT or custom), defaults to WEIGHT"`
	Value      float64 `json:"value" jsonschema:"The value in the user's configured unit system"`
	RecordedAt string  `json:"recorded_at,omitempty" jsonschema:"Timestamp (RFC 3339 or 2006-01-02 15:04), defaults to now"`
	Comment    string  `json:"comment,omitempty" jsonschema:"Optional comment"`
}

type measurementOutput struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
	RecordedAt string  `json:"recorded_at"`
	Comment    string  `json:"comment,omitempty"`
	Message    string  `json:"message,omitempty"`
}

type listMeasurementsInput struct {
	Type  string `json:"type,omitempty" jsonschema:"Filter by measure type"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type listMeasurementsOutput struct {
	Measurements []measurementOutput `json:"measurements"`
	Message      string              `json:"message,omitempty"`
}

type deleteMeasurementInput struct {
	ID string `json:"id" jsonschema:"Measurement ID or prefix"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type statisticsInput struct{}

type statisticsOutput struct {
	Unit              string   `json:"unit"`
	Start             float64  `json:"start"`
	Latest            float64  `json:"latest"`
	Goal              float64  `json:"goal,omitempty"`
	Loss              float64  `json:"loss"`
	ToGoal            float64  `json:"to_goal,omitempty"`
	ElapsedDays       int      `json:"elapsed_days"`
	AverageDailyLoss  float64  `json:"average_daily_loss"`
	BMI               float64  `json:"bmi,omitempty"`
	BMICategory       string   `json:"bmi_category,omitempty"`
	WaistToHeight     *float64 `json:"waist_to_height,omitempty"`
	EstimatedGoalDate string   `json:"estimated_goal_date,omitempty"`
	Message           string   `json:"message,omitempty"`
}

type listTypesInput struct{}

type typeOutput struct {
	Name      string  `json:"name"`
	Label     string  `json:"label"`
	Unit      string  `json:"unit"`
	Max       float64 `json:"max"`
	SmallStep float64 `json:"small_step"`
	BigStep   float64 `json:"big_step"`
	Color     string  `json:"color,omitempty"`
	Tracked   bool    `json:"tracked"`
}

type listTypesOutput struct {
	Types []typeOutput `json:"types"`
}

type chartInput struct {
	Type string `json:"type,omitempty" jsonschema:"Measure type, defaults to the display field"`
	Days int    `json:"days,omitempty" jsonschema:"Window in days (default 30)"`
}

type chartOutput struct {
	Type      string `json:"type"`
	Days      int    `json:"days"`
	Samples   int    `json:"samples"`
	Floor     int    `json:"floor"`
	Ceiling   int    `json:"ceiling"`
	Sparkline string `json:"sparkline"`
	SVG       string `json:"svg"`
}

func (s *Server) measurementOutput(m *models.Measurement) measurementOutput {
	metric := s.profile.IsMetric()
	return measurementOutput{
		ID:         m.ID.String()[:8],
		Type:       m.TypeName(),
		Value:      m.Value(metric),
		Unit:       m.Unit().Label(metric),
		RecordedAt: m.Timestamp.Format(time.RFC3339),
		Comment:    m.Comment,
	}
}

func parseRecordedAt(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", models.ErrDateParse, raw)
	}
	return t, nil
}

func (s *Server) handleAddMeasurement(ctx context.Context, req *mcp.CallToolRequest, input addMeasurementInput) (*mcp.CallToolResult, measurementOutput, error) {
	name := strings.ToUpper(strings.TrimSpace(input.Type))
	if name == "" {
		name = models.TypeWeight
	}
	t, err := s.catalog.ByName(name)
	if err != nil {
		return nil, measurementOutput{}, err
	}

	m := models.NewMeasurement(t)
	metric := s.profile.IsMetric()
	if err := m.ParseAndSetValue(strconv.FormatFloat(input.Value, 'f', -1, 64), metric); err != nil {
		return nil, measurementOutput{}, fmt.Errorf("invalid value: %w", err)
	}
	if input.RecordedAt != "" {
		ts, err := parseRecordedAt(input.RecordedAt)
		if err != nil {
			return nil, measurementOutput{}, err
		}
		m.WithTimestamp(ts)
	}
	if input.Comment != "" {
		m.WithComment(input.Comment)
	}

	if err := s.repo.CreateMeasurement(ctx, m); err != nil {
		return nil, measurementOutput{}, fmt.Errorf("failed to create measurement: %w", err)
	}
	s.log.Debug("measurement added", "type", name, "id", m.ID)

	out := s.measurementOutput(m)
	out.Message = fmt.Sprintf("Added %s: %s (ID: %s)", t.Label, m.FormatWithUnit(metric), out.ID)
	return nil, out, nil
}

func (s *Server) handleListMeasurements(ctx context.Context, req *mcp.CallToolRequest, input listMeasurementsInput) (*mcp.CallToolResult, listMeasurementsOutput, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	name := strings.ToUpper(strings.TrimSpace(input.Type))
	if name != "" {
		if _, err := s.catalog.ByName(name); err != nil {
			return nil, listMeasurementsOutput{}, err
		}
	}

	ms, err := s.repo.ListMeasurements(ctx, name, input.Limit)
	if err != nil {
		return nil, listMeasurementsOutput{}, fmt.Errorf("failed to list measurements: %w", err)
	}

	out := listMeasurementsOutput{Measurements: make([]measurementOutput, 0, len(ms))}
	for _, m := range ms {
		out.Measurements = append(out.Measurements, s.measurementOutput(m))
	}
	if len(ms) == 0 {
		out.Message = "No measurements found."
	}
	return nil, out, nil
}

func (s *Server) handleDeleteMeasurement(ctx context.Context, req *mcp.CallToolRequest, input deleteMeasurementInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.repo.DeleteMeasurement(ctx, input.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete measurement: %w", err)
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted measurement: %s", input.ID),
	}, nil
}

func (s *Server) statistics(ctx context.Context, now time.Time) (statisticsOutput, error) {
	st, err := stats.Load(ctx, s.repo, s.catalog, s.profile)
	if errors.Is(err, models.ErrNoData) {
		return statisticsOutput{Message: models.Describe(models.ErrNoData)}, nil
	}
	if err != nil {
		return statisticsOutput{}, err
	}

	metric := s.profile.IsMetric()
	out := statisticsOutput{
		Unit:             st.Latest().Unit().Label(metric),
		Start:            st.Start().Value(metric),
		Latest:           st.Latest().Value(metric),
		Loss:             st.Loss().Value(metric),
		ElapsedDays:      st.ElapsedDays(),
		AverageDailyLoss: st.AverageDailyLoss().Value(metric),
	}
	if s.profile.GoalKG() > 0 {
		out.Goal = st.Goal().Value(metric)
		out.ToGoal = st.ToGoal().Value(metric)
		if eta, ok := st.EstimatedGoalDate(now); ok {
			out.EstimatedGoalDate = eta.Format("2006-01-02")
		}
	}
	if bmi := st.CurrentBMI(); bmi > 0 {
		out.BMI = bmi
		if c, ok := stats.Classify(bmi); ok {
			out.BMICategory = c.Name
		}
	}
	if wthr, err := st.WaistToHeight(); err == nil {
		out.WaistToHeight = &wthr
	}
	return out, nil
}

func (s *Server) handleGetStatistics(ctx context.Context, req *mcp.CallToolRequest, input statisticsInput) (*mcp.CallToolResult, statisticsOutput, error) {
	out, err := s.statistics(ctx, time.Now())
	if err != nil {
		return nil, statisticsOutput{}, fmt.Errorf("failed to compute statistics: %w", err)
	}
	return nil, out, nil
}

func (s *Server) handleListTypes(ctx context.Context, req *mcp.CallToolRequest, input listTypesInput) (*mcp.CallToolResult, listTypesOutput, error) {
	metric := s.profile.IsMetric()
	var out listTypesOutput
	for _, t := range s.catalog.Types() {
		out.Types = append(out.Types, typeOutput{
			Name:      t.Name,
			Label:     t.Label,
			Unit:      t.Unit.Label(metric),
			Max:       models.NewValue(t.Unit, t.MaxValue).Value(metric),
			SmallStep: t.SmallStep,
			BigStep:   t.BigStep,
			Color:     t.Color,
			Tracked:   s.profile.IsEnabled(t.Name),
		})
	}
	return nil, out, nil
}

func (s *Server) handleGetChart(ctx context.Context, req *mcp.CallToolRequest, input chartInput) (*mcp.CallToolResult, chartOutput, error) {
	name := strings.ToUpper(strings.TrimSpace(input.Type))
	if name == "" {
		name = s.profile.GetDisplayField()
	}
	if input.Days <= 0 {
		input.Days = 30
	}
	t, err := s.catalog.ByName(name)
	if err != nil {
		return nil, chartOutput{}, err
	}

	series, err := chart.Load(ctx, s.repo, t, time.Now(), input.Days, s.profile.IsMetric(), s.profile.GoalKG())
	if err != nil {
		return nil, chartOutput{}, fmt.Errorf("failed to load chart data: %w", err)
	}
	var svg bytes.Buffer
	if err := chart.RenderSVG(&svg, series, chart.Options{Title: t.Label}); err != nil {
		return nil, chartOutput{}, fmt.Errorf("failed to render chart: %w", err)
	}

	return nil, chartOutput{
		Type:      t.Name,
		Days:      input.Days,
		Samples:   len(series.Samples),
		Floor:     series.Floor,
		Ceiling:   series.Ceiling,
		Sparkline: chart.Sparkline(series),
		SVG:       svg.String(),
	}, nil
}
