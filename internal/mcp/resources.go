// ABOUTME: MCP resource implementations for body measurements.
// ABOUTME: Provides measure://recent and measure://summary resources.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/measure/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	recentURI  = "measure://recent"
	summaryURI = "measure://summary"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recentURI,
		Name:        "Recent Measurements",
		Description: "Last 10 measurements across all types",
		MIMEType:    "application/json",
	}, s.handleRecentResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         summaryURI,
		Name:        "Measurement Summary",
		Description: "Latest value for each tracked type plus weight statistics",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	ms, err := s.repo.ListMeasurements(ctx, "", 10)
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}

	out := make([]measurementOutput, 0, len(ms))
	for _, m := range ms {
		out = append(out, s.measurementOutput(m))
	}
	return jsonResource(recentURI, map[string]any{
		"measurements": out,
		"count":        len(out),
	})
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	latest := make(map[string]measurementOutput)
	for _, t := range s.catalog.Enabled(s.profile) {
		m, err := s.repo.LatestMeasurement(ctx, t.Name)
		if errors.Is(err, models.ErrNoData) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load latest %s: %w", t.Name, err)
		}
		latest[t.Name] = s.measurementOutput(m)
	}

	now := time.Now()
	st, err := s.statistics(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to compute statistics: %w", err)
	}

	units := "metric"
	if !s.profile.IsMetric() {
		units = "imperial"
	}
	return jsonResource(summaryURI, map[string]any{
		"generated_at": now.Format(time.RFC3339),
		"units":        units,
		"latest":       latest,
		"statistics":   st,
	})
}
