// ABOUTME: Resolves a statistics snapshot from stored measurements and preferences.
// ABOUTME: Height falls back to the latest HEIGHT entry when none is configured.
package stats

import (
	"context"
	"errors"
	"fmt"

	"github.com/harperreed/measure/internal/models"
)

// Reader is the storage slice statistics need.
type Reader interface {
	FirstMeasurement(ctx context.Context, typeName string) (*models.Measurement, error)
	LatestMeasurement(ctx context.Context, typeName string) (*models.Measurement, error)
}

// Profile is the user configuration statistics read.
type Profile interface {
	models.Preferences
	GoalKG() float64
	HeightCM() float64
}

// Load reads the first and latest weight, the goal and height, and the latest
// waist when waist tracking is enabled. No weight data is models.ErrNoData.
func Load(ctx context.Context, r Reader, catalog *models.Catalog, p Profile) (*Statistics, error) {
	weight := catalog.MustByName(models.TypeWeight)

	start, err := r.FirstMeasurement(ctx, weight.Name)
	if err != nil {
		return nil, fmt.Errorf("load starting weight: %w", err)
	}
	latest, err := r.LatestMeasurement(ctx, weight.Name)
	if err != nil {
		return nil, fmt.Errorf("load latest weight: %w", err)
	}

	goal := weight.Zero()
	goal.SetValue(p.GoalKG(), true)

	heightType := catalog.MustByName(models.TypeHeight)
	height := heightType.Zero()
	height.SetValue(p.HeightCM(), true)
	if p.HeightCM() <= 0 {
		if h, err := optional(r.LatestMeasurement(ctx, heightType.Name)); err != nil {
			return nil, fmt.Errorf("load height: %w", err)
		} else if h != nil {
			height = h
		}
	}

	var waist *models.Measurement
	if p.IsEnabled(models.TypeWaist) {
		waist, err = optional(r.LatestMeasurement(ctx, models.TypeWaist))
		if err != nil {
			return nil, fmt.Errorf("load waist: %w", err)
		}
	}

	return New(Input{Start: start, Latest: latest, Goal: goal, Height: height, Waist: waist})
}

func optional(m *models.Measurement, err error) (*models.Measurement, error) {
	if errors.Is(err, models.ErrNoData) {
		return nil, nil
	}
	return m, err
}
