// ABOUTME: MeasureType describes a trackable kind of measurement.
// ABOUTME: Built-ins are WEIGHT, BODYFAT, WAIST and HEIGHT; more come from tracking rows.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/measure/internal/units"
)

const (
	TypeWeight  = "WEIGHT"
	TypeBodyFat = "BODYFAT"
	TypeWaist   = "WAIST"
	TypeHeight  = "HEIGHT"
)

// MeasureType is a named kind of measurement with its unit, bounds and steps.
// Name is the identity and the key persisted with every measurement.
type MeasureType struct {
	Name      string
	Unit      units.Unit
	MaxValue  float64
	SmallStep float64
	BigStep   float64
	Label     string
	Color     string
	// Pref is the configuration key that enables tracking; empty means always tracked.
	Pref    string
	RowID   int64
	Enabled bool
}

// TypeRow is a persisted tracking row.
type TypeRow struct {
	RowID     int64
	Name      string
	Unit      units.Unit
	MaxValue  float64
	SmallStep float64
	BigStep   float64
	Enabled   bool
	Color     string
}

// Row holds the persisted columns of a measurement.
type Row struct {
	ID              uuid.UUID
	Value           float64
	TimestampMillis int64
	TypeName        string
	Comment         string
}

// Preferences is the slice of user configuration the core reads.
type Preferences interface {
	IsMetric() bool
	IsEnabled(typeName string) bool
}

func builtinTypes() []*MeasureType {
	return []*MeasureType{
		{Name: TypeWeight, Unit: units.MassKG, MaxValue: 999, SmallStep: 0.1, BigStep: 1,
			Label: "Weight", Color: "#00ffff", Pref: "", Enabled: true},
		{Name: TypeBodyFat, Unit: units.Percent, MaxValue: 100, SmallStep: 0.1, BigStep: 1,
			Label: "Body fat", Color: "#ff00ff", Pref: "track_bodyfat"},
		{Name: TypeWaist, Unit: units.LengthCM, MaxValue: 300, SmallStep: 1, BigStep: 5,
			Label: "Waist", Color: "#00ff00", Pref: "track_waist"},
		{Name: TypeHeight, Unit: units.LengthCM, MaxValue: 300, SmallStep: 1, BigStep: 5,
			Label: "Height", Color: "#000000", Pref: "track_height"},
	}
}

// fromRow builds a custom type from a tracking row.
func fromRow(row TypeRow) *MeasureType {
	return &MeasureType{
		Name:      row.Name,
		Unit:      row.Unit,
		MaxValue:  row.MaxValue,
		SmallStep: row.SmallStep,
		BigStep:   row.BigStep,
		Label:     row.Name,
		Color:     row.Color,
		RowID:     row.RowID,
		Enabled:   row.Enabled,
	}
}

// Row returns the tracking row that persists this type.
func (t *MeasureType) Row() TypeRow {
	return TypeRow{
		RowID:     t.RowID,
		Name:      t.Name,
		Unit:      t.Unit,
		MaxValue:  t.MaxValue,
		SmallStep: t.SmallStep,
		BigStep:   t.BigStep,
		Enabled:   t.Enabled,
		Color:     t.Color,
	}
}

// Is reports whether t and other share the same name.
func (t *MeasureType) Is(other *MeasureType) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Name == other.Name
}

// Step returns the small or big increment.
func (t *MeasureType) Step(big bool) float64 {
	if big {
		return t.BigStep
	}
	return t.SmallStep
}

// CreateMeasurement rebuilds a measurement of this type from a persisted row.
func (t *MeasureType) CreateMeasurement(row *Row) (*Measurement, error) {
	if row == nil {
		return nil, fmt.Errorf("create %s measurement: %w", t.Name, ErrNoData)
	}
	m := &Measurement{
		ID:        row.ID,
		Type:      t,
		value:     row.Value,
		Comment:   row.Comment,
		Timestamp: time.UnixMilli(row.TimestampMillis),
	}
	return m, nil
}

// Zero returns a placeholder measurement of value zero, timestamped now.
func (t *MeasureType) Zero() *Measurement {
	return &Measurement{Type: t, Timestamp: time.Now()}
}

func (t *MeasureType) String() string {
	return fmt.Sprintf("%s[%v,%v,%s,%v]", t.Name, t.SmallStep, t.BigStep, t.Unit, t.Enabled)
}
