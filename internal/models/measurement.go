// ABOUTME: Measurement is a typed, timestamped value stored in metric units.
// ABOUTME: Parsing validates against the type's bounds; arithmetic yields transient values.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/measure/internal/units"
)

// Measurement is a single recorded value. The value is always metric.
type Measurement struct {
	// ID is uuid.Nil until the measurement is persisted.
	ID uuid.UUID
	// Type is nil only for transient results of arithmetic.
	Type      *MeasureType
	Comment   string
	Timestamp time.Time

	unit  units.Unit
	value float64
}

// NewMeasurement creates an unsaved measurement of type t, timestamped now.
func NewMeasurement(t *MeasureType) *Measurement {
	return &Measurement{Type: t, Timestamp: time.Now()}
}

// NewValue creates a transient measurement carrying only a unit and a metric value.
func NewValue(u units.Unit, metricValue float64) *Measurement {
	return &Measurement{unit: u, value: metricValue}
}

// WithTimestamp sets the timestamp.
func (m *Measurement) WithTimestamp(t time.Time) *Measurement {
	m.Timestamp = t
	return m
}

// WithComment sets the comment.
func (m *Measurement) WithComment(comment string) *Measurement {
	m.Comment = comment
	return m
}

// HasID reports whether the measurement has been persisted.
func (m *Measurement) HasID() bool {
	return m.ID != uuid.Nil
}

// Unit returns the type's unit, or the transient unit when there is no type.
func (m *Measurement) Unit() units.Unit {
	if m.Type != nil {
		return m.Type.Unit
	}
	return m.unit
}

// TypeName returns the type's name or "" for transient values.
func (m *Measurement) TypeName() string {
	if m.Type == nil {
		return ""
	}
	return m.Type.Name
}

// ParseAndSetValue parses user input and stores it as metric. On error the
// current value is kept.
func (m *Measurement) ParseAndSetValue(raw string, metric bool) error {
	if strings.TrimSpace(raw) == "" {
		return ErrEmptyInput
	}
	if m.Type == nil {
		return ErrNoType
	}
	v, err := units.ParseNumber(raw)
	if err != nil {
		return err
	}
	if !metric {
		v = m.Unit().ToMetric(v)
	}
	if v < 0 {
		return fmt.Errorf("%w: %s", ErrSubZero, raw)
	}
	if v > m.Type.MaxValue {
		return fmt.Errorf("%w: %s exceeds %v %s", ErrTooLarge, raw,
			m.Unit().Format(m.Type.MaxValue, metric), m.Unit().Label(metric))
	}
	m.value = v
	return nil
}

// Value returns the value in metric or imperial units.
func (m *Measurement) Value(metric bool) float64 {
	if metric {
		return m.value
	}
	return m.Unit().ToImperial(m.value)
}

// SetValue stores v, converting from imperial first when metric is false.
func (m *Measurement) SetValue(v float64, metric bool) {
	if !metric {
		v = m.Unit().ToMetric(v)
	}
	m.value = v
}

// Increment adds step without re-checking the type's bounds.
func (m *Measurement) Increment(metric bool, step float64) {
	if !metric {
		step = m.Unit().ToMetric(step)
	}
	m.value += step
}

// Decrement subtracts step without re-checking the type's bounds.
func (m *Measurement) Decrement(metric bool, step float64) {
	if !metric {
		step = m.Unit().ToMetric(step)
	}
	m.value -= step
}

// StepUp increments by the type's small or big step, given in display units.
func (m *Measurement) StepUp(metric, big bool) {
	if m.Type != nil {
		m.Increment(metric, m.Type.Step(big))
	}
}

// StepDown decrements by the type's small or big step, given in display units.
func (m *Measurement) StepDown(metric, big bool) {
	if m.Type != nil {
		m.Decrement(metric, m.Type.Step(big))
	}
}

// Add adds other's value when both share a unit.
func (m *Measurement) Add(other *Measurement) {
	if m.Unit() == other.Unit() {
		m.value += other.value
	}
}

// PercentDifference returns 100 - 100*ref/m. It reports false when m is zero.
func (m *Measurement) PercentDifference(ref *Measurement) (float64, bool) {
	if m.value == 0 {
		return 0, false
	}
	return 100 - 100*ref.value/m.value, true
}

// UpdateDate replaces the calendar date and keeps the time of day.
func (m *Measurement) UpdateDate(year int, month time.Month, day int) {
	ts := m.Timestamp
	m.Timestamp = time.Date(year, month, day,
		ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(), ts.Location())
}

// UpdateTime replaces hour and minute and keeps the date.
func (m *Measurement) UpdateTime(hour, minute int) {
	ts := m.Timestamp
	m.Timestamp = time.Date(ts.Year(), ts.Month(), ts.Day(),
		hour, minute, ts.Second(), ts.Nanosecond(), ts.Location())
}

// Copy returns an unsaved measurement with the same type and value.
func (m *Measurement) Copy() *Measurement {
	return &Measurement{Type: m.Type, unit: m.unit, value: m.value, Timestamp: time.Now()}
}

// Row returns the persisted columns.
func (m *Measurement) Row() Row {
	return Row{
		ID:              m.ID,
		Value:           m.value,
		TimestampMillis: m.Timestamp.UnixMilli(),
		TypeName:        m.TypeName(),
		Comment:         m.Comment,
	}
}

// Format formats the value for display without its unit.
func (m *Measurement) Format(metric bool) string {
	return m.Unit().Format(m.value, metric)
}

// FormatWithUnit formats the value followed by its unit suffix.
func (m *Measurement) FormatWithUnit(metric bool) string {
	return m.Format(metric) + " " + m.Unit().Label(metric)
}

func (m *Measurement) String() string {
	ts := ""
	if !m.Timestamp.IsZero() {
		ts = m.Timestamp.Format("2006-01-02")
	}
	return fmt.Sprintf("Measurement[%s:%s=%v,%s,%s]", m.ID, m.TypeName(), m.value, ts, m.Comment)
}

// Difference returns a - b as a transient measurement in a's unit.
func Difference(a, b *Measurement) *Measurement {
	return NewValue(a.Unit(), a.value-b.value)
}

// Sum returns a + b as a transient measurement in a's unit.
func Sum(a, b *Measurement) *Measurement {
	return NewValue(a.Unit(), a.value+b.value)
}
