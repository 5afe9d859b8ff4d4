// ABOUTME: Tests for coordinate mapping, bounds, path building, labels and rendering.
// ABOUTME: Series are built from in-memory measurements with fixed timestamps.
package chart

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/measure/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func sample(t *models.MeasureType, day int, hour int, value float64) *models.Measurement {
	m := models.NewMeasurement(t).WithTimestamp(start.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour))
	m.SetValue(value, true)
	return m
}

func TestPointMapping(t *testing.T) {
	c := NewCoordinates(10, Rect{Left: 0, Top: 0, Width: 100, Height: 50})
	assert.Equal(t, Point{X: 50, Y: 25}, c.Point(5, 50, 100, 0))
	assert.Equal(t, Point{X: 0, Y: 0}, c.Point(0, 100, 100, 0))
	assert.Equal(t, Point{X: 100, Y: 50}, c.Point(10, 0, 100, 0))

	offset := NewCoordinates(10, Rect{Left: 20, Top: 10, Width: 100, Height: 50})
	assert.Equal(t, Point{X: 70, Y: 35}, offset.Point(5, 50, 100, 0))

	c.SetDays(20)
	assert.Equal(t, 25, c.Point(5, 50, 100, 0).X)
}

func TestPointDegenerateRanges(t *testing.T) {
	c := NewCoordinates(0, Rect{Left: 5, Top: 7, Width: 100, Height: 50})
	assert.Equal(t, Point{X: 5, Y: 7}, c.Point(3, 80, 80, 80))
}

func TestStartDate(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 42, 9, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), StartDate(now, 7))
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), StartDate(now, 0))
}

func TestDayOffset(t *testing.T) {
	assert.Equal(t, 0, DayOffset(start, start.Add(23*time.Hour)))
	assert.Equal(t, 1, DayOffset(start, start.Add(24*time.Hour)))
	assert.Equal(t, 5, DayOffset(start, start.AddDate(0, 0, 5).Add(8*time.Hour)))
}

func TestBounds(t *testing.T) {
	tests := []struct {
		name        string
		values      []float64
		isWeight    bool
		goal        float64
		floor, ceil int
	}{
		{"weight with goal", []float64{82.3, 85.1}, true, 80, 70, 90},
		{"weight goal below data", []float64{95, 92}, true, 91.5, 90, 100},
		{"no data no goal", nil, false, 0, 20, 40},
		{"weight goal no data", nil, true, 80, 70, 160},
		{"waist ignores goal", []float64{15, 25}, false, 80, 10, 30},
		{"goal of one ignored", []float64{45}, true, 1, 40, 50},
		{"single value on the tens", []float64{70}, true, 0, 70, 80},
		{"equal values on the tens", []float64{90, 90}, false, 0, 90, 100},
		{"zero value", []float64{0}, false, 0, 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			floor, ceil := Bounds(tt.values, tt.isWeight, tt.goal)
			assert.Equal(t, tt.floor, floor, "floor")
			assert.Equal(t, tt.ceil, ceil, "ceiling")
		})
	}
}

func TestPathSkipsSameDay(t *testing.T) {
	c := models.NewCatalog()
	weight := c.MustByName(models.TypeWeight)
	s := NewSeries(weight, start, 10, []*models.Measurement{
		sample(weight, 0, 7, 80),
		sample(weight, 0, 20, 79),
		sample(weight, 2, 7, 78),
		sample(weight, 5, 7, 77),
	}, true, 0)

	require.Equal(t, 70, s.Floor)
	require.Equal(t, 80, s.Ceiling)

	ops := s.Path(NewCoordinates(10, Rect{Width: 100, Height: 50}))
	assert.Equal(t, []Op{
		{Kind: MoveTo, Point: Point{X: 0, Y: 0}},
		{Kind: LineTo, Point: Point{X: 20, Y: 10}},
		{Kind: LineTo, Point: Point{X: 50, Y: 15}},
	}, ops)
}

func TestEmptySeriesPath(t *testing.T) {
	c := models.NewCatalog()
	s := NewSeries(c.MustByName(models.TypeWaist), start, 10, nil, true, 0)
	assert.True(t, s.Empty())
	assert.Empty(t, s.Path(NewCoordinates(10, Rect{Width: 100, Height: 50})))
}

func TestImperialSeries(t *testing.T) {
	c := models.NewCatalog()
	weight := c.MustByName(models.TypeWeight)
	s := NewSeries(weight, start, 10, []*models.Measurement{sample(weight, 1, 0, 95)}, false, 80)

	assert.InDelta(t, 176, s.Goal, 1e-6)
	assert.InDeltaSlice(t, []float64{209}, s.Values(), 1e-6)
	assert.Equal(t, 170, s.Floor)
	assert.Equal(t, 210, s.Ceiling)
}

func TestSingleSampleOnTensHasSpan(t *testing.T) {
	c := models.NewCatalog()
	weight := c.MustByName(models.TypeWeight)
	s := NewSeries(weight, start, 10, []*models.Measurement{sample(weight, 2, 8, 70)}, true, 0)

	assert.Equal(t, 70, s.Floor)
	assert.Equal(t, 80, s.Ceiling)
	assert.Equal(t, "80", s.ValueLabel(0, 2))
	assert.Equal(t, "75", s.ValueLabel(1, 2))
	assert.Equal(t, "70", s.ValueLabel(2, 2))

	coords := NewCoordinates(10, Rect{Width: 100, Height: 50})
	assert.Equal(t, 50, coords.Point(2, 70, s.Ceiling, s.Floor).Y)
}

func TestLabels(t *testing.T) {
	c := models.NewCatalog()
	s := &Series{Type: c.MustByName(models.TypeWeight), Start: start, Days: 10, Floor: 70, Ceiling: 80}

	assert.Equal(t, "80", s.ValueLabel(0, 5))
	assert.Equal(t, "78", s.ValueLabel(1, 5))
	assert.Equal(t, "70", s.ValueLabel(5, 5))

	assert.Equal(t, "01/01", s.DateLabel(0, 5))
	assert.Equal(t, "05/01", s.DateLabel(2, 5))
	assert.Equal(t, "11/01", s.DateLabel(5, 5))
}

type fakeSource struct {
	since time.Time
	rows  []*models.Measurement
	err   error
}

func (f *fakeSource) ListSince(_ context.Context, _ string, since time.Time) ([]*models.Measurement, error) {
	f.since = since
	return f.rows, f.err
}

func TestLoad(t *testing.T) {
	c := models.NewCatalog()
	weight := c.MustByName(models.TypeWeight)
	src := &fakeSource{rows: []*models.Measurement{sample(weight, 1, 8, 84)}}
	now := time.Date(2024, 1, 11, 9, 30, 0, 0, time.UTC)

	s, err := Load(context.Background(), src, weight, now, 10, true, 80)
	require.NoError(t, err)
	assert.Equal(t, start, src.since)
	assert.Equal(t, start, s.Start)
	assert.Equal(t, 70, s.Floor)
	assert.Equal(t, 90, s.Ceiling)

	src.err = errors.New("boom")
	_, err = Load(context.Background(), src, weight, now, 10, true, 80)
	assert.Error(t, err)
}

func TestRenderSVG(t *testing.T) {
	c := models.NewCatalog()
	weight := c.MustByName(models.TypeWeight)
	s := NewSeries(weight, start, 10, []*models.Measurement{
		sample(weight, 0, 8, 84),
		sample(weight, 4, 8, 83),
	}, true, 80)

	var buf bytes.Buffer
	require.NoError(t, RenderSVG(&buf, s, Options{Title: "Weight <kg>"}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Contains(t, out, "</svg>")
	assert.Contains(t, out, `class="goal"`)
	assert.Contains(t, out, `stroke="#00ffff"`)
	assert.Contains(t, out, "Weight &lt;kg&gt;")
	assert.Contains(t, out, `d="M`)
	assert.Contains(t, out, ">01/01<")
}

func TestRenderSVGWithoutData(t *testing.T) {
	c := models.NewCatalog()
	s := NewSeries(c.MustByName(models.TypeWaist), start, 10, nil, true, 0)

	var buf bytes.Buffer
	require.NoError(t, RenderSVG(&buf, s, Options{}))
	assert.NotContains(t, buf.String(), "<path")
	assert.NotContains(t, buf.String(), `class="goal"`)
}

func TestSparkline(t *testing.T) {
	c := models.NewCatalog()
	waist := c.MustByName(models.TypeWaist)
	s := NewSeries(waist, start, 10, []*models.Measurement{
		sample(waist, 0, 0, 70),
		sample(waist, 1, 0, 75),
		sample(waist, 2, 0, 80),
	}, true, 0)

	assert.Equal(t, "▁▄█", Sparkline(s))
	assert.Equal(t, "", Sparkline(NewSeries(waist, start, 10, nil, true, 0)))
}
