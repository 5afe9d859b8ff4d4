// ABOUTME: A time series of one measure type over a look-back window.
// ABOUTME: Computes axis bounds, day offsets, the drawable path and axis labels.
package chart

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/harperreed/measure/internal/models"
)

const dateLabelLayout = "02/01"

// Source returns measurements of a type at or after since, oldest first.
type Source interface {
	ListSince(ctx context.Context, typeName string, since time.Time) ([]*models.Measurement, error)
}

// Series holds the samples and bounds for one chart. Values and bounds are in
// the display unit system.
type Series struct {
	Type    *models.MeasureType
	Start   time.Time
	Days    int
	Metric  bool
	Floor   int
	Ceiling int
	// Goal is the goal in display units, zero when unset or not a weight chart.
	Goal    float64
	Samples []*models.Measurement
}

// StartDate is midnight, days days before now.
func StartDate(now time.Time, days int) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d-days, 0, 0, 0, 0, now.Location())
}

// DayOffset is the number of whole days from start to ts.
func DayOffset(start, ts time.Time) int {
	return int(ts.Sub(start) / (24 * time.Hour))
}

// Bounds returns floor and ceiling rounded out to tens. For weight with a goal
// above 1 the initial floor guess is goal-1 so the goal line stays visible;
// otherwise it is the first value, or 20 without data. A zero span widens to
// one band of ten.
func Bounds(values []float64, isWeight bool, goal float64) (floor, ceiling int) {
	var lo, hi float64
	switch {
	case isWeight && goal > 1:
		lo = goal - 1
	case len(values) > 0:
		lo = values[0]
	default:
		lo = 20
	}
	if len(values) > 0 {
		hi = values[0]
	} else {
		hi = lo * 2
	}
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	floor = int(math.Floor(lo/10)) * 10
	ceiling = int(math.Ceil(hi/10)) * 10
	if ceiling <= floor {
		ceiling = floor + 10
	}
	return floor, ceiling
}

// NewSeries builds a series from samples ordered oldest first. goalKG is the
// metric goal weight and only applies to WEIGHT.
func NewSeries(t *models.MeasureType, start time.Time, days int, samples []*models.Measurement, metric bool, goalKG float64) *Series {
	s := &Series{Type: t, Start: start, Days: days, Metric: metric, Samples: samples}
	isWeight := t.Name == models.TypeWeight
	if isWeight && goalKG > 0 {
		s.Goal = models.NewValue(t.Unit, goalKG).Value(metric)
	}
	s.Floor, s.Ceiling = Bounds(s.Values(), isWeight, s.Goal)
	return s
}

// Load fetches the window's samples from src.
func Load(ctx context.Context, src Source, t *models.MeasureType, now time.Time, days int, metric bool, goalKG float64) (*Series, error) {
	start := StartDate(now, days)
	samples, err := src.ListSince(ctx, t.Name, start)
	if err != nil {
		return nil, fmt.Errorf("load %s since %s: %w", t.Name, start.Format(time.DateOnly), err)
	}
	return NewSeries(t, start, days, samples, metric, goalKG), nil
}

// Values returns the sample values in display units.
func (s *Series) Values() []float64 {
	values := make([]float64, len(s.Samples))
	for i, m := range s.Samples {
		values[i] = m.Value(s.Metric)
	}
	return values
}

// Empty reports whether the window has no samples.
func (s *Series) Empty() bool {
	return len(s.Samples) == 0
}

// OpKind is a path operation.
type OpKind int

const (
	MoveTo OpKind = iota
	LineTo
)

// Op is one step of a drawable path.
type Op struct {
	Kind OpKind
	Point
}

// Path moves to the first sample and draws lines to the rest. A sample that
// maps to the same X pixel as its predecessor is skipped, so only the first
// entry of a day is connected.
func (s *Series) Path(c *Coordinates) []Op {
	var ops []Op
	var last *Point
	for _, m := range s.Samples {
		day := float64(DayOffset(s.Start, m.Timestamp))
		p := c.Point(day, m.Value(s.Metric), s.Ceiling, s.Floor)
		switch {
		case last == nil:
			ops = append(ops, Op{Kind: MoveTo, Point: p})
		case last.X != p.X:
			ops = append(ops, Op{Kind: LineTo, Point: p})
		}
		last = &p
	}
	return ops
}

// ValueLabel is the value shown at vertical segment of segments, from the top.
func (s *Series) ValueLabel(segment, segments int) string {
	perSegment := (s.Ceiling - s.Floor) / segments
	return strconv.Itoa(s.Ceiling - segment*perSegment)
}

// LabelDate is the date at horizontal segment of segments.
func (s *Series) LabelDate(segment, segments int) time.Time {
	daysPerSegment := s.Days / segments
	return s.Start.AddDate(0, 0, segment*daysPerSegment)
}

// DateLabel formats LabelDate as day/month.
func (s *Series) DateLabel(segment, segments int) string {
	return s.LabelDate(segment, segments).Format(dateLabelLayout)
}
