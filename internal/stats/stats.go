// ABOUTME: Derived statistics from a snapshot of weight, goal, height and waist.
// ABOUTME: Pure computation; Load resolves the snapshot from storage and preferences.
package stats

import (
	"errors"
	"math"
	"time"

	"github.com/harperreed/measure/internal/models"
	"github.com/harperreed/measure/internal/units"
)

var (
	ErrNoWaist  = errors.New("waist is not tracked or has no data")
	ErrNoHeight = errors.New("height is not set")
)

const day = 24 * time.Hour

// Input is the snapshot the statistics are computed from. Waist is optional.
type Input struct {
	Start  *models.Measurement
	Latest *models.Measurement
	Goal   *models.Measurement
	Height *models.Measurement
	Waist  *models.Measurement
}

// Statistics computes derived values. It never mutates its inputs.
type Statistics struct {
	start  *models.Measurement
	latest *models.Measurement
	goal   *models.Measurement
	height *models.Measurement
	waist  *models.Measurement
}

// New builds statistics. Start and Latest are required; a missing goal or
// height is treated as zero.
func New(in Input) (*Statistics, error) {
	if in.Start == nil || in.Latest == nil {
		return nil, models.ErrNoData
	}
	s := &Statistics{
		start:  in.Start,
		latest: in.Latest,
		goal:   in.Goal,
		height: in.Height,
		waist:  in.Waist,
	}
	if s.goal == nil {
		s.goal = models.NewValue(units.MassKG, 0)
	}
	if s.height == nil {
		s.height = models.NewValue(units.LengthCM, 0)
	}
	return s, nil
}

func (s *Statistics) Start() *models.Measurement  { return s.start }
func (s *Statistics) Latest() *models.Measurement { return s.latest }
func (s *Statistics) Goal() *models.Measurement   { return s.goal }
func (s *Statistics) Height() *models.Measurement { return s.height }

// BMI returns weight / (height in metres)^2. It returns -1 when weight is not
// in KG, height is not in CM, or height is zero.
func BMI(weight, height *models.Measurement) float64 {
	if weight.Unit() != units.MassKG || height.Unit() != units.LengthCM {
		return -1
	}
	m := height.Value(true) / 100
	if m <= 0 {
		return -1
	}
	return weight.Value(true) / (m * m)
}

// WeightForBMI returns the weight in KG that gives bmi at the given height.
func WeightForBMI(bmi float64, height *models.Measurement) *models.Measurement {
	m := height.Value(true) / 100
	return models.NewValue(units.MassKG, bmi*m*m)
}

// CurrentBMI is the BMI of the latest weight.
func (s *Statistics) CurrentBMI() float64 {
	return BMI(s.latest, s.height)
}

// Loss is start minus latest; negative means a gain.
func (s *Statistics) Loss() *models.Measurement {
	return models.Difference(s.start, s.latest)
}

// ToGoal is latest minus goal.
func (s *Statistics) ToGoal() *models.Measurement {
	return models.Difference(s.latest, s.goal)
}

// ElapsedDays is the number of whole days between the first and latest entry.
func (s *Statistics) ElapsedDays() int {
	return int(s.latest.Timestamp.Sub(s.start.Timestamp) / day)
}

// AverageDailyLoss divides the loss by whole elapsed days. With zero elapsed
// days the undivided loss is returned.
func (s *Statistics) AverageDailyLoss() *models.Measurement {
	loss := s.Loss()
	days := s.ElapsedDays()
	if days <= 0 {
		return loss
	}
	return models.NewValue(units.MassKG, loss.Value(true)/float64(days))
}

// WaistToHeight returns waist / height.
func (s *Statistics) WaistToHeight() (float64, error) {
	if s.waist == nil {
		return 0, ErrNoWaist
	}
	h := s.height.Value(true)
	if h <= 0 {
		return 0, ErrNoHeight
	}
	return s.waist.Value(true) / h, nil
}

// EstimatedGoalDate projects the average daily loss onto the remaining
// distance, counted in days from today's midnight. It reports false when the
// average loss is not positive.
func (s *Statistics) EstimatedGoalDate(now time.Time) (time.Time, bool) {
	avg := s.AverageDailyLoss().Value(true)
	if avg <= 0 {
		return time.Time{}, false
	}
	days := int(math.Round(s.ToGoal().Value(true) / avg))
	today := Midnight(now)
	if days <= 0 {
		return today, true
	}
	return today.AddDate(0, 0, days), true
}

// Midnight truncates t to the start of its day in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
