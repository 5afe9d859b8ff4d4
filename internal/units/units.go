// ABOUTME: Physical units for measurements and metric/imperial conversion.
// ABOUTME: Values are always stored metric; imperial is only a display view.
package units

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Unit is the physical unit a measurement is stored in.
type Unit string

const (
	LengthCM Unit = "CM"
	MassKG   Unit = "KG"
	Percent  Unit = "PERCENT"
)

var (
	// ErrNotANumber is returned when input is not a number in any supported form.
	ErrNotANumber = errors.New("not a number")
	// ErrParse is returned when input looks numeric but cannot be represented.
	ErrParse = errors.New("cannot parse number")
	// ErrUnknownUnit is returned by Parse for names outside the fixed set.
	ErrUnknownUnit = errors.New("unknown unit")
)

type unitDef struct {
	toImperial float64
	metric     string
	imperial   string
}

var unitTable = map[Unit]unitDef{
	LengthCM: {toImperial: 0.39, metric: "cm", imperial: "in"},
	MassKG:   {toImperial: 2.2, metric: "kg", imperial: "lb"},
	Percent:  {toImperial: 1, metric: "%", imperial: "%"},
}

// All lists the supported units.
var All = []Unit{LengthCM, MassKG, Percent}

// Parse resolves a persisted unit name.
func Parse(name string) (Unit, error) {
	u := Unit(strings.ToUpper(strings.TrimSpace(name)))
	if _, ok := unitTable[u]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, name)
	}
	return u, nil
}

func (u Unit) def() unitDef {
	if d, ok := unitTable[u]; ok {
		return d
	}
	return unitDef{toImperial: 1}
}

// Factor returns the metric-to-imperial multiplier.
func (u Unit) Factor() float64 {
	return u.def().toImperial
}

// ToImperial converts a metric value to its imperial equivalent.
func (u Unit) ToImperial(metric float64) float64 {
	return metric * u.def().toImperial
}

// ToMetric converts an imperial value back to metric.
func (u Unit) ToMetric(imperial float64) float64 {
	return imperial / u.def().toImperial
}

// Convert converts v to metric when toMetric is set, otherwise to imperial.
func (u Unit) Convert(v float64, toMetric bool) float64 {
	if toMetric {
		return u.ToMetric(v)
	}
	return u.ToImperial(v)
}

// FormatMetric formats a metric value in the fixed English locale.
func (u Unit) FormatMetric(metric float64) string {
	return formatNumber(metric)
}

// FormatImperial formats the imperial conversion of a metric value.
func (u Unit) FormatImperial(metric float64) string {
	return formatNumber(u.ToImperial(metric))
}

// Format formats a metric value in the requested unit system.
func (u Unit) Format(metric float64, asMetric bool) string {
	if asMetric {
		return u.FormatMetric(metric)
	}
	return u.FormatImperial(metric)
}

// Label returns the display suffix for the requested unit system.
func (u Unit) Label(metric bool) string {
	if metric {
		return u.def().metric
	}
	return u.def().imperial
}

func (u Unit) String() string {
	return string(u)
}

// formatNumber builds a printer per call; message.Printer is not safe to share.
func formatNumber(v float64) string {
	p := message.NewPrinter(language.English)
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// ParseNumber parses a plain float, falling back to the English grouped form.
func ParseNumber(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	v, err := strconv.ParseFloat(s, 64)
	if err == nil {
		// ParseFloat also accepts "NaN" and "Inf" spellings.
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: %q", ErrNotANumber, raw)
		}
		return v, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: %q", ErrParse, raw)
	}

	v, ok := parseGrouped(s)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, raw)
	}
	if math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, raw)
	}
	if math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrParse, raw)
	}
	return v, nil
}

// parseGrouped accepts English digit grouping, e.g. "1,234.5".
func parseGrouped(s string) (float64, bool) {
	if !strings.Contains(s, ",") {
		return 0, false
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	sign := ""
	if strings.HasPrefix(intPart, "-") || strings.HasPrefix(intPart, "+") {
		sign, intPart = intPart[:1], intPart[1:]
	}
	groups := strings.Split(intPart, ",")
	for i, g := range groups {
		if g == "" || len(g) > 3 || (i > 0 && len(g) != 3) {
			return 0, false
		}
	}
	plain := sign + strings.Join(groups, "")
	if hasFrac {
		plain += "." + frac
	}
	v, err := strconv.ParseFloat(plain, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
