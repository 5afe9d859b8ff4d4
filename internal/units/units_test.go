// ABOUTME: Tests for unit conversion, formatting and number parsing.
// ABOUTME: Covers round-trip conversion and the two parsing strategies.
package units

import (
	"errors"
	"math"
	"testing"
)

func TestRoundTripConversion(t *testing.T) {
	values := []float64{0, 0.1, 1, 18.5, 72.5, 175, 999, 12345.678}

	for _, u := range All {
		for _, v := range values {
			got := u.ToMetric(u.ToImperial(v))
			if math.Abs(got-v) > 1e-9 {
				t.Errorf("%s: ToMetric(ToImperial(%v)) = %v", u, v, got)
			}
		}
	}
}

func TestToImperial(t *testing.T) {
	tests := []struct {
		unit Unit
		in   float64
		want float64
	}{
		{MassKG, 100, 220},
		{LengthCM, 100, 39},
		{Percent, 25, 25},
	}

	for _, tt := range tests {
		t.Run(string(tt.unit), func(t *testing.T) {
			if got := tt.unit.ToImperial(tt.in); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ToImperial(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if got := tt.unit.Convert(tt.want, true); math.Abs(got-tt.in) > 1e-9 {
				t.Errorf("Convert(%v, true) = %v, want %v", tt.want, got, tt.in)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		unit     Unit
		metric   string
		imperial string
	}{
		{MassKG, "kg", "lb"},
		{LengthCM, "cm", "in"},
		{Percent, "%", "%"},
	}

	for _, tt := range tests {
		if got := tt.unit.Label(true); got != tt.metric {
			t.Errorf("%s.Label(true) = %q, want %q", tt.unit, got, tt.metric)
		}
		if got := tt.unit.Label(false); got != tt.imperial {
			t.Errorf("%s.Label(false) = %q, want %q", tt.unit, got, tt.imperial)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		unit   Unit
		value  float64
		metric bool
		want   string
	}{
		{"metric weight", MassKG, 72.5, true, "72.5"},
		{"imperial weight", MassKG, 72.5, false, "159.5"},
		{"grouping", MassKG, 1234.5, true, "1,234.5"},
		{"three fraction digits", LengthCM, 1.23456, true, "1.235"},
		{"whole number", Percent, 20, true, "20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.unit.Format(tt.value, tt.metric); got != tt.want {
				t.Errorf("Format(%v, %v) = %q, want %q", tt.value, tt.metric, got, tt.want)
			}
		})
	}
}

func TestFormatThenParse(t *testing.T) {
	values := []float64{0, 0.5, 72.5, 1234.567, 98765.4}

	for _, v := range values {
		s := MassKG.FormatMetric(v)
		got, err := ParseNumber(s)
		if err != nil {
			t.Fatalf("ParseNumber(%q) failed: %v", s, err)
		}
		if math.Abs(got-v) > 0.0005 {
			t.Errorf("ParseNumber(FormatMetric(%v)) = %v", v, got)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr error
	}{
		{"plain", "82.5", 82.5, nil},
		{"padded", " 82.5 ", 82.5, nil},
		{"negative", "-3", -3, nil},
		{"grouped", "1,234.5", 1234.5, nil},
		{"grouped millions", "1,234,567", 1234567, nil},
		{"bad grouping", "12,34", 0, ErrNotANumber},
		{"letters", "abc", 0, ErrNotANumber},
		{"out of range", "1e999", 0, ErrParse},
		{"NaN", "NaN", 0, ErrNotANumber},
		{"lower nan", "nan", 0, ErrNotANumber},
		{"infinity", "Inf", 0, ErrNotANumber},
		{"negative infinity", "-infinity", 0, ErrNotANumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNumber(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseNumber(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseNumber(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	for _, u := range All {
		got, err := Parse(string(u))
		if err != nil || got != u {
			t.Errorf("Parse(%q) = %v, %v", u, got, err)
		}
	}
	if got, err := Parse("kg"); err != nil || got != MassKG {
		t.Errorf("Parse(kg) = %v, %v", got, err)
	}
	if _, err := Parse("STONE"); !errors.Is(err, ErrUnknownUnit) {
		t.Errorf("Parse(STONE) error = %v, want ErrUnknownUnit", err)
	}
}
