// ABOUTME: Validation and lookup errors for measurements and measure types.
// ABOUTME: Callers match with errors.Is and show Describe(err) to the user.
package models

import (
	"errors"

	"github.com/harperreed/measure/internal/units"
)

var (
	ErrEmptyInput  = errors.New("no input")
	ErrNotANumber  = units.ErrNotANumber
	ErrParse       = units.ErrParse
	ErrSubZero     = errors.New("value below zero")
	ErrTooLarge    = errors.New("value too large")
	ErrDateParse   = errors.New("cannot parse date")
	ErrNoType      = errors.New("measurement has no type")
	ErrNoData      = errors.New("no data")
	ErrUnknownType = errors.New("unknown measure type")
)

// Describe returns a short user-facing message for validation errors.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyInput):
		return "Please enter a value."
	case errors.Is(err, ErrNotANumber):
		return "That is not a number."
	case errors.Is(err, ErrParse):
		return "The value could not be read."
	case errors.Is(err, ErrSubZero):
		return "The value must not be negative."
	case errors.Is(err, ErrTooLarge):
		return "The value is larger than allowed for this measurement."
	case errors.Is(err, ErrDateParse):
		return "The date could not be read."
	case errors.Is(err, ErrUnknownType):
		return "Unknown measurement type."
	case errors.Is(err, ErrNoData):
		return "No measurements recorded yet."
	default:
		return err.Error()
	}
}
