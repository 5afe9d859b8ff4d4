// ABOUTME: BMI categories with their ranges and display colors.
// ABOUTME: Classify finds the category for a value; Table lists weights per category.
package stats

import (
	"fmt"

	"github.com/harperreed/measure/internal/models"
)

const (
	tableLowerBound = 0
	tableUpperBound = 100
)

// Category is a BMI range (Floor, Ceiling].
type Category struct {
	Name    string
	Floor   float64
	Ceiling float64
	Color   string
}

// Categories are ordered from highest to lowest.
var Categories = []Category{
	{Name: "obese", Floor: 30, Ceiling: 100, Color: "#ff0000"},
	{Name: "overweight", Floor: 25, Ceiling: 30, Color: "#ff8800"},
	{Name: "normal", Floor: 18.5, Ceiling: 25, Color: "#00aa00"},
	{Name: "underweight", Floor: 0, Ceiling: 18.5, Color: "#0088ff"},
}

// Contains reports whether bmi lies in (Floor, Ceiling].
func (c Category) Contains(bmi float64) bool {
	return c.Floor < bmi && bmi <= c.Ceiling
}

// RangeText renders the range as "< 18.5", "18.5 - 25" or "> 30".
func (c Category) RangeText() string {
	switch {
	case c.Floor <= tableLowerBound:
		return fmt.Sprintf("< %g", c.Ceiling)
	case c.Ceiling >= tableUpperBound:
		return fmt.Sprintf("> %g", c.Floor)
	default:
		return fmt.Sprintf("%g - %g", c.Floor, c.Ceiling)
	}
}

// Classify returns the category containing bmi.
func Classify(bmi float64) (Category, bool) {
	for _, c := range Categories {
		if c.Contains(bmi) {
			return c, true
		}
	}
	return Category{}, false
}

// TableRow is one category with the weights at its bounds for a height.
type TableRow struct {
	Category
	MinWeight *models.Measurement
	MaxWeight *models.Measurement
}

// Table lists every category with the weight range it spans at height.
func Table(height *models.Measurement) []TableRow {
	rows := make([]TableRow, 0, len(Categories))
	for _, c := range Categories {
		rows = append(rows, TableRow{
			Category:  c,
			MinWeight: WeightForBMI(c.Floor, height),
			MaxWeight: WeightForBMI(c.Ceiling, height),
		})
	}
	return rows
}
