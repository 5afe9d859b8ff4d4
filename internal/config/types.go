// ABOUTME: Custom measure type definitions read from and written to TOML files.
// ABOUTME: Each [[type]] table becomes a tracking row merged into the catalog.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/harperreed/measure/internal/models"
	"github.com/harperreed/measure/internal/units"
)

var ErrInvalidType = errors.New("invalid type definition")

// TypeDef is one [[type]] entry.
type TypeDef struct {
	Name      string  `toml:"name"`
	Unit      string  `toml:"unit"`
	Max       float64 `toml:"max"`
	SmallStep float64 `toml:"small_step"`
	BigStep   float64 `toml:"big_step"`
	Color     string  `toml:"color,omitempty"`
	Enabled   bool    `toml:"enabled"`
}

// TypesFile is the document layout.
type TypesFile struct {
	Types []TypeDef `toml:"type"`
}

// Row validates the definition and converts it to a tracking row.
func (d TypeDef) Row() (models.TypeRow, error) {
	name := strings.ToUpper(strings.TrimSpace(d.Name))
	if name == "" {
		return models.TypeRow{}, fmt.Errorf("%w: missing name", ErrInvalidType)
	}
	u, err := units.Parse(d.Unit)
	if err != nil {
		return models.TypeRow{}, fmt.Errorf("%w: %s: %w", ErrInvalidType, name, err)
	}
	if d.Max <= 0 {
		return models.TypeRow{}, fmt.Errorf("%w: %s: max must be positive", ErrInvalidType, name)
	}
	if d.SmallStep <= 0 || d.BigStep < d.SmallStep {
		return models.TypeRow{}, fmt.Errorf("%w: %s: steps must satisfy 0 < small_step <= big_step", ErrInvalidType, name)
	}
	return models.TypeRow{
		Name:      name,
		Unit:      u,
		MaxValue:  d.Max,
		SmallStep: d.SmallStep,
		BigStep:   d.BigStep,
		Enabled:   d.Enabled,
		Color:     d.Color,
	}, nil
}

// ReadTypes decodes and validates a types document.
func ReadTypes(r io.Reader) ([]models.TypeRow, error) {
	var f TypesFile
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode types: %w", err)
	}
	rows := make([]models.TypeRow, 0, len(f.Types))
	seen := make(map[string]bool)
	for _, def := range f.Types {
		row, err := def.Row()
		if err != nil {
			return nil, err
		}
		if seen[row.Name] {
			return nil, fmt.Errorf("%w: duplicate name %s", ErrInvalidType, row.Name)
		}
		seen[row.Name] = true
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadTypes reads a types file from disk. An empty path yields no rows.
func LoadTypes(path string) ([]models.TypeRow, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(ExpandPath(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTypes(f)
}

// WriteTypes encodes rows as a types document.
func WriteTypes(w io.Writer, rows []models.TypeRow) error {
	f := TypesFile{Types: make([]TypeDef, 0, len(rows))}
	for _, row := range rows {
		f.Types = append(f.Types, TypeDef{
			Name:      row.Name,
			Unit:      row.Unit.String(),
			Max:       row.MaxValue,
			SmallStep: row.SmallStep,
			BigStep:   row.BigStep,
			Color:     row.Color,
			Enabled:   row.Enabled,
		})
	}
	if err := toml.NewEncoder(w).Encode(f); err != nil {
		return fmt.Errorf("failed to encode types: %w", err)
	}
	return nil
}
