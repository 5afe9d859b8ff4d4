// ABOUTME: Catalog is the registry of measure types keyed by name.
// ABOUTME: Built at startup with the built-ins, then merged with persisted tracking rows.
package models

import (
	"fmt"
	"sync"
)

// Catalog maps type names to measure types. It is safe for concurrent use;
// Load replaces merged entries instead of mutating types readers may hold.
type Catalog struct {
	mu    sync.RWMutex
	types map[string]*MeasureType
	order []string
}

// NewCatalog returns a catalog holding the built-in types.
func NewCatalog() *Catalog {
	c := &Catalog{types: make(map[string]*MeasureType)}
	for _, t := range builtinTypes() {
		c.types[t.Name] = t
		c.order = append(c.order, t.Name)
	}
	return c
}

// ByName looks up a type by its name.
func (c *Catalog) ByName(name string) (*MeasureType, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	return t, nil
}

// MustByName is ByName for names known to be registered, such as the built-ins.
func (c *Catalog) MustByName(name string) *MeasureType {
	t, err := c.ByName(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Types lists all registered types in registration order.
func (c *Catalog) Types() []*MeasureType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*MeasureType, 0, len(c.order))
	for _, name := range c.order {
		result = append(result, c.types[name])
	}
	return result
}

// Builtins returns the four types every catalog starts with.
func (c *Catalog) Builtins() []*MeasureType {
	return []*MeasureType{
		c.MustByName(TypeWeight),
		c.MustByName(TypeBodyFat),
		c.MustByName(TypeWaist),
		c.MustByName(TypeHeight),
	}
}

// Enabled returns WEIGHT followed by BODYFAT and WAIST when the user tracks them.
func (c *Catalog) Enabled(prefs Preferences) []*MeasureType {
	result := []*MeasureType{c.MustByName(TypeWeight)}
	for _, name := range []string{TypeBodyFat, TypeWaist} {
		if prefs.IsEnabled(name) {
			result = append(result, c.MustByName(name))
		}
	}
	return result
}

// Load merges persisted tracking rows. Known names only take the row's bounds
// and steps; unknown names are added as new types.
func (c *Catalog) Load(rows []TypeRow) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, row := range rows {
		existing, ok := c.types[row.Name]
		if !ok {
			c.types[row.Name] = fromRow(row)
			c.order = append(c.order, row.Name)
			continue
		}
		merged := *existing
		merged.MaxValue = row.MaxValue
		merged.SmallStep = row.SmallStep
		merged.BigStep = row.BigStep
		merged.RowID = row.RowID
		c.types[row.Name] = &merged
	}
}

// FromRow rebuilds a measurement, resolving its type by name.
func (c *Catalog) FromRow(row Row) (*Measurement, error) {
	t, err := c.ByName(row.TypeName)
	if err != nil {
		return nil, err
	}
	return t.CreateMeasurement(&row)
}
