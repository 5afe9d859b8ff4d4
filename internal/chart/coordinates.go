// ABOUTME: Linear mapping from (day offset, value) to pixel coordinates.
// ABOUTME: Y grows downward, so higher values land on smaller Y.
package chart

// Rect is the drawable area in pixels.
type Rect struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// Point is a pixel position.
type Point struct {
	X int
	Y int
}

// Coordinates maps day offsets in [0, days] across the rect's width.
type Coordinates struct {
	rect   Rect
	minDay int
	maxDay int
}

func NewCoordinates(days int, rect Rect) *Coordinates {
	return &Coordinates{rect: rect, maxDay: days}
}

// SetDays changes the look-back window.
func (c *Coordinates) SetDays(days int) {
	c.maxDay = days
}

func (c *Coordinates) Rect() Rect {
	return c.rect
}

// Point maps a sample to pixels. Fractions are truncated. A zero-width domain
// or value range maps to the left or top edge.
func (c *Coordinates) Point(day, value float64, ceiling, floor int) Point {
	p := Point{X: c.rect.Left, Y: c.rect.Top}
	if span := c.maxDay - c.minDay; span != 0 {
		p.X += int((day - float64(c.minDay)) * float64(c.rect.Width) / float64(span))
	}
	if span := ceiling - floor; span != 0 {
		p.Y += int((float64(ceiling) - value) * float64(c.rect.Height) / float64(span))
	}
	return p
}
