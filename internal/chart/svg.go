// ABOUTME: Renders a series as a standalone SVG line chart or a terminal sparkline.
// ABOUTME: The SVG carries value and date axis labels and an optional goal line.
package chart

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"strings"
)

// Options controls SVG output. Zero fields take defaults.
type Options struct {
	Width    int
	Height   int
	Margin   int
	Segments int
	Title    string
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 400
	}
	if o.Margin <= 0 {
		o.Margin = 50
	}
	if o.Segments <= 0 {
		o.Segments = 5
	}
	return o
}

// RenderSVG writes the series as an SVG document.
func RenderSVG(w io.Writer, s *Series, opts Options) error {
	opts = opts.withDefaults()
	rect := Rect{
		Left:   opts.Margin,
		Top:    opts.Margin,
		Width:  opts.Width - 2*opts.Margin,
		Height: opts.Height - 2*opts.Margin,
	}
	coords := NewCoordinates(s.Days, rect)
	bottom := rect.Top + rect.Height
	right := rect.Left + rect.Width

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		opts.Width, opts.Height, opts.Width, opts.Height)
	fmt.Fprintf(bw, `<rect width="100%%" height="100%%" fill="#ffffff"/>`+"\n")
	if opts.Title != "" {
		fmt.Fprintf(bw, `<text x="%d" y="%d" font-family="sans-serif" font-size="16">%s</text>`+"\n",
			rect.Left, opts.Margin/2, html.EscapeString(opts.Title))
	}

	for i := 0; i <= opts.Segments; i++ {
		y := rect.Top + i*rect.Height/opts.Segments
		fmt.Fprintf(bw, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#dddddd"/>`+"\n", rect.Left, y, right, y)
		fmt.Fprintf(bw, `<text x="%d" y="%d" font-family="sans-serif" font-size="11" text-anchor="end">%s</text>`+"\n",
			rect.Left-6, y+4, s.ValueLabel(i, opts.Segments))

		x := rect.Left + i*rect.Width/opts.Segments
		fmt.Fprintf(bw, `<text x="%d" y="%d" font-family="sans-serif" font-size="11" text-anchor="middle">%s</text>`+"\n",
			x, bottom+18, s.DateLabel(i, opts.Segments))
	}

	if s.Goal > 0 && s.Goal >= float64(s.Floor) && s.Goal <= float64(s.Ceiling) {
		g := coords.Point(0, s.Goal, s.Ceiling, s.Floor)
		fmt.Fprintf(bw, `<line class="goal" x1="%d" y1="%d" x2="%d" y2="%d" stroke="#ff0000" stroke-dasharray="6,4"/>`+"\n",
			rect.Left, g.Y, right, g.Y)
	}

	if d := pathData(s.Path(coords)); d != "" {
		fmt.Fprintf(bw, `<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`+"\n", d, strokeColor(s))
	}
	fmt.Fprintln(bw, "</svg>")
	return bw.Flush()
}

func pathData(ops []Op) string {
	parts := make([]string, 0, len(ops))
	for _, op := range ops {
		cmd := "L"
		if op.Kind == MoveTo {
			cmd = "M"
		}
		parts = append(parts, fmt.Sprintf("%s%d %d", cmd, op.X, op.Y))
	}
	return strings.Join(parts, " ")
}

func strokeColor(s *Series) string {
	if s.Type == nil || s.Type.Color == "" || s.Type.Color == "#ffffff" {
		return "#000000"
	}
	return s.Type.Color
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders the sample values scaled between floor and ceiling.
func Sparkline(s *Series) string {
	span := float64(s.Ceiling - s.Floor)
	var b strings.Builder
	for _, v := range s.Values() {
		idx := 0
		if span > 0 {
			idx = int((v - float64(s.Floor)) / span * float64(len(sparkRunes)-1))
		}
		idx = max(0, min(idx, len(sparkRunes)-1))
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}
