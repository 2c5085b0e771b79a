// Package svg renders a computed timeline scene into a standalone SVG
// document: tinted lane bands, one gradient-stroked path per individual,
// and a month axis along the content bottom. The output is deterministic
// for identical input, which keeps snapshot diffs meaningful.
package svg

import (
	"strconv"
	"strings"

	"github.com/peledor/lifelines/internal/gradient"
	"github.com/peledor/lifelines/internal/layout"
	"github.com/peledor/lifelines/internal/scale"
)

// axisSpace is the vertical room reserved below the last band for the axis
// line and its tick labels.
const axisSpace = 36

// Line is one renderable lifeline.
type Line struct {
	ID    string
	D     string // path data, empty lines are skipped
	Stops []gradient.Stop
	Label string // optional caption at the path end
	EndX  float64
	EndY  float64
}

// Params are the document-level rendering knobs.
type Params struct {
	Width       float64 // canvas width; 0 derives it from the scale range
	StrokeWidth float64 // lifeline thickness; 0 means 4
	Background  string  // canvas fill; empty means transparent
	Font        string  // label font family; empty means sans-serif
	BandOpacity float64 // band tint opacity; 0 means 0.08
}

// Render assembles the full SVG document.
func Render(m scale.Map, lay *layout.Layout, lines []Line, p Params) string {
	minX, maxX := m.Range()
	if p.Width <= 0 {
		// Assume symmetric margins around the drawable range.
		p.Width = maxX + minX
	}
	if p.StrokeWidth <= 0 {
		p.StrokeWidth = 4
	}
	if p.Font == "" {
		p.Font = "sans-serif"
	}
	if p.BandOpacity <= 0 {
		p.BandOpacity = 0.08
	}
	height := lay.Height() + axisSpace

	var b strings.Builder
	b.Grow(1 << 14)

	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="`)
	b.WriteString(num(p.Width))
	b.WriteString(`" height="`)
	b.WriteString(num(height))
	b.WriteString(`" viewBox="0 0 `)
	b.WriteString(num(p.Width))
	b.WriteString(" ")
	b.WriteString(num(height))
	b.WriteString("\">\n")

	if p.Background != "" {
		b.WriteString(`  <rect width="100%" height="100%" fill="`)
		b.WriteString(escape(p.Background))
		b.WriteString("\"/>\n")
	}

	writeDefs(&b, lines)
	writeBands(&b, m, lay, p)
	writeLines(&b, m, lines, p)
	writeAxis(&b, m, lay, p)

	b.WriteString("</svg>\n")
	return b.String()
}

// writeDefs emits one horizontal linear gradient per multi-color line.
// Flat lines are stroked directly and need no def.
func writeDefs(b *strings.Builder, lines []Line) {
	var defs strings.Builder
	for i, ln := range lines {
		if ln.D == "" {
			continue
		}
		if _, flat := flatColor(ln.Stops); flat {
			continue
		}
		defs.WriteString(`    <linearGradient id="`)
		defs.WriteString(gradID(i))
		defs.WriteString(`" x1="0%" y1="0%" x2="100%" y2="0%">`)
		defs.WriteString("\n")
		for _, s := range ln.Stops {
			defs.WriteString(`      <stop offset="`)
			defs.WriteString(num(s.Offset))
			defs.WriteString(`%" stop-color="`)
			defs.WriteString(escape(s.Color))
			defs.WriteString("\"/>\n")
		}
		defs.WriteString("    </linearGradient>\n")
	}
	if defs.Len() == 0 {
		return
	}
	b.WriteString("  <defs>\n")
	b.WriteString(defs.String())
	b.WriteString("  </defs>\n")
}

// writeBands tints each occupied lane band across the drawable range and
// labels it at the reading edge.
func writeBands(b *strings.Builder, m scale.Map, lay *layout.Layout, p Params) {
	minX, maxX := m.Range()
	for _, band := range lay.Bands() {
		b.WriteString(`  <rect x="`)
		b.WriteString(num(minX))
		b.WriteString(`" y="`)
		b.WriteString(num(band.YStart))
		b.WriteString(`" width="`)
		b.WriteString(num(maxX - minX))
		b.WriteString(`" height="`)
		b.WriteString(num(band.Height()))
		b.WriteString(`" fill="`)
		b.WriteString(escape(band.Lane.Color))
		b.WriteString(`" fill-opacity="`)
		b.WriteString(num(p.BandOpacity))
		b.WriteString("\"/>\n")

		x, anchor := minX+8, "start"
		if m.Direction() == scale.RTL {
			x, anchor = maxX-8, "end"
		}
		b.WriteString(`  <text x="`)
		b.WriteString(num(x))
		b.WriteString(`" y="`)
		b.WriteString(num(band.YStart + 14))
		b.WriteString(`" font-family="`)
		b.WriteString(escape(p.Font))
		b.WriteString(`" font-size="11" fill="`)
		b.WriteString(escape(band.Lane.Color))
		b.WriteString(`" text-anchor="`)
		b.WriteString(anchor)
		b.WriteString(`">`)
		b.WriteString(escape(band.Lane.Label))
		b.WriteString("</text>\n")
	}
}

// writeLines strokes each lifeline, flat ones by plain color, the rest by
// their gradient def.
func writeLines(b *strings.Builder, m scale.Map, lines []Line, p Params) {
	for i, ln := range lines {
		if ln.D == "" {
			continue
		}
		stroke := "url(#" + gradID(i) + ")"
		if c, flat := flatColor(ln.Stops); flat {
			stroke = c
		}
		b.WriteString(`  <path d="`)
		b.WriteString(escape(ln.D))
		b.WriteString(`" fill="none" stroke="`)
		b.WriteString(escape(stroke))
		b.WriteString(`" stroke-width="`)
		b.WriteString(num(p.StrokeWidth))
		b.WriteString(`" stroke-linecap="round"/>`)
		b.WriteString("\n")

		if ln.Label != "" {
			x, anchor := ln.EndX+6, "start"
			if m.Direction() == scale.RTL {
				x, anchor = ln.EndX-6, "end"
			}
			b.WriteString(`  <text x="`)
			b.WriteString(num(x))
			b.WriteString(`" y="`)
			b.WriteString(num(ln.EndY + 3.5))
			b.WriteString(`" font-family="`)
			b.WriteString(escape(p.Font))
			b.WriteString(`" font-size="10" text-anchor="`)
			b.WriteString(anchor)
			b.WriteString(`">`)
			b.WriteString(escape(ln.Label))
			b.WriteString("</text>\n")
		}
	}
}

// writeAxis draws the baseline under the last band with a labeled tick at
// each month boundary.
func writeAxis(b *strings.Builder, m scale.Map, lay *layout.Layout, p Params) {
	minX, maxX := m.Range()
	y := lay.Height()

	b.WriteString(`  <line x1="`)
	b.WriteString(num(minX))
	b.WriteString(`" y1="`)
	b.WriteString(num(y))
	b.WriteString(`" x2="`)
	b.WriteString(num(maxX))
	b.WriteString(`" y2="`)
	b.WriteString(num(y))
	b.WriteString("\" stroke=\"#9CA3AF\" stroke-width=\"1\"/>\n")

	for _, tick := range m.MonthTicks() {
		b.WriteString(`  <line x1="`)
		b.WriteString(num(tick.X))
		b.WriteString(`" y1="`)
		b.WriteString(num(y))
		b.WriteString(`" x2="`)
		b.WriteString(num(tick.X))
		b.WriteString(`" y2="`)
		b.WriteString(num(y + 5))
		b.WriteString("\" stroke=\"#9CA3AF\" stroke-width=\"1\"/>\n")

		b.WriteString(`  <text x="`)
		b.WriteString(num(tick.X))
		b.WriteString(`" y="`)
		b.WriteString(num(y + 18))
		b.WriteString(`" font-family="`)
		b.WriteString(escape(p.Font))
		b.WriteString(`" font-size="10" fill="#6B7280" text-anchor="middle">`)
		b.WriteString(escape(tick.Label))
		b.WriteString("</text>\n")
	}
}

// flatColor reports whether every stop shares one color.
func flatColor(stops []gradient.Stop) (string, bool) {
	if len(stops) == 0 {
		return "", false
	}
	c := stops[0].Color
	for _, s := range stops[1:] {
		if s.Color != c {
			return "", false
		}
	}
	return c, true
}

func gradID(i int) string {
	return "grad-" + strconv.Itoa(i)
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escape(s string) string {
	return escaper.Replace(s)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
