// Package scale maps dates to horizontal pixel coordinates. A Map is a pure
// value: linear over its configured domain, direction-aware, and safe to
// copy. Under RTL layout, forward in time means decreasing X.
package scale

import (
	"math"
	"time"
)

// Dir is the horizontal reading direction of the timeline.
type Dir int

const (
	LTR Dir = iota
	RTL
)

func (d Dir) String() string {
	if d == RTL {
		return "rtl"
	}
	return "ltr"
}

// Map converts between the time domain [Start, End] and the pixel range
// [MinX, MaxX]. End is the "present" edge: the date open-ended lifelines
// extend to.
type Map struct {
	start, end time.Time
	minX, maxX float64
	dir        Dir
}

// New builds a Map over the given domain and range. A reversed domain is
// treated as zero-length.
func New(start, end time.Time, minX, maxX float64, dir Dir) Map {
	if end.Before(start) {
		end = start
	}
	return Map{start: start, end: end, minX: minX, maxX: maxX, dir: dir}
}

// X maps a date to its pixel coordinate. Dates outside the domain
// extrapolate linearly. A degenerate (zero-length) domain maps everything to
// the start edge.
func (m Map) X(t time.Time) float64 {
	span := m.end.Sub(m.start)
	if span <= 0 {
		return m.StartX()
	}
	frac := float64(t.Sub(m.start)) / float64(span)
	x := m.at(frac)
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return m.StartX()
	}
	return x
}

// at maps a domain fraction to a pixel coordinate in the configured
// direction.
func (m Map) at(frac float64) float64 {
	if m.dir == RTL {
		return m.maxX - frac*(m.maxX-m.minX)
	}
	return m.minX + frac*(m.maxX-m.minX)
}

// StartX returns the pixel coordinate of the domain start: the left edge
// under LTR, the right edge under RTL.
func (m Map) StartX() float64 {
	if m.dir == RTL {
		return m.maxX
	}
	return m.minX
}

// PresentX returns the pixel coordinate of the domain end, where open-ended
// lifelines terminate.
func (m Map) PresentX() float64 {
	if m.dir == RTL {
		return m.minX
	}
	return m.maxX
}

// Invert maps a pixel coordinate back to a date, for hit-testing. On a
// degenerate domain it returns the start date.
func (m Map) Invert(x float64) time.Time {
	width := m.maxX - m.minX
	span := m.end.Sub(m.start)
	if width == 0 || span <= 0 {
		return m.start
	}
	var frac float64
	if m.dir == RTL {
		frac = (m.maxX - x) / width
	} else {
		frac = (x - m.minX) / width
	}
	return m.start.Add(time.Duration(frac * float64(span)))
}

// Domain returns the time domain.
func (m Map) Domain() (start, end time.Time) {
	return m.start, m.end
}

// Range returns the pixel range.
func (m Map) Range() (minX, maxX float64) {
	return m.minX, m.maxX
}

// Direction returns the configured reading direction.
func (m Map) Direction() Dir {
	return m.dir
}

// Sign returns +1 when forward time maps to increasing X, -1 under RTL.
// Geometry code multiplies horizontal offsets by this.
func (m Map) Sign() float64 {
	if m.dir == RTL {
		return -1
	}
	return 1
}

// Tick is one labeled axis mark.
type Tick struct {
	Time  time.Time
	X     float64
	Label string
}

// MonthTicks returns a tick at the first of every month inside the domain,
// labeled "Jan 2006". The tick at the domain start is included even
// mid-month so the axis never starts unlabeled.
func (m Map) MonthTicks() []Tick {
	if !m.end.After(m.start) {
		return nil
	}
	ticks := []Tick{{Time: m.start, X: m.X(m.start), Label: m.start.Format("Jan 2006")}}

	t := time.Date(m.start.Year(), m.start.Month(), 1, 0, 0, 0, 0, m.start.Location()).AddDate(0, 1, 0)
	for !t.After(m.end) {
		ticks = append(ticks, Tick{Time: t, X: m.X(t), Label: t.Format("Jan 2006")})
		t = t.AddDate(0, 1, 0)
	}
	return ticks
}
