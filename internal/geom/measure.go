package geom

import "math"

// quadSteps is the subdivision count for numerical curve lengths. Corners
// are small relative to runs, so a modest step count is plenty.
const quadSteps = 16

// CornerSpan is one transition's extent as percentages of total path
// length.
type CornerSpan struct {
	Start, End float64
}

// PathMetrics is the arc-length analysis of one path: total length and
// where each corner falls along it. Gradient stops are positioned by these
// percentages, not by date.
type PathMetrics struct {
	Total   float64
	Corners []CornerSpan
	StartX  float64
	EndX    float64
}

// Measure walks a path's segments and accumulates arc length: exact for
// straight pieces, numerically subdivided for the corner curves. A path
// with no length yields zero metrics; callers fall back to a flat
// gradient.
func Measure(p Path) PathMetrics {
	type mark struct {
		start, end float64
	}
	var (
		total float64
		marks []mark
	)
	for _, s := range p.Segments {
		switch seg := s.(type) {
		case Run:
			total += seg.Length()
		case Transition:
			start := total
			total += transitionLength(seg)
			marks = append(marks, mark{start, total})
		}
	}

	m := PathMetrics{Total: total, StartX: p.StartX, EndX: p.EndX}
	if total <= 0 {
		return m
	}
	for _, mk := range marks {
		m.Corners = append(m.Corners, CornerSpan{
			Start: 100 * mk.start / total,
			End:   100 * mk.end / total,
		})
	}
	return m
}

// transitionLength reconstructs a corner's three pieces from its stored
// radii: entry curve, vertical run, exit curve.
func transitionLength(tr Transition) float64 {
	dirY := 1.0
	if tr.ExitY < tr.EntryY {
		dirY = -1
	}
	entryEndY := tr.EntryY + dirY*tr.R1
	exitStartY := tr.ExitY - dirY*tr.R2

	l := quadLength(tr.EntryX, tr.EntryY, tr.CornerX, tr.EntryY, tr.CornerX, entryEndY)
	l += math.Abs(exitStartY - entryEndY)
	l += quadLength(tr.CornerX, exitStartY, tr.CornerX, tr.ExitY, tr.ExitX, tr.ExitY)
	return l
}

// quadLength approximates a quadratic curve's length by uniform
// subdivision.
func quadLength(x0, y0, cx, cy, x1, y1 float64) float64 {
	px, py := x0, y0
	var sum float64
	for i := 1; i <= quadSteps; i++ {
		t := float64(i) / quadSteps
		u := 1 - t
		x := u*u*x0 + 2*u*t*cx + t*t*x1
		y := u*u*y0 + 2*u*t*cy + t*t*y1
		sum += math.Hypot(x-px, y-py)
		px, py = x, y
	}
	return sum
}

// Monotonic reports whether the path's X coordinates never move against
// the time direction; sgn is the scale's direction sign. A false result
// means the geometry backtracked and would draw a visible loop.
func Monotonic(p Path, sgn float64) bool {
	const eps = 1e-6
	var (
		prev float64
		have bool
	)
	check := func(x float64) bool {
		if have && sgn*(x-prev) < -eps {
			return false
		}
		prev, have = x, true
		return true
	}
	for _, op := range p.Ops {
		if op.Cmd == QuadTo {
			if !check(op.CX) {
				return false
			}
		}
		if !check(op.X) {
			return false
		}
	}
	return true
}
