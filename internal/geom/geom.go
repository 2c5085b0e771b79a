// Package geom turns an individual's lane path into drawable vector
// geometry: horizontal runs at row centers joined by rounded rectangular
// corners at each lane change. Runs stay strictly horizontal so that
// distance along the path keeps a meaningful relationship to time, which
// the gradient engine depends on.
package geom

import (
	"strconv"
	"strings"
	"time"

	"github.com/peledor/lifelines/internal/lane"
)

// Cmd is an SVG-style path command.
type Cmd int

const (
	MoveTo Cmd = iota
	LineTo
	QuadTo
)

// Op is one draw operation. CX/CY are the control point and only meaningful
// for QuadTo.
type Op struct {
	Cmd    Cmd
	X, Y   float64
	CX, CY float64
}

// Segment is one semantic piece of a lifeline: either a Run or a
// Transition. The two variants carry exactly the fields their kind needs.
type Segment interface {
	isSegment()
}

// Run is a horizontal stretch at a constant row Y.
type Run struct {
	Y      float64
	X1, X2 float64
}

func (Run) isSegment() {}

// Length returns the run's horizontal extent.
func (r Run) Length() float64 {
	if r.X2 > r.X1 {
		return r.X2 - r.X1
	}
	return r.X1 - r.X2
}

// Transition is a rounded corner connecting two rows: an entry curve into a
// vertical run at the fixed CornerX, then an exit curve onto the target
// row. The corner sits at the target waypoint's date, except when an
// earlier corner already drew up to or past that date; then it drops at
// the drawn edge (R1 shrinks, to zero for coincident dates) so the path
// keeps moving with time.
type Transition struct {
	Date time.Time
	From lane.ID
	To   lane.ID

	EntryX, EntryY float64 // where the corner leaves the previous run
	ExitX, ExitY   float64 // where the next run begins
	CornerX        float64 // fixed X of the vertical run
	R1, R2         float64 // entry and exit radii, after clamping
}

func (Transition) isSegment() {}

// Path is the drawn geometry for one individual. An empty Path (no ops)
// means nothing could be drawn; the cause is reported through the warning
// log, never as a hard error.
type Path struct {
	ID       string
	Ops      []Op
	Segments []Segment
	StartX   float64
	StartY   float64
	EndX     float64
	EndY     float64
	D        string // SVG path data
}

// Empty reports whether the path draws nothing.
func (p Path) Empty() bool {
	return len(p.Ops) == 0
}

func (p *Path) move(x, y float64) {
	p.Ops = append(p.Ops, Op{Cmd: MoveTo, X: x, Y: y})
}

func (p *Path) line(x, y float64) {
	p.Ops = append(p.Ops, Op{Cmd: LineTo, X: x, Y: y})
}

func (p *Path) quad(cx, cy, x, y float64) {
	p.Ops = append(p.Ops, Op{Cmd: QuadTo, X: x, Y: y, CX: cx, CY: cy})
}

func (p *Path) seg(s Segment) {
	p.Segments = append(p.Segments, s)
}

// encode renders ops as SVG path data with two-decimal coordinates, which
// keeps output byte-stable across runs.
func encode(ops []Op) string {
	if len(ops) == 0 {
		return ""
	}
	var b strings.Builder
	for i, op := range ops {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch op.Cmd {
		case MoveTo:
			b.WriteByte('M')
			writePoint(&b, op.X, op.Y)
		case LineTo:
			b.WriteByte('L')
			writePoint(&b, op.X, op.Y)
		case QuadTo:
			b.WriteByte('Q')
			writePoint(&b, op.CX, op.CY)
			b.WriteByte(' ')
			writePoint(&b, op.X, op.Y)
		}
	}
	return b.String()
}

func writePoint(b *strings.Builder, x, y float64) {
	b.WriteString(strconv.FormatFloat(x, 'f', 2, 64))
	b.WriteByte(',')
	b.WriteString(strconv.FormatFloat(y, 'f', 2, 64))
}
