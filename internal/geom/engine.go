package geom

import (
	"math"
	"sort"

	"github.com/peledor/lifelines/internal/diag"
	"github.com/peledor/lifelines/internal/lane"
	"github.com/peledor/lifelines/internal/layout"
	"github.com/peledor/lifelines/internal/record"
	"github.com/peledor/lifelines/internal/scale"
)

// radiusStep is the per-slot inflation factor for parallel transitions.
const radiusStep = 0.3

// Engine builds lifeline paths for one layout pass. Construction scans the
// full individual set to group coincident transitions (same date, same lane
// pair) and precompute their fanned-out corner radii; the table lives only
// as long as the engine, so a relayout always starts fresh.
type Engine struct {
	m     scale.Map
	lay   *layout.Layout
	base  float64
	radii map[cornerKey]radiusPair
	log   *diag.Log
}

type cornerKey struct {
	date int64
	from lane.ID
	to   lane.ID
	id   string
}

type radiusPair struct {
	r1, r2 float64
}

type groupKey struct {
	date int64
	from lane.ID
	to   lane.ID
}

type groupEntry struct {
	id      string
	destRow int
}

// NewEngine prepares an engine for the given layout pass.
func NewEngine(m scale.Map, lay *layout.Layout, baseRadius float64, inds []record.Individual, log *diag.Log) *Engine {
	e := &Engine{
		m:     m,
		lay:   lay,
		base:  baseRadius,
		radii: make(map[cornerKey]radiusPair),
		log:   log,
	}

	// Group transitions that would otherwise draw on top of each other.
	groups := make(map[groupKey][]groupEntry)
	for i := range inds {
		ind := &inds[i]
		ws := lay.ResolvePath(ind)
		for k := 0; k+1 < len(ws); k++ {
			gk := groupKey{ws[k+1].Date.UnixNano(), ws[k].Lane, ws[k+1].Lane}
			row, _ := lay.Row(ind.ID, ws[k+1].Lane)
			groups[gk] = append(groups[gk], groupEntry{ind.ID, row})
		}
	}

	// Within a group, order by destination row so neighbors in the target
	// lane stay neighbors through the corner; the first entry keeps the
	// base radius and each later one arcs out further. The exit radius is
	// the inverted counterpart, so entry fans mirror back on exit and the
	// lines never cross.
	for gk, entries := range groups {
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].destRow != entries[j].destRow {
				return entries[i].destRow < entries[j].destRow
			}
			return entries[i].id < entries[j].id
		})
		maxR := e.base * (1 + radiusStep*float64(len(entries)-1))
		minR := e.base
		for idx, en := range entries {
			r1 := e.base * (1 + radiusStep*float64(idx))
			r2 := maxR + minR - r1
			if r2 < e.base {
				r2 = e.base
			}
			e.radii[cornerKey{gk.date, gk.from, gk.to, en.id}] = radiusPair{r1, r2}
		}
	}
	return e
}

// Build produces the path for one individual. Failures degrade per entity:
// a path with zero usable segments comes back empty with a warning, and any
// non-finite coordinate is replaced by the previous one.
func (e *Engine) Build(ind *record.Individual) Path {
	ws := e.lay.ResolvePath(ind)
	if len(ws) == 0 {
		e.log.Warn(diag.KindEmptyPath, ind.ID, "", "no usable waypoints")
		return Path{ID: ind.ID}
	}

	sgn := e.m.Sign()
	p := Path{ID: ind.ID}

	x := e.finite(ind.ID, e.m.X(ws[0].Date), e.m.StartX())
	y := e.finite(ind.ID, e.lay.RowY(ind.ID, ws[0].Lane), e.lay.Metrics().Top)
	p.StartX, p.StartY = x, y
	p.move(x, y)

	for i := 0; i+1 < len(ws); i++ {
		next := ws[i+1]
		yNext := e.finite(ind.ID, e.lay.RowY(ind.ID, next.Lane), y)
		xc := e.finite(ind.ID, e.m.X(next.Date), x)
		if yNext == y {
			// Same row height; nothing to turn through.
			continue
		}

		r1, r2 := e.radiiFor(ind.ID, ws[i].Lane, next.Lane, next)
		// A corner must not overshoot half the vertical drop.
		if half := math.Abs(yNext-y) / 2; r1 > half {
			r1 = half
		}
		if half := math.Abs(yNext-y) / 2; r2 > half {
			r2 = half
		}
		// Nor may it reach back behind the point already drawn: when the
		// horizontal room up to the target date is smaller than the entry
		// radius, the radius shrinks to the room there is. Coincident
		// dates leave no room at all, so the turn loses its entry curve
		// and drops vertically where the previous corner exited.
		if room := sgn * (xc - x); room < r1 {
			if room < 0 {
				room = 0
			}
			r1 = room
		}

		dirY := 1.0
		if yNext < y {
			dirY = -1
		}

		// The vertical run sits at one fixed X, one entry radius short of
		// the target date, never before the current position. Letting it
		// drift between entry and exit is what produces visible loops.
		xv := xc - sgn*r1
		if sgn*(xv-x) < 0 {
			xv = x
		}
		entryX := xv - sgn*r1
		if sgn*(entryX-x) < 0 {
			entryX = x
		}

		if sgn*(entryX-x) > 0 {
			p.line(entryX, y)
			p.seg(Run{Y: y, X1: x, X2: entryX})
		}

		if r1 > 0 {
			p.quad(xv, y, xv, y+dirY*r1)
		}
		p.line(xv, yNext-dirY*r2)
		p.quad(xv, yNext, xv+sgn*r2, yNext)
		p.seg(Transition{
			Date:   next.Date,
			From:   ws[i].Lane,
			To:     next.Lane,
			EntryX: entryX, EntryY: y,
			ExitX: xv + sgn*r2, ExitY: yNext,
			CornerX: xv,
			R1:      r1, R2: r2,
		})

		x, y = xv+sgn*r2, yNext
	}

	// The last run extends to the present edge so every lifeline reaches
	// the end of the visible timeline.
	end := e.finite(ind.ID, e.m.PresentX(), x)
	if sgn*(end-x) > 0 {
		p.line(end, y)
		p.seg(Run{Y: y, X1: x, X2: end})
		x = end
	}
	p.EndX, p.EndY = x, y

	if len(p.Segments) == 0 {
		e.log.Warn(diag.KindEmptyPath, ind.ID, "", "zero usable segments")
		return Path{ID: ind.ID}
	}
	p.D = encode(p.Ops)
	return p
}

// radiiFor looks up the precomputed fan radii for one corner. A corner the
// grouping pass never saw gets the base radius on both sides.
func (e *Engine) radiiFor(id string, from, to lane.ID, wp record.Waypoint) (r1, r2 float64) {
	if pair, ok := e.radii[cornerKey{wp.Date.UnixNano(), from, to, id}]; ok {
		return pair.r1, pair.r2
	}
	return e.base, e.base
}

// finite replaces a non-finite coordinate with the fallback and records the
// substitution once per individual.
func (e *Engine) finite(id string, v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		e.log.Warn(diag.KindBadCoordinate, id, "", "non-finite coordinate replaced")
		return fallback
	}
	return v
}
