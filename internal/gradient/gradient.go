// Package gradient maps an individual's journey onto an ordered list of
// color stops aligned with the geometric corners of their lifeline. Stops
// are positioned by percentage of total path length, so the color change
// lands exactly on the drawn corner regardless of how long the runs are.
package gradient

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/peledor/lifelines/internal/diag"
	"github.com/peledor/lifelines/internal/geom"
	"github.com/peledor/lifelines/internal/lane"
	"github.com/peledor/lifelines/internal/record"
)

// settlePercent is how far into a dead-from-start path the accent fades
// into the resting color.
const settlePercent = 3.0

// maxCacheEntries bounds the path-measure cache. The cache is dropped
// wholesale when full; entries are cheap to recompute.
const maxCacheEntries = 512

// Stop is one gradient color stop. Offset is a percentage of path length.
type Stop struct {
	Offset float64
	Color  string
}

// Engine derives gradient stop lists for one layout pass. It owns the
// path-measure cache; build a fresh engine (or Reset) whenever the layout
// changes, since row positions feed into path strings which feed into
// cache keys.
type Engine struct {
	pal    lane.Palette
	accent string
	cache  map[string]geom.PathMetrics
	log    *diag.Log
}

// NewEngine builds an engine over the given palette. When the palette pins
// no death accent, one is blended between the living and deceased colors.
func NewEngine(pal lane.Palette, log *diag.Log) *Engine {
	accent := pal.Accent
	if accent == "" {
		accent = blendHex(pal.Held, pal.Deceased, 0.5)
	}
	return &Engine{
		pal:    pal,
		accent: accent,
		cache:  make(map[string]geom.PathMetrics),
		log:    log,
	}
}

// Measure returns the arc-length analysis of a path, cached by the exact
// path string.
func (e *Engine) Measure(p geom.Path) geom.PathMetrics {
	if p.D == "" {
		return geom.Measure(p)
	}
	if m, ok := e.cache[p.D]; ok {
		return m
	}
	m := geom.Measure(p)
	if len(e.cache) >= maxCacheEntries {
		e.cache = make(map[string]geom.PathMetrics, maxCacheEntries)
	}
	e.cache[p.D] = m
	return m
}

// Reset drops the measure cache. Call on relayout.
func (e *Engine) Reset() {
	e.cache = make(map[string]geom.PathMetrics)
}

// Stops builds the gradient stop list for one individual's path. The list
// is always usable: offsets are non-decreasing from 0 to 100, and a path
// that cannot be measured gets a flat gradient rather than no styling.
func (e *Engine) Stops(ind *record.Individual, p geom.Path) []Stop {
	mtr := e.Measure(p)
	if p.Empty() || mtr.Total <= 0 {
		if !p.Empty() {
			e.log.Warn(diag.KindBadGradient, ind.ID, "", "path has no measurable length; flat gradient")
		}
		return flat(e.restColor(ind))
	}

	stops := normalize(e.recipe(ind, mtr))

	// The stops are built in semantic order, start of journey first. When
	// the drawn path actually runs right to left, mirror them so the
	// visual gradient still reads start to end.
	if mtr.StartX > mtr.EndX {
		stops = mirror(stops)
	}
	return stops
}

// recipe builds the raw stop list for the individual's journey type.
func (e *Engine) recipe(ind *record.Individual, mtr geom.PathMetrics) []Stop {
	corners := mtr.Corners
	switch ind.Journey() {
	case record.JourneyDeadFromStart:
		stops := []Stop{{0, e.accent}, {settlePercent, e.pal.Deceased}}
		if len(corners) > 0 {
			// A later corner can only be the body coming home.
			c := corners[len(corners)-1]
			stops = append(stops,
				Stop{c.Start, e.pal.Deceased},
				Stop{c.End, e.pal.Returned},
				Stop{100, e.pal.Returned})
		} else {
			stops = append(stops, Stop{100, e.pal.Deceased})
		}
		return stops

	case record.JourneyDiedInCaptivity:
		if len(corners) == 0 {
			return flat(e.pal.Deceased)
		}
		c := corners[0]
		return []Stop{
			{0, e.pal.Held},
			{c.Start, e.pal.Held},
			{mid(c), e.accent},
			{c.End, e.pal.Deceased},
			{100, e.pal.Deceased},
		}

	case record.JourneyReleasedAlive:
		col := e.releaseColor(ind.Method)
		if len(corners) == 0 {
			return flat(col)
		}
		c := corners[len(corners)-1]
		return []Stop{
			{0, e.pal.Held},
			{c.Start, e.pal.Held},
			{c.End, col},
			{100, col},
		}

	case record.JourneyReleasedBody:
		switch len(corners) {
		case 0:
			return flat(e.pal.Returned)
		case 1:
			// Missing intermediate corner; treat the one we have as the
			// release.
			c := corners[0]
			return []Stop{
				{0, e.pal.Held},
				{c.Start, e.pal.Held},
				{c.End, e.pal.Returned},
				{100, e.pal.Returned},
			}
		default:
			d, r := corners[0], corners[len(corners)-1]
			return []Stop{
				{0, e.pal.Held},
				{d.Start, e.pal.Held},
				{mid(d), e.accent},
				{d.End, e.pal.Deceased},
				{r.Start, e.pal.Deceased},
				{r.End, e.pal.Returned},
				{100, e.pal.Returned},
			}
		}

	default: // still captive
		return flat(e.pal.Held)
	}
}

// releaseColor picks the method-specific release color.
func (e *Engine) releaseColor(m record.Method) string {
	if m == record.MethodOperation {
		return e.pal.Operation
	}
	return e.pal.Released
}

// restColor is the terminal color of a journey, used for flat fallbacks.
func (e *Engine) restColor(ind *record.Individual) string {
	switch ind.Journey() {
	case record.JourneyReleasedAlive:
		return e.releaseColor(ind.Method)
	case record.JourneyReleasedBody:
		return e.pal.Returned
	case record.JourneyDiedInCaptivity, record.JourneyDeadFromStart:
		return e.pal.Deceased
	default:
		return e.pal.Held
	}
}

func flat(color string) []Stop {
	return []Stop{{0, color}, {100, color}}
}

func mid(c geom.CornerSpan) float64 {
	return (c.Start + c.End) / 2
}

// normalize clamps offsets into [0,100], forces them non-decreasing, and
// pins the ends at 0 and 100.
func normalize(stops []Stop) []Stop {
	if len(stops) == 0 {
		return stops
	}
	prev := 0.0
	for i := range stops {
		off := stops[i].Offset
		if off < prev {
			off = prev
		}
		if off > 100 {
			off = 100
		}
		stops[i].Offset = off
		prev = off
	}
	stops[0].Offset = 0
	stops[len(stops)-1].Offset = 100
	return stops
}

// mirror flips a normalized stop list for paths drawn right to left.
func mirror(stops []Stop) []Stop {
	out := make([]Stop, len(stops))
	for i, s := range stops {
		out[len(stops)-1-i] = Stop{Offset: 100 - s.Offset, Color: s.Color}
	}
	return out
}

// blendHex mixes two hex colors in LAB space, falling back to the first on
// a parse failure.
func blendHex(a, b string, t float64) string {
	ca, errA := colorful.Hex(a)
	cb, errB := colorful.Hex(b)
	if errA != nil || errB != nil {
		return a
	}
	return ca.BlendLab(cb, t).Clamped().Hex()
}
