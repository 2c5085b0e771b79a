package gradient

import (
	"math"
	"testing"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/peledor/lifelines/internal/diag"
	"github.com/peledor/lifelines/internal/geom"
	"github.com/peledor/lifelines/internal/lane"
	"github.com/peledor/lifelines/internal/layout"
	"github.com/peledor/lifelines/internal/record"
	"github.com/peledor/lifelines/internal/scale"
)

func day(d int) time.Time {
	return time.Date(2023, 10, 7, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func stillCaptive(id, name string, d time.Time) record.Individual {
	return record.Individual{
		ID: id, Name: name,
		Events: []record.Event{{Kind: record.EventCaptured, Date: d}},
		Path:   []record.Waypoint{{Lane: lane.Captive, Date: d, Event: record.EventCaptured}},
		Method: record.MethodNone,
	}
}

func releasedBy(id, name string, d0, d1 time.Time, m record.Method) record.Individual {
	to := lane.ReleasedDeal
	if m == record.MethodOperation {
		to = lane.ReleasedOperation
	}
	return record.Individual{
		ID: id, Name: name,
		Events: []record.Event{
			{Kind: record.EventCaptured, Date: d0},
			{Kind: record.EventReleased, Date: d1},
		},
		Path: []record.Waypoint{
			{Lane: lane.Captive, Date: d0, Event: record.EventCaptured},
			{Lane: to, Date: d1, Event: record.EventReleased},
		},
		Method: m,
	}
}

func diedCaptive(id, name string, d0, d1 time.Time) record.Individual {
	return record.Individual{
		ID: id, Name: name,
		Events: []record.Event{
			{Kind: record.EventCaptured, Date: d0},
			{Kind: record.EventDied, Date: d1},
		},
		Path: []record.Waypoint{
			{Lane: lane.Captive, Date: d0, Event: record.EventCaptured},
			{Lane: lane.DiedCaptivity, Date: d1, Event: record.EventDied},
		},
		Method: record.MethodNone,
	}
}

func bodyReturned(id, name string, d0, d1, d2 time.Time) record.Individual {
	return record.Individual{
		ID: id, Name: name,
		Events: []record.Event{
			{Kind: record.EventCaptured, Date: d0},
			{Kind: record.EventDied, Date: d1},
			{Kind: record.EventReturned, Date: d2},
		},
		Path: []record.Waypoint{
			{Lane: lane.Captive, Date: d0, Event: record.EventCaptured},
			{Lane: lane.DiedCaptivity, Date: d1, Event: record.EventDied},
			{Lane: lane.BodyReturned, Date: d2, Event: record.EventReturned},
		},
		Method: record.MethodNone,
	}
}

func deadFromStart(id, name string, d0 time.Time, returned time.Time) record.Individual {
	in := record.Individual{
		ID: id, Name: name,
		Events: []record.Event{
			{Kind: record.EventCaptured, Date: d0},
			{Kind: record.EventDied, Date: d0},
		},
		Path:   []record.Waypoint{{Lane: lane.DiedCaptivity, Date: d0, Event: record.EventDied}},
		Method: record.MethodNone,
	}
	if !returned.IsZero() {
		in.Events = append(in.Events, record.Event{Kind: record.EventReturned, Date: returned})
		in.Path = append(in.Path, record.Waypoint{Lane: lane.BodyReturned, Date: returned, Event: record.EventReturned})
	}
	return in
}

// scene wires the full pipeline up to geometry over a 100-day domain mapped
// to [100, 1100], and returns a gradient engine on the default palette.
func scene(t *testing.T, inds []record.Individual, dir scale.Dir) (*Engine, *geom.Engine, *diag.Log) {
	t.Helper()
	log := diag.NewLog(nil)
	cat := lane.Default()
	lay, err := layout.Build(inds, cat, layout.DefaultMetrics(), log)
	if err != nil {
		t.Fatalf("layout.Build: %v", err)
	}
	m := scale.New(day(0), day(100), 100, 1100, dir)
	return NewEngine(cat.Palette(), log), geom.NewEngine(m, lay, 8, inds, log), log
}

// assertUsable checks the invariants every stop list must hold: pinned ends
// and non-decreasing offsets.
func assertUsable(t *testing.T, stops []Stop) {
	t.Helper()
	if len(stops) < 2 {
		t.Fatalf("got %d stops, want at least 2", len(stops))
	}
	if stops[0].Offset != 0 {
		t.Errorf("first offset = %v, want 0", stops[0].Offset)
	}
	if stops[len(stops)-1].Offset != 100 {
		t.Errorf("last offset = %v, want 100", stops[len(stops)-1].Offset)
	}
	for i := 1; i < len(stops); i++ {
		if stops[i].Offset < stops[i-1].Offset {
			t.Errorf("offsets decrease at %d: %v after %v", i, stops[i].Offset, stops[i-1].Offset)
		}
	}
}

func TestStops_EndpointsAllJourneys(t *testing.T) {
	t.Parallel()
	inds := []record.Individual{
		stillCaptive("cap", "Cap", day(0)),
		releasedBy("rel", "Rel", day(0), day(40), record.MethodDeal),
		diedCaptive("die", "Die", day(0), day(30)),
		bodyReturned("ret", "Ret", day(0), day(20), day(80)),
		deadFromStart("dfs", "Dfs", day(0), day(70)),
	}
	e, ge, _ := scene(t, inds, scale.LTR)

	for i := range inds {
		in := &inds[i]
		stops := e.Stops(in, ge.Build(in))
		t.Run(in.ID, func(t *testing.T) {
			assertUsable(t, stops)
		})
	}
}

func TestStops_StillCaptiveFlat(t *testing.T) {
	t.Parallel()
	inds := []record.Individual{stillCaptive("cap", "Cap", day(0))}
	e, ge, _ := scene(t, inds, scale.LTR)
	pal := lane.Default().Palette()

	stops := e.Stops(&inds[0], ge.Build(&inds[0]))
	if len(stops) != 2 {
		t.Fatalf("got %d stops, want flat pair", len(stops))
	}
	for _, s := range stops {
		if s.Color != pal.Held {
			t.Errorf("stop color = %q, want held %q", s.Color, pal.Held)
		}
	}
}

func TestStops_ReleaseMethodColors(t *testing.T) {
	t.Parallel()
	inds := []record.Individual{
		releasedBy("deal", "Deal", day(0), day(40), record.MethodDeal),
		releasedBy("op", "Op", day(0), day(40), record.MethodOperation),
	}
	e, ge, _ := scene(t, inds, scale.LTR)
	pal := lane.Default().Palette()

	deal := e.Stops(&inds[0], ge.Build(&inds[0]))
	op := e.Stops(&inds[1], ge.Build(&inds[1]))

	if got := deal[len(deal)-1].Color; got != pal.Released {
		t.Errorf("negotiated release ends %q, want %q", got, pal.Released)
	}
	if got := op[len(op)-1].Color; got != pal.Operation {
		t.Errorf("operation release ends %q, want %q", got, pal.Operation)
	}
	if deal[0].Color != pal.Held || op[0].Color != pal.Held {
		t.Error("release gradients must start in the held color")
	}
	if len(deal) != 4 {
		t.Errorf("got %d stops, want held/held/color/color", len(deal))
	}
}

func TestStops_ReleasedBodyTracksCorners(t *testing.T) {
	t.Parallel()
	inds := []record.Individual{bodyReturned("ret", "Ret", day(0), day(20), day(80))}
	e, ge, _ := scene(t, inds, scale.LTR)
	pal := lane.Default().Palette()

	p := ge.Build(&inds[0])
	mtr := geom.Measure(p)
	if len(mtr.Corners) != 2 {
		t.Fatalf("got %d corners, want 2", len(mtr.Corners))
	}
	d, r := mtr.Corners[0], mtr.Corners[1]

	stops := e.Stops(&inds[0], p)
	if len(stops) != 7 {
		t.Fatalf("got %d stops, want 7", len(stops))
	}
	assertUsable(t, stops)

	wantOffsets := []float64{0, d.Start, (d.Start + d.End) / 2, d.End, r.Start, r.End, 100}
	for i, want := range wantOffsets {
		if math.Abs(stops[i].Offset-want) > 1e-9 {
			t.Errorf("stop %d offset = %v, want %v", i, stops[i].Offset, want)
		}
	}
	wantColors := []string{pal.Held, pal.Held, pal.Accent, pal.Deceased, pal.Deceased, pal.Returned, pal.Returned}
	for i, want := range wantColors {
		if stops[i].Color != want {
			t.Errorf("stop %d color = %q, want %q", i, stops[i].Color, want)
		}
	}
}

func TestStops_ReleasedBodySingleCorner(t *testing.T) {
	t.Parallel()
	// Death and repatriation recorded, but the path only shows the final
	// move; the one corner reads as the release.
	in := record.Individual{
		ID: "ret", Name: "Ret",
		Events: []record.Event{
			{Kind: record.EventCaptured, Date: day(0)},
			{Kind: record.EventDied, Date: day(20)},
			{Kind: record.EventReturned, Date: day(80)},
		},
		Path: []record.Waypoint{
			{Lane: lane.Captive, Date: day(0), Event: record.EventCaptured},
			{Lane: lane.BodyReturned, Date: day(80), Event: record.EventReturned},
		},
		Method: record.MethodNone,
	}
	inds := []record.Individual{in}
	e, ge, _ := scene(t, inds, scale.LTR)
	pal := lane.Default().Palette()

	stops := e.Stops(&inds[0], ge.Build(&inds[0]))
	if len(stops) != 4 {
		t.Fatalf("got %d stops, want 4", len(stops))
	}
	if stops[0].Color != pal.Held || stops[len(stops)-1].Color != pal.Returned {
		t.Errorf("gradient runs %q to %q, want held to returned", stops[0].Color, stops[len(stops)-1].Color)
	}
}

func TestStops_DiedInCaptivity(t *testing.T) {
	t.Parallel()
	inds := []record.Individual{diedCaptive("die", "Die", day(0), day(30))}
	e, ge, _ := scene(t, inds, scale.LTR)
	pal := lane.Default().Palette()

	p := ge.Build(&inds[0])
	mtr := geom.Measure(p)
	if len(mtr.Corners) != 1 {
		t.Fatalf("got %d corners, want 1", len(mtr.Corners))
	}
	c := mtr.Corners[0]

	stops := e.Stops(&inds[0], p)
	if len(stops) != 5 {
		t.Fatalf("got %d stops, want 5", len(stops))
	}
	if stops[2].Color != pal.Accent {
		t.Errorf("mid-corner color = %q, want accent %q", stops[2].Color, pal.Accent)
	}
	if want := (c.Start + c.End) / 2; math.Abs(stops[2].Offset-want) > 1e-9 {
		t.Errorf("accent offset = %v, want corner midpoint %v", stops[2].Offset, want)
	}
	if stops[4].Color != pal.Deceased {
		t.Errorf("final color = %q, want deceased %q", stops[4].Color, pal.Deceased)
	}
}

func TestStops_DeadFromStart(t *testing.T) {
	t.Parallel()
	pal := lane.Default().Palette()

	t.Run("body still held", func(t *testing.T) {
		t.Parallel()
		inds := []record.Individual{deadFromStart("dfs", "Dfs", day(0), time.Time{})}
		e, ge, _ := scene(t, inds, scale.LTR)

		stops := e.Stops(&inds[0], ge.Build(&inds[0]))
		if len(stops) != 3 {
			t.Fatalf("got %d stops, want 3", len(stops))
		}
		if stops[0].Color != pal.Accent {
			t.Errorf("origin color = %q, want accent %q", stops[0].Color, pal.Accent)
		}
		if stops[1].Offset != settlePercent || stops[1].Color != pal.Deceased {
			t.Errorf("settle stop = %+v, want deceased at %v%%", stops[1], settlePercent)
		}
		if stops[2].Color != pal.Deceased {
			t.Errorf("final color = %q, want deceased", stops[2].Color)
		}
	})

	t.Run("body returned later", func(t *testing.T) {
		t.Parallel()
		inds := []record.Individual{deadFromStart("dfs", "Dfs", day(0), day(70))}
		e, ge, _ := scene(t, inds, scale.LTR)

		stops := e.Stops(&inds[0], ge.Build(&inds[0]))
		if len(stops) != 5 {
			t.Fatalf("got %d stops, want 5", len(stops))
		}
		assertUsable(t, stops)
		if stops[0].Color != pal.Accent {
			t.Errorf("origin color = %q, want accent", stops[0].Color)
		}
		if stops[4].Color != pal.Returned {
			t.Errorf("final color = %q, want returned", stops[4].Color)
		}
	})
}

func TestStops_RTLMirrors(t *testing.T) {
	t.Parallel()
	inds := []record.Individual{releasedBy("rel", "Rel", day(0), day(40), record.MethodDeal)}

	eL, geL, _ := scene(t, inds, scale.LTR)
	ltr := eL.Stops(&inds[0], geL.Build(&inds[0]))

	eR, geR, _ := scene(t, inds, scale.RTL)
	rtl := eR.Stops(&inds[0], geR.Build(&inds[0]))

	if len(ltr) != len(rtl) {
		t.Fatalf("stop counts differ: %d vs %d", len(ltr), len(rtl))
	}
	assertUsable(t, rtl)

	// Same journey drawn right to left: the list reverses and each offset
	// flips to its complement. The run and corner lengths are symmetric, so
	// the percentages line up exactly.
	n := len(ltr)
	for i := range ltr {
		m := rtl[n-1-i]
		if math.Abs((100-ltr[i].Offset)-m.Offset) > 1e-9 {
			t.Errorf("stop %d: mirrored offset = %v, want %v", i, m.Offset, 100-ltr[i].Offset)
		}
		if m.Color != ltr[i].Color {
			t.Errorf("stop %d: mirrored color = %q, want %q", i, m.Color, ltr[i].Color)
		}
	}
	pal := lane.Default().Palette()
	if rtl[0].Color != pal.Released {
		t.Errorf("RTL gradient starts %q, want release color at the left edge", rtl[0].Color)
	}
}

func TestStops_FlatFallbacks(t *testing.T) {
	t.Parallel()
	pal := lane.Default().Palette()
	inds := []record.Individual{diedCaptive("die", "Die", day(0), day(30))}
	e, _, log := scene(t, inds, scale.LTR)

	// Empty geometry: still styled, no extra warning (the geometry stage
	// already reported it).
	stops := e.Stops(&inds[0], geom.Path{})
	if len(stops) != 2 || stops[0].Color != pal.Deceased {
		t.Errorf("empty path stops = %+v, want flat deceased pair", stops)
	}
	if log.Count() != 0 {
		t.Errorf("empty path logged %d warnings, want 0 from the gradient stage", log.Count())
	}

	// Degenerate geometry with no measurable length gets flagged.
	degen := geom.Path{
		ID:       "die",
		Segments: []geom.Segment{geom.Run{Y: 10, X1: 5, X2: 5}},
		StartX:   5, StartY: 10, EndX: 5, EndY: 10,
		D: "M 5.00 10.00 L 5.00 10.00",
	}
	stops = e.Stops(&inds[0], degen)
	if len(stops) != 2 {
		t.Fatalf("got %d stops, want flat pair", len(stops))
	}
	found := false
	for _, w := range log.Warnings() {
		if w.Kind == diag.KindBadGradient && w.Subject == "die" {
			found = true
		}
	}
	if !found {
		t.Error("no bad_gradient warning for zero-length path")
	}
}

func TestStops_AccentBlendedWhenUnset(t *testing.T) {
	t.Parallel()
	pal := lane.Default().Palette()
	pal.Accent = ""
	e := NewEngine(pal, diag.NewLog(nil))

	if e.accent == "" || e.accent == pal.Held || e.accent == pal.Deceased {
		t.Fatalf("blended accent = %q, want a mix of held and deceased", e.accent)
	}
	if _, err := colorful.Hex(e.accent); err != nil {
		t.Errorf("blended accent %q is not a parseable hex color: %v", e.accent, err)
	}
}

func TestMeasure_CachedAndReset(t *testing.T) {
	t.Parallel()
	inds := []record.Individual{releasedBy("rel", "Rel", day(0), day(40), record.MethodDeal)}
	e, ge, _ := scene(t, inds, scale.LTR)

	p := ge.Build(&inds[0])
	first := e.Measure(p)
	second := e.Measure(p)
	if first.Total != second.Total || len(e.cache) != 1 {
		t.Errorf("repeat measure not served from cache (%d entries)", len(e.cache))
	}

	e.Reset()
	if len(e.cache) != 0 {
		t.Errorf("cache holds %d entries after reset", len(e.cache))
	}

	// Paths without a data string are never cached.
	e.Measure(geom.Path{})
	if len(e.cache) != 0 {
		t.Errorf("empty path was cached")
	}
}
