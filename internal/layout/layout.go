// Package layout assigns every individual a stable row in every lane their
// path visits, and stacks the occupied lanes into vertical bands. Rows are
// lane-local: the same individual usually holds different rows in different
// lanes, because each lane orders its occupants by its own rule.
package layout

import (
	"errors"
	"fmt"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/peledor/lifelines/internal/diag"
	"github.com/peledor/lifelines/internal/lane"
	"github.com/peledor/lifelines/internal/record"
)

// ErrNoIndividuals reports an empty input set; no layout can proceed.
var ErrNoIndividuals = errors.New("no individuals to lay out")

// Metrics holds the vertical sizing knobs for lane bands. All values are
// pixels.
type Metrics struct {
	RowHeight     float64 // vertical thickness reserved per row
	RowGap        float64 // spacing between adjacent rows
	LanePadding   float64 // padding above the first and below the last row
	MinLaneHeight float64 // floor for sparsely occupied lanes
	SectionGap    float64 // gap between the release and captivity sections
	Top           float64 // offset of the first band from the canvas top
}

// DefaultMetrics returns the standard band sizing.
func DefaultMetrics() Metrics {
	return Metrics{
		RowHeight:     6,
		RowGap:        4,
		LanePadding:   12,
		MinLaneHeight: 40,
		SectionGap:    30,
		Top:           20,
	}
}

// RowPitch is the vertical distance between consecutive row centers.
func (m Metrics) RowPitch() float64 {
	return m.RowHeight + m.RowGap
}

// Band is the computed geometry for one occupied lane. Lanes nobody visits
// get no band at all.
type Band struct {
	Lane   lane.Def
	Rows   int
	YStart float64
	YEnd   float64
}

// Height returns the band's pixel height.
func (b Band) Height() float64 {
	return b.YEnd - b.YStart
}

type occKey struct {
	id string
	ln lane.ID
}

// Layout is the result of one allocation pass over the full individual set.
// It is rebuilt from scratch on every data load or configuration change;
// there is no incremental update path.
type Layout struct {
	catalog lane.Catalog
	metrics Metrics
	bands   []Band
	bandIdx map[lane.ID]int
	rows    map[occKey]int
	counts  map[lane.ID]int
	height  float64
	log     *diag.Log
}

// Build allocates rows and bands for the given individuals. Unknown lane
// ids are remapped to the catalog's fallback lane with a warning. An empty
// individual set or an unusable catalog is a hard error.
func Build(inds []record.Individual, cat lane.Catalog, m Metrics, log *diag.Log) (*Layout, error) {
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("lane catalog: %w", err)
	}
	if len(inds) == 0 {
		return nil, ErrNoIndividuals
	}

	l := &Layout{
		catalog: cat,
		metrics: m,
		bandIdx: make(map[lane.ID]int),
		rows:    make(map[occKey]int),
		counts:  make(map[lane.ID]int),
		log:     log,
	}

	// Gather each lane's occupants. An individual occupies every lane its
	// path passes through, not just its final lane, since the drawn line
	// needs a row inside each.
	members := make(map[lane.ID][]*record.Individual)
	for i := range inds {
		ind := &inds[i]
		for _, ln := range l.resolveOccupancy(ind) {
			members[ln] = append(members[ln], ind)
		}
	}

	// Sort each lane's occupants by its comparator and hand out dense row
	// indices. Iterating the catalog in stacking order keeps the pass
	// deterministic.
	names := collate.New(language.Hebrew)
	for _, def := range cat.Defs() {
		occ := members[def.ID]
		if len(occ) == 0 {
			continue
		}
		sortMembers(def, occ, names)
		for row, ind := range occ {
			l.rows[occKey{ind.ID, def.ID}] = row
		}
		l.counts[def.ID] = len(occ)
	}

	l.stackBands()
	return l, nil
}

// resolveOccupancy returns the distinct resolved lanes an individual's path
// visits, warning once per unknown lane id.
func (l *Layout) resolveOccupancy(ind *record.Individual) []lane.ID {
	seen := make(map[lane.ID]bool, len(ind.Path))
	var out []lane.ID
	for _, wp := range ind.Path {
		def, known := l.catalog.Resolve(wp.Lane)
		if !known {
			l.log.Warn(diag.KindUnknownLane, ind.ID, string(wp.Lane), "substituted fallback lane")
		}
		if !seen[def.ID] {
			seen[def.ID] = true
			out = append(out, def.ID)
		}
	}
	return out
}

// stackBands lays the occupied lanes out vertically: sections in catalog
// order, lanes by ascending priority within each, a fixed gap between
// sections. Total height ends at the last band's bottom edge.
func (l *Layout) stackBands() {
	y := l.metrics.Top
	placed := false
	var lastSection lane.Section

	for _, def := range l.catalog.Defs() {
		rows := l.counts[def.ID]
		if rows == 0 {
			continue
		}
		if placed && def.Section != lastSection {
			y += l.metrics.SectionGap
		}

		h := float64(rows-1)*l.metrics.RowPitch() + l.metrics.RowHeight + 2*l.metrics.LanePadding
		if h < l.metrics.MinLaneHeight {
			h = l.metrics.MinLaneHeight
		}

		l.bandIdx[def.ID] = len(l.bands)
		l.bands = append(l.bands, Band{Lane: def, Rows: rows, YStart: y, YEnd: y + h})

		y += h
		placed = true
		lastSection = def.Section
	}
	l.height = y
}

// Row returns the individual's row index in the given lane.
func (l *Layout) Row(id string, ln lane.ID) (int, bool) {
	row, ok := l.rows[occKey{id, ln}]
	return row, ok
}

// RowY returns the center Y of the individual's row in the given lane. A
// missing occupancy entry is repaired on demand by assigning the next free
// row in that lane, with a warning; it indicates the caller drew a lane the
// allocator never saw.
func (l *Layout) RowY(id string, ln lane.ID) float64 {
	def, _ := l.catalog.Resolve(ln)

	row, ok := l.rows[occKey{id, def.ID}]
	if !ok {
		row = l.counts[def.ID]
		l.rows[occKey{id, def.ID}] = row
		l.counts[def.ID]++
		l.log.Warn(diag.KindMissingRow, id, string(def.ID), "assigned next free row at draw time")
	}

	b, ok := l.Band(def.ID)
	if !ok {
		// No band was stacked for this lane; anchor to the content top so
		// the line stays visible rather than vanishing.
		l.log.Warn(diag.KindMissingRow, id, string(def.ID), "lane has no band")
		return l.metrics.Top
	}
	return b.YStart + l.metrics.LanePadding + l.metrics.RowHeight/2 + float64(row)*l.metrics.RowPitch()
}

// ResolvePath returns the individual's path with unknown lanes substituted
// and any resulting no-op transitions collapsed.
func (l *Layout) ResolvePath(ind *record.Individual) []record.Waypoint {
	ws := make([]record.Waypoint, 0, len(ind.Path))
	for _, wp := range ind.Path {
		def, known := l.catalog.Resolve(wp.Lane)
		if !known {
			l.log.Warn(diag.KindUnknownLane, ind.ID, string(wp.Lane), "substituted fallback lane")
		}
		wp.Lane = def.ID
		ws = append(ws, wp)
	}
	return record.CollapsePath(ws)
}

// Band returns the computed band for a lane, if it is occupied.
func (l *Layout) Band(ln lane.ID) (Band, bool) {
	i, ok := l.bandIdx[ln]
	if !ok {
		return Band{}, false
	}
	return l.bands[i], true
}

// Bands returns the occupied lane bands in stacking order.
func (l *Layout) Bands() []Band {
	out := make([]Band, len(l.bands))
	copy(out, l.bands)
	return out
}

// Count returns the occupant count of a lane.
func (l *Layout) Count(ln lane.ID) int {
	return l.counts[ln]
}

// Height returns the content bottom: the Y coordinate just below the last
// band, where the axis baseline sits.
func (l *Layout) Height() float64 {
	return l.height
}

// Metrics returns the sizing the layout was built with.
func (l *Layout) Metrics() Metrics {
	return l.metrics
}

// Catalog returns the lane catalog the layout was built with.
func (l *Layout) Catalog() lane.Catalog {
	return l.catalog
}
