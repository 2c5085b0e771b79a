// Package lane defines the closed catalog of timeline lanes: the horizontal
// category bands individuals occupy as their status changes. The catalog is
// an immutable value handed to the allocator, geometry, and color stages at
// construction, so every stage agrees on lane identity, stacking order, and
// theme.
package lane

import (
	"errors"
	"fmt"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Sentinel errors for catalog loading and validation.
var (
	ErrUnknownLane = errors.New("unknown lane id")
	ErrBadColor    = errors.New("invalid color")
	ErrBadCatalog  = errors.New("malformed lane catalog")
)

// ID identifies one lane in the catalog.
type ID string

// The lane set is closed. Waypoints naming any other id are remapped to the
// fallback lane and reported as a data-quality warning.
const (
	ReleasedDeal      ID = "released-deal"
	ReleasedOperation ID = "released-operation"
	Captive           ID = "captive"
	DiedCaptivity     ID = "died-captivity"
	BodyReturned      ID = "body-returned"
)

// Section is the vertical grouping a lane belongs to. Release lanes stack
// above the captivity group.
type Section int

const (
	SectionReleased Section = iota
	SectionCaptivity
)

func (s Section) String() string {
	switch s {
	case SectionReleased:
		return "released"
	case SectionCaptivity:
		return "captivity"
	default:
		return fmt.Sprintf("section(%d)", int(s))
	}
}

// Kind selects how the allocator orders a lane's occupants.
type Kind int

const (
	// KindRelease orders by entry date into the lane, earliest first.
	KindRelease Kind = iota

	// KindMixed orders by outcome direction (released above, deceased
	// below), then date, release method, and name.
	KindMixed

	// KindDeceased orders returned bodies before unreturned ones.
	KindDeceased

	// KindDefault orders by the precomputed event-order key.
	KindDefault
)

// Def describes one lane.
type Def struct {
	ID       ID
	Section  Section
	Priority int // stacking order within the section, ascending
	Kind     Kind
	Label    string
	Color    string // band tint, hex
}

// Palette holds the status colors shared by the gradient engine and the
// renderer. All values are hex strings.
type Palette struct {
	Held      string // alive in captivity
	Released  string // negotiated or unilateral release
	Operation string // released by military operation
	Deceased  string // confirmed dead, body held
	Accent    string // death transition accent; blended when empty
	Returned  string // body repatriated
	Unknown   string // unclassifiable status
}

// Catalog is the immutable lane configuration. The zero value is unusable;
// construct with Default or LoadFile.
type Catalog struct {
	defs     []Def
	index    map[ID]int
	palette  Palette
	fallback ID
}

// Default returns the built-in catalog: two release lanes on top, the
// captivity group below, themed with the standard status palette.
func Default() Catalog {
	defs := []Def{
		{ID: ReleasedDeal, Section: SectionReleased, Priority: 1, Kind: KindRelease, Label: "Released (negotiated)", Color: "#22C55E"},
		{ID: ReleasedOperation, Section: SectionReleased, Priority: 2, Kind: KindRelease, Label: "Released (military operation)", Color: "#3B82F6"},
		{ID: Captive, Section: SectionCaptivity, Priority: 1, Kind: KindMixed, Label: "In captivity", Color: "#DC2626"},
		{ID: DiedCaptivity, Section: SectionCaptivity, Priority: 2, Kind: KindDeceased, Label: "Died in captivity", Color: "#F87171"},
		{ID: BodyReturned, Section: SectionCaptivity, Priority: 3, Kind: KindRelease, Label: "Body returned", Color: "#A855F7"},
	}
	return build(defs, Palette{
		Held:      "#FF8C00",
		Released:  "#228B22",
		Operation: "#3B82F6",
		Deceased:  "#8B0000",
		Accent:    "#FF2D2D",
		Returned:  "#9932CC",
		Unknown:   "#708090",
	}, Captive)
}

// build sorts defs into stacking order and indexes them.
func build(defs []Def, pal Palette, fallback ID) Catalog {
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Section != defs[j].Section {
			return defs[i].Section < defs[j].Section
		}
		if defs[i].Priority != defs[j].Priority {
			return defs[i].Priority < defs[j].Priority
		}
		return defs[i].ID < defs[j].ID
	})
	index := make(map[ID]int, len(defs))
	for i, d := range defs {
		index[d.ID] = i
	}
	return Catalog{defs: defs, index: index, palette: pal, fallback: fallback}
}

// Lookup returns the definition for id, if the catalog defines it.
func (c Catalog) Lookup(id ID) (Def, bool) {
	i, ok := c.index[id]
	if !ok {
		return Def{}, false
	}
	return c.defs[i], true
}

// Resolve returns the definition for id, substituting the fallback lane for
// ids outside the catalog. The second result reports whether id was known;
// callers use it to surface a data-quality warning.
func (c Catalog) Resolve(id ID) (Def, bool) {
	if d, ok := c.Lookup(id); ok {
		return d, true
	}
	return c.Fallback(), false
}

// Fallback returns the lane unknown ids are remapped to.
func (c Catalog) Fallback() Def {
	d, _ := c.Lookup(c.fallback)
	return d
}

// Defs returns the lanes in stacking order: sections in order, lanes by
// ascending priority within each.
func (c Catalog) Defs() []Def {
	out := make([]Def, len(c.defs))
	copy(out, c.defs)
	return out
}

// Palette returns the status color palette.
func (c Catalog) Palette() Palette {
	return c.palette
}

// Validate checks the catalog is usable: non-empty, unique ids, a defined
// fallback lane, and parseable colors throughout. A failure here is
// systemic; no layout can proceed.
func (c Catalog) Validate() error {
	if len(c.defs) == 0 {
		return fmt.Errorf("%w: no lanes defined", ErrBadCatalog)
	}
	seen := make(map[ID]bool, len(c.defs))
	for _, d := range c.defs {
		if d.ID == "" {
			return fmt.Errorf("%w: lane with empty id", ErrBadCatalog)
		}
		if seen[d.ID] {
			return fmt.Errorf("%w: duplicate lane %q", ErrBadCatalog, d.ID)
		}
		seen[d.ID] = true
		if err := checkHex(d.Color); err != nil {
			return fmt.Errorf("lane %q: %w", d.ID, err)
		}
	}
	if !seen[c.fallback] {
		return fmt.Errorf("%w: fallback lane %q not defined", ErrBadCatalog, c.fallback)
	}
	for _, col := range []string{
		c.palette.Held, c.palette.Released, c.palette.Operation,
		c.palette.Deceased, c.palette.Returned, c.palette.Unknown,
	} {
		if err := checkHex(col); err != nil {
			return fmt.Errorf("palette: %w", err)
		}
	}
	// The accent may be empty; the gradient engine blends one.
	if c.palette.Accent != "" {
		if err := checkHex(c.palette.Accent); err != nil {
			return fmt.Errorf("palette: %w", err)
		}
	}
	return nil
}

func checkHex(s string) error {
	if _, err := colorful.Hex(s); err != nil {
		return fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	return nil
}
