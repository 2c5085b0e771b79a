// Package record holds the immutable entity model consumed by the layout
// pipeline: one Individual per tracked person, with their chronological
// status events and the lane path derived from them. Records are built once
// per data load and never mutated afterwards.
package record

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/peledor/lifelines/internal/lane"
)

// Sentinel errors for record validation.
var (
	ErrNoID      = errors.New("record has no id")
	ErrEmptyPath = errors.New("record has no waypoints")
	ErrUnordered = errors.New("waypoints out of chronological order")
)

// EventKind classifies one status-change event.
type EventKind string

const (
	EventCaptured EventKind = "captured"
	EventDied     EventKind = "died"
	EventReleased EventKind = "released"
	EventReturned EventKind = "returned" // body repatriated
)

// Event is a single dated status change.
type Event struct {
	Kind EventKind
	Date time.Time
}

// Waypoint is one (lane, date) point in an individual's journey, tagged with
// the event that caused it.
type Waypoint struct {
	Lane  lane.ID
	Date  time.Time
	Event EventKind
}

// Method distinguishes how a release happened. It orders military operations
// before negotiated deals for tie-breaking in the mixed captivity lane.
type Method int

const (
	MethodOperation Method = iota
	MethodDeal
	MethodNone
)

func (m Method) String() string {
	switch m {
	case MethodOperation:
		return "operation"
	case MethodDeal:
		return "deal"
	default:
		return "none"
	}
}

// Journey is the closed classification of an individual's overall outcome.
// It selects the gradient recipe for their lifeline.
type Journey int

const (
	JourneyStillCaptive Journey = iota
	JourneyReleasedAlive
	JourneyDiedInCaptivity
	JourneyDeadFromStart
	JourneyReleasedBody
)

func (j Journey) String() string {
	switch j {
	case JourneyStillCaptive:
		return "still-captive"
	case JourneyReleasedAlive:
		return "released-alive"
	case JourneyDiedInCaptivity:
		return "died-in-captivity"
	case JourneyDeadFromStart:
		return "dead-from-start"
	case JourneyReleasedBody:
		return "released-body"
	default:
		return fmt.Sprintf("journey(%d)", int(j))
	}
}

// Individual is one tracked person.
type Individual struct {
	ID     string
	Name   string
	Events []Event    // chronologically sorted
	Path   []Waypoint // lane path, no-op transitions collapsed
	Method Method     // release method, MethodNone unless released

	// OrderKey is the precomputed chronological event-order key used by
	// default-kind lanes. Lower keys sort first.
	OrderKey int
}

// FinalLane returns the lane of the last waypoint.
func (in *Individual) FinalLane() lane.ID {
	if len(in.Path) == 0 {
		return ""
	}
	return in.Path[len(in.Path)-1].Lane
}

// HasTransition reports whether the path changes lanes at least once.
func (in *Individual) HasTransition() bool {
	return len(in.Path) > 1
}

// Occupancy returns every lane the path visits, deduplicated, in visit
// order. Transient lanes count: a row must be reserved in each.
func (in *Individual) Occupancy() []lane.ID {
	seen := make(map[lane.ID]bool, len(in.Path))
	var out []lane.ID
	for _, wp := range in.Path {
		if !seen[wp.Lane] {
			seen[wp.Lane] = true
			out = append(out, wp.Lane)
		}
	}
	return out
}

// EntryDate returns the date of the first waypoint in the given lane.
func (in *Individual) EntryDate(l lane.ID) (time.Time, bool) {
	for _, wp := range in.Path {
		if wp.Lane == l {
			return wp.Date, true
		}
	}
	return time.Time{}, false
}

// EarliestTransition returns the date of the first lane change, i.e. the
// second waypoint. Deceased-lane ordering keys on this rather than on the
// death date alone.
func (in *Individual) EarliestTransition() (time.Time, bool) {
	if len(in.Path) < 2 {
		return time.Time{}, false
	}
	return in.Path[1].Date, true
}

// EventDate returns the date of the first event of the given kind.
func (in *Individual) EventDate(k EventKind) (time.Time, bool) {
	for _, ev := range in.Events {
		if ev.Kind == k {
			return ev.Date, true
		}
	}
	return time.Time{}, false
}

// Journey classifies the individual's overall outcome.
//
// Death on the origin date dominates: those individuals never appear alive
// on the timeline, whether or not their body later came home. A later death
// splits on repatriation, and the living split on release.
func (in *Individual) Journey() Journey {
	died, hasDied := in.EventDate(EventDied)
	_, hasReturned := in.EventDate(EventReturned)
	_, hasReleased := in.EventDate(EventReleased)

	if hasDied {
		if len(in.Path) > 0 && !died.After(in.Path[0].Date) {
			return JourneyDeadFromStart
		}
		if hasReturned {
			return JourneyReleasedBody
		}
		return JourneyDiedInCaptivity
	}
	if hasReleased {
		return JourneyReleasedAlive
	}
	return JourneyStillCaptive
}

// Validate checks the structural invariants a usable record must satisfy:
// a non-empty id, at least one waypoint, chronological waypoint order, and
// no consecutive waypoints sharing a lane.
func (in *Individual) Validate() error {
	if in.ID == "" {
		return ErrNoID
	}
	if len(in.Path) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyPath, in.ID)
	}
	for i := 1; i < len(in.Path); i++ {
		if in.Path[i].Date.Before(in.Path[i-1].Date) {
			return fmt.Errorf("%w: %s waypoint %d", ErrUnordered, in.ID, i)
		}
		if in.Path[i].Lane == in.Path[i-1].Lane {
			return fmt.Errorf("%w: %s repeats lane %q at waypoint %d", ErrUnordered, in.ID, in.Path[i].Lane, i)
		}
	}
	return nil
}

// CollapsePath drops waypoints that do not change lanes, keeping the first
// occurrence of each run. Consecutive waypoints in the result never share a
// lane.
func CollapsePath(ws []Waypoint) []Waypoint {
	if len(ws) == 0 {
		return nil
	}
	out := make([]Waypoint, 0, len(ws))
	out = append(out, ws[0])
	for _, wp := range ws[1:] {
		if wp.Lane == out[len(out)-1].Lane {
			continue
		}
		out = append(out, wp)
	}
	return out
}

// SortEvents orders events chronologically in place, with a stable kind
// tiebreak for same-day events.
func SortEvents(evs []Event) {
	sort.SliceStable(evs, func(i, j int) bool {
		if !evs[i].Date.Equal(evs[j].Date) {
			return evs[i].Date.Before(evs[j].Date)
		}
		return eventRank(evs[i].Kind) < eventRank(evs[j].Kind)
	})
}

// eventRank fixes same-day ordering: capture precedes death precedes
// release precedes repatriation.
func eventRank(k EventKind) int {
	switch k {
	case EventCaptured:
		return 0
	case EventDied:
		return 1
	case EventReleased:
		return 2
	case EventReturned:
		return 3
	default:
		return 4
	}
}
