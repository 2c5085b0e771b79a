package layout

import (
	"sort"
	"time"

	"golang.org/x/text/collate"

	"github.com/peledor/lifelines/internal/lane"
	"github.com/peledor/lifelines/internal/record"
)

// sortMembers orders a lane's occupants by the lane-kind comparator. Every
// comparator ends with a name comparison (locale-aware) and then the record
// id, so equal inputs always produce identical row assignments.
func sortMembers(def lane.Def, occ []*record.Individual, names *collate.Collator) {
	var less func(a, b *record.Individual) bool
	switch def.Kind {
	case lane.KindRelease:
		less = func(a, b *record.Individual) bool { return releaseLess(def.ID, a, b, names) }
	case lane.KindMixed:
		less = func(a, b *record.Individual) bool { return mixedLess(a, b, names) }
	case lane.KindDeceased:
		less = func(a, b *record.Individual) bool { return deceasedLess(def.ID, a, b, names) }
	default:
		less = func(a, b *record.Individual) bool { return defaultLess(a, b, names) }
	}
	sort.SliceStable(occ, func(i, j int) bool { return less(occ[i], occ[j]) })
}

// releaseLess orders release-type lanes by entry date into the lane, so the
// earliest release sits topmost.
func releaseLess(ln lane.ID, a, b *record.Individual, names *collate.Collator) bool {
	da, _ := a.EntryDate(ln)
	db, _ := b.EntryDate(ln)
	if !da.Equal(db) {
		return da.Before(db)
	}
	return nameLess(a, b, names)
}

// mixedLess orders the mixed captivity lane. Occupants headed upward to the
// release section sort first, the still-present group sits in the middle,
// and the deceased sort last, closest to the deceased lanes below. Within
// each group the date key differs: released ascending, deceased descending
// (most recent death adjacent to the living), still-present by entry date.
func mixedLess(a, b *record.Individual, names *collate.Collator) bool {
	ra, rb := outcomeRank(a), outcomeRank(b)
	if ra != rb {
		return ra < rb
	}

	da, db := outcomeDate(a), outcomeDate(b)
	if !da.Equal(db) {
		if ra == 2 {
			return da.After(db) // deceased: most recent death first
		}
		return da.Before(db)
	}

	if a.Method != b.Method {
		return a.Method < b.Method // operation before deal before none
	}
	return nameLess(a, b, names)
}

// outcomeRank groups mixed-lane occupants by the direction their line
// leaves the lane: 0 released upward, 1 still present, 2 deceased downward.
func outcomeRank(in *record.Individual) int {
	switch in.Journey() {
	case record.JourneyReleasedAlive:
		return 0
	case record.JourneyStillCaptive:
		return 1
	default:
		return 2
	}
}

// outcomeDate picks the date key matching the occupant's outcome group.
func outcomeDate(in *record.Individual) time.Time {
	switch in.Journey() {
	case record.JourneyReleasedAlive:
		if d, ok := in.EventDate(record.EventReleased); ok {
			return d
		}
	case record.JourneyStillCaptive:
		// fall through to entry date below
	default:
		if d, ok := in.EventDate(record.EventDied); ok {
			return d
		}
	}
	if len(in.Path) > 0 {
		return in.Path[0].Date
	}
	return time.Time{}
}

// deceasedLess orders the deceased lane: bodies that later came home sort
// first, keyed by their earliest lane change rather than the death date
// alone; the still-unreturned sort last by death date.
func deceasedLess(ln lane.ID, a, b *record.Individual, names *collate.Collator) bool {
	ra, rb := returnedRank(a), returnedRank(b)
	if ra != rb {
		return ra < rb
	}

	da := deceasedDate(ln, a)
	db := deceasedDate(ln, b)
	if !da.Equal(db) {
		return da.Before(db)
	}
	return nameLess(a, b, names)
}

func returnedRank(in *record.Individual) int {
	if _, ok := in.EventDate(record.EventReturned); ok {
		return 0
	}
	return 1
}

// deceasedDate keys returned bodies on their earliest transition and the
// unreturned on their entry into the deceased lane.
func deceasedDate(ln lane.ID, in *record.Individual) time.Time {
	if returnedRank(in) == 0 {
		if d, ok := in.EarliestTransition(); ok {
			return d
		}
	}
	if d, ok := in.EntryDate(ln); ok {
		return d
	}
	if d, ok := in.EventDate(record.EventDied); ok {
		return d
	}
	return time.Time{}
}

// defaultLess orders fallback-kind lanes by the precomputed event-order
// key.
func defaultLess(a, b *record.Individual, names *collate.Collator) bool {
	if a.OrderKey != b.OrderKey {
		return a.OrderKey < b.OrderKey
	}
	return nameLess(a, b, names)
}

func nameLess(a, b *record.Individual, names *collate.Collator) bool {
	if n := names.CompareString(a.Name, b.Name); n != 0 {
		return n < 0
	}
	return a.ID < b.ID
}
