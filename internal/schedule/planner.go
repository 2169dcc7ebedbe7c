// Package schedule allocates collision-free future publish slots.
//
// The CMS future queue is the source of truth for occupied slots; one
// planning pass must produce timestamps that are pairwise distinct and
// disjoint from that queue at minute resolution.
package schedule

import "time"

// TimeOfDay is the fixed civil publish time applied to every slot.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// SlotKey truncates a timestamp to the minute-resolution key used for
// collision checks. The CMS reports dates in site-local civil time, so
// the key deliberately ignores sub-minute components.
func SlotKey(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}

// Occupied is the set of claimed publish timestamps at minute
// resolution. Slots claimed during a planning pass are added to the
// same set, so one pass never collides with itself.
type Occupied map[time.Time]struct{}

// NewOccupied builds the occupied set from existing queue timestamps.
func NewOccupied(existing []time.Time) Occupied {
	o := make(Occupied, len(existing))
	for _, t := range existing {
		o[SlotKey(t)] = struct{}{}
	}
	return o
}

// Contains reports whether the minute slot of t is already claimed.
func (o Occupied) Contains(t time.Time) bool {
	_, ok := o[SlotKey(t)]
	return ok
}

// Claim marks the minute slot of t as taken.
func (o Occupied) Claim(t time.Time) {
	o[SlotKey(t)] = struct{}{}
}

// PlanSlots returns n future publish timestamps starting no earlier than
// earliestDay at the fixed time of day. A candidate is advanced one day
// at a time while its weekday is excluded or its minute slot collides
// with occupied; claimed slots immediately join occupied. The output is
// strictly increasing.
func PlanSlots(n int, earliestDay time.Time, excludedWeekdays map[time.Weekday]bool, occupied Occupied, at TimeOfDay) []time.Time {
	if n <= 0 {
		return nil
	}
	if occupied == nil {
		occupied = make(Occupied)
	}

	slots := make([]time.Time, 0, n)
	day := earliestDay
	for len(slots) < n {
		candidate := time.Date(day.Year(), day.Month(), day.Day(), at.Hour, at.Minute, 0, 0, day.Location())
		if excludedWeekdays[candidate.Weekday()] || occupied.Contains(candidate) {
			day = day.AddDate(0, 0, 1)
			continue
		}
		occupied.Claim(candidate)
		slots = append(slots, candidate)
		day = day.AddDate(0, 0, 1)
	}
	return slots
}
