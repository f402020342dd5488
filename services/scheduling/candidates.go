package scheduling

import (
	"sort"
	"time"

	"clinicdesk/models"
)

// Defaults for candidate selection.
const (
	// DefaultAdvanceLead keeps advance bookings away from slots too close
	// to "now"; it doubles as the walk-in immediate-tier window.
	DefaultAdvanceLead = 60 * time.Minute
	// DefaultWalkInSpacing is the number of advance slots between
	// consecutive walk-ins in the spaced tier.
	DefaultWalkInSpacing = 5
)

// AdvanceCandidates returns the ordered slot candidates for an advance
// booking: every free slot further out than the lead window, ascending by
// time. A still-valid preferred index is moved to the front but never made
// exclusive, so a reschedule that races on its preferred slot still lands
// somewhere.
func AdvanceCandidates(grid []models.Slot, now time.Time, occupied map[int]bool, preferred *int, lead time.Duration) []models.Slot {
	if lead <= 0 {
		lead = DefaultAdvanceLead
	}
	cutoff := now.Add(lead)

	var candidates []models.Slot
	for _, slot := range grid {
		if occupied[slot.Index] {
			continue
		}
		if slot.Time.After(cutoff) {
			candidates = append(candidates, slot)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Time.Before(candidates[j].Time)
	})

	if preferred != nil {
		for i, slot := range candidates {
			if slot.Index == *preferred {
				picked := candidates[i]
				candidates = append(candidates[:i], candidates[i+1:]...)
				candidates = append([]models.Slot{picked}, candidates...)
				break
			}
		}
	}
	return candidates
}

// WalkInCandidates returns the ordered slot candidates for a walk-in under
// the two-tier rule.
//
// Immediate tier: free slots inside the next lead window (and not in the
// past) fill truly imminent unused time; when any exist they are the entire
// candidate set.
//
// Spaced tier: otherwise, only free slots beyond the lead window are
// considered, floored so that walk-ins spread out at one per spacing
// advance appointments. If the floor leaves nothing, every free slot in the
// tier is offered unfiltered so a walk-in is never permanently starved.
func WalkInCandidates(grid []models.Slot, now time.Time, occupied map[int]bool, active []models.Appointment, spacing int, lead time.Duration) []models.Slot {
	if lead <= 0 {
		lead = DefaultAdvanceLead
	}
	if spacing <= 0 {
		spacing = DefaultWalkInSpacing
	}
	cutoff := now.Add(lead)

	var immediate, spaced []models.Slot
	for _, slot := range grid {
		if occupied[slot.Index] {
			continue
		}
		switch {
		case !slot.Time.Before(now) && !slot.Time.After(cutoff):
			immediate = append(immediate, slot)
		case slot.Time.After(cutoff):
			spaced = append(spaced, slot)
		}
	}
	sortByTime(immediate)
	sortByTime(spaced)

	if len(immediate) > 0 {
		return immediate
	}

	floor := walkInFloor(active, spacing)
	var filtered []models.Slot
	for _, slot := range spaced {
		if slot.Index > floor {
			filtered = append(filtered, slot)
		}
	}
	if len(filtered) == 0 {
		// Starvation fallback: offer the whole tier.
		return spaced
	}
	return filtered
}

// walkInFloor computes the minimum-index floor for the spaced tier;
// candidates must sit strictly above it.
func walkInFloor(active []models.Appointment, spacing int) int {
	advance := filterByChannel(active, models.BookedViaAdvance)
	walkIns := filterByChannel(active, models.BookedViaWalkIn)
	sortBySlotIndex(advance)
	sortBySlotIndex(walkIns)

	if len(walkIns) == 0 {
		// First walk-in of the day: count spacing advance appointments from
		// the start of the day, or settle for the last one if fewer exist.
		if len(advance) == 0 {
			return -1
		}
		if len(advance) >= spacing {
			return advance[spacing-1].SlotIndex
		}
		return advance[len(advance)-1].SlotIndex
	}

	lastWalkIn := walkIns[len(walkIns)-1].SlotIndex

	// Count spacing advance appointments forward from the last walk-in.
	var after []models.Appointment
	for _, a := range advance {
		if a.SlotIndex > lastWalkIn {
			after = append(after, a)
		}
	}
	switch {
	case len(after) >= spacing:
		return after[spacing-1].SlotIndex
	case len(after) > 0:
		return after[len(after)-1].SlotIndex
	default:
		// Last walk-in already past the last advance appointment: place
		// consecutively with no forced spacing.
		return lastWalkIn
	}
}

func filterByChannel(appts []models.Appointment, channel models.BookingChannel) []models.Appointment {
	var out []models.Appointment
	for _, a := range appts {
		if a.BookedVia == channel {
			out = append(out, a)
		}
	}
	return out
}

func sortBySlotIndex(appts []models.Appointment) {
	sort.Slice(appts, func(i, j int) bool {
		return appts[i].SlotIndex < appts[j].SlotIndex
	})
}

func sortByTime(slots []models.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].Time.Before(slots[j].Time)
	})
}
