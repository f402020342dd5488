package scheduling

import "math"

// DefaultAdvanceRatio is the share of a session's slots claimable by advance
// bookings when no ratio is configured.
const DefaultAdvanceRatio = 0.85

// CapacityPolicy computes the advance/walk-in split of a day's slots.
// Capacity is enforced on a count basis rather than positionally:
// cancellations free counts without necessarily freeing the most recently
// claimed index.
type CapacityPolicy struct {
	AdvanceRatio float64
}

func (p CapacityPolicy) ratio() float64 {
	if p.AdvanceRatio <= 0 || p.AdvanceRatio > 1 {
		return DefaultAdvanceRatio
	}
	return p.AdvanceRatio
}

// Split returns how many of total slots advance bookings may claim and how
// many are held back for walk-ins.
func (p CapacityPolicy) Split(total int) (advance, walkIn int) {
	if total <= 0 {
		return 0, 0
	}
	advance = int(math.Floor(float64(total) * p.ratio()))
	return advance, total - advance
}

// InAdvanceZone reports whether a slot index falls in the advance region of
// a grid of the given size.
func (p CapacityPolicy) InAdvanceZone(index, total int) bool {
	advance, _ := p.Split(total)
	return index < advance
}
