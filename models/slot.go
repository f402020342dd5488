package models

import "time"

// Slot is one fixed-duration bookable position in a doctor's daily
// timeline. Slots are derived on demand from the doctor's availability and
// are never persisted on their own. Index is the 0-based rank across the
// whole day, spanning all sessions in order; indices keep their values even
// when leave exceptions suppress some slots, so a returned grid may contain
// index gaps.
type Slot struct {
	Index        int       `json:"index"`
	Time         time.Time `json:"time"`
	SessionIndex int       `json:"sessionIndex"`
}
