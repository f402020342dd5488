package models

// QueueState is the live consultation queue for one (doctor, date, session).
// It is a pure derivation from the day's appointment records, recomputed on
// every read; only ConsultationCount is backed by a persisted counter.
type QueueState struct {
	ArrivedQueue        []Appointment `json:"arrivedQueue"`
	BufferQueue         []Appointment `json:"bufferQueue"` // first 2 of arrived
	SkippedQueue        []Appointment `json:"skippedQueue"`
	CurrentConsultation *Appointment  `json:"currentConsultation"`
	ConsultationCount   int           `json:"consultationCount"`
}

// DaySummary is the per-session dashboard rollup for one doctor-day.
type DaySummary struct {
	SessionIndex int `json:"sessionIndex"`
	Booked       int `json:"booked"`
	WalkIns      int `json:"walkIns"`
	Completed    int `json:"completed"`
	Skipped      int `json:"skipped"`
	Cancelled    int `json:"cancelled"`
	NoShows      int `json:"noShows"`
}
