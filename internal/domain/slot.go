package domain

import "time"

// Slot is a committed (professional, start) unit derived from a non-cancelled booking
type Slot struct {
	ProfessionalID int64
	Start          time.Time
	BookingID      int64
	Status         BookingStatus
}

// Within returns true if the slot starts closer than gap to at
func (s Slot) Within(at time.Time, gap time.Duration) bool {
	d := s.Start.Sub(at)
	if d < 0 {
		d = -d
	}
	return d < gap
}

// Verdict is the outcome of an availability lookup for one candidate
type Verdict string

const (
	VerdictAvailable   Verdict = "available"
	VerdictUnavailable Verdict = "unavailable"
	VerdictUnknown     Verdict = "unknown" // lookup failed; treated as unavailable
)

// CandidateAvailability is the per-candidate availability result
type CandidateAvailability struct {
	ProfessionalID    int64
	Verdict           Verdict
	ConflictingID     int64         // booking that blocks the slot, if any
	ConflictingStatus BookingStatus // its current status
	Load              int           // commitments on the requested date
}

// IsAvailable returns true only for a positive verdict
func (c CandidateAvailability) IsAvailable() bool {
	return c.Verdict == VerdictAvailable
}
