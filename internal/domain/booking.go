package domain

import (
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending     BookingStatus = "pending"
	StatusConfirmed   BookingStatus = "confirmed"
	StatusRescheduled BookingStatus = "rescheduled"
	StatusInProgress  BookingStatus = "in_progress"
	StatusCompleted   BookingStatus = "completed"
	StatusCancelled   BookingStatus = "cancelled"
)

// Rating is the subject's evaluation of a completed booking
type Rating string

const (
	RatingVeryBad   Rating = "VERY_BAD"
	RatingBad       Rating = "BAD"
	RatingAverage   Rating = "AVERAGE"
	RatingGood      Rating = "GOOD"
	RatingExcellent Rating = "EXCELLENT"
)

// IsValid reports whether r is one of the known ratings
func (r Rating) IsValid() bool {
	switch r {
	case RatingVeryBad, RatingBad, RatingAverage, RatingGood, RatingExcellent:
		return true
	}
	return false
}

// Booking represents a reservation between a subject and a professional
type Booking struct {
	ID             int64
	SubjectID      int64
	ProfessionalID int64
	ServiceType    string

	ExpectedStart time.Time
	ExpectedEnd   time.Time
	RealStart     *time.Time // stamped by begin()
	RealEnd       *time.Time // stamped by complete()

	Status      BookingStatus
	Rescheduled bool

	Note    *string
	Outcome *string // immutable once the booking is completed

	Rating  *Rating
	Comment *string

	PaymentToken *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still occupies its slot
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// IsConfirmed returns true for confirmed bookings, including rescheduled ones
func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed || b.Status == StatusRescheduled
}

// IsTerminal returns true once no lifecycle transition can change the booking
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCompleted || b.Status == StatusCancelled
}

// CanBeConfirmed returns true if the professional can still accept the booking
func (b *Booking) CanBeConfirmed() bool {
	return b.Status == StatusPending
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.IsConfirmed()
}

// CanBeRescheduled returns true if the expected timing can still be moved
func (b *Booking) CanBeRescheduled() bool {
	return b.Status == StatusPending || b.IsConfirmed()
}

// CanBegin returns true if the service delivery can start
func (b *Booking) CanBegin() bool {
	return b.IsConfirmed()
}

// CanBeCompleted returns true if the booking is running or the caller supplies both timestamps
func (b *Booking) CanBeCompleted(outOfBand bool) bool {
	if b.Status == StatusInProgress {
		return true
	}
	return outOfBand && b.IsConfirmed()
}

// CanBeEvaluated returns true if the booking is completed and not rated yet
func (b *Booking) CanBeEvaluated() bool {
	return b.Status == StatusCompleted && b.Rating == nil
}

// Slot projects the booking onto the slot index
func (b *Booking) Slot() Slot {
	return Slot{
		ProfessionalID: b.ProfessionalID,
		Start:          b.ExpectedStart,
		BookingID:      b.ID,
		Status:         b.Status,
	}
}

// BookingsFilter фильтр для выборки бронирований
type BookingsFilter struct {
	SubjectID       *int64
	ProfessionalID  *int64
	From            *time.Time // включительно
	To              *time.Time // не включительно
	Status          *BookingStatus
	IncludeInactive bool
}
