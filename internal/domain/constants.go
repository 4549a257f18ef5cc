package domain

import "time"

// Default policy values
const (
	DefaultMinGap              = 60 * time.Minute
	DefaultExpectedDuration    = time.Hour
	DefaultMinServiceDuration  = 20 * time.Minute
	DefaultMaxServiceDuration  = 60 * time.Minute
	DefaultGranularity         = time.Hour
	DefaultOpenAt              = 9 * time.Hour
	DefaultCloseAt             = 18 * time.Hour
	DefaultMinRescheduleNotice = 3 * time.Hour
	DefaultMaxStartDelay       = time.Hour
	DefaultLocation            = "Asia/Ho_Chi_Minh"
)

// Business validation constants
const (
	MinNoteLength       = 0
	MaxNoteLength       = 500
	MinOutcomeLength    = 10
	MaxOutcomeLength    = 255
	MinCommentLength    = 5
	MaxCommentLength    = 255
	MaxCancelReasonLen  = 500
	MinPaymentAmountVND = 10_000
	MaxPaymentAmountVND = 20_000_000
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses статусы, занимающие слот
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusRescheduled,
	StatusInProgress,
	StatusCompleted,
}

// AllStatuses все известные статусы бронирования
var AllStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusRescheduled,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
}

// ParseBookingStatus converts a raw status value into a BookingStatus
func ParseBookingStatus(s string) (BookingStatus, bool) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}
