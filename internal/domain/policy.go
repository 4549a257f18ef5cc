package domain

import (
	"errors"
	"fmt"
	"time"
)

// SchedulePolicy holds the scheduling rules applied to one service type.
// All durations are wall-clock; OpenAt and CloseAt are offsets from local midnight.
type SchedulePolicy struct {
	MinGap              time.Duration
	ExpectedDuration    time.Duration
	MinServiceDuration  time.Duration
	MaxServiceDuration  time.Duration
	Granularity         time.Duration
	OpenAt              time.Duration
	CloseAt             time.Duration
	MinRescheduleNotice time.Duration
	MaxStartDelay       time.Duration
	AllowSameDay        bool
	Location            *time.Location
}

// DefaultPolicy returns the policy used when no override is configured
func DefaultPolicy() SchedulePolicy {
	loc, err := time.LoadLocation(DefaultLocation)
	if err != nil {
		loc = time.UTC
	}
	return SchedulePolicy{
		MinGap:              DefaultMinGap,
		ExpectedDuration:    DefaultExpectedDuration,
		MinServiceDuration:  DefaultMinServiceDuration,
		MaxServiceDuration:  DefaultMaxServiceDuration,
		Granularity:         DefaultGranularity,
		OpenAt:              DefaultOpenAt,
		CloseAt:             DefaultCloseAt,
		MinRescheduleNotice: DefaultMinRescheduleNotice,
		MaxStartDelay:       DefaultMaxStartDelay,
		Location:            loc,
	}
}

// Validate checks that the policy is internally consistent
func (p SchedulePolicy) Validate() error {
	switch {
	case p.MinGap < 0:
		return errors.New("policy: min gap must not be negative")
	case p.ExpectedDuration <= 0:
		return errors.New("policy: expected duration must be positive")
	case p.Granularity <= 0:
		return errors.New("policy: granularity must be positive")
	case p.MinServiceDuration <= 0 || p.MaxServiceDuration < p.MinServiceDuration:
		return fmt.Errorf("policy: invalid service duration bounds [%s, %s]", p.MinServiceDuration, p.MaxServiceDuration)
	case p.OpenAt < 0 || p.CloseAt > 24*time.Hour || p.OpenAt+p.ExpectedDuration > p.CloseAt:
		return fmt.Errorf("policy: invalid business hours [%s, %s]", p.OpenAt, p.CloseAt)
	case p.MaxStartDelay <= 0:
		return errors.New("policy: max start delay must be positive")
	}
	return nil
}

// Loc returns the policy time zone
func (p SchedulePolicy) Loc() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// At combines a calendar date with a clock time in the policy time zone
func (p SchedulePolicy) At(date time.Time, clock time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, p.Loc())
}

// Day returns the local [start, end) bounds of the calendar day containing t
func (p SchedulePolicy) Day(t time.Time) (time.Time, time.Time) {
	y, m, d := t.In(p.Loc()).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, p.Loc())
	return start, start.AddDate(0, 0, 1)
}

// ExpectedEnd derives the expected end of a booking starting at start
func (p SchedulePolicy) ExpectedEnd(start time.Time) time.Time {
	return start.Add(p.ExpectedDuration)
}

// ValidateSlot checks that start is a bookable slot at instant now
func (p SchedulePolicy) ValidateSlot(op string, start, now time.Time) error {
	if !start.After(now) {
		return NewValidationError(op, ErrPastTime, start.Format(time.RFC3339))
	}

	local := start.In(p.Loc())
	if !p.AllowSameDay {
		dayStart, _ := p.Day(now)
		if local.Before(dayStart.AddDate(0, 0, 1)) {
			return NewValidationError(op, ErrPastTime, "reservations must be made for a later date")
		}
	}

	dayStart, _ := p.Day(local)
	tod := local.Sub(dayStart)
	if tod%p.Granularity != 0 {
		return NewValidationError(op, ErrInvalidSlot,
			fmt.Sprintf("%s is not aligned to %s", local.Format(TimeFormat), p.Granularity))
	}
	if tod < p.OpenAt || tod+p.ExpectedDuration > p.CloseAt {
		return NewValidationError(op, ErrInvalidSlot,
			fmt.Sprintf("%s is outside business hours", local.Format(TimeFormat)))
	}

	return nil
}

// ValidateReschedule checks a new start for an existing booking
func (p SchedulePolicy) ValidateReschedule(op string, start, now time.Time) error {
	if start.Before(now.Add(p.MinRescheduleNotice)) {
		return NewValidationError(op, ErrRescheduleTooLate,
			fmt.Sprintf("new start must be at least %s ahead", p.MinRescheduleNotice))
	}

	relaxed := p
	relaxed.AllowSameDay = true
	return relaxed.ValidateSlot(op, start, now)
}

// PolicySet resolves the policy for a service type
type PolicySet struct {
	Default   SchedulePolicy
	Overrides map[string]SchedulePolicy
}

// NewPolicySet creates a set with the given default and no overrides
func NewPolicySet(def SchedulePolicy) *PolicySet {
	return &PolicySet{Default: def, Overrides: map[string]SchedulePolicy{}}
}

// For returns the override for serviceType, or the default policy
func (s *PolicySet) For(serviceType string) SchedulePolicy {
	if p, ok := s.Overrides[serviceType]; ok {
		return p
	}
	return s.Default
}

// Validate checks every policy in the set
func (s *PolicySet) Validate() error {
	if err := s.Default.Validate(); err != nil {
		return fmt.Errorf("default %w", err)
	}
	for name, p := range s.Overrides {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("override %q: %w", name, err)
		}
	}
	return nil
}
