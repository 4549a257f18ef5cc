package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() SchedulePolicy {
	p := DefaultPolicy()
	p.Location = time.UTC
	return p
}

func TestSchedulePolicy_ValidateSlot(t *testing.T) {
	p := testPolicy()
	now := time.Date(2025, 5, 30, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		start  time.Time
		reason error
	}{
		{name: "on the hour inside business hours", start: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)},
		{name: "first slot of the day", start: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)},
		{name: "last slot of the day", start: time.Date(2025, 6, 1, 17, 0, 0, 0, time.UTC)},
		{name: "half past", start: time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC), reason: ErrInvalidSlot},
		{name: "before opening", start: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), reason: ErrInvalidSlot},
		{name: "ends after closing", start: time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC), reason: ErrInvalidSlot},
		{name: "in the past", start: time.Date(2025, 5, 29, 10, 0, 0, 0, time.UTC), reason: ErrPastTime},
		{name: "same day", start: time.Date(2025, 5, 30, 15, 0, 0, 0, time.UTC), reason: ErrPastTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.ValidateSlot("test", tt.start, now)
			if tt.reason == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.True(t, errors.Is(err, tt.reason))
		})
	}
}

func TestSchedulePolicy_ValidateSlot_SameDayAllowed(t *testing.T) {
	p := testPolicy()
	p.AllowSameDay = true
	now := time.Date(2025, 5, 30, 10, 0, 0, 0, time.UTC)

	assert.NoError(t, p.ValidateSlot("test", time.Date(2025, 5, 30, 15, 0, 0, 0, time.UTC), now))
}

func TestSchedulePolicy_ValidateReschedule(t *testing.T) {
	p := testPolicy()
	now := time.Date(2025, 5, 30, 10, 0, 0, 0, time.UTC)

	err := p.ValidateReschedule("test", time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC), now)
	assert.ErrorIs(t, err, ErrRescheduleTooLate)

	assert.NoError(t, p.ValidateReschedule("test", time.Date(2025, 5, 30, 13, 0, 0, 0, time.UTC), now))
}

func TestSchedulePolicy_Validate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())

	p := testPolicy()
	p.MaxServiceDuration = 10 * time.Minute
	assert.Error(t, p.Validate())

	p = testPolicy()
	p.CloseAt = 9*time.Hour + 30*time.Minute
	assert.Error(t, p.Validate())
}

func TestPolicySet_For(t *testing.T) {
	set := NewPolicySet(testPolicy())
	long := testPolicy()
	long.MaxServiceDuration = 90 * time.Minute
	set.Overrides["therapy"] = long

	assert.Equal(t, 90*time.Minute, set.For("therapy").MaxServiceDuration)
	assert.Equal(t, DefaultMaxServiceDuration, set.For("consultation").MaxServiceDuration)
	assert.NoError(t, set.Validate())
}

func TestBooking_Guards(t *testing.T) {
	b := &Booking{Status: StatusRescheduled}
	assert.True(t, b.CanBegin())
	assert.True(t, b.CanBeCancelled())
	assert.True(t, b.CanBeCompleted(true))
	assert.False(t, b.CanBeCompleted(false))

	b.Status = StatusCompleted
	assert.False(t, b.CanBegin())
	assert.False(t, b.CanBeCancelled())
	assert.False(t, b.CanBeRescheduled())
	assert.True(t, b.CanBeEvaluated())

	rating := RatingGood
	b.Rating = &rating
	assert.False(t, b.CanBeEvaluated())
}

func TestError_Is(t *testing.T) {
	err := NewConflictError("Reserve", ErrSlotTaken, 42, StatusConfirmed)

	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Contains(t, err.Error(), "booking=42")

	cause := errors.New("dial tcp: timeout")
	transient := NewTransientError("Directory", ErrDirectoryUnavailable, cause)
	assert.ErrorIs(t, transient, cause)
	assert.ErrorIs(t, transient, ErrExternalTransient)

	denied := NewForbiddenError("Cancel", ErrAccessDenied, 42, 5)
	assert.ErrorIs(t, denied, ErrForbidden)
	assert.ErrorIs(t, denied, ErrAccessDenied)
	assert.Equal(t, KindForbidden, KindOf(denied))
	assert.Contains(t, denied.Error(), "user=5")
}

func TestPaymentConfirmation_Succeeded(t *testing.T) {
	assert.True(t, (&PaymentConfirmation{StatusCode: "00"}).Succeeded())
	assert.True(t, (&PaymentConfirmation{StatusCode: "00", TransactionStatus: "00"}).Succeeded())
	assert.False(t, (&PaymentConfirmation{StatusCode: "00", TransactionStatus: "02"}).Succeeded())
	assert.False(t, (&PaymentConfirmation{StatusCode: "24"}).Succeeded())
}
