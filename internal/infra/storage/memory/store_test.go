package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	intentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/intent"
)

var slotStart = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newBooking(professionalID int64, start time.Time) *domain.Booking {
	return &domain.Booking{
		SubjectID:      1,
		ProfessionalID: professionalID,
		ExpectedStart:  start,
		ExpectedEnd:    start.Add(time.Hour),
		Status:         domain.StatusPending,
	}
}

func TestStore_RollbackRestoresState(t *testing.T) {
	s := NewStore()
	bookings := s.Bookings()
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.Do(ctx, func(txCtx context.Context) error {
		_, err := bookings.Create(txCtx, newBooking(7, slotStart))
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	list, err := bookings.ListCommitments(ctx, 7, slotStart.Add(-time.Hour), slotStart.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, list)

	created, err := bookings.Create(ctx, newBooking(7, slotStart))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID, "id sequence is rolled back too")
}

func TestBookingRepository_Constraints(t *testing.T) {
	s := NewStore()
	bookings := s.Bookings()
	ctx := context.Background()

	first, err := bookings.Create(ctx, newBooking(7, slotStart))
	require.NoError(t, err)

	_, err = bookings.Create(ctx, newBooking(7, slotStart))
	assert.ErrorIs(t, err, bookingRepo.ErrSlotNotAvailable)

	second, err := bookings.Create(ctx, newBooking(7, slotStart.Add(2*time.Hour)))
	require.NoError(t, err)

	require.NoError(t, bookings.MarkInProgress(ctx, first.ID, slotStart))
	assert.ErrorIs(t, bookings.MarkInProgress(ctx, second.ID, slotStart), bookingRepo.ErrAlreadyInProgress)

	require.NoError(t, bookings.Cancel(ctx, second.ID, nil, slotStart))
	_, err = bookings.Create(ctx, newBooking(7, slotStart.Add(2*time.Hour)))
	assert.NoError(t, err, "cancelled booking frees its slot")
}

func TestBookingRepository_LockRequiresTx(t *testing.T) {
	s := NewStore()
	bookings := s.Bookings()

	assert.ErrorIs(t, bookings.LockProfessional(context.Background(), 7), bookingRepo.ErrNotInTransaction)
	assert.NoError(t, s.Do(context.Background(), func(ctx context.Context) error {
		return bookings.LockProfessional(ctx, 7)
	}))
}

func TestIntentRepository_Transitions(t *testing.T) {
	s := NewStore()
	intents := s.Intents()
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, intents.Create(ctx, &domain.PaymentIntent{
		Token:     "t-1",
		State:     domain.IntentPending,
		CreatedAt: now,
		ExpiresAt: now.Add(30 * time.Minute),
	}))
	require.NoError(t, intents.Create(ctx, &domain.PaymentIntent{
		Token:     "t-2",
		State:     domain.IntentPending,
		CreatedAt: now,
		ExpiresAt: now.Add(10 * time.Minute),
	}))

	require.NoError(t, intents.MarkConsumed(ctx, "t-1", 5, "TX1"))
	assert.ErrorIs(t, intents.MarkDiscarded(ctx, "t-1", domain.DiscardPaymentFailed, nil), intentRepo.ErrStateChanged)

	n, err := intents.DiscardExpired(ctx, now.Add(20*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := intents.GetByToken(ctx, "t-2")
	require.NoError(t, err)
	assert.Equal(t, domain.IntentDiscarded, got.State)
	assert.Equal(t, domain.DiscardExpired, *got.DiscardReason)

	_, err = intents.GetByToken(ctx, "missing")
	assert.ErrorIs(t, err, intentRepo.ErrIntentNotFound)
}
