package slotindex

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/memory"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 1, hour, minute, 0, 0, time.UTC)
}

func seed(t *testing.T, repo *memory.BookingRepository, professionalID int64, start time.Time, status domain.BookingStatus) int64 {
	t.Helper()
	b, err := repo.Create(context.Background(), &domain.Booking{
		SubjectID:      1,
		ProfessionalID: professionalID,
		ExpectedStart:  start,
		ExpectedEnd:    start.Add(time.Hour),
		Status:         status,
	})
	require.NoError(t, err)
	return b.ID
}

func TestIndex_Check(t *testing.T) {
	repo := memory.NewStore().Bookings()
	idx := NewIndex(repo, time.UTC)
	ctx := context.Background()

	busy := seed(t, repo, 7, at(10, 0), domain.StatusConfirmed)
	seed(t, repo, 7, at(14, 0), domain.StatusPending)
	seed(t, repo, 8, at(10, 0), domain.StatusConfirmed)

	tests := []struct {
		name     string
		at       time.Time
		exclude  int64
		verdict  domain.Verdict
		conflict int64
	}{
		{name: "same hour", at: at(10, 0), verdict: domain.VerdictUnavailable, conflict: busy},
		{name: "within gap", at: at(10, 30), verdict: domain.VerdictUnavailable, conflict: busy},
		{name: "exactly one gap away", at: at(11, 0), verdict: domain.VerdictAvailable},
		{name: "free afternoon", at: at(16, 0), verdict: domain.VerdictAvailable},
		{name: "own slot excluded", at: at(10, 0), exclude: busy, verdict: domain.VerdictAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := idx.Check(ctx, 7, tt.at, time.Hour, tt.exclude)
			require.NoError(t, err)
			assert.Equal(t, tt.verdict, got.Verdict)
			assert.Equal(t, tt.conflict, got.ConflictingID)
		})
	}
}

func TestIndex_CancelledBookingsAreNotCommitments(t *testing.T) {
	repo := memory.NewStore().Bookings()
	idx := NewIndex(repo, time.UTC)

	seed(t, repo, 7, at(14, 0), domain.StatusCancelled)

	got, err := idx.Check(context.Background(), 7, at(14, 0), time.Hour, 0)
	require.NoError(t, err)
	assert.True(t, got.IsAvailable())
	assert.Equal(t, 0, got.Load)
}

func TestIndex_CommitmentsOfDay(t *testing.T) {
	repo := memory.NewStore().Bookings()
	idx := NewIndex(repo, time.UTC)

	seed(t, repo, 7, at(15, 0), domain.StatusConfirmed)
	seed(t, repo, 7, at(9, 0), domain.StatusConfirmed)
	seed(t, repo, 7, at(9, 0).AddDate(0, 0, 1), domain.StatusConfirmed)
	seed(t, repo, 8, at(11, 0), domain.StatusPending)

	slots, err := idx.Commitments(context.Background(), 7, at(0, 0))
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, at(9, 0), slots[0].Start)
	assert.Equal(t, at(15, 0), slots[1].Start)
}

type failingRepo struct{}

func (failingRepo) ListCommitments(context.Context, int64, time.Time, time.Time) ([]*domain.Booking, error) {
	return nil, errors.New("connection refused")
}

func TestIndex_CheckFailureIsUnknown(t *testing.T) {
	idx := NewIndex(failingRepo{}, time.UTC)

	got, err := idx.Check(context.Background(), 7, at(10, 0), time.Hour, 0)

	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, domain.VerdictUnknown, got.Verdict)
}
