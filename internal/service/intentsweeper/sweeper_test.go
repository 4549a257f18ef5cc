package intentsweeper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type expiredCounter struct{ total int }

func (c *expiredCounter) ObserveIntentsExpired(n int) { c.total += n }

func TestSweeper_Sweep(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	intents := []*domain.PaymentIntent{
		{Token: "expired", State: domain.IntentPending, ExpiresAt: now.Add(-time.Minute)},
		{Token: "alive", State: domain.IntentPending, ExpiresAt: now.Add(time.Minute)},
		{Token: "consumed", State: domain.IntentConsumed, ExpiresAt: now.Add(-time.Hour)},
	}
	for _, in := range intents {
		require.NoError(t, store.Intents().Create(ctx, in))
	}

	counter := &expiredCounter{}
	s, err := New(store.Intents(), counter, "", logger.NewNop())
	require.NoError(t, err)
	s.now = func() time.Time { return now }

	n, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, counter.total)

	got, err := store.Intents().GetByToken(ctx, "expired")
	require.NoError(t, err)
	assert.Equal(t, domain.IntentDiscarded, got.State)
	assert.Equal(t, domain.DiscardExpired, *got.DiscardReason)

	got, err = store.Intents().GetByToken(ctx, "alive")
	require.NoError(t, err)
	assert.Equal(t, domain.IntentPending, got.State)

	got, err = store.Intents().GetByToken(ctx, "consumed")
	require.NoError(t, err)
	assert.Equal(t, domain.IntentConsumed, got.State)
}

func TestNew_InvalidSchedule(t *testing.T) {
	_, err := New(memory.NewStore().Intents(), &expiredCounter{}, "every minute", logger.NewNop())
	assert.ErrorIs(t, err, ErrSchedule)
}

func TestSweeper_StartStop(t *testing.T) {
	s, err := New(memory.NewStore().Intents(), &expiredCounter{}, "@every 1h", logger.NewNop())
	require.NoError(t, err)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
