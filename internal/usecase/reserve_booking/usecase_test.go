package reserve_booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
	"github.com/m04kA/SMC-AppointmentService/internal/service/slotindex"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/check_availability"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.BookingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e events.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

type nopMetrics struct{}

func (nopMetrics) ObserveTransition(string, string) {}

type stubSuggester struct {
	id  int64
	err error
	got *check_availability.Request
}

func (s *stubSuggester) SuggestProfessional(_ context.Context, req *check_availability.Request) (int64, error) {
	s.got = req
	return s.id, s.err
}

var (
	day = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	now = time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)
)

type fixture struct {
	store     *memory.Store
	publisher *recordingPublisher
	uc        *UseCase
}

func newFixture(suggester ProfessionalSuggester) *fixture {
	p := domain.DefaultPolicy()
	p.Location = time.UTC

	store := memory.NewStore()
	publisher := &recordingPublisher{}
	uc := NewUseCase(
		store.Bookings(),
		slotindex.NewIndex(store.Bookings(), time.UTC),
		suggester,
		domain.NewPolicySet(p),
		publisher,
		nopMetrics{},
		store,
		logger.NewNop(),
	)
	uc.timeProvider = fixedTime{now: now}
	return &fixture{store: store, publisher: publisher, uc: uc}
}

func TestUseCase_Execute(t *testing.T) {
	f := newFixture(nil)

	resp, err := f.uc.Execute(context.Background(), &Request{
		SubjectID:      11,
		ProfessionalID: ptr.Ptr(int64(7)),
		ServiceType:    "consultation",
		Date:           day,
		Time:           "10:00",
		Note:           ptr.Ptr("first visit"),
	})
	require.NoError(t, err)

	b := resp.Booking
	assert.NotZero(t, b.ID)
	assert.Equal(t, domain.StatusPending, b.Status)
	assert.Equal(t, day.Add(10*time.Hour), b.ExpectedStart)
	assert.Equal(t, day.Add(11*time.Hour), b.ExpectedEnd)
	assert.Nil(t, b.RealStart)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "booking.reserved", f.publisher.events[0].RoutingKey())
}

func TestUseCase_Execute_MinGap(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	first, err := f.uc.Execute(ctx, &Request{SubjectID: 1, ProfessionalID: ptr.Ptr(int64(7)), Date: day, Time: "10:00"})
	require.NoError(t, err)

	// другой специалист в то же время
	_, err = f.uc.Execute(ctx, &Request{SubjectID: 2, ProfessionalID: ptr.Ptr(int64(8)), Date: day, Time: "10:00"})
	require.NoError(t, err)

	// следующий час того же специалиста
	_, err = f.uc.Execute(ctx, &Request{SubjectID: 3, ProfessionalID: ptr.Ptr(int64(7)), Date: day, Time: "11:00"})
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, &Request{SubjectID: 4, ProfessionalID: ptr.Ptr(int64(7)), Date: day, Time: "10:00"})
	require.Error(t, err)

	e, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindConflict, e.Kind)
	assert.ErrorIs(t, err, domain.ErrSlotTaken)
	assert.Equal(t, first.Booking.ID, e.BookingID)
	assert.Equal(t, domain.StatusPending, e.Status)
	assert.Equal(t, "Reserve", e.Op)
}

func TestUseCase_Execute_Validation(t *testing.T) {
	f := newFixture(nil)
	long := string(make([]rune, domain.MaxNoteLength+1))

	tests := []struct {
		name   string
		req    *Request
		reason error
	}{
		{name: "no subject", req: &Request{ProfessionalID: ptr.Ptr(int64(7)), Date: day, Time: "10:00"}, reason: domain.ErrInvalidInput},
		{name: "no professional and no suggester", req: &Request{SubjectID: 1, Date: day, Time: "10:00"}, reason: domain.ErrInvalidInput},
		{name: "off hours", req: &Request{SubjectID: 1, ProfessionalID: ptr.Ptr(int64(7)), Date: day, Time: "18:00"}, reason: domain.ErrInvalidSlot},
		{name: "past", req: &Request{SubjectID: 1, ProfessionalID: ptr.Ptr(int64(7)), Date: day.AddDate(0, 0, -5), Time: "10:00"}, reason: domain.ErrPastTime},
		{name: "long note", req: &Request{SubjectID: 1, ProfessionalID: ptr.Ptr(int64(7)), Date: day, Time: "10:00", Note: &long}, reason: domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.ErrorIs(t, err, tt.reason)
		})
	}
	assert.Empty(t, f.publisher.events)
}

func TestUseCase_Execute_AutoAssign(t *testing.T) {
	suggester := &stubSuggester{id: 9}
	f := newFixture(suggester)

	resp, err := f.uc.Execute(context.Background(), &Request{
		SubjectID:   1,
		Candidates:  []int64{9, 10},
		ServiceType: "therapy",
		Date:        day,
		Time:        "13:00",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(9), resp.Booking.ProfessionalID)
	require.NotNil(t, suggester.got)
	assert.Equal(t, []int64{9, 10}, suggester.got.Candidates)
	assert.Equal(t, "therapy", suggester.got.ServiceType)
}

func TestUseCase_Execute_AutoAssignNobodyFree(t *testing.T) {
	noOne := domain.NewConflictError("SuggestProfessional", domain.ErrNoProfessional, 0, "")
	f := newFixture(&stubSuggester{err: noOne})

	_, err := f.uc.Execute(context.Background(), &Request{SubjectID: 1, Date: day, Time: "13:00"})
	assert.ErrorIs(t, err, domain.ErrNoProfessional)
}

func TestUseCase_Execute_ConcurrentReserveHasOneWinner(t *testing.T) {
	f := newFixture(nil)

	const callers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []int64
		losers  []*domain.Error
	)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(subject int64) {
			defer wg.Done()
			resp, err := f.uc.Execute(context.Background(), &Request{
				SubjectID:      subject,
				ProfessionalID: ptr.Ptr(int64(7)),
				Date:           day,
				Time:           "10:00",
			})

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners = append(winners, resp.Booking.ID)
				return
			}
			var e *domain.Error
			if errors.As(err, &e) {
				losers = append(losers, e)
			}
		}(int64(i + 1))
	}
	wg.Wait()

	require.Len(t, winners, 1)
	require.Len(t, losers, callers-1)
	for _, e := range losers {
		assert.Equal(t, domain.KindConflict, e.Kind)
		assert.Equal(t, winners[0], e.BookingID)
	}

	slots, err := slotindex.NewIndex(f.store.Bookings(), time.UTC).Commitments(context.Background(), 7, day)
	require.NoError(t, err)
	assert.Len(t, slots, 1)
}
