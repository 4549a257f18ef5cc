package bookings

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/lock"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
	"github.com/m04kA/SMC-AppointmentService/internal/service/slotindex"
	"github.com/m04kA/SMC-AppointmentService/internal/service/timing"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

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

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type nopMetrics struct{}

func (nopMetrics) ObserveTransition(string, string) {}

var (
	day     = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	nineAM  = day.Add(9 * time.Hour)
	weekAgo = time.Date(2025, 5, 25, 12, 0, 0, 0, time.UTC)
)

type fixture struct {
	store     *memory.Store
	guard     *lock.MemoryGuard
	clock     *clock
	publisher *recordingPublisher
	svc       *Service
}

// subjectID клиент всех бронирований, созданных seed
const subjectID int64 = 11

func newFixture() *fixture {
	p := domain.DefaultPolicy()
	p.Location = time.UTC

	store := memory.NewStore()
	guard := lock.NewMemoryGuard(time.Minute)
	c := &clock{now: weekAgo}
	publisher := &recordingPublisher{}

	svc := NewService(
		store.Bookings(),
		slotindex.NewIndex(store.Bookings(), time.UTC),
		timing.NewRecorder(),
		guard,
		domain.NewPolicySet(p),
		publisher,
		nopMetrics{},
		store,
		logger.NewNop(),
	)
	svc.timeProvider = c
	return &fixture{store: store, guard: guard, clock: c, publisher: publisher, svc: svc}
}

func (f *fixture) seed(t *testing.T, professionalID int64, start time.Time, status domain.BookingStatus) int64 {
	t.Helper()
	b, err := f.store.Bookings().Create(context.Background(), &domain.Booking{
		SubjectID:      subjectID,
		ProfessionalID: professionalID,
		ServiceType:    "consultation",
		ExpectedStart:  start,
		ExpectedEnd:    start.Add(time.Hour),
		Status:         status,
	})
	require.NoError(t, err)
	return b.ID
}

func requireKind(t *testing.T, err error, kind domain.ErrorKind, reason error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, domain.KindOf(err))
	assert.ErrorIs(t, err, reason)
}

func TestService_Confirm(t *testing.T) {
	f := newFixture()
	id := f.seed(t, 7, nineAM, domain.StatusPending)

	resp, err := f.svc.Confirm(context.Background(), id, 7)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)

	_, err = f.svc.Confirm(context.Background(), id, 7)
	requireKind(t, err, domain.KindConflict, domain.ErrInvalidTransition)

	assert.Equal(t, []string{events.TypeConfirmed}, f.publisher.types())
}

func TestService_GetByID_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.GetByID(context.Background(), 404, subjectID)
	requireKind(t, err, domain.KindNotFound, domain.ErrBookingNotFound)

	_, err = f.svc.GetByID(context.Background(), 0, subjectID)
	requireKind(t, err, domain.KindValidation, domain.ErrInvalidInput)
}

func TestService_Timing(t *testing.T) {
	tests := []struct {
		name     string
		begin    time.Time
		complete time.Time
		reason   error
	}{
		{name: "regular session", begin: nineAM.Add(5 * time.Minute), complete: nineAM.Add(30 * time.Minute)},
		{name: "too short", begin: nineAM.Add(5 * time.Minute), complete: nineAM.Add(20 * time.Minute), reason: domain.ErrInvalidTiming},
		{name: "too long", begin: nineAM.Add(5 * time.Minute), complete: nineAM.Add(70 * time.Minute), reason: domain.ErrInvalidTiming},
		{name: "starts on time", begin: nineAM, complete: nineAM.Add(60 * time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()
			id := f.seed(t, 7, nineAM, domain.StatusConfirmed)

			f.clock.Set(tt.begin)
			resp, err := f.svc.Begin(ctx, id, 7)
			require.NoError(t, err)
			assert.Equal(t, string(domain.StatusInProgress), resp.Status)
			require.NotNil(t, resp.RealStart)
			assert.Equal(t, tt.begin, *resp.RealStart)

			f.clock.Set(tt.complete)
			resp, err = f.svc.Complete(ctx, id, 7, &models.CompleteRequest{Outcome: ptr.Ptr("all went as planned")})
			if tt.reason != nil {
				requireKind(t, err, domain.KindValidation, tt.reason)

				b, getErr := f.svc.GetByID(ctx, id, subjectID)
				require.NoError(t, getErr)
				assert.Equal(t, string(domain.StatusInProgress), b.Status)
				assert.Nil(t, b.RealEnd)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, string(domain.StatusCompleted), resp.Status)
			require.NotNil(t, resp.RealEnd)
			assert.Equal(t, tt.complete, *resp.RealEnd)
		})
	}
}

func TestService_Begin_Window(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.seed(t, 7, nineAM, domain.StatusConfirmed)

	f.clock.Set(nineAM.Add(-time.Minute))
	_, err := f.svc.Begin(ctx, id, 7)
	requireKind(t, err, domain.KindValidation, domain.ErrInvalidTiming)

	f.clock.Set(nineAM.Add(time.Hour))
	_, err = f.svc.Begin(ctx, id, 7)
	requireKind(t, err, domain.KindValidation, domain.ErrInvalidTiming)

	pending := f.seed(t, 8, nineAM, domain.StatusPending)
	f.clock.Set(nineAM)
	_, err = f.svc.Begin(ctx, pending, 8)
	requireKind(t, err, domain.KindConflict, domain.ErrInvalidTransition)
}

func TestService_Begin_SingleInProgress(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first := f.seed(t, 7, nineAM, domain.StatusConfirmed)
	second := f.seed(t, 7, nineAM.Add(time.Hour), domain.StatusConfirmed)

	// первая сессия затянулась и ещё не завершена
	f.clock.Set(nineAM.Add(5 * time.Minute))
	_, err := f.svc.Begin(ctx, first, 7)
	require.NoError(t, err)

	f.clock.Set(nineAM.Add(time.Hour + 5*time.Minute))
	_, err = f.svc.Begin(ctx, second, 7)
	requireKind(t, err, domain.KindConflict, domain.ErrAlreadyInProgress)

	e, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, first, e.BookingID)
	assert.Equal(t, domain.StatusInProgress, e.Status)
}

func TestService_Complete_OutOfBand(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.seed(t, 7, nineAM, domain.StatusConfirmed)
	f.clock.Set(nineAM.Add(2 * time.Hour))

	start, end := nineAM.Add(10*time.Minute), nineAM.Add(50*time.Minute)

	_, err := f.svc.Complete(ctx, id, 7, &models.CompleteRequest{RealStart: &start})
	requireKind(t, err, domain.KindValidation, domain.ErrInvalidTiming)

	_, err = f.svc.Complete(ctx, id, 7, &models.CompleteRequest{})
	requireKind(t, err, domain.KindConflict, domain.ErrInvalidTransition)

	resp, err := f.svc.Complete(ctx, id, 7, &models.CompleteRequest{RealStart: &start, RealEnd: &end})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), resp.Status)
	assert.Equal(t, start, *resp.RealStart)
	assert.Equal(t, end, *resp.RealEnd)
}

func TestService_Reschedule(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	confirmed := f.seed(t, 7, nineAM, domain.StatusConfirmed)
	pending := f.seed(t, 8, nineAM, domain.StatusPending)
	f.seed(t, 7, day.Add(14*time.Hour), domain.StatusConfirmed)

	resp, err := f.svc.Reschedule(ctx, confirmed, subjectID, &models.RescheduleRequest{Date: day, Time: "11:00"})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusRescheduled), resp.Status)
	assert.True(t, resp.Rescheduled)
	assert.Equal(t, day.Add(11*time.Hour), resp.ExpectedStart)
	assert.Equal(t, day.Add(12*time.Hour), resp.ExpectedEnd)

	resp, err = f.svc.Reschedule(ctx, pending, subjectID, &models.RescheduleRequest{Date: day, Time: "12:00"})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.True(t, resp.Rescheduled)

	// занято другой записью того же специалиста
	_, err = f.svc.Reschedule(ctx, confirmed, subjectID, &models.RescheduleRequest{Date: day, Time: "14:00"})
	requireKind(t, err, domain.KindConflict, domain.ErrSlotTaken)

	// перенос на своё же время не конфликтует с самим собой
	_, err = f.svc.Reschedule(ctx, confirmed, subjectID, &models.RescheduleRequest{Date: day, Time: "11:00"})
	require.NoError(t, err)

	_, err = f.svc.Reschedule(ctx, confirmed, subjectID, &models.RescheduleRequest{Date: day, Time: "11:30"})
	requireKind(t, err, domain.KindValidation, domain.ErrInvalidSlot)

	f.clock.Set(day.Add(9 * time.Hour))
	_, err = f.svc.Reschedule(ctx, confirmed, subjectID, &models.RescheduleRequest{Date: day, Time: "11:00"})
	requireKind(t, err, domain.KindValidation, domain.ErrRescheduleTooLate)
}

func TestService_Cancel_FreesSlot(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.seed(t, 7, nineAM, domain.StatusConfirmed)

	resp, err := f.svc.Cancel(ctx, id, subjectID, &models.CancelRequest{Reason: ptr.Ptr("client is ill")})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), resp.Status)
	require.NotNil(t, resp.CancellationReason)
	assert.NotNil(t, resp.CancelledAt)

	availability, err := slotindex.NewIndex(f.store.Bookings(), time.UTC).Check(ctx, 7, nineAM, time.Hour, 0)
	require.NoError(t, err)
	assert.True(t, availability.IsAvailable())

	f.seed(t, 7, nineAM, domain.StatusPending)
}

func TestService_TerminalIsImmutable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.seed(t, 7, nineAM, domain.StatusConfirmed)

	_, err := f.svc.Cancel(ctx, id, subjectID, nil)
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, id, 7)
	requireKind(t, err, domain.KindConflict, domain.ErrInvalidTransition)
	_, err = f.svc.Cancel(ctx, id, subjectID, nil)
	requireKind(t, err, domain.KindConflict, domain.ErrInvalidTransition)
	_, err = f.svc.Reschedule(ctx, id, subjectID, &models.RescheduleRequest{Date: day, Time: "12:00"})
	requireKind(t, err, domain.KindConflict, domain.ErrInvalidTransition)

	f.clock.Set(nineAM)
	_, err = f.svc.Begin(ctx, id, 7)
	requireKind(t, err, domain.KindConflict, domain.ErrInvalidTransition)

	e, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, domain.StatusCancelled, e.Status)
}

func TestService_Evaluate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.seed(t, 7, nineAM, domain.StatusConfirmed)

	_, err := f.svc.Evaluate(ctx, id, subjectID, &models.EvaluateRequest{Rating: string(domain.RatingGood)})
	requireKind(t, err, domain.KindConflict, domain.ErrInvalidTransition)

	f.clock.Set(nineAM.Add(2 * time.Hour))
	start, end := nineAM, nineAM.Add(45*time.Minute)
	_, err = f.svc.Complete(ctx, id, 7, &models.CompleteRequest{RealStart: &start, RealEnd: &end})
	require.NoError(t, err)

	_, err = f.svc.Evaluate(ctx, id, subjectID, &models.EvaluateRequest{Rating: "SUPERB"})
	requireKind(t, err, domain.KindValidation, domain.ErrInvalidInput)

	_, err = f.svc.Evaluate(ctx, id, subjectID, &models.EvaluateRequest{Rating: string(domain.RatingGood), Comment: ptr.Ptr("ok")})
	requireKind(t, err, domain.KindValidation, domain.ErrInvalidInput)

	resp, err := f.svc.Evaluate(ctx, id, subjectID, &models.EvaluateRequest{Rating: string(domain.RatingGood), Comment: ptr.Ptr("very helpful")})
	require.NoError(t, err)
	require.NotNil(t, resp.Rating)
	assert.Equal(t, string(domain.RatingGood), *resp.Rating)

	_, err = f.svc.Evaluate(ctx, id, subjectID, &models.EvaluateRequest{Rating: string(domain.RatingGood)})
	requireKind(t, err, domain.KindConflict, domain.ErrAlreadyEvaluated)
}

func TestService_BusyGuard(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.seed(t, 7, nineAM, domain.StatusPending)

	release, err := f.guard.TryLock(ctx, guardKey(id))
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, id, 7)
	requireKind(t, err, domain.KindConflict, domain.ErrBookingBusy)

	release()
	_, err = f.svc.Confirm(ctx, id, 7)
	require.NoError(t, err)
}

func TestService_ListForProfessional(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.seed(t, 7, nineAM, domain.StatusConfirmed)
	f.seed(t, 7, nineAM.Add(2*time.Hour), domain.StatusPending)
	cancelled := f.seed(t, 7, nineAM.Add(4*time.Hour), domain.StatusPending)
	f.seed(t, 8, nineAM, domain.StatusPending)

	_, err := f.svc.Cancel(ctx, cancelled, subjectID, nil)
	require.NoError(t, err)

	from, to := day, day.Add(24*time.Hour)
	resp, err := f.svc.ListForProfessional(ctx, &models.GetProfessionalBookingsRequest{ProfessionalID: 7, From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 2)

	resp, err = f.svc.ListForProfessional(ctx, &models.GetProfessionalBookingsRequest{ProfessionalID: 7, IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 3)

	_, err = f.svc.ListForProfessional(ctx, &models.GetProfessionalBookingsRequest{ProfessionalID: 7, Status: ptr.Ptr("UNKNOWN")})
	requireKind(t, err, domain.KindValidation, domain.ErrInvalidInput)

	subject, err := f.svc.ListForSubject(ctx, &models.GetSubjectBookingsRequest{SubjectID: 11, Status: ptr.Ptr("PENDING")})
	require.NoError(t, err)
	assert.Len(t, subject.Bookings, 2)
}

func TestService_Complete_InProgressWithSuppliedTimes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.seed(t, 7, nineAM, domain.StatusConfirmed)

	began := nineAM.Add(5 * time.Minute)
	f.clock.Set(began)
	_, err := f.svc.Begin(ctx, id, 7)
	require.NoError(t, err)

	// отметка о завершении доставлена с опозданием: сервер уже в 10:20
	f.clock.Set(nineAM.Add(80 * time.Minute))

	otherStart, end := nineAM.Add(10*time.Minute), nineAM.Add(30*time.Minute)
	_, err = f.svc.Complete(ctx, id, 7, &models.CompleteRequest{RealStart: &otherStart, RealEnd: &end})
	requireKind(t, err, domain.KindValidation, domain.ErrInvalidTiming)

	tooShort := nineAM.Add(20 * time.Minute)
	_, err = f.svc.Complete(ctx, id, 7, &models.CompleteRequest{RealStart: &began, RealEnd: &tooShort})
	requireKind(t, err, domain.KindValidation, domain.ErrInvalidTiming)

	future := nineAM.Add(90 * time.Minute)
	_, err = f.svc.Complete(ctx, id, 7, &models.CompleteRequest{RealStart: &began, RealEnd: &future})
	requireKind(t, err, domain.KindValidation, domain.ErrInvalidTiming)

	resp, err := f.svc.Complete(ctx, id, 7, &models.CompleteRequest{RealStart: &began, RealEnd: &end})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), resp.Status)
	assert.Equal(t, began, *resp.RealStart)
	assert.Equal(t, end, *resp.RealEnd)
}

func TestService_Access(t *testing.T) {
	const (
		professional int64 = 7
		stranger     int64 = 99
	)

	tests := []struct {
		name    string
		status  domain.BookingStatus
		allowed []int64
		call    func(f *fixture, id, userID int64) error
	}{
		{
			name:    "get",
			status:  domain.StatusPending,
			allowed: []int64{subjectID, professional},
			call: func(f *fixture, id, userID int64) error {
				_, err := f.svc.GetByID(context.Background(), id, userID)
				return err
			},
		},
		{
			name:    "cancel",
			status:  domain.StatusPending,
			allowed: []int64{subjectID, professional},
			call: func(f *fixture, id, userID int64) error {
				_, err := f.svc.Cancel(context.Background(), id, userID, nil)
				return err
			},
		},
		{
			name:    "reschedule",
			status:  domain.StatusConfirmed,
			allowed: []int64{subjectID, professional},
			call: func(f *fixture, id, userID int64) error {
				_, err := f.svc.Reschedule(context.Background(), id, userID, &models.RescheduleRequest{Date: day, Time: "11:00"})
				return err
			},
		},
		{
			name:    "confirm",
			status:  domain.StatusPending,
			allowed: []int64{professional},
			call: func(f *fixture, id, userID int64) error {
				_, err := f.svc.Confirm(context.Background(), id, userID)
				return err
			},
		},
		{
			name:    "begin",
			status:  domain.StatusConfirmed,
			allowed: []int64{professional},
			call: func(f *fixture, id, userID int64) error {
				f.clock.Set(nineAM)
				_, err := f.svc.Begin(context.Background(), id, userID)
				return err
			},
		},
		{
			name:    "complete",
			status:  domain.StatusConfirmed,
			allowed: []int64{professional},
			call: func(f *fixture, id, userID int64) error {
				f.clock.Set(nineAM.Add(2 * time.Hour))
				start, end := nineAM, nineAM.Add(45*time.Minute)
				_, err := f.svc.Complete(context.Background(), id, userID, &models.CompleteRequest{RealStart: &start, RealEnd: &end})
				return err
			},
		},
		{
			name:    "evaluate",
			status:  domain.StatusCompleted,
			allowed: []int64{subjectID},
			call: func(f *fixture, id, userID int64) error {
				_, err := f.svc.Evaluate(context.Background(), id, userID, &models.EvaluateRequest{Rating: string(domain.RatingGood)})
				return err
			},
		},
	}

	for _, tt := range tests {
		for _, userID := range []int64{subjectID, professional, stranger} {
			allowed := false
			for _, a := range tt.allowed {
				allowed = allowed || a == userID
			}

			t.Run(fmt.Sprintf("%s by user %d", tt.name, userID), func(t *testing.T) {
				f := newFixture()
				id := f.seed(t, professional, nineAM, tt.status)

				err := tt.call(f, id, userID)
				if allowed {
					require.NoError(t, err)
					return
				}

				requireKind(t, err, domain.KindForbidden, domain.ErrAccessDenied)

				b, getErr := f.store.Bookings().GetByID(context.Background(), id)
				require.NoError(t, getErr)
				assert.Equal(t, tt.status, b.Status, "denied call must not change the booking")
				assert.Empty(t, f.publisher.types())
			})
		}
	}
}
