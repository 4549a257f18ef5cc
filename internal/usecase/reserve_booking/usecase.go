package reserve_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/check_availability"
)

// UseCase use case резервирования слота (бесплатный/внутренний поток, статус PENDING)
type UseCase struct {
	bookingRepo  BookingRepository
	index        SlotIndex
	suggester    ProfessionalSuggester
	policies     *domain.PolicySet
	publisher    EventPublisher
	metrics      Metrics
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	index SlotIndex,
	suggester ProfessionalSuggester,
	policies *domain.PolicySet,
	publisher EventPublisher,
	metrics Metrics,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		index:        index,
		suggester:    suggester,
		policies:     policies,
		publisher:    publisher,
		metrics:      metrics,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute резервирует слот для клиента
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("Reserve: validation failed: %v", err)
		return nil, err
	}

	clock, err := parseClock(req.Time)
	if err != nil {
		return nil, err
	}

	now := uc.timeProvider.Now()
	policy := uc.policies.For(req.ServiceType)
	start := policy.At(req.Date, clock)

	if err := policy.ValidateSlot(op, start, now); err != nil {
		uc.logger.Warn("Reserve: slot %s rejected: %v", start.Format(time.RFC3339), err)
		return nil, err
	}

	professionalID, err := uc.resolveProfessional(ctx, req)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Reserve: subject=%d, professional=%d, start=%s",
		req.SubjectID, professionalID, start.Format(time.RFC3339))

	var created *domain.Booking
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		created, err = uc.Place(txCtx, op, &domain.Booking{
			SubjectID:      req.SubjectID,
			ProfessionalID: professionalID,
			ServiceType:    req.ServiceType,
			ExpectedStart:  start,
			ExpectedEnd:    policy.ExpectedEnd(start),
			Status:         domain.StatusPending,
			Note:           req.Note,
		}, policy.MinGap)
		return err
	})
	if err != nil {
		uc.metrics.ObserveTransition(events.TypeReserved, outcome(err))
		return nil, err
	}

	uc.metrics.ObserveTransition(events.TypeReserved, "ok")
	uc.publish(ctx, events.NewBookingEvent(events.TypeReserved, created, now))

	uc.logger.Info("Reserve: created booking id=%d", created.ID)
	return &Response{Booking: created}, nil
}

// Place блокирует специалиста, проверяет зазор до занятых слотов и сохраняет бронирование.
// Должен вызываться внутри транзакции. caller попадает в Op возвращаемых ошибок.
func (uc *UseCase) Place(ctx context.Context, caller string, b *domain.Booking, minGap time.Duration) (*domain.Booking, error) {
	if err := uc.bookingRepo.LockProfessional(ctx, b.ProfessionalID); err != nil {
		uc.logger.Error("%s: failed to lock professional=%d: %v", caller, b.ProfessionalID, err)
		return nil, fmt.Errorf("%w: Place - lock professional: %v", ErrInternal, err)
	}

	availability, err := uc.index.Check(ctx, b.ProfessionalID, b.ExpectedStart, minGap, 0)
	if err != nil {
		uc.logger.Error("%s: availability lookup failed for professional=%d: %v", caller, b.ProfessionalID, err)
		return nil, fmt.Errorf("%w: Place - check availability: %v", ErrInternal, err)
	}
	if !availability.IsAvailable() {
		uc.logger.Warn("%s: professional=%d is taken at %s by booking id=%d",
			caller, b.ProfessionalID, b.ExpectedStart.Format(time.RFC3339), availability.ConflictingID)
		return nil, domain.NewConflictError(caller, domain.ErrSlotTaken, availability.ConflictingID, availability.ConflictingStatus)
	}

	created, err := uc.bookingRepo.Create(ctx, b)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrSlotNotAvailable) {
			return nil, domain.NewConflictError(caller, domain.ErrSlotTaken, 0, "")
		}
		uc.logger.Error("%s: failed to create booking: %v", caller, err)
		return nil, fmt.Errorf("%w: Place - create booking: %v", ErrInternal, err)
	}
	return created, nil
}

func (uc *UseCase) resolveProfessional(ctx context.Context, req *Request) (int64, error) {
	if req.ProfessionalID != nil {
		return *req.ProfessionalID, nil
	}
	if uc.suggester == nil {
		return 0, domain.NewValidationError(op, domain.ErrInvalidInput, "professional id is required")
	}

	return uc.suggester.SuggestProfessional(ctx, &check_availability.Request{
		Candidates:  req.Candidates,
		Date:        req.Date,
		Time:        req.Time,
		ServiceType: req.ServiceType,
	})
}

// publish публикует событие после коммита; ошибка только логируется
func (uc *UseCase) publish(ctx context.Context, event events.BookingEvent) {
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Warn("Reserve: failed to publish %s for booking id=%d: %v", event.RoutingKey(), event.BookingID, err)
	}
}

func outcome(err error) string {
	if kind := domain.KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}
