package bookings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/lock"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
)

// Service сервис жизненного цикла бронирований.
// Каждый переход проверяет предусловие внутри транзакции по заблокированной строке.
type Service struct {
	bookingRepo  BookingRepository
	index        SlotIndex
	recorder     TimingRecorder
	guard        Guard
	policies     *domain.PolicySet
	publisher    EventPublisher
	metrics      Metrics
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	index SlotIndex,
	recorder TimingRecorder,
	guard Guard,
	policies *domain.PolicySet,
	publisher EventPublisher,
	metrics Metrics,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		index:        index,
		recorder:     recorder,
		guard:        guard,
		policies:     policies,
		publisher:    publisher,
		metrics:      metrics,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// GetByID получает бронирование по ID
// Доступно клиенту и специалисту бронирования
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	const op = "GetByID"

	if err := validateID(op, id); err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, domain.NewNotFoundError(op, domain.ErrBookingNotFound, fmt.Sprintf("id=%d", id))
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if err := checkUserAccess(op, booking, userID, anyParty); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, err
	}

	return models.FromDomainBooking(booking, s.loc()), nil
}

// ListForSubject получает историю бронирований клиента
// Опционально фильтрует по статусу
func (s *Service) ListForSubject(ctx context.Context, req *models.GetSubjectBookingsRequest) (*models.BookingListResponse, error) {
	const op = "ListForSubject"

	s.logger.Info("ListForSubject: fetching bookings for subject=%d, status=%v", req.SubjectID, req.Status)

	filter := domain.BookingsFilter{SubjectID: &req.SubjectID, IncludeInactive: true}
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("ListForSubject: invalid status=%s for subject=%d", *req.Status, req.SubjectID)
			return nil, domain.NewValidationError(op, domain.ErrInvalidInput, err.Error())
		}
		filter.Status = &status
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ListForSubject: repository error for subject=%d: %v", req.SubjectID, err)
		return nil, fmt.Errorf("%w: ListForSubject - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListForSubject: fetched %d bookings for subject=%d", len(bookings), req.SubjectID)
	return models.FromDomainBookingList(bookings, s.loc()), nil
}

// ListForProfessional получает расписание специалиста за период
//
// Примеры:
// - Все активные бронирования: ListForProfessional(ctx, &GetProfessionalBookingsRequest{ProfessionalID: 7})
// - За день: From и To ограничивают сутки
// - Только в работе: Status = "in_progress"
func (s *Service) ListForProfessional(ctx context.Context, req *models.GetProfessionalBookingsRequest) (*models.BookingListResponse, error) {
	const op = "ListForProfessional"

	if req.From != nil && req.To != nil && !req.From.Before(*req.To) {
		return nil, domain.NewValidationError(op, domain.ErrInvalidInput, "from must be before to")
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("ListForProfessional: invalid filter for professional=%d: %v", req.ProfessionalID, err)
		return nil, domain.NewValidationError(op, domain.ErrInvalidInput, err.Error())
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ListForProfessional: repository error for professional=%d: %v", req.ProfessionalID, err)
		return nil, fmt.Errorf("%w: ListForProfessional - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListForProfessional: fetched %d bookings for professional=%d", len(bookings), req.ProfessionalID)
	return models.FromDomainBookingList(bookings, s.loc()), nil
}

// Confirm специалист принимает ожидающее бронирование: PENDING -> CONFIRMED
func (s *Service) Confirm(ctx context.Context, id, userID int64) (*models.BookingResponse, error) {
	return s.transition(ctx, "Confirm", events.TypeConfirmed, id, userID, partyProfessional, func(ctx context.Context, b *domain.Booking, _ time.Time) error {
		if !b.CanBeConfirmed() {
			return domain.NewConflictError("Confirm", domain.ErrInvalidTransition, b.ID, b.Status)
		}
		return s.bookingRepo.UpdateStatus(ctx, b.ID, domain.StatusConfirmed)
	})
}

// Reschedule переносит ожидаемое время; подтверждённое бронирование получает статус RESCHEDULED
func (s *Service) Reschedule(ctx context.Context, id, userID int64, req *models.RescheduleRequest) (*models.BookingResponse, error) {
	const op = "Reschedule"

	if req == nil || req.Date.IsZero() {
		return nil, domain.NewValidationError(op, domain.ErrInvalidInput, "date is required")
	}
	clock, err := parseClock(op, req.Time)
	if err != nil {
		return nil, err
	}

	return s.transition(ctx, op, events.TypeRescheduled, id, userID, anyParty, func(ctx context.Context, b *domain.Booking, now time.Time) error {
		if !b.CanBeRescheduled() {
			return domain.NewConflictError(op, domain.ErrInvalidTransition, b.ID, b.Status)
		}

		policy := s.policies.For(b.ServiceType)
		start := policy.At(req.Date, clock)
		if err := policy.ValidateReschedule(op, start, now); err != nil {
			return err
		}

		if err := s.bookingRepo.LockProfessional(ctx, b.ProfessionalID); err != nil {
			return fmt.Errorf("%w: Reschedule - lock professional: %v", ErrInternal, err)
		}

		availability, err := s.index.Check(ctx, b.ProfessionalID, start, policy.MinGap, b.ID)
		if err != nil {
			return fmt.Errorf("%w: Reschedule - check availability: %v", ErrInternal, err)
		}
		if !availability.IsAvailable() {
			return domain.NewConflictError(op, domain.ErrSlotTaken, availability.ConflictingID, availability.ConflictingStatus)
		}

		status := b.Status
		if b.IsConfirmed() {
			status = domain.StatusRescheduled
		}

		err = s.bookingRepo.Reschedule(ctx, b.ID, start, policy.ExpectedEnd(start), status)
		if errors.Is(err, bookingRepo.ErrSlotNotAvailable) {
			return domain.NewConflictError(op, domain.ErrSlotTaken, 0, "")
		}
		return err
	})
}

// Begin первая фаза учёта времени: CONFIRMED/RESCHEDULED -> IN_PROGRESS.
// У специалиста может быть только одно бронирование в работе.
func (s *Service) Begin(ctx context.Context, id, userID int64) (*models.BookingResponse, error) {
	const op = "Begin"

	return s.transition(ctx, op, events.TypeStarted, id, userID, partyProfessional, func(ctx context.Context, b *domain.Booking, now time.Time) error {
		if !b.CanBegin() {
			return domain.NewConflictError(op, domain.ErrInvalidTransition, b.ID, b.Status)
		}

		realStart, err := s.recorder.Begin(b, s.policies.For(b.ServiceType), now)
		if err != nil {
			return err
		}

		if err := s.bookingRepo.LockProfessional(ctx, b.ProfessionalID); err != nil {
			return fmt.Errorf("%w: Begin - lock professional: %v", ErrInternal, err)
		}

		running, err := s.bookingRepo.FindInProgress(ctx, b.ProfessionalID)
		switch {
		case err == nil:
			return domain.NewConflictError(op, domain.ErrAlreadyInProgress, running.ID, running.Status)
		case !errors.Is(err, bookingRepo.ErrBookingNotFound):
			return fmt.Errorf("%w: Begin - find in progress: %v", ErrInternal, err)
		}

		err = s.bookingRepo.MarkInProgress(ctx, b.ID, realStart)
		if errors.Is(err, bookingRepo.ErrAlreadyInProgress) {
			return domain.NewConflictError(op, domain.ErrAlreadyInProgress, 0, "")
		}
		return err
	})
}

// Complete вторая фаза: IN_PROGRESS -> COMPLETED с realEnd = now.
// Если вызывающая сторона передала оба момента времени, проверяются именно они:
// для IN_PROGRESS realStart должен совпасть с зафиксированным при Begin,
// из CONFIRMED/RESCHEDULED оба момента принимаются как есть.
func (s *Service) Complete(ctx context.Context, id, userID int64, req *models.CompleteRequest) (*models.BookingResponse, error) {
	const op = "Complete"

	if err := validateComplete(req); err != nil {
		return nil, err
	}
	if req == nil {
		req = &models.CompleteRequest{}
	}

	return s.transition(ctx, op, events.TypeCompleted, id, userID, partyProfessional, func(ctx context.Context, b *domain.Booking, now time.Time) error {
		if !b.CanBeCompleted(req.OutOfBand()) {
			return domain.NewConflictError(op, domain.ErrInvalidTransition, b.ID, b.Status)
		}

		policy := s.policies.For(b.ServiceType)

		var start, end time.Time
		switch {
		case !req.OutOfBand():
			var err error
			if start, end, err = s.recorder.Complete(b, policy, now); err != nil {
				return err
			}
		case b.Status == domain.StatusInProgress && (b.RealStart == nil || !req.RealStart.Equal(*b.RealStart)):
			return domain.NewValidationError(op, domain.ErrInvalidTiming, "real start does not match the recorded start")
		default:
			start, end = *req.RealStart, *req.RealEnd
			if err := s.recorder.CompleteOutOfBand(b, policy, start, end, now); err != nil {
				return err
			}
		}

		return s.bookingRepo.Complete(ctx, b.ID, start, end, req.Outcome)
	})
}

// Cancel отменяет бронирование; слот освобождается в той же транзакции
func (s *Service) Cancel(ctx context.Context, id, userID int64, req *models.CancelRequest) (*models.BookingResponse, error) {
	const op = "Cancel"

	var reason *string
	if req != nil {
		reason = req.Reason
	}
	if err := validateText(op, "reason", reason, 0, domain.MaxCancelReasonLen); err != nil {
		return nil, err
	}

	return s.transition(ctx, op, events.TypeCancelled, id, userID, anyParty, func(ctx context.Context, b *domain.Booking, now time.Time) error {
		if !b.CanBeCancelled() {
			return domain.NewConflictError(op, domain.ErrInvalidTransition, b.ID, b.Status)
		}
		return s.bookingRepo.Cancel(ctx, b.ID, reason, now)
	})
}

// Evaluate сохраняет оценку завершённого бронирования, ровно один раз
func (s *Service) Evaluate(ctx context.Context, id, userID int64, req *models.EvaluateRequest) (*models.BookingResponse, error) {
	const op = "Evaluate"

	rating, err := validateEvaluate(req)
	if err != nil {
		return nil, err
	}

	return s.transition(ctx, op, events.TypeEvaluated, id, userID, partySubject, func(ctx context.Context, b *domain.Booking, _ time.Time) error {
		if b.Status != domain.StatusCompleted {
			return domain.NewConflictError(op, domain.ErrInvalidTransition, b.ID, b.Status)
		}
		if b.Rating != nil {
			return domain.NewConflictError(op, domain.ErrAlreadyEvaluated, b.ID, b.Status)
		}
		return s.bookingRepo.Evaluate(ctx, b.ID, rating, req.Comment)
	})
}

// transition выполняет переход под защитой in-flight блокировки бронирования:
// чтение с блокировкой строки, проверка, запись и повторное чтение в одной транзакции.
// Событие публикуется только после коммита.
func (s *Service) transition(
	ctx context.Context,
	op, eventType string,
	id, userID int64,
	allowed party,
	apply func(ctx context.Context, b *domain.Booking, now time.Time) error,
) (*models.BookingResponse, error) {
	if err := validateID(op, id); err != nil {
		return nil, err
	}

	release, err := s.guard.TryLock(ctx, guardKey(id))
	if err != nil {
		s.metrics.ObserveTransition(eventType, string(domain.KindConflict))
		if errors.Is(err, lock.ErrLocked) {
			s.logger.Warn("%s: booking id=%d is busy", op, id)
			return nil, domain.NewConflictError(op, domain.ErrBookingBusy, id, "")
		}
		s.logger.Error("%s: guard failed for booking id=%d: %v", op, id, err)
		return nil, domain.NewTransientError(op, domain.ErrGuardUnavailable, err)
	}
	defer release()

	now := s.timeProvider.Now()

	var updated *domain.Booking
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		b, err := s.bookingRepo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return domain.NewNotFoundError(op, domain.ErrBookingNotFound, fmt.Sprintf("id=%d", id))
			}
			return fmt.Errorf("%w: %s - get booking: %v", ErrInternal, op, err)
		}

		if err := checkUserAccess(op, b, userID, allowed); err != nil {
			return err
		}

		if err := apply(txCtx, b, now); err != nil {
			return err
		}

		updated, err = s.bookingRepo.GetByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("%w: %s - reload booking: %v", ErrInternal, op, err)
		}
		return nil
	})
	if err != nil {
		kind := domain.KindOf(err)
		if kind == "" {
			s.metrics.ObserveTransition(eventType, "error")
			s.logger.Error("%s: booking id=%d failed: %v", op, id, err)
			return nil, err
		}
		s.metrics.ObserveTransition(eventType, string(kind))
		s.logger.Warn("%s: booking id=%d rejected: %v", op, id, err)
		return nil, err
	}

	s.metrics.ObserveTransition(eventType, "ok")
	if err := s.publisher.Publish(ctx, events.NewBookingEvent(eventType, updated, now)); err != nil {
		s.logger.Warn("%s: failed to publish event for booking id=%d: %v", op, id, err)
	}

	s.logger.Info("%s: booking id=%d is now %s", op, id, updated.Status)
	return models.FromDomainBooking(updated, s.loc()), nil
}

// Вспомогательные методы

// party стороны бронирования, которым разрешена операция
type party uint8

const (
	partySubject party = 1 << iota
	partyProfessional

	anyParty = partySubject | partyProfessional
)

// checkUserAccess проверяет, что пользователь является допустимой стороной бронирования.
// Клиент и специалист видят, переносят и отменяют бронирование;
// подтверждает, начинает и завершает только специалист, оценивает только клиент.
func checkUserAccess(op string, b *domain.Booking, userID int64, allowed party) error {
	if allowed&partySubject != 0 && b.SubjectID == userID {
		return nil
	}
	if allowed&partyProfessional != 0 && b.ProfessionalID == userID {
		return nil
	}
	return domain.NewForbiddenError(op, domain.ErrAccessDenied, b.ID, userID)
}

func (s *Service) loc() *time.Location {
	return s.policies.Default.Loc()
}

func guardKey(id int64) string {
	return "booking:" + strconv.FormatInt(id, 10)
}
