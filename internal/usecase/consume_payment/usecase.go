package consume_payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	intentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/intent"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/stripecheckout"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/vnpay"
)

const op = "ConsumePayment"

// UseCase use case сверки подтверждения оплаты с платёжным намерением.
// Каждое намерение потребляется не более одного раза при повторной или поздней доставке.
type UseCase struct {
	intentRepo   IntentRepository
	placer       BookingPlacer
	gateways     []Gateway
	policies     *domain.PolicySet
	publisher    EventPublisher
	metrics      Metrics
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	intentRepo IntentRepository,
	placer BookingPlacer,
	gateways []Gateway,
	policies *domain.PolicySet,
	publisher EventPublisher,
	metrics Metrics,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		intentRepo:   intentRepo,
		placer:       placer,
		gateways:     gateways,
		policies:     policies,
		publisher:    publisher,
		metrics:      metrics,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute разбирает параметры возврата от шлюза и потребляет подтверждение
func (uc *UseCase) Execute(ctx context.Context, query url.Values) (*Response, error) {
	var gateway Gateway
	for _, g := range uc.gateways {
		if g.Recognizes(query) {
			gateway = g
			break
		}
	}
	if gateway == nil {
		uc.logger.Warn("ConsumePayment: no gateway recognizes the return parameters")
		uc.metrics.ObservePaymentConsumption(OutcomeRejected)
		return nil, domain.NewReconciliationError(op, domain.ErrMalformedConfirmation, "unrecognized confirmation")
	}

	conf, err := gateway.ParseConfirmation(ctx, query)
	if err != nil {
		uc.metrics.ObservePaymentConsumption(OutcomeRejected)
		if isMalformed(err) {
			uc.logger.Warn("ConsumePayment: rejected %s confirmation: %v", gateway.Method(), err)
			return nil, &domain.Error{Kind: domain.KindReconciliation, Op: op, Reason: domain.ErrMalformedConfirmation, Err: err}
		}
		uc.logger.Error("ConsumePayment: %s unavailable: %v", gateway.Method(), err)
		return nil, domain.NewTransientError(op, domain.ErrGatewayUnavailable, err)
	}

	return uc.Consume(ctx, conf)
}

// Consume атомарно переводит намерение PENDING в CONSUMED вместе с созданием бронирования.
// Повторное подтверждение возвращает ранее созданное бронирование.
func (uc *UseCase) Consume(ctx context.Context, conf *domain.PaymentConfirmation) (*Response, error) {
	if conf == nil || conf.Token == "" {
		uc.metrics.ObservePaymentConsumption(OutcomeRejected)
		return nil, domain.NewReconciliationError(op, domain.ErrMalformedConfirmation, "token is required")
	}

	uc.logger.Info("ConsumePayment: token=%s, code=%s, transaction=%s", conf.Token, conf.StatusCode, conf.TransactionID)

	var (
		resp     *Response
		created  *domain.Booking
		rejected error
	)

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		intent, err := uc.intentRepo.GetByToken(txCtx, conf.Token)
		if err != nil {
			if errors.Is(err, intentRepo.ErrIntentNotFound) {
				return domain.NewReconciliationError(op, domain.ErrUnknownToken, conf.Token)
			}
			return fmt.Errorf("%w: Consume - get intent: %v", ErrInternal, err)
		}

		switch intent.State {
		case domain.IntentConsumed:
			resp = &Response{Token: intent.Token, Duplicate: true}
			if intent.BookingID != nil {
				resp.BookingID = *intent.BookingID
			}
			return nil
		case domain.IntentDiscarded:
			rejected = domain.NewReconciliationError(op, domain.ErrIntentDiscarded, discardReason(intent))
			if !conf.Succeeded() || conf.TransactionID == "" || intent.HoldsPayment() {
				return nil
			}
			// деньги списаны, а бронирования нет: транзакция сохраняется для возврата средств
			err := uc.intentRepo.RecordLatePayment(txCtx, intent.Token, conf.TransactionID)
			if err != nil && !errors.Is(err, intentRepo.ErrStateChanged) {
				return fmt.Errorf("%w: Consume - record late payment: %v", ErrInternal, err)
			}
			uc.logger.Warn("ConsumePayment: token=%s paid after discard (%s), transaction=%s requires a refund",
				intent.Token, discardReason(intent), conf.TransactionID)
			return nil
		}

		if !conf.Succeeded() {
			if err := uc.intentRepo.MarkDiscarded(txCtx, intent.Token, domain.DiscardPaymentFailed, optional(conf.TransactionID)); err != nil {
				return fmt.Errorf("%w: Consume - discard intent: %v", ErrInternal, err)
			}
			rejected = domain.NewReconciliationError(op, domain.ErrPaymentFailed,
				fmt.Sprintf("gateway code %s/%s", conf.StatusCode, conf.TransactionStatus))
			return nil
		}

		if conf.Amount != 0 && conf.Amount != intent.Amount {
			return domain.NewReconciliationError(op, domain.ErrMalformedConfirmation,
				fmt.Sprintf("amount %d does not match intent amount %d", conf.Amount, intent.Amount))
		}
		if conf.TransactionID == "" {
			return domain.NewReconciliationError(op, domain.ErrMalformedConfirmation, "transaction id is required")
		}

		payload := intent.Payload
		policy := uc.policies.For(payload.ServiceType)
		token := intent.Token

		booking, err := uc.placer.Place(txCtx, op, &domain.Booking{
			SubjectID:      payload.SubjectID,
			ProfessionalID: payload.ProfessionalID,
			ServiceType:    payload.ServiceType,
			ExpectedStart:  payload.ExpectedStart,
			ExpectedEnd:    policy.ExpectedEnd(payload.ExpectedStart),
			Status:         domain.StatusConfirmed,
			Note:           payload.Note,
			PaymentToken:   &token,
		}, policy.MinGap)
		if err != nil {
			if !errors.Is(err, domain.ErrSlotTaken) {
				return err
			}
			// оплата прошла, но слот заняли: идентификатор транзакции сохраняется для возврата средств
			if derr := uc.intentRepo.MarkDiscarded(txCtx, token, domain.DiscardSlotUnavailable, &conf.TransactionID); derr != nil {
				return fmt.Errorf("%w: Consume - discard intent: %v", ErrInternal, derr)
			}
			rejected = err
			return nil
		}

		if err := uc.intentRepo.MarkConsumed(txCtx, token, booking.ID, conf.TransactionID); err != nil {
			return fmt.Errorf("%w: Consume - mark consumed: %v", ErrInternal, err)
		}

		created = booking
		resp = &Response{Token: token, BookingID: booking.ID, Status: booking.Status}
		return nil
	})

	switch {
	case err != nil:
		uc.metrics.ObservePaymentConsumption(consumeOutcome(err))
		if domain.KindOf(err) == "" {
			uc.logger.Error("ConsumePayment: token=%s failed: %v", conf.Token, err)
		} else {
			uc.logger.Warn("ConsumePayment: token=%s rejected: %v", conf.Token, err)
		}
		return nil, err
	case rejected != nil:
		uc.metrics.ObservePaymentConsumption(consumeOutcome(rejected))
		uc.logger.Warn("ConsumePayment: token=%s discarded: %v", conf.Token, rejected)
		return nil, rejected
	case resp.Duplicate:
		uc.metrics.ObservePaymentConsumption(OutcomeDuplicate)
		uc.logger.Info("ConsumePayment: token=%s already consumed by booking id=%d", conf.Token, resp.BookingID)
		return resp, nil
	}

	uc.metrics.ObservePaymentConsumption(OutcomeConsumed)
	if err := uc.publisher.Publish(ctx, events.NewBookingEvent(events.TypePaid, created, uc.timeProvider.Now())); err != nil {
		uc.logger.Warn("ConsumePayment: failed to publish event for booking id=%d: %v", created.ID, err)
	}

	uc.logger.Info("ConsumePayment: token=%s consumed, booking id=%d confirmed", conf.Token, created.ID)
	return resp, nil
}

func isMalformed(err error) bool {
	return errors.Is(err, vnpay.ErrInvalidSignature) ||
		errors.Is(err, vnpay.ErrMalformed) ||
		errors.Is(err, stripecheckout.ErrMalformed) ||
		errors.Is(err, stripecheckout.ErrSessionMismatch)
}

func consumeOutcome(err error) string {
	switch domain.KindOf(err) {
	case domain.KindReconciliation:
		return OutcomeRejected
	case domain.KindConflict:
		return OutcomeConflict
	}
	return OutcomeError
}

func discardReason(in *domain.PaymentIntent) string {
	if in.DiscardReason == nil {
		return ""
	}
	return *in.DiscardReason
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
