package initiate_payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/check_availability"
)

// UseCase use case создания платёжного намерения и ссылки на оплату.
// Слот не блокируется: между оплатой и подтверждением переносится только намерение.
type UseCase struct {
	intentRepo   IntentRepository
	index        SlotIndex
	suggester    ProfessionalSuggester
	gateways     map[domain.PaymentMethod]Gateway
	policies     *domain.PolicySet
	opts         Options
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	intentRepo IntentRepository,
	index SlotIndex,
	suggester ProfessionalSuggester,
	gateways []Gateway,
	policies *domain.PolicySet,
	opts Options,
	logger Logger,
) *UseCase {
	byMethod := make(map[domain.PaymentMethod]Gateway, len(gateways))
	for _, g := range gateways {
		byMethod[g.Method()] = g
	}
	if opts.IntentTTL <= 0 {
		opts.IntentTTL = 35 * time.Minute
	}
	return &UseCase{
		intentRepo:   intentRepo,
		index:        index,
		suggester:    suggester,
		gateways:     byMethod,
		policies:     policies,
		opts:         opts,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute валидирует бронирование, сохраняет намерение PENDING и запрашивает ссылку у шлюза
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("InitiatePayment: validation failed: %v", err)
		return nil, err
	}

	gateway, err := uc.gateway(req.Method)
	if err != nil {
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
		uc.logger.Warn("InitiatePayment: slot %s rejected: %v", start.Format(time.RFC3339), err)
		return nil, err
	}

	professionalID, err := uc.resolveProfessional(ctx, req)
	if err != nil {
		return nil, err
	}

	// Предварительная проверка без блокировок; окончательная - при подтверждении оплаты
	availability, err := uc.index.Check(ctx, professionalID, start, policy.MinGap, 0)
	if err != nil {
		uc.logger.Error("InitiatePayment: availability lookup failed for professional=%d: %v", professionalID, err)
		return nil, fmt.Errorf("%w: Execute - check availability: %v", ErrInternal, err)
	}
	if !availability.IsAvailable() {
		uc.logger.Warn("InitiatePayment: professional=%d is taken at %s by booking id=%d",
			professionalID, start.Format(time.RFC3339), availability.ConflictingID)
		return nil, domain.NewConflictError(op, domain.ErrSlotTaken, availability.ConflictingID, availability.ConflictingStatus)
	}

	intent := &domain.PaymentIntent{
		Token: uuid.NewString(),
		State: domain.IntentPending,
		Payload: domain.ReservationPayload{
			SubjectID:      req.SubjectID,
			ProfessionalID: professionalID,
			ServiceType:    req.ServiceType,
			ExpectedStart:  start,
			Note:           req.Note,
		},
		Amount:      req.Amount,
		Method:      gateway.Method(),
		Description: req.Description,
		CreatedAt:   now,
		ExpiresAt:   now.Add(uc.opts.IntentTTL),
	}

	if err := uc.intentRepo.Create(ctx, intent); err != nil {
		uc.logger.Error("InitiatePayment: failed to store intent: %v", err)
		return nil, fmt.Errorf("%w: Execute - store intent: %v", ErrInternal, err)
	}

	redirect, err := gateway.CreateRedirect(ctx, domain.CheckoutRequest{
		Token:       intent.Token,
		Amount:      intent.Amount,
		Description: intent.Description,
		ReturnURL:   uc.opts.ReturnURL,
		ClientIP:    req.ClientIP,
		ExpiresAt:   intent.ExpiresAt,
	})
	if err != nil {
		uc.logger.Error("InitiatePayment: gateway %s failed for token=%s: %v", intent.Method, intent.Token, err)
		if derr := uc.intentRepo.MarkDiscarded(ctx, intent.Token, domain.DiscardGatewayError, nil); derr != nil {
			uc.logger.Error("InitiatePayment: failed to discard intent token=%s: %v", intent.Token, derr)
		}
		return nil, domain.NewTransientError(op, domain.ErrGatewayUnavailable, err)
	}

	uc.logger.Info("InitiatePayment: intent token=%s for subject=%d, professional=%d, start=%s, amount=%d via %s",
		intent.Token, req.SubjectID, professionalID, start.Format(time.RFC3339), intent.Amount, intent.Method)

	return &Response{
		Token:       intent.Token,
		RedirectURL: redirect,
		Method:      intent.Method,
		ExpiresAt:   intent.ExpiresAt,
	}, nil
}

func (uc *UseCase) gateway(method *domain.PaymentMethod) (Gateway, error) {
	m := uc.opts.DefaultMethod
	if method != nil {
		m = *method
	}
	g, ok := uc.gateways[m]
	if !ok {
		return nil, domain.NewValidationError(op, domain.ErrInvalidInput, fmt.Sprintf("payment method %q is not supported", m))
	}
	return g, nil
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
