package get_schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// UseCase use case для получения сетки слотов специалиста на день
type UseCase struct {
	index        SlotIndex
	policies     *domain.PolicySet
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(index SlotIndex, policies *domain.PolicySet, logger Logger) *UseCase {
	return &UseCase{
		index:        index,
		policies:     policies,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute строит сетку слотов дня и отмечает свободные и занятые
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	const op = "Schedule"

	if req.ProfessionalID <= 0 {
		return nil, domain.NewValidationError(op, domain.ErrInvalidInput, "professional id must be positive")
	}
	if req.Date.IsZero() {
		return nil, domain.NewValidationError(op, domain.ErrInvalidInput, "date is required")
	}

	uc.logger.Info("Schedule: professional=%d, date=%s, serviceType=%q",
		req.ProfessionalID, req.Date.Format(domain.DateFormat), req.ServiceType)

	policy := uc.policies.For(req.ServiceType)

	dayStart := policy.At(req.Date, time.Time{})

	commitments, err := uc.index.Commitments(ctx, req.ProfessionalID, dayStart)
	if err != nil {
		uc.logger.Error("Schedule: failed to read commitments for professional=%d: %v", req.ProfessionalID, err)
		return nil, fmt.Errorf("%w: Execute - read commitments: %v", ErrInternal, err)
	}

	slots := markSlots(policy, req.ProfessionalID, generateStarts(policy, req.Date), commitments, uc.timeProvider.Now())

	uc.logger.Info("Schedule: generated %d slots for professional=%d, commitments=%d",
		len(slots), req.ProfessionalID, len(commitments))

	return &Response{
		ProfessionalID: req.ProfessionalID,
		Date:           req.Date,
		Slots:          slots,
	}, nil
}
