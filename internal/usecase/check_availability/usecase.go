package check_availability

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// UseCase use case проверки доступности специалистов на слот
type UseCase struct {
	index        SlotIndex
	directory    DirectoryClient
	policies     *domain.PolicySet
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger

	maxParallel int
	timeout     time.Duration
}

// NewUseCase создает новый экземпляр use case.
// directory может быть nil: тогда список кандидатов обязателен.
func NewUseCase(
	index SlotIndex,
	directory DirectoryClient,
	policies *domain.PolicySet,
	metrics Metrics,
	maxParallel int,
	timeout time.Duration,
	logger Logger,
) *UseCase {
	if maxParallel <= 0 {
		maxParallel = 8
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &UseCase{
		index:        index,
		directory:    directory,
		policies:     policies,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		maxParallel:  maxParallel,
		timeout:      timeout,
	}
}

// Execute проверяет каждого кандидата независимо.
// Ошибка поиска по одному кандидату даёт вердикт unknown и не прерывает запрос.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	candidates, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("CheckAvailability: validation failed: %v", err)
		return nil, err
	}

	clock, err := parseClock(req.Time)
	if err != nil {
		return nil, err
	}

	policy := uc.policies.For(req.ServiceType)
	start := policy.At(req.Date, clock)
	if err := policy.ValidateSlot(op, start, uc.timeProvider.Now()); err != nil {
		uc.logger.Warn("CheckAvailability: slot %s rejected: %v", start.Format(time.RFC3339), err)
		return nil, err
	}

	gap := policy.MinGap
	if req.MinGap != nil {
		gap = *req.MinGap
	}

	if len(candidates) == 0 {
		candidates, err = uc.listProfessionals(ctx, req.ServiceType)
		if err != nil {
			return nil, err
		}
	}

	uc.logger.Info("CheckAvailability: start=%s, candidates=%v, gap=%s", start.Format(time.RFC3339), candidates, gap)

	results := uc.fanOut(ctx, candidates, start, gap)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp := &Response{Start: start, Available: make([]int64, 0, len(results)), Results: results}
	for _, r := range results {
		uc.metrics.ObserveAvailability(string(r.Verdict))
		if r.IsAvailable() {
			resp.Available = append(resp.Available, r.ProfessionalID)
		}
	}

	uc.logger.Info("CheckAvailability: %d of %d candidates available at %s",
		len(resp.Available), len(results), start.Format(time.RFC3339))
	return resp, nil
}

// SuggestProfessional подбирает наименее загруженного свободного специалиста
func (uc *UseCase) SuggestProfessional(ctx context.Context, req *Request) (int64, error) {
	resp, err := uc.Execute(ctx, req)
	if err != nil {
		return 0, err
	}

	id, ok := resp.Suggest()
	if !ok {
		uc.logger.Warn("SuggestProfessional: nobody is available at %s", resp.Start.Format(time.RFC3339))
		return 0, domain.NewConflictError("SuggestProfessional", domain.ErrNoProfessional, 0, "")
	}

	uc.logger.Info("SuggestProfessional: picked professional=%d", id)
	return id, nil
}

func (uc *UseCase) fanOut(ctx context.Context, candidates []int64, start time.Time, gap time.Duration) []domain.CandidateAvailability {
	results := make([]domain.CandidateAvailability, len(candidates))

	var g errgroup.Group
	g.SetLimit(uc.maxParallel)

	for i, id := range candidates {
		i, id := i, id
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, uc.timeout)
			defer cancel()

			res, err := uc.index.Check(cctx, id, start, gap, 0)
			if err != nil {
				uc.logger.Warn("CheckAvailability: lookup for professional=%d failed: %v", id, err)
				res = domain.CandidateAvailability{ProfessionalID: id, Verdict: domain.VerdictUnknown}
			}
			results[i] = res
			return nil
		})
	}

	// горутины не возвращают ошибок
	_ = g.Wait()
	return results
}

func (uc *UseCase) listProfessionals(ctx context.Context, serviceType string) ([]int64, error) {
	if uc.directory == nil {
		return nil, domain.NewValidationError(op, domain.ErrInvalidInput, "candidates are required")
	}

	professionals, err := uc.directory.ListProfessionals(ctx, serviceType)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		uc.logger.Error("CheckAvailability: directory lookup failed: %v", err)
		return nil, domain.NewTransientError(op, domain.ErrDirectoryUnavailable, err)
	}

	ids := make([]int64, 0, len(professionals))
	for _, p := range professionals {
		ids = append(ids, p.ID)
	}
	return ids, nil
}
