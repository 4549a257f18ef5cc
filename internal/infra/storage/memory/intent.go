package memory

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	intentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/intent"
)

// IntentRepository in-memory аналог intent.Repository
type IntentRepository struct {
	s *Store
}

func (r *IntentRepository) Create(ctx context.Context, in *domain.PaymentIntent) error {
	return r.s.write(ctx, func() error {
		in.UpdatedAt = r.s.now()
		r.s.intents[in.Token] = *in
		return nil
	})
}

func (r *IntentRepository) GetByToken(_ context.Context, token string) (*domain.PaymentIntent, error) {
	var (
		in domain.PaymentIntent
		ok bool
	)
	r.s.read(func() { in, ok = r.s.intents[token] })
	if !ok {
		return nil, intentRepo.ErrIntentNotFound
	}
	return &in, nil
}

func (r *IntentRepository) MarkConsumed(ctx context.Context, token string, bookingID int64, transactionID string) error {
	return r.transition(ctx, token, func(in *domain.PaymentIntent) {
		in.State = domain.IntentConsumed
		in.BookingID = &bookingID
		in.TransactionID = &transactionID
	})
}

func (r *IntentRepository) MarkDiscarded(ctx context.Context, token, reason string, transactionID *string) error {
	return r.transition(ctx, token, func(in *domain.PaymentIntent) {
		in.State = domain.IntentDiscarded
		in.DiscardReason = &reason
		in.TransactionID = transactionID
	})
}

func (r *IntentRepository) RecordLatePayment(ctx context.Context, token, transactionID string) error {
	return r.s.write(ctx, func() error {
		in, ok := r.s.intents[token]
		if !ok || in.State != domain.IntentDiscarded || in.HoldsPayment() {
			return intentRepo.ErrStateChanged
		}
		reason := domain.DiscardPaidAfterDiscard
		in.DiscardReason = &reason
		in.TransactionID = &transactionID
		in.UpdatedAt = r.s.now()
		r.s.intents[token] = in
		return nil
	})
}

func (r *IntentRepository) DiscardExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.s.write(ctx, func() error {
		reason := domain.DiscardExpired
		for token, in := range r.s.intents {
			if in.State == domain.IntentPending && in.IsExpired(now) {
				in.State = domain.IntentDiscarded
				in.DiscardReason = &reason
				in.UpdatedAt = r.s.now()
				r.s.intents[token] = in
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *IntentRepository) transition(ctx context.Context, token string, fn func(in *domain.PaymentIntent)) error {
	return r.s.write(ctx, func() error {
		in, ok := r.s.intents[token]
		if !ok || in.State != domain.IntentPending {
			return intentRepo.ErrStateChanged
		}
		fn(&in)
		in.UpdatedAt = r.s.now()
		r.s.intents[token] = in
		return nil
	})
}
