package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
)

// BookingRepository in-memory аналог booking.Repository
type BookingRepository struct {
	s *Store
}

// LockProfessional транзакции хранилища уже сериализованы
func (r *BookingRepository) LockProfessional(ctx context.Context, _ int64) error {
	if !inTx(ctx) {
		return bookingRepo.ErrNotInTransaction
	}
	return nil
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	err := r.s.write(ctx, func() error {
		for _, existing := range r.s.bookings {
			if existing.IsActive() && existing.ProfessionalID == b.ProfessionalID && existing.ExpectedStart.Equal(b.ExpectedStart) {
				return bookingRepo.ErrSlotNotAvailable
			}
		}

		r.s.nextID++
		now := r.s.now()
		b.ID = r.s.nextID
		b.CreatedAt = now
		b.UpdatedAt = now
		r.s.bookings[b.ID] = *b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BookingRepository) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	var (
		b  domain.Booking
		ok bool
	)
	r.s.read(func() { b, ok = r.s.bookings[id] })
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return &b, nil
}

func (r *BookingRepository) ListCommitments(_ context.Context, professionalID int64, from, to time.Time) ([]*domain.Booking, error) {
	return r.filter(func(b domain.Booking) bool {
		return b.ProfessionalID == professionalID && b.IsActive() &&
			!b.ExpectedStart.Before(from) && b.ExpectedStart.Before(to)
	}, true), nil
}

func (r *BookingRepository) FindInProgress(_ context.Context, professionalID int64) (*domain.Booking, error) {
	found := r.filter(func(b domain.Booking) bool {
		return b.ProfessionalID == professionalID && b.Status == domain.StatusInProgress
	}, true)
	if len(found) == 0 {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return found[0], nil
}

func (r *BookingRepository) List(_ context.Context, f domain.BookingsFilter) ([]*domain.Booking, error) {
	return r.filter(func(b domain.Booking) bool {
		switch {
		case f.SubjectID != nil && b.SubjectID != *f.SubjectID:
			return false
		case f.ProfessionalID != nil && b.ProfessionalID != *f.ProfessionalID:
			return false
		case f.From != nil && b.ExpectedStart.Before(*f.From):
			return false
		case f.To != nil && !b.ExpectedStart.Before(*f.To):
			return false
		case f.Status != nil:
			return b.Status == *f.Status
		case !f.IncludeInactive:
			return b.IsActive()
		}
		return true
	}, f.ProfessionalID != nil), nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	return r.update(ctx, id, func(b *domain.Booking) error {
		b.Status = status
		return nil
	})
}

func (r *BookingRepository) Reschedule(ctx context.Context, id int64, start, end time.Time, status domain.BookingStatus) error {
	return r.update(ctx, id, func(b *domain.Booking) error {
		for otherID, other := range r.s.bookings {
			if otherID != id && other.IsActive() && other.ProfessionalID == b.ProfessionalID && other.ExpectedStart.Equal(start) {
				return bookingRepo.ErrSlotNotAvailable
			}
		}
		b.ExpectedStart = start
		b.ExpectedEnd = end
		b.Status = status
		b.Rescheduled = true
		return nil
	})
}

func (r *BookingRepository) MarkInProgress(ctx context.Context, id int64, realStart time.Time) error {
	return r.update(ctx, id, func(b *domain.Booking) error {
		for otherID, other := range r.s.bookings {
			if otherID != id && other.ProfessionalID == b.ProfessionalID && other.Status == domain.StatusInProgress {
				return bookingRepo.ErrAlreadyInProgress
			}
		}
		b.Status = domain.StatusInProgress
		b.RealStart = &realStart
		return nil
	})
}

func (r *BookingRepository) Complete(ctx context.Context, id int64, realStart, realEnd time.Time, outcome *string) error {
	return r.update(ctx, id, func(b *domain.Booking) error {
		b.Status = domain.StatusCompleted
		b.RealStart = &realStart
		b.RealEnd = &realEnd
		b.Outcome = outcome
		return nil
	})
}

func (r *BookingRepository) Cancel(ctx context.Context, id int64, reason *string, at time.Time) error {
	return r.update(ctx, id, func(b *domain.Booking) error {
		b.Status = domain.StatusCancelled
		b.CancellationReason = reason
		b.CancelledAt = &at
		return nil
	})
}

func (r *BookingRepository) Evaluate(ctx context.Context, id int64, rating domain.Rating, comment *string) error {
	return r.update(ctx, id, func(b *domain.Booking) error {
		b.Rating = &rating
		b.Comment = comment
		return nil
	})
}

func (r *BookingRepository) update(ctx context.Context, id int64, fn func(b *domain.Booking) error) error {
	return r.s.write(ctx, func() error {
		b, ok := r.s.bookings[id]
		if !ok {
			return bookingRepo.ErrBookingNotFound
		}
		if err := fn(&b); err != nil {
			return err
		}
		b.UpdatedAt = r.s.now()
		r.s.bookings[id] = b
		return nil
	})
}

func (r *BookingRepository) filter(keep func(b domain.Booking) bool, ascending bool) []*domain.Booking {
	result := make([]*domain.Booking, 0)
	r.s.read(func() {
		for _, b := range r.s.bookings {
			if keep(b) {
				b := b
				result = append(result, &b)
			}
		}
	})

	sort.Slice(result, func(i, j int) bool {
		if result[i].ExpectedStart.Equal(result[j].ExpectedStart) {
			return result[i].ID < result[j].ID
		}
		if ascending {
			return result[i].ExpectedStart.Before(result[j].ExpectedStart)
		}
		return result[i].ExpectedStart.After(result[j].ExpectedStart)
	})
	return result
}
