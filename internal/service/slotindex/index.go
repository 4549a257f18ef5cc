package slotindex

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Index проекция не отменённых бронирований на слоты специалиста.
// Собственного состояния нет: слот исчезает в той же транзакции, где бронирование отменяется.
type Index struct {
	repo BookingRepository
	loc  *time.Location
}

// NewIndex создает индекс; loc задаёт границы календарного дня
func NewIndex(repo BookingRepository, loc *time.Location) *Index {
	if loc == nil {
		loc = time.UTC
	}
	return &Index{repo: repo, loc: loc}
}

// Commitments возвращает занятые слоты специалиста на календарный день date
func (i *Index) Commitments(ctx context.Context, professionalID int64, date time.Time) ([]domain.Slot, error) {
	y, m, d := date.In(i.loc).Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, i.loc)
	to := from.AddDate(0, 0, 1)

	bookings, err := i.repo.ListCommitments(ctx, professionalID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: Commitments - professional=%d: %v", ErrInternal, professionalID, err)
	}

	slots := make([]domain.Slot, 0, len(bookings))
	for _, b := range bookings {
		slots = append(slots, b.Slot())
	}
	return slots, nil
}

// Check проверяет, свободен ли специалист в момент at с учётом минимального зазора.
// excludeBookingID исключает собственный слот переносимого бронирования.
func (i *Index) Check(ctx context.Context, professionalID int64, at time.Time, minGap time.Duration, excludeBookingID int64) (domain.CandidateAvailability, error) {
	slots, err := i.Commitments(ctx, professionalID, at)
	if err != nil {
		return domain.CandidateAvailability{ProfessionalID: professionalID, Verdict: domain.VerdictUnknown}, err
	}
	return Evaluate(professionalID, slots, at, minGap, excludeBookingID), nil
}

// Evaluate применяет правило минимального зазора к уже прочитанным слотам
func Evaluate(professionalID int64, slots []domain.Slot, at time.Time, minGap time.Duration, excludeBookingID int64) domain.CandidateAvailability {
	result := domain.CandidateAvailability{
		ProfessionalID: professionalID,
		Verdict:        domain.VerdictAvailable,
	}

	for _, s := range slots {
		if s.BookingID == excludeBookingID {
			continue
		}
		result.Load++
		if result.ConflictingID == 0 && s.Within(at, minGap) {
			result.Verdict = domain.VerdictUnavailable
			result.ConflictingID = s.BookingID
			result.ConflictingStatus = s.Status
		}
	}
	return result
}
