package timing

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Recorder двухфазный учёт фактического времени оказания услуги:
// begin() фиксирует realStart, complete() фиксирует realEnd и проверяет длительность.
type Recorder struct{}

// NewRecorder создает новый экземпляр recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Begin первая фаза: возвращает realStart = now после проверки политики
func (r *Recorder) Begin(b *domain.Booking, p domain.SchedulePolicy, now time.Time) (time.Time, error) {
	const op = "Begin"

	if b.RealStart != nil {
		return time.Time{}, domain.NewConflictError(op, domain.ErrInvalidTransition, b.ID, b.Status)
	}
	if err := checkStart(op, b, p, now); err != nil {
		return time.Time{}, err
	}
	return now, nil
}

// Complete вторая фаза: требует зафиксированного realStart, возвращает (realStart, realEnd = now)
func (r *Recorder) Complete(b *domain.Booking, p domain.SchedulePolicy, now time.Time) (time.Time, time.Time, error) {
	const op = "Complete"

	if b.Status != domain.StatusInProgress || b.RealStart == nil {
		return time.Time{}, time.Time{}, &domain.Error{
			Kind:      domain.KindConflict,
			Op:        op,
			Reason:    domain.ErrInvalidTransition,
			BookingID: b.ID,
			Status:    b.Status,
			Detail:    "no recorded start for this booking",
		}
	}

	start := *b.RealStart
	if err := ValidateDuration(op, p, b.ExpectedStart, start, now); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, now, nil
}

// CompleteOutOfBand проверяет время, зафиксированное вызывающей стороной вне сервиса
func (r *Recorder) CompleteOutOfBand(b *domain.Booking, p domain.SchedulePolicy, start, end, now time.Time) error {
	const op = "Complete"

	if end.After(now) {
		return domain.NewValidationError(op, domain.ErrInvalidTiming, "real end is in the future")
	}
	if err := checkStart(op, b, p, start); err != nil {
		return err
	}
	return ValidateDuration(op, p, b.ExpectedStart, start, end)
}

// ValidateDuration проверяет realEnd > realStart, границы длительности и realStart >= expectedStart
func ValidateDuration(op string, p domain.SchedulePolicy, expectedStart, start, end time.Time) error {
	if start.Before(expectedStart) {
		return domain.NewValidationError(op, domain.ErrInvalidTiming, "real start is before expected start")
	}
	if !end.After(start) {
		return domain.NewValidationError(op, domain.ErrInvalidTiming, "real end must be after real start")
	}

	d := end.Sub(start)
	if d < p.MinServiceDuration {
		return domain.NewValidationError(op, domain.ErrInvalidTiming,
			fmt.Sprintf("duration %s is shorter than %s", d, p.MinServiceDuration))
	}
	if d > p.MaxServiceDuration {
		return domain.NewValidationError(op, domain.ErrInvalidTiming,
			fmt.Sprintf("duration %s is longer than %s", d, p.MaxServiceDuration))
	}
	return nil
}

func checkStart(op string, b *domain.Booking, p domain.SchedulePolicy, start time.Time) error {
	if start.Before(b.ExpectedStart) {
		return domain.NewValidationError(op, domain.ErrInvalidTiming, "cannot start before expected start")
	}
	if !start.Before(b.ExpectedStart.Add(p.MaxStartDelay)) {
		return domain.NewValidationError(op, domain.ErrInvalidTiming,
			fmt.Sprintf("start is more than %s after expected start", p.MaxStartDelay))
	}
	return nil
}
