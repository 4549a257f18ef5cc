package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	LockProfessional(ctx context.Context, professionalID int64) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	FindInProgress(ctx context.Context, professionalID int64) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	Reschedule(ctx context.Context, id int64, start, end time.Time, status domain.BookingStatus) error
	MarkInProgress(ctx context.Context, id int64, realStart time.Time) error
	Complete(ctx context.Context, id int64, realStart, realEnd time.Time, outcome *string) error
	Cancel(ctx context.Context, id int64, reason *string, at time.Time) error
	Evaluate(ctx context.Context, id int64, rating domain.Rating, comment *string) error
}

// SlotIndex интерфейс индекса занятых слотов
type SlotIndex interface {
	Check(ctx context.Context, professionalID int64, at time.Time, minGap time.Duration, excludeBookingID int64) (domain.CandidateAvailability, error)
}

// TimingRecorder двухфазный учёт фактического времени
type TimingRecorder interface {
	Begin(b *domain.Booking, p domain.SchedulePolicy, now time.Time) (time.Time, error)
	Complete(b *domain.Booking, p domain.SchedulePolicy, now time.Time) (time.Time, time.Time, error)
	CompleteOutOfBand(b *domain.Booking, p domain.SchedulePolicy, start, end, now time.Time) error
}

// Guard краткосрочная блокировка операции над одним бронированием
type Guard interface {
	TryLock(ctx context.Context, key string) (func(), error)
}

// EventPublisher интерфейс публикации событий бронирования
type EventPublisher interface {
	Publish(ctx context.Context, event events.BookingEvent) error
}

// Metrics счётчики переходов жизненного цикла
type Metrics interface {
	ObserveTransition(transition, outcome string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
