package reserve_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/check_availability"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	LockProfessional(ctx context.Context, professionalID int64) error
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// SlotIndex интерфейс индекса занятых слотов
type SlotIndex interface {
	Check(ctx context.Context, professionalID int64, at time.Time, minGap time.Duration, excludeBookingID int64) (domain.CandidateAvailability, error)
}

// ProfessionalSuggester подбирает специалиста, если клиент его не указал
type ProfessionalSuggester interface {
	SuggestProfessional(ctx context.Context, req *check_availability.Request) (int64, error)
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
