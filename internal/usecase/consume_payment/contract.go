package consume_payment

import (
	"context"
	"net/url"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks . Gateway

// Gateway разбирает возврат покупателя от внешнего шлюза
type Gateway interface {
	Method() domain.PaymentMethod
	Recognizes(query url.Values) bool
	ParseConfirmation(ctx context.Context, query url.Values) (*domain.PaymentConfirmation, error)
}

// IntentRepository интерфейс хранилища платёжных намерений
type IntentRepository interface {
	GetByToken(ctx context.Context, token string) (*domain.PaymentIntent, error)
	MarkConsumed(ctx context.Context, token string, bookingID int64, transactionID string) error
	MarkDiscarded(ctx context.Context, token, reason string, transactionID *string) error
	RecordLatePayment(ctx context.Context, token, transactionID string) error
}

// BookingPlacer создаёт бронирование внутри текущей транзакции с проверкой зазора
type BookingPlacer interface {
	Place(ctx context.Context, caller string, booking *domain.Booking, minGap time.Duration) (*domain.Booking, error)
}

// EventPublisher интерфейс публикации событий бронирования
type EventPublisher interface {
	Publish(ctx context.Context, event events.BookingEvent) error
}

// Metrics счётчики обработанных подтверждений
type Metrics interface {
	ObservePaymentConsumption(outcome string)
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
