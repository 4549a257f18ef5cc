package initiate_payment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/check_availability"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks . Gateway,IntentRepository

// Gateway внешний платёжный шлюз, выдающий ссылку на оплату
type Gateway interface {
	Method() domain.PaymentMethod
	CreateRedirect(ctx context.Context, req domain.CheckoutRequest) (string, error)
}

// IntentRepository интерфейс хранилища платёжных намерений
type IntentRepository interface {
	Create(ctx context.Context, intent *domain.PaymentIntent) error
	MarkDiscarded(ctx context.Context, token, reason string, transactionID *string) error
}

// SlotIndex интерфейс индекса занятых слотов
type SlotIndex interface {
	Check(ctx context.Context, professionalID int64, at time.Time, minGap time.Duration, excludeBookingID int64) (domain.CandidateAvailability, error)
}

// ProfessionalSuggester подбирает специалиста, если клиент его не указал
type ProfessionalSuggester interface {
	SuggestProfessional(ctx context.Context, req *check_availability.Request) (int64, error)
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
