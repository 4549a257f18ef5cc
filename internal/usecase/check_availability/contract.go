package check_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/directory"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks . SlotIndex,DirectoryClient

// SlotIndex интерфейс индекса занятых слотов
type SlotIndex interface {
	Check(ctx context.Context, professionalID int64, at time.Time, minGap time.Duration, excludeBookingID int64) (domain.CandidateAvailability, error)
}

// DirectoryClient интерфейс клиента справочника специалистов
type DirectoryClient interface {
	ListProfessionals(ctx context.Context, serviceType string) ([]directory.Professional, error)
}

// Metrics счётчики вердиктов доступности
type Metrics interface {
	ObserveAvailability(verdict string)
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
