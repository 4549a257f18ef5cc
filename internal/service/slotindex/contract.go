package slotindex

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// BookingRepository источник занятых слотов
type BookingRepository interface {
	ListCommitments(ctx context.Context, professionalID int64, from, to time.Time) ([]*domain.Booking, error)
}
