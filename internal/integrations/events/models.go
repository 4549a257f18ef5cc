package events

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Типы событий жизненного цикла бронирования (routing key: booking.<type>)
const (
	TypeReserved    = "reserved"
	TypeConfirmed   = "confirmed"
	TypeRescheduled = "rescheduled"
	TypeStarted     = "started"
	TypeCompleted   = "completed"
	TypeCancelled   = "cancelled"
	TypeEvaluated   = "evaluated"
	TypePaid        = "paid"
)

// BookingEvent сообщение, публикуемое после фиксации перехода
type BookingEvent struct {
	Type           string               `json:"type"`
	BookingID      int64                `json:"bookingId"`
	SubjectID      int64                `json:"subjectId"`
	ProfessionalID int64                `json:"professionalId"`
	Status         domain.BookingStatus `json:"status"`
	ExpectedStart  time.Time            `json:"expectedStart"`
	OccurredAt     time.Time            `json:"occurredAt"`
}

// NewBookingEvent строит событие по состоянию бронирования
func NewBookingEvent(eventType string, b *domain.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:           eventType,
		BookingID:      b.ID,
		SubjectID:      b.SubjectID,
		ProfessionalID: b.ProfessionalID,
		Status:         b.Status,
		ExpectedStart:  b.ExpectedStart,
		OccurredAt:     at,
	}
}

// RoutingKey ключ маршрутизации в topic exchange
func (e BookingEvent) RoutingKey() string {
	return "booking." + e.Type
}
