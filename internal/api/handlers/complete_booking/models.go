package complete_booking

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
)

// CompleteBookingRequest HTTP request model.
// realStart и realEnd передаются, только если время зафиксировано вне сервиса.
type CompleteBookingRequest struct {
	RealStart *time.Time `json:"realStart,omitempty"` // RFC 3339
	RealEnd   *time.Time `json:"realEnd,omitempty"`
	Outcome   *string    `json:"outcome,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CompleteBookingRequest) ToServiceRequest() *models.CompleteRequest {
	return &models.CompleteRequest{
		RealStart: r.RealStart,
		RealEnd:   r.RealEnd,
		Outcome:   r.Outcome,
	}
}
