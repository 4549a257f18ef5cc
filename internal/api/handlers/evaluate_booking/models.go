package evaluate_booking

import (
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
)

// EvaluateBookingRequest HTTP request model
type EvaluateBookingRequest struct {
	Rating  string  `json:"rating"` // VERY_BAD | BAD | AVERAGE | GOOD | EXCELLENT
	Comment *string `json:"comment,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *EvaluateBookingRequest) ToServiceRequest() *models.EvaluateRequest {
	return &models.EvaluateRequest{Rating: r.Rating, Comment: r.Comment}
}
