package begin_booking

import (
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgMissingUserID    = "отсутствует ID пользователя"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/begin
// Фиксирует фактическое начало оказания услуги текущим временем сервера
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/begin - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /bookings/{id}/begin - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	booking, err := h.service.Begin(r.Context(), bookingID, userID)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/begin - Failed to begin: booking_id=%d, error=%v", bookingID, err)
		handlers.RespondDomainError(w, err)
		return
	}

	h.logger.Info("PATCH /bookings/{id}/begin - Booking started: booking_id=%d, real_start=%v",
		bookingID, booking.RealStart)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
