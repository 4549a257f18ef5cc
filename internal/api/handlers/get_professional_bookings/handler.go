package get_professional_bookings

import (
	"net/http"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
)

const (
	msgInvalidProfessionalID = "некорректный ID специалиста"
	msgInvalidParams         = "некорректные параметры запроса"
)

type Handler struct {
	service BookingService
	loc     *time.Location
	logger  Logger
}

func NewHandler(service BookingService, loc *time.Location, logger Logger) *Handler {
	return &Handler{
		service: service,
		loc:     loc,
		logger:  logger,
	}
}

// Handle GET /api/v1/professionals/{professionalId}/bookings
// Query params: from, to, status, includeInactive (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	professionalID, err := handlers.PathID(r, "professionalId")
	if err != nil {
		h.logger.Warn("GET /professionals/{id}/bookings - Invalid professional ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProfessionalID)
		return
	}

	req, err := ToServiceRequest(professionalID, r.URL.Query(), h.loc)
	if err != nil {
		h.logger.Warn("GET /professionals/{id}/bookings - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.ListForProfessional(r.Context(), req)
	if err != nil {
		h.logger.Warn("GET /professionals/{id}/bookings - Failed to get bookings: professional_id=%d, error=%v",
			professionalID, err)
		handlers.RespondDomainError(w, err)
		return
	}

	h.logger.Info("GET /professionals/{id}/bookings - Bookings retrieved successfully: professional_id=%d, count=%d",
		professionalID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result.Bookings)
}
