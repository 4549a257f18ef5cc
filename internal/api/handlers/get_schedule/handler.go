package get_schedule

import (
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	getSchedule "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_schedule"
)

const (
	msgInvalidProfessionalID = "некорректный ID специалиста"
	msgInvalidDate           = "некорректный формат даты, ожидается YYYY-MM-DD"
)

type Handler struct {
	useCase GetScheduleUseCase
	logger  Logger
}

func NewHandler(useCase GetScheduleUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/professionals/{professionalId}/schedule
// Query params: date (обязательно), serviceType (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	professionalID, err := handlers.PathID(r, "professionalId")
	if err != nil {
		h.logger.Warn("GET /professionals/{id}/schedule - Invalid professional ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProfessionalID)
		return
	}

	date, err := handlers.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		h.logger.Warn("GET /professionals/{id}/schedule - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getSchedule.Request{
		ProfessionalID: professionalID,
		Date:           date,
		ServiceType:    r.URL.Query().Get("serviceType"),
	})
	if err != nil {
		h.logger.Warn("GET /professionals/{id}/schedule - Failed to build schedule: professional_id=%d, error=%v",
			professionalID, err)
		handlers.RespondDomainError(w, err)
		return
	}

	h.logger.Info("GET /professionals/{id}/schedule - Schedule built: professional_id=%d, slots=%d",
		professionalID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
