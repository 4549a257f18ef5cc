package check_availability

import (
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
)

const msgInvalidParams = "некорректные параметры запроса: ожидаются date=YYYY-MM-DD, time=HH:MM, candidates=1,2"

type Handler struct {
	useCase CheckAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase CheckAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	req, err := ToUseCaseRequest(r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /availability - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		h.logger.Warn("GET /availability - Failed to check availability: %v", err)
		handlers.RespondDomainError(w, err)
		return
	}

	h.logger.Info("GET /availability - Checked %d candidates, available=%d", len(result.Results), len(result.Available))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
