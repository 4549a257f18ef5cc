package payment_return

import (
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	consumePayment "github.com/m04kA/SMC-AppointmentService/internal/usecase/consume_payment"
)

// PaymentResultResponse HTTP response model
type PaymentResultResponse struct {
	Token     string `json:"token"`
	BookingID int64  `json:"bookingId"`
	Status    string `json:"status,omitempty"`
	Duplicate bool   `json:"duplicate"`
}

type Handler struct {
	useCase ConsumePaymentUseCase
	logger  Logger
}

func NewHandler(useCase ConsumePaymentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/payments/return
// Адрес возврата покупателя со шлюза; повторная доставка того же подтверждения безопасна
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.useCase.Execute(r.Context(), r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /payments/return - Confirmation rejected: %v", err)
		handlers.RespondDomainError(w, err)
		return
	}

	h.logger.Info("GET /payments/return - Confirmation consumed: token=%s, booking_id=%d, duplicate=%t",
		result.Token, result.BookingID, result.Duplicate)
	handlers.RespondJSON(w, http.StatusOK, toResponse(result))
}

func toResponse(resp *consumePayment.Response) *PaymentResultResponse {
	return &PaymentResultResponse{
		Token:     resp.Token,
		BookingID: resp.BookingID,
		Status:    string(resp.Status),
		Duplicate: resp.Duplicate,
	}
}
