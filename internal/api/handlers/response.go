package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const (
	msgInternalError = "внутренняя ошибка сервера"
	msgRateLimited   = "слишком много запросов, повторите позже"
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error         string `json:"error"`
	Kind          string `json:"kind,omitempty"`
	Reason        string `json:"reason,omitempty"`
	BookingID     int64  `json:"bookingId,omitempty"`
	CurrentStatus string `json:"currentStatus,omitempty"`
}

// reasonMessages сообщения для пользователя по причине ошибки
var reasonMessages = map[error]string{
	domain.ErrInvalidInput:          "некорректные параметры запроса",
	domain.ErrInvalidSlot:           "выбранное время не является допустимым слотом",
	domain.ErrPastTime:              "выбранное время уже прошло",
	domain.ErrRescheduleTooLate:     "слишком поздно для переноса бронирования",
	domain.ErrInvalidTiming:         "некорректное фактическое время оказания услуги",
	domain.ErrSlotTaken:             "выбранный временной слот недоступен",
	domain.ErrInvalidTransition:     "операция недоступна в текущем статусе бронирования",
	domain.ErrAlreadyInProgress:     "у специалиста уже есть бронирование в работе",
	domain.ErrAlreadyEvaluated:      "бронирование уже оценено",
	domain.ErrBookingBusy:           "над бронированием уже выполняется другая операция",
	domain.ErrGuardUnavailable:      "сервис блокировок недоступен",
	domain.ErrNoProfessional:        "нет свободных специалистов на выбранное время",
	domain.ErrBookingNotFound:       "бронирование не найдено",
	domain.ErrProfessionalNotFound:  "специалист не найден",
	domain.ErrUnknownToken:          "неизвестный платёжный токен",
	domain.ErrIntentDiscarded:       "платёжное намерение уже отклонено",
	domain.ErrMalformedConfirmation: "некорректное подтверждение оплаты",
	domain.ErrPaymentFailed:         "оплата не прошла",
	domain.ErrGatewayUnavailable:    "платёжный шлюз недоступен",
	domain.ErrDirectoryUnavailable:  "справочник специалистов недоступен",
	domain.ErrAccessDenied:          "нет доступа к бронированию",
}

// RespondJSON отправляет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// RespondError отправляет ответ с сообщением об ошибке
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

func RespondTooManyRequests(w http.ResponseWriter) {
	RespondError(w, http.StatusTooManyRequests, msgRateLimited)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}

// RespondDomainError отправляет типизированную ошибку сервиса с кодом по её виду.
// Нетипизированные ошибки считаются внутренними.
func RespondDomainError(w http.ResponseWriter, err error) {
	e, ok := domain.AsError(err)
	if !ok {
		RespondInternalError(w)
		return
	}

	body := ErrorResponse{
		Error:         message(e),
		Kind:          string(e.Kind),
		BookingID:     e.BookingID,
		CurrentStatus: string(e.Status),
	}
	if e.Reason != nil {
		body.Reason = e.Reason.Error()
	}

	RespondJSON(w, StatusOf(e.Kind), body)
}

// StatusOf HTTP код для вида ошибки
func StatusOf(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindReconciliation:
		return http.StatusUnprocessableEntity
	case domain.KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON декодирует тело запроса, отклоняя неизвестные поля
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return io.EOF
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// DecodeOptionalJSON как DecodeJSON, но пустое тело не считается ошибкой
func DecodeOptionalJSON(r *http.Request, dst interface{}) error {
	if err := DecodeJSON(r, dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func message(e *domain.Error) string {
	if e.Reason != nil {
		if msg, ok := reasonMessages[e.Reason]; ok {
			if e.Detail != "" {
				return msg + ": " + e.Detail
			}
			return msg
		}
	}
	return e.Error()
}
