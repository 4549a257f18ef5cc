package initiate_payment

import (
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	initiatePayment "github.com/m04kA/SMC-AppointmentService/internal/usecase/initiate_payment"
)

// InitiatePaymentRequest HTTP request model
type InitiatePaymentRequest struct {
	ProfessionalID *int64  `json:"professionalId,omitempty"`
	Candidates     []int64 `json:"candidates,omitempty"`
	ServiceType    string  `json:"serviceType"`
	Date           string  `json:"date"`      // "2025-10-15"
	StartTime      string  `json:"startTime"` // "10:00"
	Note           *string `json:"note,omitempty"`
	Amount         int64   `json:"amount"`           // VND
	Method         *string `json:"method,omitempty"` // VNPAY | STRIPE
	Description    string  `json:"description,omitempty"`
}

// InitiatePaymentResponse HTTP response model
type InitiatePaymentResponse struct {
	Token       string    `json:"token"`
	RedirectURL string    `json:"redirectUrl"`
	Method      string    `json:"method"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *InitiatePaymentRequest) ToUseCaseRequest(subjectID int64, clientIP string) (*initiatePayment.Request, error) {
	date, err := handlers.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	req := &initiatePayment.Request{
		SubjectID:      subjectID,
		ProfessionalID: r.ProfessionalID,
		Candidates:     r.Candidates,
		ServiceType:    r.ServiceType,
		Date:           date,
		Time:           r.StartTime,
		Note:           r.Note,
		Amount:         r.Amount,
		Description:    r.Description,
		ClientIP:       clientIP,
	}
	if r.Method != nil {
		method := domain.PaymentMethod(strings.ToUpper(*r.Method))
		req.Method = &method
	}
	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *initiatePayment.Response) *InitiatePaymentResponse {
	return &InitiatePaymentResponse{
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
		Method:      string(resp.Method),
		ExpiresAt:   resp.ExpiresAt,
	}
}
