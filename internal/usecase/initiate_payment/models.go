package initiate_payment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Options настройки платёжного потока
type Options struct {
	IntentTTL     time.Duration        // Время жизни намерения
	DefaultMethod domain.PaymentMethod // Шлюз по умолчанию
	ReturnURL     string               // Адрес возврата покупателя (GET /payments/return)
}

// Request модель запроса на оплату бронирования
type Request struct {
	SubjectID      int64
	ProfessionalID *int64
	Candidates     []int64
	ServiceType    string
	Date           time.Time
	Time           string
	Note           *string
	Amount         int64                 // Сумма в VND
	Method         *domain.PaymentMethod // nil - шлюз по умолчанию
	Description    string
	ClientIP       string
}

// Response модель ответа с адресом оплаты
type Response struct {
	Token       string
	RedirectURL string
	Method      domain.PaymentMethod
	ExpiresAt   time.Time
}
