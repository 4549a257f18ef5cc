package consume_payment

import "github.com/m04kA/SMC-AppointmentService/internal/domain"

// Исходы обработки подтверждения (метка метрики)
const (
	OutcomeConsumed  = "consumed"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
	OutcomeConflict  = "conflict"
	OutcomeError     = "error"
)

// Response результат обработки подтверждения
type Response struct {
	Token     string
	BookingID int64
	Status    domain.BookingStatus
	Duplicate bool // подтверждение уже было обработано ранее
}
