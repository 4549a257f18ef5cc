package reserve_booking

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модель запроса на резервирование
type Request struct {
	SubjectID      int64     // ID клиента (X-User-ID)
	ProfessionalID *int64    // ID специалиста; nil - подобрать автоматически
	Candidates     []int64   // Кандидаты для автоподбора (опционально)
	ServiceType    string    // Тип услуги
	Date           time.Time // Дата (без времени)
	Time           string    // Время начала "HH:MM"
	Note           *string   // Заметка клиента (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking *domain.Booking
}
