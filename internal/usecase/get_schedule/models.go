package get_schedule

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Причины, по которым слот не может быть забронирован
const (
	ReasonBooked   = "booked"    // на это время уже есть бронирование
	ReasonTooClose = "too_close" // нарушен минимальный зазор до соседнего бронирования
	ReasonTooLate  = "too_late"  // время прошло или бронирование на этот день закрыто
)

// Request модель запроса расписания специалиста
type Request struct {
	ProfessionalID int64
	Date           time.Time // Дата (без времени)
	ServiceType    string    // Тип услуги, определяет политику
}

// Slot один слот сетки расписания
type Slot struct {
	Start     time.Time
	Free      bool
	Reason    string               // пусто для свободного слота
	BookingID int64                // бронирование, занимающее или блокирующее слот
	Status    domain.BookingStatus // его статус
}

// Response модель ответа с сеткой слотов на день
type Response struct {
	ProfessionalID int64
	Date           time.Time
	Slots          []Slot
}
