package reserve_booking

import (
	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	reserveBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/reserve_booking"
)

// ReserveBookingRequest HTTP request model
type ReserveBookingRequest struct {
	ProfessionalID *int64  `json:"professionalId,omitempty"` // nil - подобрать автоматически
	Candidates     []int64 `json:"candidates,omitempty"`
	ServiceType    string  `json:"serviceType"`
	Date           string  `json:"date"`      // "2025-10-15"
	StartTime      string  `json:"startTime"` // "10:00"
	Note           *string `json:"note,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *ReserveBookingRequest) ToUseCaseRequest(subjectID int64) (*reserveBooking.Request, error) {
	date, err := handlers.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	return &reserveBooking.Request{
		SubjectID:      subjectID,
		ProfessionalID: r.ProfessionalID,
		Candidates:     r.Candidates,
		ServiceType:    r.ServiceType,
		Date:           date,
		Time:           r.StartTime,
		Note:           r.Note,
	}, nil
}
