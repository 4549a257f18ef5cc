package get_schedule

import (
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	getSchedule "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_schedule"
)

// SlotResponse один слот сетки
type SlotResponse struct {
	StartTime     string `json:"startTime"` // "10:00"
	Free          bool   `json:"free"`
	Reason        string `json:"reason,omitempty"`
	BookingID     int64  `json:"bookingId,omitempty"`
	BookingStatus string `json:"bookingStatus,omitempty"`
}

// ScheduleResponse HTTP response model
type ScheduleResponse struct {
	ProfessionalID int64          `json:"professionalId"`
	Date           string         `json:"date"`
	Slots          []SlotResponse `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getSchedule.Response) *ScheduleResponse {
	out := &ScheduleResponse{
		ProfessionalID: resp.ProfessionalID,
		Date:           resp.Date.Format(domain.DateFormat),
		Slots:          make([]SlotResponse, 0, len(resp.Slots)),
	}
	for _, s := range resp.Slots {
		out.Slots = append(out.Slots, SlotResponse{
			StartTime:     s.Start.Format(domain.TimeFormat),
			Free:          s.Free,
			Reason:        s.Reason,
			BookingID:     s.BookingID,
			BookingStatus: string(s.Status),
		})
	}
	return out
}
