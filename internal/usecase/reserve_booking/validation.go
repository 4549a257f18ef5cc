package reserve_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const op = "Reserve"

// validateRequest проверяет входные данные запроса
func validateRequest(req *Request) error {
	if req == nil {
		return domain.NewValidationError(op, domain.ErrInvalidInput, "request is required")
	}
	if req.SubjectID <= 0 {
		return domain.NewValidationError(op, domain.ErrInvalidInput, "subject id must be positive")
	}
	if req.ProfessionalID != nil && *req.ProfessionalID <= 0 {
		return domain.NewValidationError(op, domain.ErrInvalidInput, "professional id must be positive")
	}
	if req.Date.IsZero() {
		return domain.NewValidationError(op, domain.ErrInvalidInput, "date is required")
	}
	if req.Note != nil && len([]rune(*req.Note)) > domain.MaxNoteLength {
		return domain.NewValidationError(op, domain.ErrInvalidInput,
			fmt.Sprintf("note must be at most %d characters", domain.MaxNoteLength))
	}
	return nil
}

// parseClock разбирает время формата HH:MM
func parseClock(s string) (time.Time, error) {
	t, err := time.Parse(domain.TimeFormat, s)
	if err != nil {
		return time.Time{}, domain.NewValidationError(op, domain.ErrInvalidInput, fmt.Sprintf("invalid time %q, expected HH:MM", s))
	}
	return t, nil
}
