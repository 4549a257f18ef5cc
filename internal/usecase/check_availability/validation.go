package check_availability

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const op = "CheckAvailability"

// validateRequest проверяет входные данные и приводит список кандидатов к уникальному
func validateRequest(req *Request) ([]int64, error) {
	if req == nil {
		return nil, domain.NewValidationError(op, domain.ErrInvalidInput, "request is required")
	}
	if req.Date.IsZero() {
		return nil, domain.NewValidationError(op, domain.ErrInvalidInput, "date is required")
	}
	if req.MinGap != nil && *req.MinGap < 0 {
		return nil, domain.NewValidationError(op, domain.ErrInvalidInput, "min gap must not be negative")
	}

	seen := make(map[int64]struct{}, len(req.Candidates))
	candidates := make([]int64, 0, len(req.Candidates))
	for _, id := range req.Candidates {
		if id <= 0 {
			return nil, domain.NewValidationError(op, domain.ErrInvalidInput, fmt.Sprintf("invalid professional id %d", id))
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		candidates = append(candidates, id)
	}
	return candidates, nil
}

// parseClock разбирает время формата HH:MM
func parseClock(s string) (time.Time, error) {
	t, err := time.Parse(domain.TimeFormat, s)
	if err != nil {
		return time.Time{}, domain.NewValidationError(op, domain.ErrInvalidInput, fmt.Sprintf("invalid time %q, expected HH:MM", s))
	}
	return t, nil
}
