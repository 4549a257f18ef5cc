package bookings

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
)

func validateID(op string, id int64) error {
	if id <= 0 {
		return domain.NewValidationError(op, domain.ErrInvalidInput, "booking id must be positive")
	}
	return nil
}

func validateText(op, field string, s *string, min, max int) error {
	if s == nil {
		return nil
	}
	n := utf8.RuneCountInString(*s)
	if n < min || n > max {
		return domain.NewValidationError(op, domain.ErrInvalidInput,
			fmt.Sprintf("%s must be %d to %d characters", field, min, max))
	}
	return nil
}

func validateComplete(req *models.CompleteRequest) error {
	const op = "Complete"

	if req == nil {
		return nil
	}
	if (req.RealStart == nil) != (req.RealEnd == nil) {
		return domain.NewValidationError(op, domain.ErrInvalidTiming, "real start and real end must be given together")
	}
	return validateText(op, "outcome", req.Outcome, domain.MinOutcomeLength, domain.MaxOutcomeLength)
}

func validateEvaluate(req *models.EvaluateRequest) (domain.Rating, error) {
	const op = "Evaluate"

	if req == nil {
		return "", domain.NewValidationError(op, domain.ErrInvalidInput, "rating is required")
	}
	rating := domain.Rating(req.Rating)
	if !rating.IsValid() {
		return "", domain.NewValidationError(op, domain.ErrInvalidInput, fmt.Sprintf("unknown rating %q", req.Rating))
	}
	if err := validateText(op, "comment", req.Comment, domain.MinCommentLength, domain.MaxCommentLength); err != nil {
		return "", err
	}
	return rating, nil
}

func parseClock(op, s string) (time.Time, error) {
	t, err := time.Parse(domain.TimeFormat, s)
	if err != nil {
		return time.Time{}, domain.NewValidationError(op, domain.ErrInvalidInput, fmt.Sprintf("invalid time %q, expected HH:MM", s))
	}
	return t, nil
}
