package get_professional_bookings

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров.
// from и to - даты YYYY-MM-DD в часовом поясе расписания, to включительно.
func ToServiceRequest(professionalID int64, q url.Values, loc *time.Location) (*models.GetProfessionalBookingsRequest, error) {
	req := &models.GetProfessionalBookingsRequest{ProfessionalID: professionalID}

	if s := q.Get("from"); s != "" {
		from, err := parseLocalDate(s, loc)
		if err != nil {
			return nil, err
		}
		req.From = &from
	}

	if s := q.Get("to"); s != "" {
		to, err := parseLocalDate(s, loc)
		if err != nil {
			return nil, err
		}
		to = to.AddDate(0, 0, 1)
		req.To = &to
	}

	if s := q.Get("status"); s != "" {
		req.Status = &s
	}

	if s := q.Get("includeInactive"); s != "" {
		includeInactive, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive value: %w", err)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}

func parseLocalDate(s string, loc *time.Location) (time.Time, error) {
	d, err := handlers.ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc), nil
}
