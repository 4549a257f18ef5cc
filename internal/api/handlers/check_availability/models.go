package check_availability

import (
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	checkAvailability "github.com/m04kA/SMC-AppointmentService/internal/usecase/check_availability"
)

// CandidateResponse вердикт по одному специалисту
type CandidateResponse struct {
	ProfessionalID       int64  `json:"professionalId"`
	Verdict              string `json:"verdict"`
	ConflictingBookingID *int64 `json:"conflictingBookingId,omitempty"`
	Load                 int    `json:"load"`
}

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	Start     time.Time           `json:"start"`
	Available []int64             `json:"available"`
	Suggested *int64              `json:"suggested,omitempty"`
	Results   []CandidateResponse `json:"results"`
}

// ToUseCaseRequest разбирает query параметры
// Query params: date, time, candidates (опционально), serviceType (опционально), minGapMinutes (опционально)
func ToUseCaseRequest(q url.Values) (*checkAvailability.Request, error) {
	date, err := handlers.ParseDate(q.Get("date"))
	if err != nil {
		return nil, err
	}

	candidates, err := handlers.ParseIDList(q.Get("candidates"))
	if err != nil {
		return nil, err
	}

	req := &checkAvailability.Request{
		Candidates:  candidates,
		Date:        date,
		Time:        q.Get("time"),
		ServiceType: q.Get("serviceType"),
	}

	if s := q.Get("minGapMinutes"); s != "" {
		minutes, err := strconv.Atoi(s)
		if err != nil {
			return nil, err
		}
		gap := time.Duration(minutes) * time.Minute
		req.MinGap = &gap
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *checkAvailability.Response) *AvailabilityResponse {
	out := &AvailabilityResponse{
		Start:     resp.Start,
		Available: resp.Available,
		Results:   make([]CandidateResponse, 0, len(resp.Results)),
	}
	if out.Available == nil {
		out.Available = []int64{}
	}
	if id, ok := resp.Suggest(); ok {
		out.Suggested = &id
	}

	for _, c := range resp.Results {
		item := CandidateResponse{
			ProfessionalID: c.ProfessionalID,
			Verdict:        string(c.Verdict),
			Load:           c.Load,
		}
		if c.ConflictingID != 0 {
			id := c.ConflictingID
			item.ConflictingBookingID = &id
		}
		out.Results = append(out.Results, item)
	}
	return out
}
