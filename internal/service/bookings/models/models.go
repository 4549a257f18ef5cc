package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// RescheduleRequest запрос на перенос бронирования
type RescheduleRequest struct {
	Date time.Time // Новая дата (без времени)
	Time string    // Новое время начала "HH:MM"
}

// CompleteRequest запрос на завершение бронирования.
// RealStart и RealEnd передаются вместе, если время зафиксировано вне сервиса.
type CompleteRequest struct {
	RealStart *time.Time
	RealEnd   *time.Time
	Outcome   *string
}

// OutOfBand сообщает, что вызывающая сторона передала оба момента времени
func (r *CompleteRequest) OutOfBand() bool {
	return r.RealStart != nil && r.RealEnd != nil
}

// CancelRequest запрос на отмену бронирования
type CancelRequest struct {
	Reason *string
}

// EvaluateRequest запрос на оценку завершённого бронирования
type EvaluateRequest struct {
	Rating  string
	Comment *string
}

// GetSubjectBookingsRequest запрос на получение бронирований клиента
type GetSubjectBookingsRequest struct {
	SubjectID int64
	Status    *string
}

// GetProfessionalBookingsRequest запрос на получение бронирований специалиста
type GetProfessionalBookingsRequest struct {
	ProfessionalID  int64
	From            *time.Time // Начало периода включительно (опционально)
	To              *time.Time // Конец периода не включительно (опционально)
	Status          *string    // Фильтр по статусу (опционально)
	IncludeInactive bool       // Включить отменённые бронирования
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetProfessionalBookingsRequest) ToDomainFilter() (domain.BookingsFilter, error) {
	filter := domain.BookingsFilter{
		ProfessionalID:  &r.ProfessionalID,
		From:            r.From,
		To:              r.To,
		IncludeInactive: r.IncludeInactive,
	}

	// Конвертируем статус если указан
	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID             int64  `json:"id"`
	SubjectID      int64  `json:"subjectId"`
	ProfessionalID int64  `json:"professionalId"`
	ServiceType    string `json:"serviceType,omitempty"`
	Date           string `json:"date"`      // "2025-10-15"
	StartTime      string `json:"startTime"` // "10:00"
	Status         string `json:"status"`
	Rescheduled    bool   `json:"rescheduled"`

	ExpectedStart time.Time  `json:"expectedStart"`
	ExpectedEnd   time.Time  `json:"expectedEnd"`
	RealStart     *time.Time `json:"realStart,omitempty"`
	RealEnd       *time.Time `json:"realEnd,omitempty"`

	Note    *string `json:"note,omitempty"`
	Outcome *string `json:"outcome,omitempty"`
	Rating  *string `json:"rating,omitempty"`
	Comment *string `json:"comment,omitempty"`

	PaymentToken *string `json:"paymentToken,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO; дата и время - в часовом поясе loc
func FromDomainBooking(b *domain.Booking, loc *time.Location) *BookingResponse {
	if b == nil {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	local := b.ExpectedStart.In(loc)
	resp := &BookingResponse{
		ID:                 b.ID,
		SubjectID:          b.SubjectID,
		ProfessionalID:     b.ProfessionalID,
		ServiceType:        b.ServiceType,
		Date:               local.Format(domain.DateFormat),
		StartTime:          local.Format(domain.TimeFormat),
		Status:             string(b.Status),
		Rescheduled:        b.Rescheduled,
		ExpectedStart:      b.ExpectedStart,
		ExpectedEnd:        b.ExpectedEnd,
		RealStart:          b.RealStart,
		RealEnd:            b.RealEnd,
		Note:               b.Note,
		Outcome:            b.Outcome,
		Comment:            b.Comment,
		PaymentToken:       b.PaymentToken,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	if b.Rating != nil {
		rating := string(*b.Rating)
		resp.Rating = &rating
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking, loc *time.Location) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}
	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, *FromDomainBooking(b, loc))
	}
	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s, ok := domain.ParseBookingStatus(status)
	if !ok {
		return "", ErrInvalidStatus
	}
	return s, nil
}
