package get_schedule

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/slotindex"
)

// generateStarts генерирует все допустимые начала слотов на день
// Слоты идут от начала рабочего дня с шагом гранулярности политики
// и не выходят за его конец вместе с ожидаемой длительностью
func generateStarts(p domain.SchedulePolicy, date time.Time) []time.Time {
	dayStart := p.At(date, time.Time{})

	starts := make([]time.Time, 0)
	for offset := p.OpenAt; offset+p.ExpectedDuration <= p.CloseAt; offset += p.Granularity {
		starts = append(starts, dayStart.Add(offset))
	}
	return starts
}

// markSlots размечает сетку по занятым слотам
//
// Примеры (зазор 60 минут):
// - Бронирование в 10:00 → слот 10:00 "booked"
// - Бронирование в 10:30 при сетке 30 минут → слоты 10:00 и 11:00 "too_close"
// - Слот 09:00 сегодня → "too_late", если бронирование на тот же день запрещено
func markSlots(p domain.SchedulePolicy, professionalID int64, starts []time.Time, commitments []domain.Slot, now time.Time) []Slot {
	result := make([]Slot, 0, len(starts))

	for _, start := range starts {
		slot := Slot{Start: start}

		verdict := slotindex.Evaluate(professionalID, commitments, start, p.MinGap, 0)
		switch {
		case !verdict.IsAvailable():
			slot.Reason = ReasonTooClose
			slot.BookingID = verdict.ConflictingID
			slot.Status = verdict.ConflictingStatus
			if c, ok := startsAt(commitments, start); ok {
				slot.Reason = ReasonBooked
				slot.BookingID = c.BookingID
				slot.Status = c.Status
			}
		case p.ValidateSlot("Schedule", start, now) != nil:
			slot.Reason = ReasonTooLate
		default:
			slot.Free = true
		}

		result = append(result, slot)
	}

	return result
}

func startsAt(commitments []domain.Slot, start time.Time) (domain.Slot, bool) {
	for _, c := range commitments {
		if c.Start.Equal(start) {
			return c, true
		}
	}
	return domain.Slot{}, false
}
