package check_availability

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модель запроса проверки доступности
type Request struct {
	Candidates  []int64        // ID специалистов; пусто - все специалисты из справочника
	Date        time.Time      // Дата (без времени)
	Time        string         // Время начала "HH:MM"
	ServiceType string         // Тип услуги, определяет политику
	MinGap      *time.Duration // Переопределение минимального зазора
}

// Response модель ответа проверки доступности
type Response struct {
	Start     time.Time                      // Запрошенное время в часовом поясе политики
	Available []int64                        // Свободные специалисты в порядке запроса
	Results   []domain.CandidateAvailability // Вердикт по каждому кандидату
}

// Suggest возвращает свободного специалиста с наименьшей загрузкой на дату;
// при равенстве выбирается меньший ID
func (r *Response) Suggest() (int64, bool) {
	var (
		best  domain.CandidateAvailability
		found bool
	)
	for _, c := range r.Results {
		if !c.IsAvailable() {
			continue
		}
		if !found || c.Load < best.Load || (c.Load == best.Load && c.ProfessionalID < best.ProfessionalID) {
			best = c
			found = true
		}
	}
	return best.ProfessionalID, found
}
