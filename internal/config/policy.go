package config

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// PolicyValues параметры политики расписания. Незаданные поля наследуются
type PolicyValues struct {
	MinGapMinutes              *int    `toml:"min_gap_minutes"`
	ExpectedDurationMinutes    *int    `toml:"expected_duration_minutes"`
	MinServiceDurationMinutes  *int    `toml:"min_service_duration_minutes"`
	MaxServiceDurationMinutes  *int    `toml:"max_service_duration_minutes"`
	GranularityMinutes         *int    `toml:"granularity_minutes"`
	OpenAt                     *string `toml:"open_at"`  // HH:MM
	CloseAt                    *string `toml:"close_at"` // HH:MM
	MinRescheduleNoticeMinutes *int    `toml:"min_reschedule_notice_minutes"`
	MaxStartDelayMinutes       *int    `toml:"max_start_delay_minutes"`
	AllowSameDay               *bool   `toml:"allow_same_day"`
	Timezone                   *string `toml:"timezone"`
}

// PolicyConfig политика по умолчанию и переопределения по типу услуги
type PolicyConfig struct {
	PolicyValues
	Overrides map[string]PolicyValues `toml:"overrides"`
}

// PolicySet собирает domain.PolicySet из конфигурации
func (c PolicyConfig) PolicySet() (*domain.PolicySet, error) {
	def, err := c.PolicyValues.apply(domain.DefaultPolicy())
	if err != nil {
		return nil, fmt.Errorf("policy: %w", err)
	}

	set := domain.NewPolicySet(def)
	for name, values := range c.Overrides {
		p, err := values.apply(def)
		if err != nil {
			return nil, fmt.Errorf("policy override %q: %w", name, err)
		}
		set.Overrides[name] = p
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

func (v PolicyValues) apply(base domain.SchedulePolicy) (domain.SchedulePolicy, error) {
	p := base

	minutes := func(dst *time.Duration, src *int) {
		if src != nil {
			*dst = time.Duration(*src) * time.Minute
		}
	}
	minutes(&p.MinGap, v.MinGapMinutes)
	minutes(&p.ExpectedDuration, v.ExpectedDurationMinutes)
	minutes(&p.MinServiceDuration, v.MinServiceDurationMinutes)
	minutes(&p.MaxServiceDuration, v.MaxServiceDurationMinutes)
	minutes(&p.Granularity, v.GranularityMinutes)
	minutes(&p.MinRescheduleNotice, v.MinRescheduleNoticeMinutes)
	minutes(&p.MaxStartDelay, v.MaxStartDelayMinutes)

	if v.OpenAt != nil {
		d, err := parseClock(*v.OpenAt)
		if err != nil {
			return p, fmt.Errorf("open_at: %w", err)
		}
		p.OpenAt = d
	}
	if v.CloseAt != nil {
		d, err := parseClock(*v.CloseAt)
		if err != nil {
			return p, fmt.Errorf("close_at: %w", err)
		}
		p.CloseAt = d
	}
	if v.AllowSameDay != nil {
		p.AllowSameDay = *v.AllowSameDay
	}
	if v.Timezone != nil {
		loc, err := time.LoadLocation(*v.Timezone)
		if err != nil {
			return p, fmt.Errorf("timezone: %w", err)
		}
		p.Location = loc
	}

	return p, nil
}

// parseClock HH:MM -> смещение от полуночи; "24:00" допустимо как конец дня
func parseClock(s string) (time.Duration, error) {
	if s == "24:00" {
		return 24 * time.Hour, nil
	}
	t, err := time.Parse(domain.TimeFormat, s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
