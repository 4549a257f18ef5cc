package get_schedule

import "errors"

var (
	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("get_schedule: internal error")
)
