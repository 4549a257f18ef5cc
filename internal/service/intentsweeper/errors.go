package intentsweeper

import "errors"

var (
	// ErrSchedule возвращается при некорректном расписании
	ErrSchedule = errors.New("intentsweeper: invalid schedule")
)
