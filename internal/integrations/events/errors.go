package events

import "errors"

var (
	// ErrUnavailable возвращается, если брокер недоступен
	ErrUnavailable = errors.New("events: broker unavailable")

	// ErrPublish возвращается при ошибке публикации события
	ErrPublish = errors.New("events: failed to publish event")
)
