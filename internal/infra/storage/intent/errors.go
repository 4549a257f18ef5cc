package intent

import "errors"

var (
	// ErrIntentNotFound возвращается, когда платёжное намерение не найдено
	ErrIntentNotFound = errors.New("intent.repository: payment intent not found")

	// ErrStateChanged возвращается, если намерение уже не в ожидаемом состоянии
	ErrStateChanged = errors.New("intent.repository: payment intent state changed")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("intent.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("intent.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("intent.repository: failed to scan row")

	// ErrPayload возвращается при ошибке (де)сериализации сохранённого бронирования
	ErrPayload = errors.New("intent.repository: invalid payload")
)
