package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrSlotNotAvailable возвращается при нарушении уникальности слота специалиста
	ErrSlotNotAvailable = errors.New("booking.repository: slot not available")

	// ErrAlreadyInProgress возвращается, если у специалиста уже есть бронирование в работе
	ErrAlreadyInProgress = errors.New("booking.repository: professional already has a booking in progress")

	// ErrNotInTransaction возвращается, если блокировка запрошена вне транзакции
	ErrNotInTransaction = errors.New("booking.repository: operation requires a transaction")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
