package lock

import "errors"

var (
	// ErrLocked возвращается, если ключ уже удерживается другой операцией
	ErrLocked = errors.New("lock: key is held by another operation")

	// ErrBackend возвращается при недоступности хранилища блокировок
	ErrBackend = errors.New("lock: backend unavailable")
)
