package intentsweeper

import (
	"context"
	"time"
)

// IntentRepository интерфейс хранилища платёжных намерений
type IntentRepository interface {
	DiscardExpired(ctx context.Context, now time.Time) (int64, error)
}

// Metrics счётчик просроченных намерений
type Metrics interface {
	ObserveIntentsExpired(n int)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
