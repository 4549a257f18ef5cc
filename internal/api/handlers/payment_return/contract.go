package payment_return

import (
	"context"
	"net/url"

	consumePayment "github.com/m04kA/SMC-AppointmentService/internal/usecase/consume_payment"
)

type ConsumePaymentUseCase interface {
	Execute(ctx context.Context, query url.Values) (*consumePayment.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
