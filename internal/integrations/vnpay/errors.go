package vnpay

import "errors"

var (
	// ErrInvalidSignature возвращается, если подпись vnp_SecureHash не совпадает
	ErrInvalidSignature = errors.New("vnpay: invalid signature")

	// ErrMalformed возвращается при отсутствии или некорректности обязательных параметров
	ErrMalformed = errors.New("vnpay: malformed confirmation")

	// ErrInvalidRequest возвращается при некорректном запросе на создание платежа
	ErrInvalidRequest = errors.New("vnpay: invalid checkout request")
)
