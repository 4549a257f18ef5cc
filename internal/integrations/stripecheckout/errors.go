package stripecheckout

import "errors"

var (
	// ErrUnavailable возвращается при ошибке обращения к Stripe API
	ErrUnavailable = errors.New("stripe checkout: api unavailable")

	// ErrMalformed возвращается при некорректных параметрах возврата
	ErrMalformed = errors.New("stripe checkout: malformed confirmation")

	// ErrSessionMismatch возвращается, если сессия принадлежит другому намерению
	ErrSessionMismatch = errors.New("stripe checkout: session does not belong to token")
)
