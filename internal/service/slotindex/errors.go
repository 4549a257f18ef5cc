package slotindex

import "errors"

var (
	// ErrInternal возвращается при ошибке чтения занятых слотов
	ErrInternal = errors.New("slotindex: internal error")
)
