package catalogservice

import "errors"

var (
	// ErrServiceNotFound услуга не найдена в каталоге
	ErrServiceNotFound = errors.New("catalogservice: service not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("catalogservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("catalogservice client: invalid response")
)
