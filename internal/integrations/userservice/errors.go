package userservice

import "errors"

var (
	// ErrUnauthorized токен не принят сервисом пользователей
	ErrUnauthorized = errors.New("userservice: invalid or expired token")

	// ErrVehicleNotFound автомобиль не найден
	ErrVehicleNotFound = errors.New("userservice: vehicle not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("userservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("userservice client: invalid response")
)
