package pricing

import "errors"

var (
	// ErrUnknownService возвращается, когда сервис цен не знает такой тип услуги
	ErrUnknownService = errors.New("pricing client: unknown service type")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("pricing client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("pricing client: invalid response")
)
