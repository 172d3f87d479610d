// errors.go — классификация ошибок обращения к backend.
// Каждый сбой превращается в *Error с готовым текстом для пользователя.
package storeclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Ключи i18n для сообщений об ошибках.
const (
	KeyUnreachable = "error.unreachable"
	KeyNotFound    = "error.not_found"
	KeyBadRequest  = "error.bad_request"
	KeyInternal    = "error.internal"
	KeyStatus      = "error.status"
	KeyUnexpected  = "error.unexpected"
	KeyUnknown     = "error.unknown"
)

// Тексты сообщений (английский — язык по умолчанию).
const (
	MessageUnreachable = "Cannot connect to server."
	MessageNotFound    = "Resource not found."
	MessageBadRequest  = "Bad request; check input."
	MessageInternal    = "Internal server error; try again later."
	MessageUnexpected  = "Unexpected response from server."
	MessageUnknown     = "An unknown error occurred."
)

// Error — классифицированная ошибка обращения к backend.
// Error() возвращает только готовый текст, исходная ошибка доступна через Unwrap.
type Error struct {
	// Status — HTTP статус ответа; 0, если ответ не получен
	Status int
	// Message — текст для показа пользователю
	Message string
	// Key — ключ i18n для Message
	Key string
	// Err — исходная ошибка транспорта или декодирования (может быть nil)
	Err error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Args возвращает аргументы для форматирования перевода по Key.
func (e *Error) Args() []any {
	if e.Key == KeyStatus {
		return []any{e.Status}
	}
	return nil
}

// newTransportError — ответ от сервера не получен (status 0).
func newTransportError(cause error) *Error {
	return &Error{Status: 0, Message: MessageUnreachable, Key: KeyUnreachable, Err: cause}
}

// newStatusError классифицирует неуспешный HTTP статус.
func newStatusError(status int, body string) *Error {
	var cause error
	if body != "" {
		cause = fmt.Errorf("backend вернул статус %d: %s", status, body)
	} else {
		cause = fmt.Errorf("backend вернул статус %d", status)
	}

	switch status {
	case http.StatusNotFound:
		return &Error{Status: status, Message: MessageNotFound, Key: KeyNotFound, Err: cause}
	case http.StatusBadRequest:
		return &Error{Status: status, Message: MessageBadRequest, Key: KeyBadRequest, Err: cause}
	case http.StatusInternalServerError:
		return &Error{Status: status, Message: MessageInternal, Key: KeyInternal, Err: cause}
	default:
		return &Error{
			Status:  status,
			Message: fmt.Sprintf("Server error: %d", status),
			Key:     KeyStatus,
			Err:     cause,
		}
	}
}

// newDecodeError — ответ получен, но тело не удалось разобрать.
func newDecodeError(status int, cause error) *Error {
	return &Error{Status: status, Message: MessageUnexpected, Key: KeyUnexpected, Err: cause}
}

// newClientError — запрос не удалось сформировать.
func newClientError(cause error) *Error {
	return &Error{Status: 0, Message: MessageUnknown, Key: KeyUnknown, Err: cause}
}

// Message возвращает текст ошибки для показа пользователю.
// Для ошибок, не прошедших классификацию, возвращается общий текст.
func Message(err error) string {
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr.Message
	}
	return MessageUnknown
}

// Describe возвращает ключ i18n, аргументы и текст по умолчанию для ошибки.
func Describe(err error) (key string, args []any, message string) {
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr.Key, storeErr.Args(), storeErr.Message
	}
	return KeyUnknown, nil, MessageUnknown
}

// StatusOf возвращает HTTP статус классифицированной ошибки (0 — нет ответа).
func StatusOf(err error) int {
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr.Status
	}
	return 0
}
