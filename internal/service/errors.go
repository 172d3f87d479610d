// errors.go — ошибки сервисного слоя.
package service

import "errors"

var (
	// ErrValidation — ошибка валидации полей формы.
	ErrValidation = errors.New("ошибка валидации")
	// ErrDialogClosed — диалог уже закрыт, операция невозможна.
	ErrDialogClosed = errors.New("диалог закрыт")
	// ErrSubmitting — предыдущая отправка формы ещё не завершена.
	ErrSubmitting = errors.New("форма уже отправляется")
	// ErrMissingID — у редактируемой записи нет идентификатора.
	ErrMissingID = errors.New("у записи нет идентификатора")
	// ErrStaleLoad — результат загрузки устарел: после неё начата более новая.
	ErrStaleLoad = errors.New("результат загрузки устарел")
)
