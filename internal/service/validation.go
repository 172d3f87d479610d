// validation.go — проверка полей формы студента до обращения к backend.
// Правила задаются тегами validate в model.StudentDraft:
//   - name: обязательно, 2–100 символов, только латинские буквы и пробелы
//   - email: обязательно, корректный адрес, до 100 символов
package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bigkaa/goartstore/student-ui/internal/domain/model"
)

// ruleLettersSpaces — имя правила «только буквы и пробелы».
const ruleLettersSpaces = "letters_spaces"

var lettersSpacesRe = regexp.MustCompile(`^[a-zA-Z\s]+$`)

// Validator проверяет черновик студента.
type Validator struct {
	v *validator.Validate
}

// NewValidator создаёт валидатор с зарегистрированными правилами.
// Имена полей в ошибках берутся из json-тегов (name, email).
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Регистрация не может завершиться ошибкой: имя правила непустое.
	_ = v.RegisterValidation(ruleLettersSpaces, func(fl validator.FieldLevel) bool {
		return lettersSpacesRe.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Validate проверяет черновик. Возвращает nil, если ошибок нет.
// Для каждого поля сообщается первое нарушенное правило.
func (val *Validator) Validate(draft model.StudentDraft) FieldErrors {
	err := val.v.Struct(draft)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{{Field: "form", Rule: "invalid"}}
	}

	out := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field: fe.Field(),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}

// FieldError — нарушение одного правила поля.
type FieldError struct {
	// Field — имя поля (name, email)
	Field string
	// Rule — имя правила (required, min, max, email, letters_spaces)
	Rule string
	// Param — параметр правила (например, "2" для min)
	Param string
}

// Key возвращает ключ i18n сообщения: validation.<field>.<rule>.
func (fe FieldError) Key() string {
	return "validation." + fe.Field + "." + fe.Rule
}

// Message возвращает текст сообщения по умолчанию.
func (fe FieldError) Message() string {
	if msg, ok := fieldMessages[fe.Key()]; ok {
		return msg
	}
	return "Invalid value"
}

// fieldMessages — английские тексты ошибок полей.
var fieldMessages = map[string]string{
	"validation.name.required":       "Name is required",
	"validation.name.min":            "Name must be at least 2 characters long",
	"validation.name.max":            "Name must be at most 100 characters long",
	"validation.name.letters_spaces": "Name can only contain letters and spaces",
	"validation.email.required":      "Email is required",
	"validation.email.email":         "Please enter a valid email address",
	"validation.email.max":           "Email must be at most 100 characters long",
}

// FieldErrors — ошибки валидации формы.
// errors.Is(fieldErrs, ErrValidation) == true.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, e.Field+": "+e.Rule)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, ", ")
}

func (fe FieldErrors) Unwrap() error { return ErrValidation }

// For возвращает ошибку поля или nil.
func (fe FieldErrors) For(field string) *FieldError {
	for i := range fe {
		if fe[i].Field == field {
			return &fe[i]
		}
	}
	return nil
}
