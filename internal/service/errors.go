package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrNotFound запрошенная сущность не существует
var ErrNotFound = errors.New("not found")

// ValidationError ошибка входных данных. Сообщение возвращается клиенту как есть
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func notFound(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}

// IsValidation проверяет что ошибка является ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct превращает ошибки validator в ValidationError
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field '%s' is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field '%s' must be a valid email", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field '%s' must be one of: %s", fe.Field(), fe.Param()))
		case "gte", "min":
			msgs = append(msgs, fmt.Sprintf("field '%s' must be at least %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("field '%s' is invalid", fe.Field()))
		}
	}

	return &ValidationError{Message: strings.Join(msgs, ", ")}
}
