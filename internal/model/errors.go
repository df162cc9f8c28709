package model

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig базовая ошибка для всех ошибок валидации конфигурации
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError описывает конкретное поле, не прошедшее валидацию
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

func invalid(field string, value any, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}
