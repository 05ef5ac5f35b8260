// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bigkaa/datacollect/internal/domain/validation"
)

var (
	// ErrInvalidInput — некорректные входные данные.
	ErrInvalidInput = errors.New("некорректные входные данные")
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrOperationFailed — сбой хранилища или файловой системы.
	ErrOperationFailed = errors.New("операция не выполнена")
)

// ViolationsError — запись не прошла проверку.
// errors.Is(err, ErrInvalidInput) для неё истинно.
type ViolationsError struct {
	Violations []validation.Violation
}

func (e *ViolationsError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(parts, "; "))
}

func (e *ViolationsError) Unwrap() error {
	return ErrInvalidInput
}

// invalidInput оборачивает описание ошибки в ErrInvalidInput.
func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// operationFailed оборачивает ошибку хранилища в ErrOperationFailed, сохраняя причину.
func operationFailed(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrOperationFailed, op, err)
}
