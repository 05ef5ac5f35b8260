// Пакет validation — проверка записи по текущей схеме полей тенанта
// перед сохранением.
//
// Правила:
//   - обязательное поле нарушено, если ключа нет, значение null или пустая строка;
//   - 0 и false — заполненные значения;
//   - значение select не сверяется со списком вариантов (проверка намеренно мягкая);
//   - формат чисел и дат не проверяется.
package validation

import (
	"fmt"
	"sort"

	"github.com/bigkaa/datacollect/internal/domain/model"
)

// Violation — нарушение, относящееся к одному полю.
type Violation struct {
	// Field — имя поля (или ключа данных)
	Field string
	// Message — описание нарушения
	Message string
}

// String возвращает нарушение в виде «поле: сообщение».
func (v Violation) String() string {
	return v.Field + ": " + v.Message
}

// Validate проверяет данные по определениям полей.
// Порядок нарушений соответствует порядку fields.
func Validate(fields []*model.FieldDefinition, data map[string]any) []Violation {
	var violations []Violation
	for _, f := range fields {
		if !f.Required {
			continue
		}
		if !IsPresent(data, f.Name) {
			violations = append(violations, Violation{
				Field:   f.Name,
				Message: fmt.Sprintf("поле %q обязательно", f.Name),
			})
		}
	}
	return violations
}

// IsPresent сообщает, заполнено ли значение ключа.
func IsPresent(data map[string]any, name string) bool {
	v, ok := data[name]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString && s == "" {
		return false
	}
	return true
}

// CheckScalars отклоняет значения, не являющиеся string, number, boolean или null.
// Ключи перебираются в отсортированном порядке, чтобы ответ был стабильным.
func CheckScalars(data map[string]any) []Violation {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var violations []Violation
	for _, k := range keys {
		switch data[k].(type) {
		case nil, string, bool, float64, float32, int, int32, int64:
		default:
			violations = append(violations, Violation{
				Field:   k,
				Message: "допустимы только строка, число, логическое значение или null",
			})
		}
	}
	return violations
}
