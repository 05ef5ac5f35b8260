package export

import (
	"fmt"
	"math"
	"strconv"

	"github.com/bigkaa/datacollect/internal/domain/model"
)

// Значения ячеек checkbox.
const (
	CheckboxYes = "Yes"
	CheckboxNo  = "No"
)

// CellValue возвращает текст ячейки для поля f записи r.
// checkbox сворачивается в Yes/No, отсутствующее или null значение даёт пустую строку.
func CellValue(f *model.FieldDefinition, r *model.Record) string {
	v, ok := r.Value(f.Name)
	if f.Type == model.FieldTypeCheckbox {
		if ok && truthy(v) {
			return CheckboxYes
		}
		return CheckboxNo
	}
	if !ok || v == nil {
		return ""
	}
	return formatValue(v)
}

// truthy повторяет правила истинности значений формы:
// false, 0, NaN, пустая строка и null ложны, остальное истинно.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	case float32:
		return x != 0 && !math.IsNaN(float64(x))
	case int:
		return x != 0
	case int64:
		return x != 0
	case int32:
		return x != 0
	}
	return true
}

// formatValue — строковая форма значения: числа без экспоненты и лишних нулей.
func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	}
	return fmt.Sprint(v)
}
