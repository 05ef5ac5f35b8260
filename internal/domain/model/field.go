package model

import "time"

// FieldType — тип поля пользовательской формы.
type FieldType string

// Допустимые типы полей.
const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
)

// Valid проверяет, что тип входит в перечень допустимых.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeDate, FieldTypeSelect, FieldTypeCheckbox:
		return true
	}
	return false
}

// FieldDefinition — описание поля формы тенанта.
// Хранится в таблице field_definitions.
type FieldDefinition struct {
	// ID — UUID поля
	ID string
	// TenantID — владелец (sub из JWT)
	TenantID string
	// Name — имя поля; уникально в пределах тенанта без учёта регистра
	Name string
	// Type — тип поля
	Type FieldType
	// Required — обязательность заполнения
	Required bool
	// Options — варианты выбора; не nil только для select
	Options []string
	// Order — позиция в форме и в колонках экспорта
	Order int
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}

// NormalizeOptions приводит Options к инварианту «есть только у select».
func (f *FieldDefinition) NormalizeOptions() {
	if f.Type != FieldTypeSelect {
		f.Options = nil
		return
	}
	if f.Options == nil {
		f.Options = []string{}
	}
}

// FieldPatch — частичное обновление поля. nil — член не меняется.
type FieldPatch struct {
	Name     *string
	Type     *FieldType
	Required *bool
	Options  *[]string
}

// Empty сообщает, что обновлять нечего.
func (p FieldPatch) Empty() bool {
	return p.Name == nil && p.Type == nil && p.Required == nil && p.Options == nil
}
