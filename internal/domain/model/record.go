package model

import "time"

// Record — одна запись данных тенанта.
// Data не привязана к схеме на уровне хранилища: ключи могут ссылаться
// на удалённые поля, а новых полей может не быть вовсе.
type Record struct {
	// ID — UUID записи
	ID string
	// TenantID — владелец записи
	TenantID string
	// Data — имя поля → значение (string, float64, bool или nil)
	Data map[string]any
	// CreatedAt — серверное время создания
	CreatedAt time.Time
}

// Value возвращает значение поля и признак наличия ключа.
func (r *Record) Value(name string) (any, bool) {
	if r.Data == nil {
		return nil, false
	}
	v, ok := r.Data[name]
	return v, ok
}
