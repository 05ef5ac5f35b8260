package model

import "time"

// DateLayout — формат календарной даты в API, именах файлов и отчётах.
const DateLayout = "2006-01-02"

// ExportHistoryEntry — запись журнала выполненных экспортов.
// Таблица export_history только пополняется.
type ExportHistoryEntry struct {
	// ID — UUID записи
	ID string
	// TenantID — владелец экспорта
	TenantID string
	// PeriodStart — первый день периода
	PeriodStart time.Time
	// PeriodEnd — последний день периода; nil для экспорта за один день
	PeriodEnd *time.Time
	// Filename — имя файла, отданное клиенту
	Filename string
	// EntriesCount — число записей в документе
	EntriesCount int
	// CreatedAt — время экспорта
	CreatedAt time.Time
}
