// exports.go — экспорт записей в xlsx и журнал экспортов.
//
// Порядок: разбор дат → схема полей → записи окна → документ во временный файл →
// запись в журнал → отдача файла клиенту → удаление файла (Release).
// Ошибка до записи в журнал не оставляет ни файла, ни записи журнала.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/datacollect/internal/domain/model"
	"github.com/bigkaa/datacollect/internal/domain/period"
	"github.com/bigkaa/datacollect/internal/export"
	"github.com/bigkaa/datacollect/internal/repository"
	"github.com/bigkaa/datacollect/internal/storage/filestore"
)

// Размер страницы журнала экспортов.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 50
)

// ExportResult — готовый к отдаче документ.
type ExportResult struct {
	// Filename — имя файла для клиента (data_<start>.xlsx или data_<start>_to_<end>.xlsx)
	Filename string
	// StoragePath — уникальное имя временного файла
	StoragePath string
	// Size — размер документа в байтах
	Size int64
	// Checksum — SHA-256 документа
	Checksum string
	// Entry — запись журнала экспорта
	Entry *model.ExportHistoryEntry
}

// ExportService — сервис экспорта.
type ExportService struct {
	fields  repository.FieldRepository
	records repository.RecordRepository
	history repository.ExportHistoryRepository
	files   *filestore.FileStore
	loc     *time.Location
	logger  *slog.Logger
}

// NewExportService создаёт сервис экспорта.
func NewExportService(
	fields repository.FieldRepository,
	records repository.RecordRepository,
	history repository.ExportHistoryRepository,
	files *filestore.FileStore,
	loc *time.Location,
	logger *slog.Logger,
) *ExportService {
	return &ExportService{
		fields:  fields,
		records: records,
		history: history,
		files:   files,
		loc:     loc,
		logger:  logger.With(slog.String("component", "export_service")),
	}
}

// exportRequest — разобранный период экспорта.
type exportRequest struct {
	start, end time.Time
	ranged     bool
	window     period.Window
	filename   string
}

// parseRequest разбирает даты периода. end == nil — экспорт за один день.
func (s *ExportService) parseRequest(start string, end *string) (*exportRequest, error) {
	startDay, err := period.ParseDay(start, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if end == nil {
		return &exportRequest{
			start:    startDay,
			end:      startDay,
			window:   period.Day(startDay),
			filename: fmt.Sprintf("data_%s.xlsx", startDay.Format(model.DateLayout)),
		}, nil
	}

	endDay, err := period.ParseDay(*end, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	w, err := period.Range(startDay, endDay)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return &exportRequest{
		start:  startDay,
		end:    endDay,
		ranged: true,
		window: w,
		filename: fmt.Sprintf("data_%s_to_%s.xlsx",
			startDay.Format(model.DateLayout), endDay.Format(model.DateLayout)),
	}, nil
}

// calendarDate переносит календарную дату в полночь UTC для колонки типа date.
func calendarDate(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

// Export формирует документ за день (end == nil) или за период [start, end] включительно.
// Вызывающий код обязан вызвать Release после отдачи файла.
func (s *ExportService) Export(ctx context.Context, tenantID, start string, end *string) (*ExportResult, error) {
	req, err := s.parseRequest(start, end)
	if err != nil {
		return nil, err
	}

	layout := layoutFlat
	if req.ranged {
		layout = layoutGrouped
	}

	fields, err := s.fields.List(ctx, tenantID)
	if err != nil {
		exportsTotal.WithLabelValues(layout, resultError).Inc()
		return nil, operationFailed("получение схемы полей", err)
	}

	records, err := s.records.List(ctx, repository.RecordFilter{
		TenantID: tenantID,
		From:     req.window.From,
		To:       req.window.To,
	})
	if err != nil {
		exportsTotal.WithLabelValues(layout, resultError).Inc()
		return nil, operationFailed("получение записей", err)
	}

	write := func(w io.Writer) error {
		return export.WriteFlat(w, fields, records)
	}
	if req.ranged {
		groups := export.GroupByDay(records, s.loc)
		write = func(w io.Writer) error {
			return export.WriteGrouped(w, fields, groups)
		}
	}

	saved, err := s.files.Save(req.filename, tenantID, write)
	if err != nil {
		exportsTotal.WithLabelValues(layout, resultError).Inc()
		return nil, operationFailed("формирование документа", err)
	}

	entry := &model.ExportHistoryEntry{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		PeriodStart:  calendarDate(req.start),
		Filename:     req.filename,
		EntriesCount: len(records),
	}
	if req.ranged {
		endDate := calendarDate(req.end)
		entry.PeriodEnd = &endDate
	}

	if err := s.history.Append(ctx, entry); err != nil {
		s.remove(saved.StoragePath)
		exportsTotal.WithLabelValues(layout, resultError).Inc()
		return nil, operationFailed("запись в журнал экспортов", err)
	}

	exportsTotal.WithLabelValues(layout, resultOK).Inc()
	exportEntries.Observe(float64(len(records)))

	s.logger.Info("Экспорт сформирован",
		slog.String("tenant_id", tenantID),
		slog.String("filename", req.filename),
		slog.String("layout", layout),
		slog.Int("entries", len(records)),
		slog.Int("fields", len(fields)),
		slog.Int64("size", saved.Size),
	)

	return &ExportResult{
		Filename:    req.filename,
		StoragePath: saved.StoragePath,
		Size:        saved.Size,
		Checksum:    saved.Checksum,
		Entry:       entry,
	}, nil
}

// Open открывает сформированный документ для отдачи.
func (s *ExportService) Open(res *ExportResult) (*os.File, error) {
	f, err := s.files.Open(res.StoragePath)
	if err != nil {
		return nil, operationFailed("открытие документа", err)
	}
	return f, nil
}

// Release удаляет временный файл документа. Ошибка удаления только логируется.
func (s *ExportService) Release(res *ExportResult) {
	if res == nil {
		return
	}
	s.remove(res.StoragePath)
}

func (s *ExportService) remove(storagePath string) {
	if err := s.files.Delete(storagePath); err != nil {
		s.logger.Warn("Не удалось удалить временный файл экспорта",
			slog.String("storage_path", storagePath),
			slog.String("error", err.Error()),
		)
	}
}

// History возвращает последние экспорты тенанта, новые первыми.
// limit <= 0 заменяется значением по умолчанию, больше максимума — обрезается.
func (s *ExportService) History(ctx context.Context, tenantID string, limit int) ([]*model.ExportHistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)

	entries, err := s.history.ListRecent(ctx, tenantID, limit)
	if err != nil {
		return nil, operationFailed("получение журнала экспортов", err)
	}
	return entries, nil
}
