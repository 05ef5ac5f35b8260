// records.go — приём записей и выборка записей за текущие сутки.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/datacollect/internal/domain/model"
	"github.com/bigkaa/datacollect/internal/domain/period"
	"github.com/bigkaa/datacollect/internal/domain/validation"
	"github.com/bigkaa/datacollect/internal/repository"
)

// RecordService — сервис записей данных.
type RecordService struct {
	fields  repository.FieldRepository
	records repository.RecordRepository
	loc     *time.Location
	now     func() time.Time
	logger  *slog.Logger
}

// NewRecordService создаёт сервис записей.
// loc — часовой пояс, в котором считаются календарные сутки.
func NewRecordService(
	fields repository.FieldRepository,
	records repository.RecordRepository,
	loc *time.Location,
	logger *slog.Logger,
) *RecordService {
	return &RecordService{
		fields:  fields,
		records: records,
		loc:     loc,
		now:     time.Now,
		logger:  logger.With(slog.String("component", "record_service")),
	}
}

// Submit проверяет данные по текущей схеме тенанта и сохраняет запись.
// Время создания выставляет сервер.
func (s *RecordService) Submit(ctx context.Context, tenantID string, data map[string]any) (*model.Record, error) {
	if data == nil {
		data = map[string]any{}
	}

	if violations := validation.CheckScalars(data); len(violations) > 0 {
		recordsSubmittedTotal.WithLabelValues(resultInvalid).Inc()
		return nil, &ViolationsError{Violations: violations}
	}

	fields, err := s.fields.List(ctx, tenantID)
	if err != nil {
		recordsSubmittedTotal.WithLabelValues(resultError).Inc()
		return nil, operationFailed("получение схемы полей", err)
	}

	if violations := validation.Validate(fields, data); len(violations) > 0 {
		recordsSubmittedTotal.WithLabelValues(resultInvalid).Inc()
		return nil, &ViolationsError{Violations: violations}
	}

	// Точность timestamptz — микросекунды: ответ совпадает с сохранённым значением
	rec := &model.Record{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Data:      data,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.records.Insert(ctx, rec); err != nil {
		recordsSubmittedTotal.WithLabelValues(resultError).Inc()
		return nil, operationFailed("сохранение записи", err)
	}
	recordsSubmittedTotal.WithLabelValues(resultOK).Inc()

	s.logger.Debug("Запись сохранена",
		slog.String("tenant_id", tenantID),
		slog.String("record_id", rec.ID),
		slog.Int("keys", len(data)),
	)

	return rec, nil
}

// Today возвращает записи тенанта за текущие сутки, новые первыми.
func (s *RecordService) Today(ctx context.Context, tenantID string) ([]*model.Record, error) {
	w := period.Today(s.now(), s.loc)

	records, err := s.records.List(ctx, repository.RecordFilter{
		TenantID:   tenantID,
		From:       w.From,
		To:         w.To,
		Descending: true,
	})
	if err != nil {
		return nil, operationFailed("получение записей за сутки", err)
	}
	return records, nil
}
