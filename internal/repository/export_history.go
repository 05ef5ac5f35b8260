package repository

import (
	"context"
	"fmt"

	"github.com/bigkaa/datacollect/internal/domain/model"
)

// ExportHistoryRepository — журнал экспортов. Только добавление и чтение.
type ExportHistoryRepository interface {
	// Append добавляет запись журнала.
	Append(ctx context.Context, e *model.ExportHistoryEntry) error
	// ListRecent возвращает последние limit записей тенанта, новые первыми.
	ListRecent(ctx context.Context, tenantID string, limit int) ([]*model.ExportHistoryEntry, error)
}

// exportHistoryRepo — реализация ExportHistoryRepository.
type exportHistoryRepo struct {
	db DBTX
}

// NewExportHistoryRepository создаёт репозиторий журнала экспортов.
func NewExportHistoryRepository(db DBTX) ExportHistoryRepository {
	return &exportHistoryRepo{db: db}
}

func (r *exportHistoryRepo) Append(ctx context.Context, e *model.ExportHistoryEntry) error {
	query := `
		INSERT INTO export_history (id, tenant_id, period_start, period_end, filename, entries_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		e.ID, e.TenantID, e.PeriodStart, e.PeriodEnd, e.Filename, e.EntriesCount,
	).Scan(&e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: запись журнала с таким ID уже существует", ErrConflict)
		}
		return fmt.Errorf("ошибка записи в журнал экспортов: %w", err)
	}
	return nil
}

func (r *exportHistoryRepo) ListRecent(ctx context.Context, tenantID string, limit int) ([]*model.ExportHistoryEntry, error) {
	query := `
		SELECT id, tenant_id, period_start, period_end, filename, entries_count, created_at
		FROM export_history
		WHERE tenant_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения журнала экспортов: %w", err)
	}
	defer rows.Close()

	result := make([]*model.ExportHistoryEntry, 0)
	for rows.Next() {
		e := &model.ExportHistoryEntry{}
		if err := rows.Scan(
			&e.ID, &e.TenantID, &e.PeriodStart, &e.PeriodEnd,
			&e.Filename, &e.EntriesCount, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования журнала экспортов: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
