package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bigkaa/datacollect/internal/domain/model"
)

// RecordRepository — хранилище записей данных.
// Данные сохраняются как JSONB без сверки со схемой полей.
type RecordRepository interface {
	// Insert сохраняет запись с уже выставленными ID и CreatedAt.
	Insert(ctx context.Context, r *model.Record) error
	// List возвращает записи тенанта в окне [From, To).
	List(ctx context.Context, filter RecordFilter) ([]*model.Record, error)
	// CountByDay возвращает количество записей по дням (в часовом поясе tz) за всё время,
	// по возрастанию даты.
	CountByDay(ctx context.Context, tenantID, tz string) ([]model.DailyCount, error)
}

// RecordFilter — параметры выборки записей.
type RecordFilter struct {
	TenantID string
	// From — начало окна, включительно
	From time.Time
	// To — конец окна, не включительно
	To time.Time
	// Descending — сортировка по created_at по убыванию
	Descending bool
}

// recordRepo — реализация RecordRepository.
type recordRepo struct {
	db DBTX
}

// NewRecordRepository создаёт репозиторий записей.
func NewRecordRepository(db DBTX) RecordRepository {
	return &recordRepo{db: db}
}

func (r *recordRepo) Insert(ctx context.Context, rec *model.Record) error {
	data := rec.Data
	if data == nil {
		data = map[string]any{}
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO records (id, tenant_id, data, created_at) VALUES ($1, $2, $3, $4)`,
		rec.ID, rec.TenantID, data, rec.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: запись с таким ID уже существует", ErrConflict)
		}
		return fmt.Errorf("ошибка сохранения записи: %w", err)
	}
	return nil
}

// buildRecordQuery строит SELECT по фильтру.
func buildRecordQuery(filter RecordFilter) (string, []any) {
	direction := "ASC"
	if filter.Descending {
		direction = "DESC"
	}

	conditions := []string{"tenant_id = $1", "created_at >= $2", "created_at < $3"}
	query := fmt.Sprintf(`
		SELECT id, tenant_id, data, created_at
		FROM records
		WHERE %s
		ORDER BY created_at %s, id %s`, strings.Join(conditions, " AND "), direction, direction)

	return query, []any{filter.TenantID, filter.From, filter.To}
}

func (r *recordRepo) List(ctx context.Context, filter RecordFilter) ([]*model.Record, error) {
	query, args := buildRecordQuery(filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения записей: %w", err)
	}
	defer rows.Close()

	result := make([]*model.Record, 0)
	for rows.Next() {
		rec := &model.Record{}
		if err := rows.Scan(&rec.ID, &rec.TenantID, &rec.Data, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

func (r *recordRepo) CountByDay(ctx context.Context, tenantID, tz string) ([]model.DailyCount, error) {
	query := `
		SELECT to_char(created_at AT TIME ZONE $2, 'YYYY-MM-DD') AS day, COUNT(*)
		FROM records
		WHERE tenant_id = $1
		GROUP BY day
		ORDER BY day`

	rows, err := r.db.Query(ctx, query, tenantID, tz)
	if err != nil {
		return nil, fmt.Errorf("ошибка агрегации записей по дням: %w", err)
	}
	defer rows.Close()

	result := make([]model.DailyCount, 0)
	for rows.Next() {
		var dc model.DailyCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, fmt.Errorf("ошибка сканирования счётчика: %w", err)
		}
		result = append(result, dc)
	}
	return result, rows.Err()
}
