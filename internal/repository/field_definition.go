package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/datacollect/internal/domain/model"
)

// FieldRepository — интерфейс CRUD для таблицы field_definitions.
// Все операции ограничены тенантом: чужое поле неотличимо от отсутствующего.
type FieldRepository interface {
	// Create сохраняет новое поле.
	Create(ctx context.Context, f *model.FieldDefinition) error
	// List возвращает поля тенанта по sort_order, при равенстве — в порядке вставки.
	List(ctx context.Context, tenantID string) ([]*model.FieldDefinition, error)
	// GetByID возвращает поле тенанта по UUID.
	GetByID(ctx context.Context, tenantID, id string) (*model.FieldDefinition, error)
	// GetByIDForUpdate — GetByID с блокировкой строки до конца транзакции.
	// Имеет смысл только внутри InTx.
	GetByIDForUpdate(ctx context.Context, tenantID, id string) (*model.FieldDefinition, error)
	// Update сохраняет name, type, required и options поля.
	Update(ctx context.Context, f *model.FieldDefinition) error
	// Delete удаляет поле тенанта.
	Delete(ctx context.Context, tenantID, id string) error
	// ExistsByName проверяет наличие поля с таким именем без учёта регистра.
	ExistsByName(ctx context.Context, tenantID, name string) (bool, error)
	// Count возвращает количество полей тенанта.
	Count(ctx context.Context, tenantID string) (int, error)
	// SetOrder присваивает полям sort_order по их позиции в ids.
	SetOrder(ctx context.Context, tenantID string, ids []string) error
	// LockTenant берёт транзакционную advisory-блокировку схемы тенанта.
	// Имеет смысл только внутри InTx.
	LockTenant(ctx context.Context, tenantID string) error
	// InTx выполняет fn с репозиторием, привязанным к транзакции.
	InTx(ctx context.Context, fn func(repo FieldRepository) error) error
}

// fieldRepo — реализация FieldRepository.
type fieldRepo struct {
	db DBTX
}

// NewFieldRepository создаёт репозиторий схемы полей.
func NewFieldRepository(db DBTX) FieldRepository {
	return &fieldRepo{db: db}
}

const fieldColumns = `id, tenant_id, name, type, required, options, sort_order, created_at, updated_at`

// scanField сканирует строку field_definitions в модель.
func scanField(row pgx.Row) (*model.FieldDefinition, error) {
	f := &model.FieldDefinition{}
	var fieldType string
	err := row.Scan(
		&f.ID, &f.TenantID, &f.Name, &fieldType, &f.Required, &f.Options,
		&f.Order, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	f.Type = model.FieldType(fieldType)
	return f, nil
}

func (r *fieldRepo) Create(ctx context.Context, f *model.FieldDefinition) error {
	query := `
		INSERT INTO field_definitions (id, tenant_id, name, type, required, options, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		f.ID, f.TenantID, f.Name, string(f.Type), f.Required, f.Options, f.Order,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: поле с таким ID уже существует", ErrConflict)
		}
		return fmt.Errorf("ошибка создания поля: %w", err)
	}
	return nil
}

func (r *fieldRepo) List(ctx context.Context, tenantID string) ([]*model.FieldDefinition, error) {
	query := `
		SELECT ` + fieldColumns + `
		FROM field_definitions
		WHERE tenant_id = $1
		ORDER BY sort_order, seq`

	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка полей: %w", err)
	}
	defer rows.Close()

	result := make([]*model.FieldDefinition, 0)
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования поля: %w", err)
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

func (r *fieldRepo) GetByID(ctx context.Context, tenantID, id string) (*model.FieldDefinition, error) {
	return r.getByID(ctx, tenantID, id, false)
}

func (r *fieldRepo) GetByIDForUpdate(ctx context.Context, tenantID, id string) (*model.FieldDefinition, error) {
	return r.getByID(ctx, tenantID, id, true)
}

func (r *fieldRepo) getByID(ctx context.Context, tenantID, id string, forUpdate bool) (*model.FieldDefinition, error) {
	query := `
		SELECT ` + fieldColumns + `
		FROM field_definitions
		WHERE id = $1 AND tenant_id = $2`
	if forUpdate {
		query += `
		FOR UPDATE`
	}

	f, err := scanField(r.db.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения поля: %w", err)
	}
	return f, nil
}

func (r *fieldRepo) Update(ctx context.Context, f *model.FieldDefinition) error {
	query := `
		UPDATE field_definitions
		SET name = $3, type = $4, required = $5, options = $6, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		f.ID, f.TenantID, f.Name, string(f.Type), f.Required, f.Options,
	).Scan(&f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления поля: %w", err)
	}
	return nil
}

func (r *fieldRepo) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM field_definitions WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("ошибка удаления поля: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *fieldRepo) ExistsByName(ctx context.Context, tenantID, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM field_definitions
			WHERE tenant_id = $1 AND lower(btrim(name)) = lower(btrim($2))
		)`, tenantID, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки имени поля: %w", err)
	}
	return exists, nil
}

func (r *fieldRepo) Count(ctx context.Context, tenantID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM field_definitions WHERE tenant_id = $1`, tenantID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта полей: %w", err)
	}
	return count, nil
}

// SetOrder обновляет sort_order одним запросом: позиция в ids (с нуля) становится порядком.
func (r *fieldRepo) SetOrder(ctx context.Context, tenantID string, ids []string) error {
	query := `
		UPDATE field_definitions AS f
		SET sort_order = x.ord - 1, updated_at = NOW()
		FROM unnest($2::text[]) WITH ORDINALITY AS x(id, ord)
		WHERE f.tenant_id = $1 AND f.id = x.id::uuid`

	tag, err := r.db.Exec(ctx, query, tenantID, ids)
	if err != nil {
		return fmt.Errorf("ошибка изменения порядка полей: %w", err)
	}
	if int(tag.RowsAffected()) != len(ids) {
		return ErrNotFound
	}
	return nil
}

func (r *fieldRepo) LockTenant(ctx context.Context, tenantID string) error {
	if _, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, tenantID); err != nil {
		return fmt.Errorf("ошибка блокировки схемы тенанта: %w", err)
	}
	return nil
}

func (r *fieldRepo) InTx(ctx context.Context, fn func(repo FieldRepository) error) error {
	return NewTxRunner(r.db).RunInTx(ctx, func(tx pgx.Tx) error {
		return fn(&fieldRepo{db: tx})
	})
}
