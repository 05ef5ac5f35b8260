// fields.go — реестр схемы полей тенанта.
// Добавление, список, частичное обновление, удаление и изменение порядка полей.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/bigkaa/datacollect/internal/domain/model"
	"github.com/bigkaa/datacollect/internal/repository"
)

// NewField — параметры добавляемого поля.
type NewField struct {
	Name     string
	Type     model.FieldType
	Required bool
	// Options — варианты выбора, учитываются только для select
	Options []string
}

// FieldService — сервис схемы полей.
type FieldService struct {
	repo   repository.FieldRepository
	logger *slog.Logger
}

// NewFieldService создаёт сервис схемы полей.
func NewFieldService(repo repository.FieldRepository, logger *slog.Logger) *FieldService {
	return &FieldService{
		repo:   repo,
		logger: logger.With(slog.String("component", "field_service")),
	}
}

// Add добавляет поле в конец схемы тенанта.
// Имя должно быть уникальным без учёта регистра; проверка и вставка
// выполняются в одной транзакции под блокировкой схемы тенанта.
func (s *FieldService) Add(ctx context.Context, tenantID string, in NewField) (*model.FieldDefinition, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalidInput("имя поля не может быть пустым")
	}
	if !in.Type.Valid() {
		return nil, invalidInput("недопустимый тип поля %q", in.Type)
	}

	f := &model.FieldDefinition{
		ID:       uuid.New().String(),
		TenantID: tenantID,
		Name:     name,
		Type:     in.Type,
		Required: in.Required,
		Options:  in.Options,
	}
	f.NormalizeOptions()

	err := s.repo.InTx(ctx, func(repo repository.FieldRepository) error {
		if err := repo.LockTenant(ctx, tenantID); err != nil {
			return err
		}

		exists, err := repo.ExistsByName(ctx, tenantID, name)
		if err != nil {
			return err
		}
		if exists {
			return invalidInput("поле с именем %q уже существует", name)
		}

		count, err := repo.Count(ctx, tenantID)
		if err != nil {
			return err
		}
		f.Order = count

		return repo.Create(ctx, f)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return nil, err
		}
		return nil, operationFailed("добавление поля", err)
	}

	s.logger.Info("Поле добавлено",
		slog.String("tenant_id", tenantID),
		slog.String("field_id", f.ID),
		slog.String("name", f.Name),
		slog.String("type", string(f.Type)),
		slog.Int("order", f.Order),
	)

	return f, nil
}

// List возвращает поля тенанта в порядке Order.
func (s *FieldService) List(ctx context.Context, tenantID string) ([]*model.FieldDefinition, error) {
	fields, err := s.repo.List(ctx, tenantID)
	if err != nil {
		return nil, operationFailed("получение списка полей", err)
	}
	return fields, nil
}

// Update применяет к полю только переданные члены patch.
// Уникальность имени повторно не проверяется. Смена типа с select очищает варианты.
// Чтение и запись идут в одной транзакции под блокировкой строки поля,
// параллельные PATCH применяются последовательно.
func (s *FieldService) Update(ctx context.Context, tenantID, id string, patch model.FieldPatch) (*model.FieldDefinition, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var f *model.FieldDefinition
	err := s.repo.InTx(ctx, func(repo repository.FieldRepository) error {
		var err error
		f, err = repo.GetByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if patch.Empty() {
			return nil
		}
		if err := applyPatch(f, patch); err != nil {
			return err
		}
		return repo.Update(ctx, f)
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, ErrInvalidInput):
			return nil, err
		}
		return nil, operationFailed("обновление поля", err)
	}
	if patch.Empty() {
		return f, nil
	}

	s.logger.Info("Поле обновлено",
		slog.String("tenant_id", tenantID),
		slog.String("field_id", f.ID),
	)

	return f, nil
}

// applyPatch переносит в f переданные члены patch.
func applyPatch(f *model.FieldDefinition, patch model.FieldPatch) error {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return invalidInput("имя поля не может быть пустым")
		}
		f.Name = name
	}
	if patch.Type != nil {
		if !patch.Type.Valid() {
			return invalidInput("недопустимый тип поля %q", *patch.Type)
		}
		f.Type = *patch.Type
	}
	if patch.Required != nil {
		f.Required = *patch.Required
	}
	if patch.Options != nil {
		f.Options = *patch.Options
	}
	f.NormalizeOptions()
	return nil
}

// Remove удаляет поле. Сохранённые записи не меняются.
func (s *FieldService) Remove(ctx context.Context, tenantID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return operationFailed("удаление поля", err)
	}

	s.logger.Info("Поле удалено",
		slog.String("tenant_id", tenantID),
		slog.String("field_id", id),
	)

	return nil
}

// Reorder сохраняет новый порядок полей: Order = позиция в ids.
// ids должен содержать каждое поле тенанта ровно один раз.
func (s *FieldService) Reorder(ctx context.Context, tenantID string, ids []string) ([]*model.FieldDefinition, error) {
	seen := make(map[string]struct{}, len(ids))
	normalized := make([]string, 0, len(ids))
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, invalidInput("некорректный идентификатор поля %q", id)
		}
		key := parsed.String()
		if _, dup := seen[key]; dup {
			return nil, invalidInput("поле %s указано дважды", key)
		}
		seen[key] = struct{}{}
		normalized = append(normalized, key)
	}

	var result []*model.FieldDefinition
	err := s.repo.InTx(ctx, func(repo repository.FieldRepository) error {
		if err := repo.LockTenant(ctx, tenantID); err != nil {
			return err
		}

		current, err := repo.List(ctx, tenantID)
		if err != nil {
			return err
		}
		if len(current) != len(normalized) {
			return invalidInput("ожидается %d идентификаторов полей, получено %d", len(current), len(normalized))
		}
		for _, f := range current {
			if _, ok := seen[f.ID]; !ok {
				return invalidInput("не указано поле %s", f.ID)
			}
		}

		if err := repo.SetOrder(ctx, tenantID, normalized); err != nil {
			return err
		}

		result, err = repo.List(ctx, tenantID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return nil, err
		}
		return nil, operationFailed("изменение порядка полей", err)
	}

	s.logger.Info("Порядок полей изменён",
		slog.String("tenant_id", tenantID),
		slog.Int("fields", len(result)),
	)

	return result, nil
}
