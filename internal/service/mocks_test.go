package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/bigkaa/datacollect/internal/domain/model"
	"github.com/bigkaa/datacollect/internal/repository"
)

// testLogger — логгер, не засоряющий вывод тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- mockFieldRepo ---

// mockFieldRepo — мок FieldRepository. InTx вызывает fn с самим моком.
type mockFieldRepo struct {
	createFn       func(ctx context.Context, f *model.FieldDefinition) error
	listFn         func(ctx context.Context, tenantID string) ([]*model.FieldDefinition, error)
	getByIDFn      func(ctx context.Context, tenantID, id string) (*model.FieldDefinition, error)
	updateFn       func(ctx context.Context, f *model.FieldDefinition) error
	deleteFn       func(ctx context.Context, tenantID, id string) error
	existsByNameFn func(ctx context.Context, tenantID, name string) (bool, error)
	countFn        func(ctx context.Context, tenantID string) (int, error)
	setOrderFn     func(ctx context.Context, tenantID string, ids []string) error
	lockCalls      int
	inTx           bool
	// lockedReads — чтения с блокировкой строки внутри InTx
	lockedReads int
}

func (m *mockFieldRepo) Create(ctx context.Context, f *model.FieldDefinition) error {
	if m.createFn != nil {
		return m.createFn(ctx, f)
	}
	return nil
}

func (m *mockFieldRepo) List(ctx context.Context, tenantID string) ([]*model.FieldDefinition, error) {
	if m.listFn != nil {
		return m.listFn(ctx, tenantID)
	}
	return []*model.FieldDefinition{}, nil
}

func (m *mockFieldRepo) GetByID(ctx context.Context, tenantID, id string) (*model.FieldDefinition, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, tenantID, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockFieldRepo) GetByIDForUpdate(ctx context.Context, tenantID, id string) (*model.FieldDefinition, error) {
	if m.inTx {
		m.lockedReads++
	}
	return m.GetByID(ctx, tenantID, id)
}

func (m *mockFieldRepo) Update(ctx context.Context, f *model.FieldDefinition) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, f)
	}
	return nil
}

func (m *mockFieldRepo) Delete(ctx context.Context, tenantID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, tenantID, id)
	}
	return nil
}

func (m *mockFieldRepo) ExistsByName(ctx context.Context, tenantID, name string) (bool, error) {
	if m.existsByNameFn != nil {
		return m.existsByNameFn(ctx, tenantID, name)
	}
	return false, nil
}

func (m *mockFieldRepo) Count(ctx context.Context, tenantID string) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, tenantID)
	}
	return 0, nil
}

func (m *mockFieldRepo) SetOrder(ctx context.Context, tenantID string, ids []string) error {
	if m.setOrderFn != nil {
		return m.setOrderFn(ctx, tenantID, ids)
	}
	return nil
}

func (m *mockFieldRepo) LockTenant(_ context.Context, _ string) error {
	m.lockCalls++
	return nil
}

func (m *mockFieldRepo) InTx(_ context.Context, fn func(repo repository.FieldRepository) error) error {
	m.inTx = true
	defer func() { m.inTx = false }()
	return fn(m)
}

// --- mockRecordRepo ---

// mockRecordRepo — мок RecordRepository.
type mockRecordRepo struct {
	insertFn     func(ctx context.Context, r *model.Record) error
	listFn       func(ctx context.Context, filter repository.RecordFilter) ([]*model.Record, error)
	countByDayFn func(ctx context.Context, tenantID, tz string) ([]model.DailyCount, error)
}

func (m *mockRecordRepo) Insert(ctx context.Context, r *model.Record) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, r)
	}
	return nil
}

func (m *mockRecordRepo) List(ctx context.Context, filter repository.RecordFilter) ([]*model.Record, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return []*model.Record{}, nil
}

func (m *mockRecordRepo) CountByDay(ctx context.Context, tenantID, tz string) ([]model.DailyCount, error) {
	if m.countByDayFn != nil {
		return m.countByDayFn(ctx, tenantID, tz)
	}
	return []model.DailyCount{}, nil
}

// --- mockHistoryRepo ---

// mockHistoryRepo — мок ExportHistoryRepository.
type mockHistoryRepo struct {
	appendFn     func(ctx context.Context, e *model.ExportHistoryEntry) error
	listRecentFn func(ctx context.Context, tenantID string, limit int) ([]*model.ExportHistoryEntry, error)
	appended     []*model.ExportHistoryEntry
}

func (m *mockHistoryRepo) Append(ctx context.Context, e *model.ExportHistoryEntry) error {
	if m.appendFn != nil {
		if err := m.appendFn(ctx, e); err != nil {
			return err
		}
	}
	m.appended = append(m.appended, e)
	return nil
}

func (m *mockHistoryRepo) ListRecent(ctx context.Context, tenantID string, limit int) ([]*model.ExportHistoryEntry, error) {
	if m.listRecentFn != nil {
		return m.listRecentFn(ctx, tenantID, limit)
	}
	return []*model.ExportHistoryEntry{}, nil
}
