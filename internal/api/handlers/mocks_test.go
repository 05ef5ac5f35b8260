package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/datacollect/internal/api/middleware"
	"github.com/bigkaa/datacollect/internal/domain/model"
	"github.com/bigkaa/datacollect/internal/service"
)

const testTenant = "tenant-a"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Мок FieldService ---

type mockFieldService struct {
	addFn     func(ctx context.Context, tenantID string, in service.NewField) (*model.FieldDefinition, error)
	listFn    func(ctx context.Context, tenantID string) ([]*model.FieldDefinition, error)
	updateFn  func(ctx context.Context, tenantID, id string, patch model.FieldPatch) (*model.FieldDefinition, error)
	removeFn  func(ctx context.Context, tenantID, id string) error
	reorderFn func(ctx context.Context, tenantID string, ids []string) ([]*model.FieldDefinition, error)
}

func (m *mockFieldService) Add(ctx context.Context, tenantID string, in service.NewField) (*model.FieldDefinition, error) {
	return m.addFn(ctx, tenantID, in)
}

func (m *mockFieldService) List(ctx context.Context, tenantID string) ([]*model.FieldDefinition, error) {
	return m.listFn(ctx, tenantID)
}

func (m *mockFieldService) Update(ctx context.Context, tenantID, id string, patch model.FieldPatch) (*model.FieldDefinition, error) {
	return m.updateFn(ctx, tenantID, id, patch)
}

func (m *mockFieldService) Remove(ctx context.Context, tenantID, id string) error {
	return m.removeFn(ctx, tenantID, id)
}

func (m *mockFieldService) Reorder(ctx context.Context, tenantID string, ids []string) ([]*model.FieldDefinition, error) {
	return m.reorderFn(ctx, tenantID, ids)
}

// --- Мок RecordService ---

type mockRecordService struct {
	submitFn func(ctx context.Context, tenantID string, data map[string]any) (*model.Record, error)
	todayFn  func(ctx context.Context, tenantID string) ([]*model.Record, error)
}

func (m *mockRecordService) Submit(ctx context.Context, tenantID string, data map[string]any) (*model.Record, error) {
	return m.submitFn(ctx, tenantID, data)
}

func (m *mockRecordService) Today(ctx context.Context, tenantID string) ([]*model.Record, error) {
	return m.todayFn(ctx, tenantID)
}

// --- Мок ExportService ---

type mockExportService struct {
	exportFn  func(ctx context.Context, tenantID, start string, end *string) (*service.ExportResult, error)
	openFn    func(res *service.ExportResult) (*os.File, error)
	historyFn func(ctx context.Context, tenantID string, limit int) ([]*model.ExportHistoryEntry, error)
	released  []*service.ExportResult
}

func (m *mockExportService) Export(ctx context.Context, tenantID, start string, end *string) (*service.ExportResult, error) {
	return m.exportFn(ctx, tenantID, start, end)
}

func (m *mockExportService) Open(res *service.ExportResult) (*os.File, error) {
	return m.openFn(res)
}

func (m *mockExportService) Release(res *service.ExportResult) {
	m.released = append(m.released, res)
}

func (m *mockExportService) History(ctx context.Context, tenantID string, limit int) ([]*model.ExportHistoryEntry, error) {
	return m.historyFn(ctx, tenantID, limit)
}

// --- Мок ReportService ---

type mockReportService struct {
	dailyFn   func(ctx context.Context, tenantID string) ([]model.DailyCount, error)
	summaryFn func(ctx context.Context, tenantID string) (*model.ReportSummary, error)
}

func (m *mockReportService) DailyCounts(ctx context.Context, tenantID string) ([]model.DailyCount, error) {
	return m.dailyFn(ctx, tenantID)
}

func (m *mockReportService) Summary(ctx context.Context, tenantID string) (*model.ReportSummary, error) {
	return m.summaryFn(ctx, tenantID)
}

// --- Мок ReadinessChecker ---

type stubChecker struct {
	status, message string
}

func (c stubChecker) CheckReady() (string, string) {
	return c.status, c.message
}

// fakeAuth помещает в контекст claims тестового тенанта.
func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := middleware.WithClaims(r.Context(), &middleware.AuthClaims{Subject: testTenant})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// testDeps — моки сервисов для одного теста. nil-члены заменяются пустыми моками.
type testDeps struct {
	fields  *mockFieldService
	records *mockRecordService
	exports *mockExportService
	reports *mockReportService
	health  *HealthHandler
}

// newTestRouter собирает router с обработчиком над моками.
// auth == nil — маршруты /api/v1 без аутентификации.
func newTestRouter(d testDeps, auth func(http.Handler) http.Handler) http.Handler {
	if d.fields == nil {
		d.fields = &mockFieldService{}
	}
	if d.records == nil {
		d.records = &mockRecordService{}
	}
	if d.exports == nil {
		d.exports = &mockExportService{}
	}
	if d.reports == nil {
		d.reports = &mockReportService{}
	}
	if d.health == nil {
		d.health = NewHealthHandler(stubChecker{status: "ok"}, stubChecker{status: "ok"})
	}

	h := NewAPIHandler(d.health, d.fields, d.records, d.exports, d.reports, testLogger())
	router := chi.NewRouter()
	h.Mount(router, auth)
	return router
}
