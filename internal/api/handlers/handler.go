// handler.go — основной обработчик API datacollect.
// Объединяет health и бизнес-обработчики, разбирает запросы и переводит
// ошибки сервисного слоя в HTTP-ответы.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "github.com/bigkaa/datacollect/internal/api/errors"
	"github.com/bigkaa/datacollect/internal/api/middleware"
	"github.com/bigkaa/datacollect/internal/domain/model"
	"github.com/bigkaa/datacollect/internal/service"
)

// maxBodySize — ограничение размера JSON-тела запроса.
const maxBodySize = 1 << 20

// FieldService — операции реестра полей.
type FieldService interface {
	Add(ctx context.Context, tenantID string, in service.NewField) (*model.FieldDefinition, error)
	List(ctx context.Context, tenantID string) ([]*model.FieldDefinition, error)
	Update(ctx context.Context, tenantID, id string, patch model.FieldPatch) (*model.FieldDefinition, error)
	Remove(ctx context.Context, tenantID, id string) error
	Reorder(ctx context.Context, tenantID string, ids []string) ([]*model.FieldDefinition, error)
}

// RecordService — приём и чтение записей.
type RecordService interface {
	Submit(ctx context.Context, tenantID string, data map[string]any) (*model.Record, error)
	Today(ctx context.Context, tenantID string) ([]*model.Record, error)
}

// ExportService — экспорт и журнал экспортов.
type ExportService interface {
	Export(ctx context.Context, tenantID, start string, end *string) (*service.ExportResult, error)
	Open(res *service.ExportResult) (*os.File, error)
	Release(res *service.ExportResult)
	History(ctx context.Context, tenantID string, limit int) ([]*model.ExportHistoryEntry, error)
}

// ReportService — дневные счётчики.
type ReportService interface {
	DailyCounts(ctx context.Context, tenantID string) ([]model.DailyCount, error)
	Summary(ctx context.Context, tenantID string) (*model.ReportSummary, error)
}

// APIHandler — основной обработчик API datacollect.
type APIHandler struct {
	health   *HealthHandler
	fields   FieldService
	records  RecordService
	exports  ExportService
	reports  ReportService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	fields FieldService,
	records RecordService,
	exports ExportService,
	reports ReportService,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:   health,
		fields:   fields,
		records:  records,
		exports:  exports,
		reports:  reports,
		validate: newValidator(),
		logger:   logger.With(slog.String("component", "api_handler")),
	}
}

// --- Health endpoints (делегируются в HealthHandler) ---

// HealthLive — liveness probe.
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe.
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики.
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// newValidator создаёт validator, называющий поля по json-тегам.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// tenant возвращает тенанта запроса. Пустая строка означает,
// что ответ 401 уже записан.
func (h *APIHandler) tenant(w http.ResponseWriter, r *http.Request) string {
	tenantID := middleware.TenantFromContext(r.Context())
	if tenantID == "" {
		apierrors.Unauthorized(w, "Требуется аутентификация")
	}
	return tenantID
}

// decodeBody разбирает JSON-тело и проверяет его по тегам validate.
// При ошибке записывает ответ 400 и возвращает false.
func (h *APIHandler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON в теле запроса")
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			apierrors.ValidationErrorDetails(w, "Некорректные параметры запроса", requestViolations(verrs))
			return false
		}
		apierrors.ValidationError(w, err.Error())
		return false
	}
	return true
}

// violationDTO — нарушение в деталях ответа 400.
type violationDTO struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// requestViolations переводит ошибки validator в детали ответа.
func requestViolations(verrs validator.ValidationErrors) []violationDTO {
	out := make([]violationDTO, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, violationDTO{
			Field:   fe.Field(),
			Message: "не выполнено правило " + fe.Tag(),
		})
	}
	return out
}

// writeServiceError переводит ошибку сервисного слоя в HTTP-ответ.
// Причина внутренних ошибок только логируется.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	var verr *service.ViolationsError
	switch {
	case errors.As(err, &verr):
		details := make([]violationDTO, 0, len(verr.Violations))
		for _, v := range verr.Violations {
			details = append(details, violationDTO{Field: v.Field, Message: v.Message})
		}
		apierrors.ValidationErrorDetails(w, "Запись не прошла проверку", details)
	case errors.Is(err, service.ErrInvalidInput):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, notFoundMsg)
	default:
		h.logger.Error("Ошибка обработки запроса",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
	}
}
