// exports.go — выгрузка xlsx и журнал экспортов.
// GET /api/v1/exports/{date}, GET /api/v1/exports/{start}/{end},
// GET /api/v1/export-history.
package handlers

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	apierrors "github.com/bigkaa/datacollect/internal/api/errors"
	"github.com/bigkaa/datacollect/internal/domain/model"
	"github.com/bigkaa/datacollect/internal/service"
)

// xlsxContentType — MIME-тип документа Office Open XML.
const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Заголовки ответа выгрузки.
const (
	headerEntriesCount = "X-Entries-Count"
	headerChecksum     = "X-Checksum-SHA256"
)

// exportHistoryEntryResponse — запись журнала в ответе.
type exportHistoryEntryResponse struct {
	ID           string    `json:"id"`
	PeriodStart  string    `json:"period_start"`
	PeriodEnd    *string   `json:"period_end"`
	Filename     string    `json:"filename"`
	EntriesCount int       `json:"entries_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// exportHistoryResponse — последние экспорты, новые первыми.
type exportHistoryResponse struct {
	Items []exportHistoryEntryResponse `json:"items"`
	Total int                          `json:"total"`
	Limit int                          `json:"limit"`
}

func toExportHistoryEntryResponse(e *model.ExportHistoryEntry) exportHistoryEntryResponse {
	resp := exportHistoryEntryResponse{
		ID:           e.ID,
		PeriodStart:  e.PeriodStart.Format(model.DateLayout),
		Filename:     e.Filename,
		EntriesCount: e.EntriesCount,
		CreatedAt:    e.CreatedAt,
	}
	if e.PeriodEnd != nil {
		end := e.PeriodEnd.Format(model.DateLayout)
		resp.PeriodEnd = &end
	}
	return resp
}

// ExportDay — GET /api/v1/exports/{date}. Плоский документ за один день.
func (h *APIHandler) ExportDay(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, chi.URLParam(r, "date"), nil)
}

// ExportRange — GET /api/v1/exports/{start}/{end}. Документ с группировкой по дням,
// обе даты включительно.
func (h *APIHandler) ExportRange(w http.ResponseWriter, r *http.Request) {
	end := chi.URLParam(r, "end")
	h.export(w, r, chi.URLParam(r, "start"), &end)
}

// export формирует документ и отдаёт его клиенту.
// Временный файл удаляется на любом пути выхода, включая обрыв соединения.
func (h *APIHandler) export(w http.ResponseWriter, r *http.Request, start string, end *string) {
	tenantID := h.tenant(w, r)
	if tenantID == "" {
		return
	}

	res, err := h.exports.Export(r.Context(), tenantID, start, end)
	if err != nil {
		h.writeServiceError(w, r, err, "Документ не найден")
		return
	}
	defer h.exports.Release(res)

	f, err := h.exports.Open(res)
	if err != nil {
		h.writeServiceError(w, r, err, "Документ не найден")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	w.Header().Set("Content-Length", strconv.FormatInt(res.Size, 10))
	w.Header().Set(headerEntriesCount, strconv.Itoa(res.Entry.EntriesCount))
	w.Header().Set(headerChecksum, res.Checksum)
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, f); err != nil {
		h.logger.Warn("Ошибка отдачи документа клиенту",
			slog.String("tenant_id", tenantID),
			slog.String("filename", res.Filename),
			slog.String("error", err.Error()),
		)
	}
}

// ExportHistory — GET /api/v1/export-history?limit=N.
func (h *APIHandler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	tenantID := h.tenant(w, r)
	if tenantID == "" {
		return
	}

	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		apierrors.ValidationError(w, "Некорректный параметр limit")
		return
	}
	if limit != nil && *limit < 1 {
		apierrors.ValidationError(w, "Параметр limit должен быть положительным")
		return
	}

	effective := service.DefaultHistoryLimit
	if limit != nil {
		effective = min(*limit, service.MaxHistoryLimit)
	}

	entries, err := h.exports.History(r.Context(), tenantID, effective)
	if err != nil {
		h.writeServiceError(w, r, err, "Журнал не найден")
		return
	}

	items := make([]exportHistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, toExportHistoryEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, exportHistoryResponse{
		Items: items,
		Total: len(items),
		Limit: effective,
	})
}
