// records.go — приём записей и записи за текущие сутки.
// POST /api/v1/records, GET /api/v1/records/today.
package handlers

import (
	"net/http"
	"time"

	"github.com/bigkaa/datacollect/internal/domain/model"
)

// submitRecordRequest — тело POST /api/v1/records.
// Время создания клиента игнорируется: его выставляет сервер.
type submitRecordRequest struct {
	Data map[string]any `json:"data" validate:"required"`
}

// recordResponse — запись в ответе.
type recordResponse struct {
	ID        string         `json:"id"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
}

// recordListResponse — записи за сутки, новые первыми.
type recordListResponse struct {
	Items []recordResponse `json:"items"`
	Total int              `json:"total"`
}

func toRecordResponse(rec *model.Record) recordResponse {
	data := rec.Data
	if data == nil {
		data = map[string]any{}
	}
	return recordResponse{ID: rec.ID, Data: data, CreatedAt: rec.CreatedAt}
}

// SubmitRecord — POST /api/v1/records. Данные проверяются по текущей схеме тенанта.
func (h *APIHandler) SubmitRecord(w http.ResponseWriter, r *http.Request) {
	tenantID := h.tenant(w, r)
	if tenantID == "" {
		return
	}

	var req submitRecordRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	rec, err := h.records.Submit(r.Context(), tenantID, req.Data)
	if err != nil {
		h.writeServiceError(w, r, err, "Запись не найдена")
		return
	}

	writeJSON(w, http.StatusCreated, toRecordResponse(rec))
}

// TodayRecords — GET /api/v1/records/today.
func (h *APIHandler) TodayRecords(w http.ResponseWriter, r *http.Request) {
	tenantID := h.tenant(w, r)
	if tenantID == "" {
		return
	}

	records, err := h.records.Today(r.Context(), tenantID)
	if err != nil {
		h.writeServiceError(w, r, err, "Записи не найдены")
		return
	}

	items := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		items = append(items, toRecordResponse(rec))
	}
	writeJSON(w, http.StatusOK, recordListResponse{Items: items, Total: len(items)})
}
