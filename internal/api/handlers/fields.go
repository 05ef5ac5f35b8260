// fields.go — обработчики схемы полей тенанта.
// POST /api/v1/fields, GET /api/v1/fields, PATCH/DELETE /api/v1/fields/{id},
// PUT /api/v1/fields/order.
package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/datacollect/internal/domain/model"
	"github.com/bigkaa/datacollect/internal/service"
)

// createFieldRequest — тело POST /api/v1/fields.
type createFieldRequest struct {
	Name     string   `json:"name" validate:"required,max=200"`
	Type     string   `json:"type" validate:"required,oneof=text number date select checkbox"`
	Required bool     `json:"required"`
	Options  []string `json:"options" validate:"omitempty,max=100,dive,max=200"`
}

// updateFieldRequest — тело PATCH /api/v1/fields/{id}. Отсутствующий член не меняется.
type updateFieldRequest struct {
	Name     *string   `json:"name" validate:"omitempty,max=200"`
	Type     *string   `json:"type" validate:"omitempty,oneof=text number date select checkbox"`
	Required *bool     `json:"required"`
	Options  *[]string `json:"options" validate:"omitempty,max=100,dive,max=200"`
}

// reorderFieldsRequest — тело PUT /api/v1/fields/order.
type reorderFieldsRequest struct {
	IDs []string `json:"ids" validate:"required"`
}

// fieldResponse — определение поля в ответе.
type fieldResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Required  bool      `json:"required"`
	Options   []string  `json:"options"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// fieldListResponse — список полей в порядке схемы.
type fieldListResponse struct {
	Items []fieldResponse `json:"items"`
	Total int             `json:"total"`
}

func toFieldResponse(f *model.FieldDefinition) fieldResponse {
	options := f.Options
	if f.Type == model.FieldTypeSelect && options == nil {
		options = []string{}
	}
	return fieldResponse{
		ID:        f.ID,
		Name:      f.Name,
		Type:      string(f.Type),
		Required:  f.Required,
		Options:   options,
		Order:     f.Order,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func toFieldListResponse(fields []*model.FieldDefinition) fieldListResponse {
	items := make([]fieldResponse, 0, len(fields))
	for _, f := range fields {
		items = append(items, toFieldResponse(f))
	}
	return fieldListResponse{Items: items, Total: len(items)}
}

// AddField — POST /api/v1/fields. Поле добавляется в конец схемы.
func (h *APIHandler) AddField(w http.ResponseWriter, r *http.Request) {
	tenantID := h.tenant(w, r)
	if tenantID == "" {
		return
	}

	var req createFieldRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	f, err := h.fields.Add(r.Context(), tenantID, service.NewField{
		Name:     req.Name,
		Type:     model.FieldType(req.Type),
		Required: req.Required,
		Options:  req.Options,
	})
	if err != nil {
		h.writeServiceError(w, r, err, "Поле не найдено")
		return
	}

	writeJSON(w, http.StatusCreated, toFieldResponse(f))
}

// ListFields — GET /api/v1/fields.
func (h *APIHandler) ListFields(w http.ResponseWriter, r *http.Request) {
	tenantID := h.tenant(w, r)
	if tenantID == "" {
		return
	}

	fields, err := h.fields.List(r.Context(), tenantID)
	if err != nil {
		h.writeServiceError(w, r, err, "Поле не найдено")
		return
	}

	writeJSON(w, http.StatusOK, toFieldListResponse(fields))
}

// UpdateField — PATCH /api/v1/fields/{id}.
func (h *APIHandler) UpdateField(w http.ResponseWriter, r *http.Request) {
	tenantID := h.tenant(w, r)
	if tenantID == "" {
		return
	}

	var req updateFieldRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	patch := model.FieldPatch{
		Name:     req.Name,
		Required: req.Required,
		Options:  req.Options,
	}
	if req.Type != nil {
		t := model.FieldType(*req.Type)
		patch.Type = &t
	}

	f, err := h.fields.Update(r.Context(), tenantID, chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeServiceError(w, r, err, "Поле не найдено")
		return
	}

	writeJSON(w, http.StatusOK, toFieldResponse(f))
}

// RemoveField — DELETE /api/v1/fields/{id}.
func (h *APIHandler) RemoveField(w http.ResponseWriter, r *http.Request) {
	tenantID := h.tenant(w, r)
	if tenantID == "" {
		return
	}

	if err := h.fields.Remove(r.Context(), tenantID, chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err, "Поле не найдено")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReorderFields — PUT /api/v1/fields/order. Тело содержит все id полей тенанта
// в новом порядке.
func (h *APIHandler) ReorderFields(w http.ResponseWriter, r *http.Request) {
	tenantID := h.tenant(w, r)
	if tenantID == "" {
		return
	}

	var req reorderFieldsRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	fields, err := h.fields.Reorder(r.Context(), tenantID, req.IDs)
	if err != nil {
		h.writeServiceError(w, r, err, "Поле не найдено")
		return
	}

	writeJSON(w, http.StatusOK, toFieldListResponse(fields))
}
