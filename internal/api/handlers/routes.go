package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Mount регистрирует маршруты сервиса на router.
// Health и метрики публичны; auth применяется ко всем маршрутам /api/v1.
func (h *APIHandler) Mount(router chi.Router, auth func(http.Handler) http.Handler) {
	router.Get("/health/live", h.HealthLive)
	router.Get("/health/ready", h.HealthReady)
	router.Get("/metrics", h.GetMetrics)

	router.Route("/api/v1", func(r chi.Router) {
		if auth != nil {
			r.Use(auth)
		}

		r.Post("/fields", h.AddField)
		r.Get("/fields", h.ListFields)
		r.Put("/fields/order", h.ReorderFields)
		r.Patch("/fields/{id}", h.UpdateField)
		r.Delete("/fields/{id}", h.RemoveField)

		r.Post("/records", h.SubmitRecord)
		r.Get("/records/today", h.TodayRecords)

		r.Get("/exports/{date}", h.ExportDay)
		r.Get("/exports/{start}/{end}", h.ExportRange)
		r.Get("/export-history", h.ExportHistory)

		r.Get("/reports/daily", h.DailyCounts)
		r.Get("/reports/summary", h.ReportSummary)
	})
}
