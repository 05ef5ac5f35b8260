// reports.go — дневные счётчики записей.
// GET /api/v1/reports/daily, GET /api/v1/reports/summary.
package handlers

import (
	"net/http"

	"github.com/bigkaa/datacollect/internal/domain/model"
)

// dailyCountResponse — число записей за день.
type dailyCountResponse struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// dailyCountsResponse — счётчики за всё время по возрастанию даты.
type dailyCountsResponse struct {
	Items []dailyCountResponse `json:"items"`
	Total int                  `json:"total"`
}

// summaryResponse — сводка по дневным счётчикам.
type summaryResponse struct {
	Total       int                 `json:"total"`
	Average     float64             `json:"average"`
	Days        int                 `json:"days"`
	BusiestDay  *dailyCountResponse `json:"busiest_day"`
	QuietestDay *dailyCountResponse `json:"quietest_day"`
}

func toDailyCountResponse(c *model.DailyCount) *dailyCountResponse {
	if c == nil {
		return nil
	}
	return &dailyCountResponse{Date: c.Date, Count: c.Count}
}

// DailyCounts — GET /api/v1/reports/daily.
func (h *APIHandler) DailyCounts(w http.ResponseWriter, r *http.Request) {
	tenantID := h.tenant(w, r)
	if tenantID == "" {
		return
	}

	counts, err := h.reports.DailyCounts(r.Context(), tenantID)
	if err != nil {
		h.writeServiceError(w, r, err, "Отчёт не найден")
		return
	}

	items := make([]dailyCountResponse, 0, len(counts))
	total := 0
	for _, c := range counts {
		items = append(items, dailyCountResponse{Date: c.Date, Count: c.Count})
		total += c.Count
	}
	writeJSON(w, http.StatusOK, dailyCountsResponse{Items: items, Total: total})
}

// ReportSummary — GET /api/v1/reports/summary.
func (h *APIHandler) ReportSummary(w http.ResponseWriter, r *http.Request) {
	tenantID := h.tenant(w, r)
	if tenantID == "" {
		return
	}

	s, err := h.reports.Summary(r.Context(), tenantID)
	if err != nil {
		h.writeServiceError(w, r, err, "Отчёт не найден")
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		Total:       s.Total,
		Average:     s.Average,
		Days:        s.Days,
		BusiestDay:  toDailyCountResponse(s.BusiestDay),
		QuietestDay: toDailyCountResponse(s.QuietestDay),
	})
}
