package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/bigkaa/datacollect/internal/domain/model"
)

func TestDailyCounts(t *testing.T) {
	reports := &mockReportService{
		dailyFn: func(context.Context, string) ([]model.DailyCount, error) {
			return []model.DailyCount{{Date: "2024-01-01", Count: 2}, {Date: "2024-01-03", Count: 5}}, nil
		},
	}
	router := newTestRouter(testDeps{reports: reports}, fakeAuth)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/reports/daily", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидается 200", rec.Code)
	}

	var resp dailyCountsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("ошибка декодирования: %v", err)
	}
	if len(resp.Items) != 2 || resp.Items[1].Date != "2024-01-03" || resp.Total != 7 {
		t.Errorf("ответ = %+v", resp)
	}
}

func TestReportSummary(t *testing.T) {
	reports := &mockReportService{
		summaryFn: func(context.Context, string) (*model.ReportSummary, error) {
			return &model.ReportSummary{
				Total: 7, Average: 3.5, Days: 2,
				BusiestDay:  &model.DailyCount{Date: "2024-01-03", Count: 5},
				QuietestDay: &model.DailyCount{Date: "2024-01-01", Count: 2},
			}, nil
		},
	}
	router := newTestRouter(testDeps{reports: reports}, fakeAuth)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/reports/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидается 200", rec.Code)
	}

	var resp summaryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("ошибка декодирования: %v", err)
	}
	if resp.Average != 3.5 || resp.BusiestDay == nil || resp.BusiestDay.Date != "2024-01-03" {
		t.Errorf("ответ = %+v", resp)
	}
}

func TestReportSummary_Empty(t *testing.T) {
	reports := &mockReportService{
		summaryFn: func(context.Context, string) (*model.ReportSummary, error) {
			return &model.ReportSummary{}, nil
		},
	}
	router := newTestRouter(testDeps{reports: reports}, fakeAuth)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/reports/summary", "")
	body := rec.Body.String()
	if !strings.Contains(body, `"busiest_day":null`) || !strings.Contains(body, `"quietest_day":null`) {
		t.Errorf("для пустой сводки дни должны быть null: %s", body)
	}
}
