// reports.go — отчёты по количеству записей в сутки.
package service

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/bigkaa/datacollect/internal/domain/model"
	"github.com/bigkaa/datacollect/internal/repository"
)

// ReportService — сервис отчётов. Только чтение, повторные вызовы без новых записей
// возвращают одинаковый результат.
type ReportService struct {
	records repository.RecordRepository
	loc     *time.Location
	logger  *slog.Logger
}

// NewReportService создаёт сервис отчётов.
func NewReportService(records repository.RecordRepository, loc *time.Location, logger *slog.Logger) *ReportService {
	return &ReportService{
		records: records,
		loc:     loc,
		logger:  logger.With(slog.String("component", "report_service")),
	}
}

// DailyCounts возвращает количество записей тенанта по дням за всё время,
// по возрастанию даты.
func (s *ReportService) DailyCounts(ctx context.Context, tenantID string) ([]model.DailyCount, error) {
	counts, err := s.records.CountByDay(ctx, tenantID, s.loc.String())
	if err != nil {
		return nil, operationFailed("подсчёт записей по дням", err)
	}
	return counts, nil
}

// Summary возвращает сводку по дневным счётчикам.
func (s *ReportService) Summary(ctx context.Context, tenantID string) (*model.ReportSummary, error) {
	counts, err := s.DailyCounts(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return Summarize(counts), nil
}

// Summarize считает итог, среднее за день (до десятых) и самый загруженный
// и самый тихий день. При равенстве выигрывает более ранний день.
func Summarize(counts []model.DailyCount) *model.ReportSummary {
	summary := &model.ReportSummary{Days: len(counts)}
	if len(counts) == 0 {
		return summary
	}

	busiest, quietest := counts[0], counts[0]
	for _, c := range counts {
		summary.Total += c.Count
		if c.Count > busiest.Count {
			busiest = c
		}
		if c.Count < quietest.Count {
			quietest = c
		}
	}

	summary.Average = math.Round(float64(summary.Total)/float64(len(counts))*10) / 10
	summary.BusiestDay = &busiest
	summary.QuietestDay = &quietest
	return summary
}
