// metrics.go — Prometheus метрики бизнес-операций.
package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики записей и экспортов.
var (
	// recordsSubmittedTotal — результаты отправки записей.
	recordsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dc_records_submitted_total",
			Help: "Количество отправленных записей по результату",
		},
		[]string{"result"},
	)

	// exportsTotal — выполненные экспорты по раскладке и результату.
	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dc_exports_total",
			Help: "Количество экспортов в xlsx",
		},
		[]string{"layout", "result"},
	)

	// exportEntries — число записей в одном экспорте.
	exportEntries = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dc_export_entries",
			Help:    "Количество записей в экспортированном документе",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)

// Значения лейблов метрик.
const (
	resultOK      = "ok"
	resultInvalid = "invalid"
	resultError   = "error"
	layoutFlat    = "flat"
	layoutGrouped = "grouped"
)
