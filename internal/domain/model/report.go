package model

// DailyCount — количество записей за календарный день.
type DailyCount struct {
	// Date — день в формате yyyy-MM-dd
	Date  string
	Count int
}

// ReportSummary — сводка по дневным счётчикам.
type ReportSummary struct {
	Total int
	// Average — среднее за день, округлённое до десятых
	Average float64
	// BusiestDay, QuietestDay — nil, если записей нет
	BusiestDay  *DailyCount
	QuietestDay *DailyCount
	// Days — число дней с записями
	Days int
}
