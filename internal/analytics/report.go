package analytics

import "monoledger/internal/core"

// Report bundles every derived figure for one point in time.
type Report struct {
	Today          core.Date
	Count          int
	Total          float64
	Average        float64
	Categories     []CategoryTotal
	Week           []DayTotal
	MonthToDate    float64
	MonthRemaining float64
	MonthBurn      float64
	HasMonthly     bool
	Daily          DailyStatus
	Recurring      []Pattern
}

// Summarize computes a full Report for today.
func Summarize(expenses []core.Expense, today core.Date, b core.Budget) Report {
	mtd := MonthToDate(expenses, today)
	return Report{
		Today:          today,
		Count:          len(expenses),
		Total:          LifetimeTotal(expenses),
		Average:        AverageTransaction(expenses),
		Categories:     CategoryBreakdown(expenses),
		Week:           RollingWeek(expenses, today),
		MonthToDate:    mtd,
		MonthRemaining: MonthRemaining(b, mtd),
		MonthBurn:      MonthBurnPercent(mtd, b.Monthly),
		HasMonthly:     b.HasMonthly(),
		Daily:          Daily(expenses, today, b),
		Recurring:      RecurringPatterns(expenses),
	}
}
