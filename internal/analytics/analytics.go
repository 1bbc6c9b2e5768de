// Package analytics derives totals, breakdowns and patterns from a ledger
// snapshot. Every function is pure: nothing is cached and inputs are never
// modified, so callers simply recompute on each read.
package analytics

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"monoledger/internal/core"
)

// WeekDays is the length of the rolling window.
const WeekDays = 7

// CategoryTotal is the amount spent under one category label.
type CategoryTotal struct {
	Name   string
	Amount float64
}

// DayTotal is the amount spent on one calendar date.
type DayTotal struct {
	Date   core.Date
	Amount float64
}

// Pattern is a (description, amount) pair seen more than once.
type Pattern struct {
	Description string
	Amount      float64
	Count       int
}

// DayGroup holds the expenses dated on one day, in ledger order.
type DayGroup struct {
	Date     core.Date
	Total    float64
	Expenses []core.Expense
}

// DailyStatus compares today's spend against the daily limit. Enabled is
// false when no daily limit is configured; Remaining and Exceeded are then
// left zero.
type DailyStatus struct {
	Enabled   bool
	Spent     float64
	Remaining float64
	Exceeded  bool
}

// LifetimeTotal is the sum of every amount; 0 for an empty ledger.
func LifetimeTotal(expenses []core.Expense) float64 {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(amountOf(e))
	}
	return toFloat(total)
}

// AverageTransaction is the lifetime total over the record count, or 0
// when there are no records.
func AverageTransaction(expenses []core.Expense) float64 {
	if len(expenses) == 0 {
		return 0
	}
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(amountOf(e))
	}
	return toFloat(total.Div(decimal.NewFromInt(int64(len(expenses)))))
}

// CategoryBreakdown sums amounts per category, largest first. Equal totals
// are ordered alphabetically by label.
func CategoryBreakdown(expenses []core.Expense) []CategoryTotal {
	sums := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		sums[e.Category] = sums[e.Category].Add(amountOf(e))
	}

	out := make([]CategoryTotal, 0, len(sums))
	for name, sum := range sums {
		out = append(out, CategoryTotal{Name: name, Amount: toFloat(sum)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// RollingWeek returns the seven calendar days ending today, oldest first.
// Records count toward a day only when their date equals it exactly; days
// without activity are zero.
func RollingWeek(expenses []core.Expense, today core.Date) []DayTotal {
	out := make([]DayTotal, WeekDays)
	for i := range out {
		out[i].Date = today.AddDays(i - (WeekDays - 1))
	}

	sums := make([]decimal.Decimal, WeekDays)
	for _, e := range expenses {
		for i := range out {
			if e.Date.SameDay(out[i].Date) {
				sums[i] = sums[i].Add(amountOf(e))
				break
			}
		}
	}
	for i := range out {
		out[i].Amount = toFloat(sums[i])
	}
	return out
}

// MonthToDate sums the records dated in today's year and month. Entries
// dated later in the same month are included.
func MonthToDate(expenses []core.Expense, today core.Date) float64 {
	total := decimal.Zero
	for _, e := range expenses {
		if e.Date.SameMonth(today) {
			total = total.Add(amountOf(e))
		}
	}
	return toFloat(total)
}

// MonthRemaining is the monthly limit minus month-to-date spend. It goes
// negative on overspend and is meaningless when no monthly limit is set.
func MonthRemaining(b core.Budget, monthToDate float64) float64 {
	return toFloat(decimal.NewFromFloat(finite(b.Monthly)).Sub(decimal.NewFromFloat(finite(monthToDate))))
}

// MonthBurnPercent is the share of the monthly limit already spent, capped
// at 100. It is 0 when no monthly limit is set.
func MonthBurnPercent(monthToDate, monthly float64) float64 {
	if monthly <= 0 || math.IsNaN(monthly) || math.IsInf(monthly, 0) {
		return 0
	}
	pct := decimal.NewFromFloat(finite(monthToDate)).
		Div(decimal.NewFromFloat(monthly)).
		Mul(decimal.NewFromInt(100))
	return math.Min(toFloat(pct), 100)
}

// SpentOn sums the records dated exactly on day.
func SpentOn(expenses []core.Expense, day core.Date) float64 {
	total := decimal.Zero
	for _, e := range expenses {
		if e.Date.SameDay(day) {
			total = total.Add(amountOf(e))
		}
	}
	return toFloat(total)
}

// Daily reports today's spend against the daily limit.
func Daily(expenses []core.Expense, today core.Date, b core.Budget) DailyStatus {
	spent := SpentOn(expenses, today)
	st := DailyStatus{Spent: spent}
	if !b.HasDaily() {
		return st
	}
	st.Enabled = true
	st.Remaining = toFloat(decimal.NewFromFloat(b.Daily).Sub(decimal.NewFromFloat(spent)))
	st.Exceeded = st.Remaining < 0
	return st
}

type patternKey struct {
	description string
	amount      float64
}

// RecurringPatterns groups records by exact (description, amount) and
// reports every group seen more than once, most frequent first. Groups with
// equal counts keep the order in which they first appear in the ledger.
//
// Matching is exact: two unrelated purchases that happen to share a
// description and amount are reported the same as a genuine subscription.
func RecurringPatterns(expenses []core.Expense) []Pattern {
	index := make(map[patternKey]int)
	var groups []Pattern
	for _, e := range expenses {
		k := patternKey{e.Description, e.Amount}
		if i, ok := index[k]; ok {
			groups[i].Count++
			continue
		}
		index[k] = len(groups)
		groups = append(groups, Pattern{Description: e.Description, Amount: e.Amount, Count: 1})
	}

	out := groups[:0:0]
	for _, g := range groups {
		if g.Count > 1 {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// History groups records by date, most recent date first. Within a day the
// ledger's own order is kept.
func History(expenses []core.Expense) []DayGroup {
	index := make(map[string]int)
	var groups []DayGroup
	var sums []decimal.Decimal
	for _, e := range expenses {
		key := e.Date.String()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DayGroup{Date: e.Date})
			sums = append(sums, decimal.Zero)
		}
		groups[i].Expenses = append(groups[i].Expenses, e)
		sums[i] = sums[i].Add(amountOf(e))
	}
	for i := range groups {
		groups[i].Total = toFloat(sums[i])
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Date.After(groups[j].Date.Time)
	})
	return groups
}

func amountOf(e core.Expense) decimal.Decimal {
	return decimal.NewFromFloat(finite(e.Amount))
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func toFloat(d decimal.Decimal) float64 {
	v, _ := d.Float64()
	return v
}
