package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the calendar-date wire format used for expense dates.
const DateLayout = "2006-01-02"

type (
	// Date is a calendar date (no time of day), always held at UTC midnight.
	Date struct {
		time.Time
	}

	// Expense is one logged transaction. Records are never mutated after
	// the ledger creates them.
	Expense struct {
		ID          string  `json:"id"`
		Amount      float64 `json:"amount"`
		Description string  `json:"description"`
		Category    string  `json:"category"`
		Date        Date    `json:"date"`
		Timestamp   int64   `json:"timestamp"` // creation instant, unix millis
	}

	// NewExpense carries the caller-supplied fields of an expense; the
	// ledger assigns ID and Timestamp.
	NewExpense struct {
		Amount      float64
		Description string
		Category    string
		Date        Date
	}

	// Budget holds the daily and monthly spending limits. Zero means unset.
	Budget struct {
		Daily   float64 `json:"daily"`
		Monthly float64 `json:"monthly"`
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyID          = errors.New("empty expense id")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// AddDays returns the date n calendar days away from d.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// SameDay reports whether both dates name the same calendar day.
func (d Date) SameDay(o Date) bool {
	return d.Year() == o.Year() && d.Month() == o.Month() && d.Day() == o.Day()
}

// SameMonth reports whether both dates fall in the same year and month.
func (d Date) SameMonth(o Date) bool {
	return d.Year() == o.Year() && d.Month() == o.Month()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("%w: %s", ErrInvalidDate, s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate checks a stored record, e.g. one read from a backup.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	return NewExpense{
		Amount:      e.Amount,
		Description: e.Description,
		Category:    e.Category,
		Date:        e.Date,
	}.Validate()
}

func (n NewExpense) Validate() error {
	if err := ValidateAmount(n.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(n.Description) == "" {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(n.Category) == "" {
		return ErrEmptyCategory
	}
	return n.Date.Validate()
}

// ValidateAmount rejects NaN, infinities and negative amounts.
func ValidateAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// HasDaily reports whether a daily limit is configured.
func (b Budget) HasDaily() bool { return b.Daily > 0 }

// HasMonthly reports whether a monthly limit is configured.
func (b Budget) HasMonthly() bool { return b.Monthly > 0 }

// DailyRemaining is the daily limit minus spent; negative means overspent.
func (b Budget) DailyRemaining(spent float64) float64 { return b.Daily - spent }

// MonthlyRemaining is the monthly limit minus spent; negative means overspent.
func (b Budget) MonthlyRemaining(spent float64) float64 { return b.Monthly - spent }
