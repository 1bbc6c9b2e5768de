package sheets

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"monoledger/internal/analytics"
	"monoledger/internal/core"
)

const (
	ExpensesSheet = "Expenses"
	SummarySheet  = "Summary"
)

// XLSX writes an Expenses sheet with one row per expense and a Summary
// sheet with per-category totals.
type XLSX struct{}

func (XLSX) Ext() string { return ".xlsx" }

var expenseColWidths = map[string]float64{"A": 12, "B": 30, "C": 15, "D": 14, "E": 38}

func (XLSX) Write(w io.Writer, expenses []core.Expense, currency string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExpensesSheet); err != nil {
		return fmt.Errorf("name expenses sheet: %w", err)
	}
	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	header[3] = fmt.Sprintf("amount (%s)", currency)
	if err := f.SetSheetRow(ExpensesSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, e := range expenses {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{e.Date.String(), e.Description, e.Category, e.Amount, e.ID}
		if err := f.SetSheetRow(ExpensesSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %s: %w", e.ID, err)
		}
	}
	for col, width := range expenseColWidths {
		if err := f.SetColWidth(ExpensesSheet, col, col, width); err != nil {
			return fmt.Errorf("set width of column %s: %w", col, err)
		}
	}

	if err := writeSummary(f, expenses, currency); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, expenses []core.Expense, currency string) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	header := []any{"category", fmt.Sprintf("total (%s)", currency)}
	if err := f.SetSheetRow(SummarySheet, "A1", &header); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	breakdown := analytics.CategoryBreakdown(expenses)
	for i, c := range breakdown {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{c.Name, c.Amount}
		if err := f.SetSheetRow(SummarySheet, cell, &values); err != nil {
			return fmt.Errorf("write summary row %s: %w", c.Name, err)
		}
	}
	cell, err := excelize.CoordinatesToCellName(1, len(breakdown)+2)
	if err != nil {
		return err
	}
	total := []any{"TOTAL", analytics.LifetimeTotal(expenses)}
	if err := f.SetSheetRow(SummarySheet, cell, &total); err != nil {
		return fmt.Errorf("write summary total: %w", err)
	}
	if err := f.SetColWidth(SummarySheet, "A", "B", 16); err != nil {
		return fmt.Errorf("set summary column width: %w", err)
	}
	return nil
}
