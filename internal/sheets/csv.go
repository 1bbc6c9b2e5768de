package sheets

import (
	"encoding/csv"
	"fmt"
	"io"

	"monoledger/internal/core"
)

// CSV writes one header row and one row per expense.
type CSV struct{}

func (CSV) Ext() string { return ".csv" }

func (CSV) Write(w io.Writer, expenses []core.Expense, _ string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range expenses {
		if err := cw.Write(row(e)); err != nil {
			return fmt.Errorf("write csv row %s: %w", e.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func row(e core.Expense) []string {
	return []string{e.Date.String(), e.Description, e.Category, core.Fixed2(e.Amount), e.ID}
}
