// Package sheets renders the ledger as spreadsheets for use outside the app.
package sheets

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"monoledger/internal/core"
)

// ErrUnknownFormat is returned for an unsupported export format.
var ErrUnknownFormat = errors.New("unknown spreadsheet format")

// Ports for outbound spreadsheet renderers.
type (
	// ExpenseWriter renders expenses, in the order given, to w. Amounts
	// are labelled with the currency code but never converted.
	ExpenseWriter interface {
		Write(w io.Writer, expenses []core.Expense, currency string) error
		// Ext is the file extension, including the dot.
		Ext() string
	}
)

// Header is the column layout shared by every renderer.
var Header = []string{"date", "description", "category", "amount", "id"}

// ForFormat resolves a format name ("csv" or "xlsx").
func ForFormat(name string) (ExpenseWriter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return CSV{}, nil
	case "xlsx":
		return XLSX{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}
