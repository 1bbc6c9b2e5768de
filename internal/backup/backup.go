// Package backup encodes and decodes the full-state backup document.
//
// Decoding is partial: the document must be a JSON object, but each
// top-level field is judged on its own. Fields that are absent or have the
// wrong shape are reported as skipped and leave the caller's state alone.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"monoledger/internal/core"
)

// ErrCorrupt marks a document that is not a JSON object at all.
var ErrCorrupt = errors.New("backup document corrupt")

// Field names of the backup document.
const (
	FieldExpenses   = "expenses"
	FieldCategories = "categories"
	FieldBudget     = "budget"
	FieldCurrency   = "currency"
	FieldDeviceID   = "deviceId"
)

// Snapshot is a complete export of application state.
type Snapshot struct {
	Expenses   []core.Expense `json:"expenses"`
	Categories []string       `json:"categories"`
	Budget     core.Budget    `json:"budget"`
	Currency   string         `json:"currency"`
	DeviceID   string         `json:"deviceId"`
}

// Partial is a decoded document. A nil field was absent or malformed.
type Partial struct {
	Expenses   *[]core.Expense
	Categories *[]string
	Budget     *core.Budget
	Currency   *string
	// DeviceID is informational only; it is never applied on import.
	DeviceID *string
	// Skipped lists the importable fields that were present but unusable.
	Skipped []string
}

// Encode writes s as an indented JSON document.
func Encode(w io.Writer, s Snapshot) error {
	if s.Expenses == nil {
		s.Expenses = []core.Expense{}
	}
	if s.Categories == nil {
		s.Categories = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

// Decode reads a backup document.
func Decode(r io.Reader) (Partial, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Partial{}, fmt.Errorf("read backup: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		if err == nil {
			err = errors.New("top level is null")
		}
		return Partial{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	var p Partial
	if v, ok := fields[FieldExpenses]; ok {
		if expenses, err := decodeExpenses(v); err == nil {
			p.Expenses = &expenses
		} else {
			p.Skipped = append(p.Skipped, FieldExpenses)
		}
	}
	if v, ok := fields[FieldCategories]; ok {
		var labels []string
		if json.Unmarshal(v, &labels) == nil && labels != nil {
			p.Categories = &labels
		} else {
			p.Skipped = append(p.Skipped, FieldCategories)
		}
	}
	if v, ok := fields[FieldBudget]; ok {
		var b core.Budget
		if isObject(v) && json.Unmarshal(v, &b) == nil {
			p.Budget = &b
		} else {
			p.Skipped = append(p.Skipped, FieldBudget)
		}
	}
	if v, ok := fields[FieldCurrency]; ok {
		var code string
		if json.Unmarshal(v, &code) == nil && strings.TrimSpace(code) != "" {
			p.Currency = &code
		} else {
			p.Skipped = append(p.Skipped, FieldCurrency)
		}
	}
	if v, ok := fields[FieldDeviceID]; ok {
		var id string
		if json.Unmarshal(v, &id) == nil {
			p.DeviceID = &id
		}
	}
	return p, nil
}

// decodeExpenses accepts the list only when every record is valid and ids
// are unique; one bad record rejects the whole field.
func decodeExpenses(v json.RawMessage) ([]core.Expense, error) {
	var expenses []core.Expense
	if err := json.Unmarshal(v, &expenses); err != nil {
		return nil, err
	}
	if expenses == nil {
		return nil, errors.New("expenses is null")
	}
	seen := make(map[string]struct{}, len(expenses))
	for i, e := range expenses {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("expense %d: %w", i, err)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("expense %d: duplicate id %q", i, e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return expenses, nil
}

func isObject(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) > 0 && v[0] == '{'
}

// FileName is the suggested export file name for a backup taken at now.
func FileName(now time.Time) string {
	return "monoledger_backup_" + now.Format(core.DateLayout) + ".json"
}
