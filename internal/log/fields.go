package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldErrorType   = "error_type"
	FieldKey         = "key"
	FieldBackend     = "backend"
	FieldPath        = "path"
	FieldExpenseID   = "expense_id"
	FieldExpenseDesc = "expense_description"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldDate        = "date"
	FieldCount       = "count"
	FieldCurrency    = "currency"
	FieldTheme       = "theme"
	FieldApplied     = "applied"
	FieldSkipped     = "skipped"

	FieldCacheHits      = "cache_hits"
	FieldCacheMisses    = "cache_misses"
	FieldCacheEvictions = "cache_evictions"
	FieldCacheHitRatio  = "cache_hit_ratio"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentCLI      = "cli"
	ComponentLedger   = "ledger"
	ComponentRegistry = "registry"
	ComponentBudget   = "budget"
	ComponentSettings = "settings"
	ComponentStorage  = "storage"
	ComponentBackend  = "backend"
	ComponentBackup   = "backup"
	ComponentSheets   = "sheets"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpShuffle  = "shuffle"
	OpExport   = "export"
	OpImport   = "import"
	OpReset    = "reset"
	OpValidate = "validate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypePersistence   = "persistence_error"
	ErrorTypeCorrupt       = "corrupt_data_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithErrorType adds error type field
func (f LogFields) WithErrorType(errorType string) LogFields {
	f[FieldErrorType] = errorType
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithExpense adds expense-related fields
func (f LogFields) WithExpense(id, desc string, amount float64, category, date string) LogFields {
	f[FieldExpenseID] = id
	f[FieldExpenseDesc] = desc
	f[FieldAmount] = amount
	f[FieldCategory] = category
	f[FieldDate] = date
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
