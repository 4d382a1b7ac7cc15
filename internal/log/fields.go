package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldErrorType   = "error_type"
	FieldKind        = "kind"
	FieldKey         = "key"
	FieldCount       = "count"
	FieldPruned      = "pruned"
	FieldBytes       = "bytes"
	FieldPath        = "path"
	FieldBackend     = "backend"
	FieldAmountCents = "amount_cents"
	FieldBalance     = "balance_cents"
	FieldCategory    = "category"
	FieldTxKind      = "tx_kind"
	FieldGoal        = "goal"
	FieldBill        = "bill"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentStore   = "store"
	ComponentStorage = "storage"
	ComponentLedger  = "ledger"
	ComponentBackend = "backend"
	ComponentCLI     = "cli"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpSave     = "save"
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpPrune    = "prune"
	OpReset    = "reset"
	OpMigrate  = "migrate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation  = "validation_error"
	ErrorTypeNotFound    = "not_found_error"
	ErrorTypeCorrupt     = "corrupt_store_error"
	ErrorTypePersistence = "persistence_error"
	ErrorTypeInternal    = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithKind(kind string) LogFields {
	f[FieldKind] = kind
	return f
}

// WithError adds the error message and its category.
func (f LogFields) WithError(err error, errorType string) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
		f[FieldErrorType] = errorType
	}
	return f
}

// WithAmount adds an amount in cents.
func (f LogFields) WithAmount(cents int64) LogFields {
	f[FieldAmountCents] = cents
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
