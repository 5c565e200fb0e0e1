package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldPath      = "path"
	FieldCategory  = "category"
	FieldAmount    = "amount"
	FieldInvoiceID = "invoice_id"
	FieldRecordID  = "record_id"
	FieldTotal     = "total_spent"
	FieldLimit     = "budget_limit"
	FieldDuration  = "duration_ms"
	FieldWatchDir  = "watch_dir"
	FieldCount     = "count"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentParser   = "parser"
	ComponentStorage  = "storage"
	ComponentBudget   = "budget"
	ComponentWatch    = "watch"
	ComponentPipeline = "pipeline"
	ComponentNotifier = "notifier"
	ComponentAMQP     = "amqp"
	ComponentLimits   = "limits"
)

// Operations defines standard operation names
const (
	OpParse        = "parse"
	OpAppend       = "append"
	OpUpsert       = "upsert"
	OpEvaluate     = "evaluate"
	OpRecategorize = "recategorize"
	OpNotify       = "notify"
	OpStartup      = "startup"
	OpShutdown     = "shutdown"
)
