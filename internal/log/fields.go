package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldOperation   = "operation"
	FieldUserID      = "user_id"
	FieldBudgetID    = "budget_id"
	FieldExpenseID   = "expense_id"
	FieldAmountCents = "amount_cents"
	FieldDeltaCents  = "delta_cents"
	FieldCategory    = "category"
	FieldPeriod      = "period"
	FieldError       = "error"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentInsights  = "insights"
	ComponentExport    = "export"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpApply    = "apply"
	OpRenew    = "renew"
	OpExport   = "export"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
