package log

// Common field names for structured logging
const (
	FieldComponent      = "component"
	FieldUserID         = "user_id"
	FieldMethod         = "method"
	FieldEndpoint       = "endpoint"
	FieldQuery          = "query"
	FieldDuration       = "duration_ms"
	FieldSuccess        = "success"
	FieldError          = "error"
	FieldOperation      = "operation"
	FieldYear           = "year"
	FieldMonth          = "month"
	FieldLimit          = "limit"
	FieldTransactionID  = "transaction_id"
	FieldBankID         = "bank_id"
	FieldShipmentNumber = "shipment_number"
	FieldKind           = "kind"
	FieldAmountCents    = "amount_cents"
	FieldCount          = "count"
	FieldInterval       = "interval"
	FieldTarget         = "target"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentAPI      = "api"
	ComponentSession  = "session"
	ComponentFinance  = "finance"
	ComponentBank     = "bank"
	ComponentShipment = "shipment"
	ComponentStorage  = "storage"
	ComponentWorker   = "worker"
	ComponentCache    = "cache"
)

// Operations defines standard operation names
const (
	OpFetch      = "fetch"
	OpCreate     = "create"
	OpDelete     = "delete"
	OpConfirmPay = "confirm_pay"
	OpForceSync  = "force_sync"
	OpSignIn     = "sign_in"
	OpSignOut    = "sign_out"
	OpSnapshot   = "snapshot"
	OpRefresh    = "refresh"
	OpStartup    = "startup"
	OpShutdown   = "shutdown"
)
