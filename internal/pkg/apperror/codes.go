package apperror

// Infrastructure error codes (Database, Broker, Network)
const (
	CodeDbConnectionFailed = "DB_CONNECTION_FAILED"
	CodeDbTimeout          = "DB_TIMEOUT"
	CodeDbDeadlock         = "DB_DEADLOCK"
	CodeDbConstraint       = "DB_CONSTRAINT"
	CodeDbConflict         = "DB_CONFLICT"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeBrokerUnavailable  = "BROKER_UNAVAILABLE"
)

// Pipeline error codes
const (
	CodeWorkflowNotFound   = "WORKFLOW_NOT_FOUND"
	CodeStageNotFound      = "STAGE_NOT_FOUND"
	CodeEnvelopeInvalid    = "ENVELOPE_INVALID"
	CodeAggregationMissing = "AGGREGATION_MISSING"
)

// Client error codes
const (
	CodeMalformedRequest = "MALFORMED_REQUEST"
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeValidation       = "VALIDATION_ERROR"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeTooManyRequests  = "TOO_MANY_REQUESTS"
)

var (
	ErrCodeDbConnectionFailed = NewTransient(CodeDbConnectionFailed, "Database connection failed")
	ErrCodeDbTimeout          = NewTransient(CodeDbTimeout, "Database timeout")
	ErrCodeDbDeadlock         = NewTransient(CodeDbDeadlock, "Database deadlock")
	ErrCodeDbConstraint       = NewPersistance(CodeDbConstraint, "Database constraint violation")
	ErrCodeDbConflict         = NewPersistance(CodeDbConflict, "Database conflict")
	ErrCodeInternalError      = NewInternal(CodeInternalError, "Internal error")
	ErrCodeBrokerUnavailable  = NewTransient(CodeBrokerUnavailable, "Message broker unavailable")
)

var (
	ErrCodeMalformedRequest = NewPersistance(CodeMalformedRequest, "Invalid JSON format or data type")
	ErrCodeInvalidRequest   = NewPersistance(CodeInvalidRequest, "Invalid request")
	ErrCodeValidation       = NewPersistance(CodeValidation, "Validation error")
	ErrCodeUnauthorized     = NewPersistance(CodeUnauthorized, "Unauthorized")
	ErrCodeForbidden        = NewPersistance(CodeForbidden, "Forbidden")
	ErrCodeNotFound         = NewPersistance(CodeNotFound, "Not found")
	ErrCodeConflict         = NewPersistance(CodeConflict, "Conflict")
	ErrCodeTooManyRequests  = NewPersistance(CodeTooManyRequests, "Too many requests")
)
