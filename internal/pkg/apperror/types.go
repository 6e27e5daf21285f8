package apperror

import "strings"

// Kind defines the category of the error, determining how the system
// should react (e.g., retrying the operation or dead-lettering a message).
type Kind string

const (
	// KindPersistance represents errors that will fail again if retried
	// without changing the input (e.g., Validation, Resource Conflicts).
	KindPersistance Kind = "PERSISTANCE"

	// KindTransient represents temporary failures that might succeed
	// upon retry (e.g., Network Timeouts, Database Deadlocks).
	KindTransient Kind = "TRANSIENT"

	// KindInternal represents unexpected system failures or bugs
	// (e.g., Nil Pointers, Database Syntax Errors).
	KindInternal Kind = "INTERNAL"
)

// AppError is the standardized error structure for the entire application.
// It wraps raw errors with machine codes and metadata so both the HTTP
// surfaces and the queue consumers can react consistently: the fiber error
// handler maps it to a status code, the worker runtime maps its Kind to a
// requeue/dead-letter decision.
type AppError struct {
	// Code is a machine-readable string (e.g., "WORKFLOW_NOT_FOUND").
	Code string
	// Message is a human-readable explanation.
	Message string
	// Kind determines the retryability and HTTP mapping.
	Kind Kind
	// Details holds additional context for debugging or client hints.
	Details any
	// Err is the original underlying error.
	Err error
}

// Error implements the standard error interface.
func (e *AppError) Error() string {
	return e.Message
}

// Unwrap allows AppError to work with the standard errors.Is and errors.As functions.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to the error's details map.
// If the current Details is not a map[string]any, it will be initialized as one.
func (e *AppError) WithDetail(key string, value any) *AppError {
	currentDetails, ok := e.Details.(map[string]any)
	if !ok || currentDetails == nil {
		currentDetails = make(map[string]any)
	}

	currentDetails[key] = value
	e.Details = currentDetails
	return e
}

// WithError wraps an existing error into the AppError context, retaining
// the original for logging or debugging purposes.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// AddValidationErrors sets the validation details. It overwrites existing
// details to prevent duplicate error entries if validation is triggered
// multiple times in the same execution flow.
func (e *AppError) AddValidationErrors(errors []map[string]any) *AppError {
	e.Details = errors
	return e
}

// IsRetryable is a helper method to check if the error is a Transient failure.
// The worker runtime does not call it: it dead-letters KindPersistance errors
// and requeues every other kind, KindInternal included.
func (e *AppError) IsRetryable() bool {
	return e.Kind == KindTransient
}

// ToMap converts the AppError to a map for logging purposes.
func (e *AppError) ToMap() map[string]any {
	return map[string]any{
		"code":         e.Code,
		"kind":         string(e.Kind),
		"is_retryable": e.IsRetryable(),
		"details":      e.Details,
		"raw_error":    e.Err,
	}
}

// GetHttpStatus resolves the appropriate HTTP status code for the error.
// It first attempts to match the 'Code' against a predefined status map
// and falls back to a status based on the 'Kind'.
func (e *AppError) GetHttpStatus() int {
	statusMapping := map[string]int{
		// Infrastructure
		CodeDbConnectionFailed: 500,
		CodeDbTimeout:          500,
		CodeDbDeadlock:         500,
		CodeDbConstraint:       500,
		CodeDbConflict:         409,
		CodeInternalError:      500,
		CodeBrokerUnavailable:  503,

		// Pipeline
		CodeWorkflowNotFound:   404,
		CodeStageNotFound:      422,
		CodeEnvelopeInvalid:    400,
		CodeAggregationMissing: 422,

		// Client errors
		CodeMalformedRequest: 400,
		CodeInvalidRequest:   400,
		CodeValidation:       400,
		CodeUnauthorized:     401,
		CodeForbidden:        403,
		CodeNotFound:         404,
		CodeConflict:         409,
		CodeTooManyRequests:  429,
	}

	if status, exists := statusMapping[strings.ToUpper(e.Code)]; exists {
		return status
	}

	switch e.Kind {
	case KindPersistance:
		return 400
	case KindTransient:
		return 503
	default:
		return 500
	}
}
