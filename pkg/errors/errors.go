package errors

import "fmt"

// Error codes
const (
	CodeBotError   = "BOT_ERROR"
	CodeCatalog    = "CATALOG_ERROR"
	CodeCRM        = "CRM_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodeCache      = "CACHE_ERROR"
	CodeService    = "SERVICE_ERROR"
	CodeContext    = "CONTEXT_ERROR"
)

type BotError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *BotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *BotError) Unwrap() error {
	return e.Cause
}

func NewBotError(message, code string, statusCode int, context map[string]any) *BotError {
	return &BotError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *BotError) WithCause(cause error) *BotError {
	e.Cause = cause
	return e
}

// CatalogError marks a malformed pattern catalog. Fatal at load time; the
// process must not start with a partial catalog.
type CatalogError struct {
	*BotError
	Intent string
	Field  string
}

func NewCatalogError(message, intent, field string) *CatalogError {
	return &CatalogError{
		BotError: NewBotError(message, CodeCatalog, 500, map[string]any{
			"intent": intent,
			"field":  field,
		}),
		Intent: intent,
		Field:  field,
	}
}

// ContextError marks a structurally invalid conversation context handed to the
// resolver. User input never produces this; a nil context is always valid.
type ContextError struct {
	*BotError
	Reason string
}

func NewContextError(reason string) *ContextError {
	return &ContextError{
		BotError: NewBotError(
			fmt.Sprintf("invalid conversation context: %s", reason),
			CodeContext, 500, map[string]any{"reason": reason}),
		Reason: reason,
	}
}

type CRMError struct {
	*BotError
	Operation string
	Object    string
}

func NewCRMError(message, operation, object string, statusCode int, cause error) *CRMError {
	return &CRMError{
		BotError: NewBotError(message, CodeCRM, statusCode, map[string]any{
			"operation": operation,
			"object":    object,
		}).WithCause(cause),
		Operation: operation,
		Object:    object,
	}
}

type ValidationError struct {
	*BotError
	Field string
	Value interface{}
}

func NewValidationError(message, field string, value interface{}) *ValidationError {
	return &ValidationError{
		BotError: NewBotError(message, CodeValidation, 400, map[string]any{
			"field": field,
			"value": value,
		}),
		Field: field,
		Value: value,
	}
}

type CacheError struct {
	*BotError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		BotError: NewBotError(message, CodeCache, 500, map[string]any{
			"operation": operation,
			"key":       key,
		}).WithCause(cause),
		Operation: operation,
		Key:       key,
	}
}

type ServiceError struct {
	*BotError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		BotError: NewBotError(message, CodeService, 500, map[string]any{
			"service":   service,
			"operation": operation,
		}).WithCause(cause),
		Service:   service,
		Operation: operation,
	}
}
