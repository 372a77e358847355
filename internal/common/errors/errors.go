// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidInput           ErrorCode = "INVALID_INPUT"
	ErrCodeSchemaValidationFailed ErrorCode = "SCHEMA_VALIDATION_FAILED"
	ErrCodeClassificationDegraded ErrorCode = "CLASSIFICATION_DEGRADED"
	ErrCodeMissingEntity          ErrorCode = "MISSING_ENTITY"
	ErrCodeServiceUnavailable     ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeServiceRequestFailed   ErrorCode = "SERVICE_REQUEST_FAILED"
	ErrCodeServiceTimeout         ErrorCode = "SERVICE_TIMEOUT"
	ErrCodeOnboardingValidation   ErrorCode = "ONBOARDING_VALIDATION_FAILED"
	ErrCodeOrchestrationFailed    ErrorCode = "ORCHESTRATION_FAILED"
	ErrCodeCacheError             ErrorCode = "CACHE_ERROR"
	ErrCodeTransportError         ErrorCode = "TRANSPORT_ERROR"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key to the error's metadata and returns it.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

// AsStandardError finds the first StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the code of the StandardError in err's chain, or INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewInvalidInputError reports unusable caller input.
func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid input", details, false, nil)
}

// NewSchemaValidationFailedError reports job variables rejected by the activity's input schema.
func NewSchemaValidationFailedError(activityID string, violations []string) *StandardError {
	return newError(ErrCodeSchemaValidationFailed, "Input does not match activity schema",
		fmt.Sprintf("activityId: %s, violations: %s", activityID, strings.Join(violations, "; ")), false, nil).
		WithMetadata("violations", violations)
}

// NewClassificationDegradedError wraps a failed classification.
func NewClassificationDegradedError(reason string) *StandardError {
	return newError(ErrCodeClassificationDegraded, "Message could not be analyzed", reason, false, nil)
}

// NewMissingEntityError reports an intent that lacks a required entity.
func NewMissingEntityError(intent, label string) *StandardError {
	return newError(ErrCodeMissingEntity, "Required information missing",
		fmt.Sprintf("intent: %s, entity: %s", intent, label), false, nil).
		WithMetadata("entity", label)
}

// NewServiceUnavailableError is a network-level failure talking to a remote service.
func NewServiceUnavailableError(service string, err error) *StandardError {
	return newError(ErrCodeServiceUnavailable, "network error",
		fmt.Sprintf("service: %s, error: %v", service, err), true, err).
		WithMetadata("service", service)
}

// NewServiceRequestFailedError is a non-2xx reply carrying the server's message.
func NewServiceRequestFailedError(service string, status int, message string) *StandardError {
	retryable := status >= 500
	return newError(ErrCodeServiceRequestFailed, message,
		fmt.Sprintf("service: %s, status: %d", service, status), retryable, nil).
		WithMetadata("service", service).
		WithMetadata("status", status)
}

// NewServiceTimeoutError reports a remote call that outlived its deadline.
func NewServiceTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeServiceTimeout, fmt.Sprintf("Service '%s' timeout", service),
		fmt.Sprintf("error: %v", err), true, err).
		WithMetadata("service", service)
}

// NewOnboardingValidationError reports missing or malformed employee data.
func NewOnboardingValidationError(details string) *StandardError {
	return newError(ErrCodeOnboardingValidation, "Onboarding request validation failed", details, false, nil)
}

// NewOrchestrationFailedError wraps a failed broker orchestration.
func NewOrchestrationFailedError(err error) *StandardError {
	return newError(ErrCodeOrchestrationFailed, "Onboarding orchestration failed", err.Error(), true, err)
}

// NewCacheError wraps a Redis failure.
func NewCacheError(operation string, err error) *StandardError {
	return newError(ErrCodeCacheError, "Cache operation failed",
		fmt.Sprintf("operation: %s, error: %v", operation, err), true, err)
}

// NewTransportError wraps a messaging failure.
func NewTransportError(subject string, err error) *StandardError {
	return newError(ErrCodeTransportError, "Message transport failed",
		fmt.Sprintf("subject: %s, error: %v", subject, err), true, err)
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the BPMN error codes that
// boundary events in the onboarding process catch.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:           "INVALID_INPUT",
	ErrCodeSchemaValidationFailed: "INVALID_INPUT",
	ErrCodeClassificationDegraded: "CLASSIFICATION_DEGRADED",
	ErrCodeMissingEntity:          "MISSING_ENTITY",
	ErrCodeServiceUnavailable:     "SERVICE_UNAVAILABLE",
	ErrCodeServiceRequestFailed:   "SERVICE_REQUEST_FAILED",
	ErrCodeServiceTimeout:         "SERVICE_UNAVAILABLE",
	ErrCodeOnboardingValidation:   "ONBOARDING_VALIDATION_FAILED",
	ErrCodeOrchestrationFailed:    "ORCHESTRATION_FAILED",
	ErrCodeCacheError:             "CACHE_ERROR",
	ErrCodeTransportError:         "TRANSPORT_ERROR",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeServiceUnavailable,
		ErrCodeCacheError,
		ErrCodeTransportError:
		return 3

	case ErrCodeServiceTimeout,
		ErrCodeServiceRequestFailed:
		return 2

	case ErrCodeOrchestrationFailed:
		return 1

	default:
		return 0 // business errors
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CLASSIFICATION") || strings.Contains(codeStr, "ENTITY"):
		return "NLP"
	case strings.Contains(codeStr, "SERVICE") || strings.Contains(codeStr, "ORCHESTRATION"):
		return "ONBOARDING_SERVICE"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "TRANSPORT"):
		return "TRANSPORT"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
