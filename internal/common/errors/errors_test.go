package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name      string
		err       *StandardError
		bpmnCode  string
		retries   int
		retryable bool
	}{
		{"network failure", NewServiceUnavailableError("employee", stderrors.New("dial tcp")), "SERVICE_UNAVAILABLE", 3, true},
		{"timeout shares bpmn code", NewServiceTimeoutError("asset", stderrors.New("deadline")), "SERVICE_UNAVAILABLE", 2, true},
		{"client error not retried", NewServiceRequestFailedError("employee", 404, "Employee not found"), "SERVICE_REQUEST_FAILED", 0, false},
		{"server error retried", NewServiceRequestFailedError("employee", 503, "Service down"), "SERVICE_REQUEST_FAILED", 2, true},
		{"validation", NewOnboardingValidationError("email is required"), "ONBOARDING_VALIDATION_FAILED", 0, false},
		{"schema maps to invalid input", NewSchemaValidationFailedError("classify-intent", []string{"text is required"}), "INVALID_INPUT", 0, false},
		{"internal falls back to own code", NewInternalError(stderrors.New("boom")), "INTERNAL_ERROR", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmnErr := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.bpmnCode, bpmnErr.Code)
			assert.Equal(t, tt.retries, bpmnErr.Retries)
			assert.Equal(t, tt.retryable, bpmnErr.Retryable)

			vars := bpmnErr.ToErrorVariables()
			assert.Equal(t, tt.bpmnCode, vars["errorCode"])
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
		})
	}
}

func TestAsStandardError(t *testing.T) {
	cause := stderrors.New("connection refused")
	wrapped := fmt.Errorf("create employee: %w", NewServiceUnavailableError("employee", cause))

	stdErr, ok := AsStandardError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeServiceUnavailable, stdErr.Code)
	assert.Equal(t, "network error", stdErr.Message)
	assert.True(t, stderrors.Is(wrapped, cause))
	assert.Equal(t, "employee", stdErr.Metadata["service"])

	assert.Equal(t, ErrCodeServiceUnavailable, CodeOf(wrapped))
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("plain")))

	normalized := Normalize(stderrors.New("plain"))
	assert.Equal(t, ErrCodeInternal, normalized.Code)
	assert.Equal(t, "plain", normalized.Details)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "NLP", GetErrorCategory(ErrCodeMissingEntity))
	assert.Equal(t, "ONBOARDING_SERVICE", GetErrorCategory(ErrCodeOrchestrationFailed))
	assert.Equal(t, "CACHE", GetErrorCategory(ErrCodeCacheError))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidInput))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
	assert.True(t, IsRetryableErrorCode(ErrCodeCacheError))
	assert.False(t, IsRetryableErrorCode(ErrCodeMissingEntity))
}
