package errors

import (
	"fmt"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobWithRetries(retries int32) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:     1,
		Type:    "assess-credit-risk",
		Retries: retries,
	}}
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewUnknownCategoryError("Saving accounts", "extremely rich")
	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "UNKNOWN_CATEGORY", bpmnErr.Code)
	assert.False(t, bpmnErr.Retryable)
	assert.Equal(t, 0, bpmnErr.Retries)

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "UNKNOWN_CATEGORY", vars["errorCode"])
	assert.Equal(t, "UNKNOWN_CATEGORY", vars["originalErrorCode"])
	assert.Equal(t, "Saving accounts", vars["feature"])
	assert.Contains(t, vars["errorDetails"], "extremely rich")
	assert.NotEmpty(t, vars["timestamp"])
}

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeClassifierUnavailable, 3},
		{ErrCodeNotificationSendFailed, 3},
		{ErrCodeTimeout, 2},
		{ErrCodeInvalidInput, 0},
		{ErrCodeUnknownCategory, 0},
		{ErrCodeUnexpectedClassLabel, 0},
		{ErrCodeParseError, 0},
		{"SOMETHING_ELSE", 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, GetRetryCount(tt.code))
			assert.Equal(t, tt.expected > 0, IsRetryableErrorCode(tt.code))
		})
	}
}

func TestDecide(t *testing.T) {
	t.Run("deterministic error is thrown", func(t *testing.T) {
		d := Decide(jobWithRetries(3), NewInvalidInputError("age: 17"))
		assert.True(t, d.Throw)
		assert.Equal(t, "INVALID_INPUT", d.BPMN.Code)
	})

	t.Run("transient error is retried", func(t *testing.T) {
		d := Decide(jobWithRetries(3), NewClassifierUnavailableError(fmt.Errorf("dial tcp: refused")))
		require.False(t, d.Throw)
		assert.Equal(t, 2, d.Retries)
	})

	t.Run("retries are capped by the error budget", func(t *testing.T) {
		d := Decide(jobWithRetries(10), NewNotificationSendFailedError("sns", fmt.Errorf("throttled")))
		require.False(t, d.Throw)
		assert.Equal(t, 3, d.Retries)
	})

	t.Run("last attempt throws", func(t *testing.T) {
		d := Decide(jobWithRetries(1), NewClassifierUnavailableError(fmt.Errorf("timeout")))
		assert.True(t, d.Throw)
		assert.Equal(t, "CLASSIFIER_UNAVAILABLE", d.BPMN.Code)
	})

	t.Run("plain errors become internal errors", func(t *testing.T) {
		d := Decide(jobWithRetries(3), fmt.Errorf("boom"))
		assert.True(t, d.Throw)
		assert.Equal(t, ErrCodeInternal, d.Err.Code)
	})

	t.Run("wrapped standard errors are unwrapped", func(t *testing.T) {
		wrapped := fmt.Errorf("assess: %w", NewUnexpectedClassLabelError(4))
		d := Decide(jobWithRetries(3), wrapped)
		assert.Equal(t, ErrCodeUnexpectedClassLabel, d.Err.Code)
		assert.Equal(t, 4, d.BPMN.ErrorVariables["classLabel"])
	})
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidInput))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeUnknownCategory))
	assert.Equal(t, "MODEL", GetErrorCategory(ErrCodeUnexpectedClassLabel))
	assert.Equal(t, "MODEL", GetErrorCategory(ErrCodeClassifierUnavailable))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}
