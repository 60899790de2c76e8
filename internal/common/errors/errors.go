package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	// Intake
	ErrCodeParseError      ErrorCode = "PARSE_ERROR"
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeUnknownCategory ErrorCode = "UNKNOWN_CATEGORY"

	// Classification
	ErrCodeUnexpectedClassLabel  ErrorCode = "UNEXPECTED_CLASS_LABEL"
	ErrCodeClassifierUnavailable ErrorCode = "CLASSIFIER_UNAVAILABLE"
	ErrCodeClassifierRejected    ErrorCode = "CLASSIFIER_REJECTED"

	// Review notifications
	ErrCodeNotificationInputInvalid ErrorCode = "NOTIFICATION_INPUT_INVALID"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"

	// Generic
	ErrCodeTimeout  ErrorCode = "TIMEOUT_ERROR"
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError is the error representation used by every worker.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key/value that is copied into the BPMN error variables.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// BPMNError is what gets thrown (or failed with retries) back to Zeebe.
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

// ToErrorVariables flattens the error into process variables.
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

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Failed to parse job variables", err.Error(), false)
}

func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Applicant data is outside the accepted range", details, false)
}

func NewUnknownCategoryError(feature, value string) *StandardError {
	return newError(ErrCodeUnknownCategory, "Category was not seen when the model was trained",
		fmt.Sprintf("feature: %s, value: %q", feature, value), false).
		WithMetadata("feature", feature)
}

func NewUnexpectedClassLabelError(label int) *StandardError {
	return newError(ErrCodeUnexpectedClassLabel, "Classifier returned an unexpected class label",
		fmt.Sprintf("label: %d", label), false).
		WithMetadata("classLabel", label)
}

func NewClassifierUnavailableError(err error) *StandardError {
	return newError(ErrCodeClassifierUnavailable, "Risk classifier is unavailable", err.Error(), true)
}

func NewClassifierRejectedError(err error) *StandardError {
	return newError(ErrCodeClassifierRejected, "Risk classifier rejected the request", err.Error(), false)
}

func NewNotificationInputInvalidError(details string) *StandardError {
	return newError(ErrCodeNotificationInputInvalid, "Review notification input is invalid", details, false)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true).
		WithMetadata("channel", channel)
}

func NewTimeoutError(operation string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Operation '%s' timed out", operation), err.Error(), true)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// BPMNErrorMapping maps internal codes to the error codes modelled on the
// BPMN boundary events.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeParseError:               "PARSE_ERROR",
	ErrCodeInvalidInput:             "INVALID_INPUT",
	ErrCodeUnknownCategory:          "UNKNOWN_CATEGORY",
	ErrCodeUnexpectedClassLabel:     "UNEXPECTED_CLASS_LABEL",
	ErrCodeClassifierUnavailable:    "CLASSIFIER_UNAVAILABLE",
	ErrCodeClassifierRejected:       "CLASSIFIER_REJECTED",
	ErrCodeNotificationInputInvalid: "NOTIFICATION_INPUT_INVALID",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
	ErrCodeTimeout:                  "TIMEOUT_ERROR",
	ErrCodeInternal:                 "INTERNAL_ERROR",
}

// GetRetryCount returns the retry budget for an error code. Every pipeline
// error is deterministic for a given input and gets 0.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeClassifierUnavailable,
		ErrCodeNotificationSendFailed:
		return 3
	case ErrCodeTimeout:
		return 2
	default:
		return 0
	}
}

// ConvertToBPMNError converts StandardError into BPMNError for Camunda
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// IsRetryableErrorCode checks if an error code is retryable
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category an error code is logged under.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "CLASSIFIER") || strings.Contains(codeStr, "CLASS_LABEL"):
		return "MODEL"
	case strings.Contains(codeStr, "INPUT") || strings.Contains(codeStr, "CATEGORY") || strings.Contains(codeStr, "PARSE"):
		return "VALIDATION"
	case strings.Contains(codeStr, "TIMEOUT"):
		return "TIMEOUT"
	default:
		return "OTHER"
	}
}
