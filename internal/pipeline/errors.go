// internal/pipeline/errors.go
package pipeline

import (
	"errors"
	"fmt"

	"credit-risk-workers/internal/models"
)

var (
	ErrConfiguration        = errors.New("CONFIGURATION_ERROR")
	ErrInvalidInput         = errors.New("INVALID_INPUT")
	ErrUnknownCategory      = errors.New("UNKNOWN_CATEGORY")
	ErrUnexpectedClassLabel = errors.New("UNEXPECTED_CLASS_LABEL")
)

// ConfigurationError is fatal at startup: an artifact is missing, corrupt or
// does not match the schema the pipeline was built for.
type ConfigurationError struct {
	Artifact string
	Reason   string
	Err      error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("configuration error: %s: %s", e.Artifact, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrConfiguration, e.Err}
	}
	return []error{ErrConfiguration}
}

// NewConfigurationError wraps err (may be nil) as a ConfigurationError.
func NewConfigurationError(artifact, reason string, err error) *ConfigurationError {
	return &ConfigurationError{Artifact: artifact, Reason: reason, Err: err}
}

// InvalidInputError rejects a numeric field outside its declared domain.
type InvalidInputError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// UnknownCategoryError means a label reached the pipeline that the encoders
// were never fit on. It is a deployment bug, never a defaultable value.
type UnknownCategoryError struct {
	Feature models.Feature
	Value   string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q for feature %q", e.Value, e.Feature)
}

func (e *UnknownCategoryError) Unwrap() error { return ErrUnknownCategory }

// UnexpectedClassLabelError flags a classifier output outside {0, 1}.
type UnexpectedClassLabelError struct {
	Label int
}

func (e *UnexpectedClassLabelError) Error() string {
	return fmt.Sprintf("unexpected class label %d (expected 0 or 1)", e.Label)
}

func (e *UnexpectedClassLabelError) Unwrap() error { return ErrUnexpectedClassLabel }
