// internal/common/errors/handler.go
package errors

import (
	"context"
	stderrors "errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler reports job errors back to Zeebe, either as a failure with
// retries or as a BPMN error the process can catch.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Decision is what HandleJobError will do with a failed job.
type Decision struct {
	Throw   bool
	Retries int
	BPMN    *BPMNError
	Err     *StandardError
}

// Decide normalizes err and picks between retrying and throwing. A job is
// retried only while both the error's budget and the job's remaining retries
// allow it.
func Decide(job entities.Job, err error) Decision {
	stdErr := Normalize(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	remaining := int(job.GetRetries()) - 1
	if remaining > bpmnErr.Retries {
		remaining = bpmnErr.Retries
	}
	if !bpmnErr.Retryable || remaining <= 0 {
		return Decision{Throw: true, BPMN: bpmnErr, Err: stdErr}
	}
	return Decision{Retries: remaining, BPMN: bpmnErr, Err: stdErr}
}

// Normalize ensures we always have a StandardError
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// HandleJobError handles any error in a worker job
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) Decision {
	d := Decide(job, err)
	h.logError(job, d)

	var sendErr error
	if d.Throw {
		sendErr = h.throwBPMNError(ctx, client, job, d.BPMN)
	} else {
		sendErr = h.failJobWithRetries(ctx, client, job, d.BPMN, d.Retries)
	}
	if sendErr != nil {
		h.logger.Error("Failed to report job error to Camunda", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  sendErr.Error(),
		})
	}
	return d
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, retries int) error {
	cmd := client.NewFailJobCommand().
		JobKey(job.GetKey()).
		Retries(int32(retries)).
		ErrorMessage("[" + bpmnErr.Code + "] " + bpmnErr.Message)

	withVars, err := cmd.VariablesFromMap(bpmnErr.ToErrorVariables())
	if err != nil {
		_, sendErr := cmd.Send(ctx)
		return sendErr
	}
	_, err = withVars.Send(ctx)
	return err
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) error {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.GetKey()).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	withVars, err := cmd.VariablesFromMap(bpmnErr.ToErrorVariables())
	if err != nil {
		_, sendErr := cmd.Send(ctx)
		return sendErr
	}
	_, err = withVars.Send(ctx)
	return err
}

func (h *ErrorHandler) logError(job entities.Job, d Decision) {
	h.logger.Error("Job failed", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"jobType":            job.GetType(),
		"errorCode":          string(d.Err.Code),
		"bpmnErrorCode":      d.BPMN.Code,
		"message":            d.BPMN.Message,
		"details":            d.Err.Details,
		"retryable":          d.Err.Retryable,
		"retries":            d.Retries,
		"thrown":             d.Throw,
		"errorCategory":      GetErrorCategory(d.Err.Code),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})
}
