// internal/common/camunda/worker.go
package camunda

import (
	"fmt"
	"time"

	"credit-risk-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// WorkerOptions configures one job worker subscription.
type WorkerOptions struct {
	TaskType       string
	MaxJobsActive  int
	Timeout        time.Duration
	RequestTimeout time.Duration
}

// JobWorker is an open job subscription for one task type.
type JobWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// OpenWorker subscribes handler to jobs of opts.TaskType.
func OpenWorker(client zbc.Client, opts WorkerOptions, handler worker.JobHandler, log logger.Logger) *JobWorker {
	builder := client.NewJobWorker().
		JobType(opts.TaskType).
		Handler(handler).
		Name(fmt.Sprintf("%s-worker", opts.TaskType)).
		MaxJobsActive(opts.MaxJobsActive)
	if opts.Timeout > 0 {
		builder = builder.Timeout(opts.Timeout)
	}
	if opts.RequestTimeout > 0 {
		builder = builder.RequestTimeout(opts.RequestTimeout)
	}

	log.Info("Worker started", map[string]interface{}{
		"taskType":      opts.TaskType,
		"maxJobsActive": opts.MaxJobsActive,
		"timeout":       opts.Timeout.String(),
	})

	return &JobWorker{
		worker:   builder.Open(),
		logger:   log,
		taskType: opts.TaskType,
	}
}

// Stop closes the subscription and waits for in-flight handlers.
func (w *JobWorker) Stop() {
	w.logger.Info("Stopping worker", map[string]interface{}{"taskType": w.taskType})
	w.worker.Close()
	w.worker.AwaitClose()
}

func (w *JobWorker) TaskType() string {
	return w.taskType
}
