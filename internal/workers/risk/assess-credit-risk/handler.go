package assesscreditrisk

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"credit-risk-workers/internal/common/camunda"
	"credit-risk-workers/internal/common/config"
	"credit-risk-workers/internal/common/errors"
	httpclient "credit-risk-workers/internal/common/http"
	"credit-risk-workers/internal/common/logger"
	"credit-risk-workers/internal/common/metrics"
	"credit-risk-workers/internal/common/observability"
	"credit-risk-workers/internal/common/validation"
	"credit-risk-workers/internal/models"
	"credit-risk-workers/internal/pipeline"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const TaskType = "assess-credit-risk"

type Handler struct {
	config       *Config
	logger       logger.Logger
	assessor     Assessor
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
	jobWorker    *camunda.JobWorker
	now          func() time.Time
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Assessor      Assessor
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Assessor == nil {
		return nil, fmt.Errorf("invalid configuration for %s: assessor is required", TaskType)
	}

	loggerInstance := opts.Logger
	if loggerInstance == nil {
		loggerInstance = logger.NewNoOpLogger()
	}
	loggerInstance = loggerInstance.WithFields(map[string]interface{}{"worker": TaskType})

	return &Handler{
		config:       workerConfig,
		logger:       loggerInstance,
		assessor:     opts.Assessor,
		errorHandler: errors.NewErrorHandler(loggerInstance),
		obs:          opts.Observability,
		now:          time.Now,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing credit risk assessment", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(startTime))
}

// Execute runs one applicant through the pipeline. Pipeline errors come
// back as *errors.StandardError.
func (h *Handler) Execute(ctx context.Context, input *Input) (output *Output, err error) {
	ctx, span := h.obs.StartSpan(ctx, TaskType+".execute",
		attribute.String("application.id", input.ApplicationID))
	defer func() { observability.EndSpan(span, err) }()

	assessment, err := h.assessor.Assess(ctx, input.Applicant)
	if err != nil {
		return nil, toStandardError(err)
	}

	output = &Output{
		AssessmentID:   uuid.NewString(),
		ApplicationID:  input.ApplicationID,
		Verdict:        assessment.Verdict,
		RiskLabel:      assessment.Verdict.DisplayLabel(),
		RiskMessage:    riskMessage(assessment.Verdict),
		ClassLabel:     assessment.ClassLabel,
		RequiresReview: assessment.Verdict.RequiresReview(),
		FeatureVector:  assessment.Vector.Named(),
		Summary:        buildSummary(input.Applicant),
		AssessedAt:     h.now().UTC(),
	}

	metrics.RiskVerdicts.WithLabelValues(string(output.Verdict)).Inc()
	h.obs.RecordVerdict(ctx, string(output.Verdict), output.ClassLabel)
	span.SetAttributes(attribute.String("risk.verdict", string(output.Verdict)))

	h.logger.Info("Credit risk assessed", map[string]interface{}{
		"assessmentId":  output.AssessmentID,
		"applicationId": output.ApplicationID,
		"verdict":       string(output.Verdict),
		"classLabel":    output.ClassLabel,
	})
	return output, nil
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewParseError(err)
	}

	validationResult := validation.ValidateInput(variables, GetInputSchema())
	if !validationResult.Valid {
		return nil, errors.NewInvalidInputError(
			fmt.Sprintf("Validation errors: %v", validationResult.GetErrorMessages()))
	}

	input := &Input{
		Applicant: models.ApplicantRecord{
			Age:             asInt(variables["age"]),
			Sex:             models.Sex(models.NormalizeLabel(variables["sex"].(string))),
			JobLevel:        asInt(variables["job"]),
			Housing:         models.Housing(models.NormalizeLabel(variables["housing"].(string))),
			SavingAccounts:  models.SavingAccounts(models.NormalizeLabel(variables["savingAccounts"].(string))),
			CheckingAccount: models.CheckingAccount(models.NormalizeLabel(variables["checkingAccount"].(string))),
			CreditAmount:    asFloat(variables["creditAmount"]),
			Duration:        asInt(variables["duration"]),
		},
	}

	if applicationID, ok := variables["applicationId"].(string); ok {
		input.ApplicationID = applicationID
	}

	return input, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	variables := map[string]interface{}{
		"assessmentId":   output.AssessmentID,
		"verdict":        string(output.Verdict),
		"riskLabel":      output.RiskLabel,
		"riskMessage":    output.RiskMessage,
		"classLabel":     output.ClassLabel,
		"requiresReview": output.RequiresReview,
		"featureVector":  output.FeatureVector,
		"summary":        output.Summary,
		"assessedAt":     output.AssessedAt.Format(time.RFC3339),
	}
	if output.ApplicationID != "" {
		variables["applicationId"] = output.ApplicationID
	}

	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromMap(variables)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	if _, err := request.Send(ctx); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	h.logger.Info("Successfully completed credit risk assessment", map[string]interface{}{
		"jobKey":       job.GetKey(),
		"assessmentId": output.AssessmentID,
		"verdict":      string(output.Verdict),
	})
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	d := h.errorHandler.HandleJobError(ctx, client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(d.Err.Code)).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
}

// Register opens the job worker unless the worker is disabled.
func (h *Handler) Register(client *camunda.Client) {
	if !h.config.Enabled {
		h.logger.Info("Worker is disabled, skipping registration", nil)
		return
	}

	h.jobWorker = camunda.OpenWorker(client.GetClient(), camunda.WorkerOptions{
		TaskType:       TaskType,
		MaxJobsActive:  h.config.MaxJobsActive,
		Timeout:        h.config.Timeout,
		RequestTimeout: h.config.RequestTimeout,
	}, h.Handle, h.logger)
}

func (h *Handler) Close() {
	if h.jobWorker != nil {
		h.jobWorker.Stop()
		h.jobWorker = nil
	}
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func (h *Handler) GetConfig() *Config {
	return h.config
}

// toStandardError maps pipeline failures onto worker error codes.
func toStandardError(err error) *errors.StandardError {
	var (
		stdErr      *errors.StandardError
		invalid     *pipeline.InvalidInputError
		unknown     *pipeline.UnknownCategoryError
		classLabel  *pipeline.UnexpectedClassLabelError
		unavailable *pipeline.ClassifierUnavailableError
		status      *httpclient.StatusError
	)

	switch {
	case stderrors.As(err, &stdErr):
		return stdErr
	case stderrors.As(err, &invalid):
		return errors.NewInvalidInputError(invalid.Error()).WithMetadata("field", invalid.Field)
	case stderrors.As(err, &unknown):
		return errors.NewUnknownCategoryError(string(unknown.Feature), unknown.Value)
	case stderrors.As(err, &classLabel):
		return errors.NewUnexpectedClassLabelError(classLabel.Label)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewTimeoutError("assess", err)
	case stderrors.As(err, &unavailable):
		return errors.NewClassifierUnavailableError(err)
	case stderrors.As(err, &status):
		return errors.NewClassifierRejectedError(err)
	default:
		return errors.NewInternalError(err)
	}
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()

	if appConfig != nil {
		cfg.RequestTimeout = config.GetDuration(appConfig.Camunda.RequestTimeout)
		if workerCfg, exists := appConfig.Workers[TaskType]; exists {
			cfg.Enabled = workerCfg.Enabled
			if workerCfg.MaxJobsActive > 0 {
				cfg.MaxJobsActive = workerCfg.MaxJobsActive
			}
			if workerCfg.Timeout > 0 {
				cfg.Timeout = config.GetDuration(workerCfg.Timeout)
			}
		}
	}

	return cfg
}

func asInt(v interface{}) int {
	return int(asFloat(v))
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
