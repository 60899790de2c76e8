package notifyriskreview

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"credit-risk-workers/internal/common/aws"
	"credit-risk-workers/internal/common/camunda"
	"credit-risk-workers/internal/common/config"
	"credit-risk-workers/internal/common/errors"
	"credit-risk-workers/internal/common/logger"
	"credit-risk-workers/internal/common/metrics"
	"credit-risk-workers/internal/common/observability"
	"credit-risk-workers/internal/common/validation"
	"credit-risk-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const TaskType = "notify-risk-review"

type Handler struct {
	config       *Config
	logger       logger.Logger
	publisher    aws.Publisher
	emailSender  aws.EmailSender
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
	jobWorker    *camunda.JobWorker
	now          func() time.Time
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Publisher     aws.Publisher
	EmailSender   aws.EmailSender
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if workerConfig.SNSEnabled && opts.Publisher == nil {
		return nil, fmt.Errorf("invalid configuration for %s: sns enabled without a publisher", TaskType)
	}
	if workerConfig.SESEnabled && opts.EmailSender == nil {
		return nil, fmt.Errorf("invalid configuration for %s: ses enabled without an email sender", TaskType)
	}

	loggerInstance := opts.Logger
	if loggerInstance == nil {
		loggerInstance = logger.NewNoOpLogger()
	}
	loggerInstance = loggerInstance.WithFields(map[string]interface{}{"worker": TaskType})

	return &Handler{
		config:       workerConfig,
		logger:       loggerInstance,
		publisher:    opts.Publisher,
		emailSender:  opts.EmailSender,
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

	h.logger.Info("Processing risk review notification", map[string]interface{}{
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

// Execute notifies the review team about a HIGH_RISK assessment. The
// notification id is derived from the assessment id, so a retried job sends
// messages that subscribers can deduplicate.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	output := &Output{
		NotificationID: notificationID(input.AssessmentID),
		Channels:       []string{},
	}

	if !input.Verdict.RequiresReview() {
		output.Status = StatusSkipped
		metrics.ReviewNotifications.WithLabelValues("none", StatusSkipped).Inc()
		return output, nil
	}

	channels := h.config.Channels()
	if len(channels) == 0 {
		h.logger.Warn("No review notification channel enabled", map[string]interface{}{
			"assessmentId": input.AssessmentID,
		})
		output.Status = StatusDisabled
		metrics.ReviewNotifications.WithLabelValues("none", StatusDisabled).Inc()
		return output, nil
	}

	subj, text := subject(input), body(input)
	for _, channel := range channels {
		sendCtx, span := h.obs.StartSpan(ctx, TaskType+".send",
			attribute.String("notification.channel", channel),
			attribute.String("notification.id", output.NotificationID))
		err := h.send(sendCtx, channel, output.NotificationID, input, subj, text)
		observability.EndSpan(span, err)
		if err != nil {
			metrics.ReviewNotifications.WithLabelValues(channel, "failed").Inc()
			if stderrors.Is(err, context.DeadlineExceeded) {
				return nil, errors.NewTimeoutError(channel+" send", err)
			}
			return nil, errors.NewNotificationSendFailedError(channel, err)
		}
		metrics.ReviewNotifications.WithLabelValues(channel, StatusSent).Inc()
		output.Channels = append(output.Channels, channel)
	}

	output.Status = StatusSent
	output.SentAt = h.now().UTC()

	h.logger.Info("Risk review notification sent", map[string]interface{}{
		"notificationId": output.NotificationID,
		"assessmentId":   input.AssessmentID,
		"channels":       output.Channels,
	})
	return output, nil
}

func (h *Handler) send(ctx context.Context, channel, id string, input *Input, subj, text string) error {
	switch channel {
	case ChannelSNS:
		_, err := h.publisher.Publish(ctx, aws.TopicMessage(h.config.TopicARN, subj, text, map[string]string{
			"notificationId": id,
			"assessmentId":   input.AssessmentID,
			"verdict":        string(input.Verdict),
		}))
		return err
	case ChannelSES:
		_, err := h.emailSender.SendEmail(ctx, aws.TextEmail(h.config.FromEmail, h.config.ReviewEmail, subj, text))
		return err
	default:
		return fmt.Errorf("unknown channel %q", channel)
	}
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewParseError(err)
	}

	validationResult := validation.ValidateInput(variables, GetInputSchema())
	if !validationResult.Valid {
		return nil, errors.NewNotificationInputInvalidError(
			fmt.Sprintf("Validation errors: %v", validationResult.GetErrorMessages()))
	}

	input := &Input{
		AssessmentID: variables["assessmentId"].(string),
		Verdict:      models.Verdict(variables["verdict"].(string)),
	}
	if applicationID, ok := variables["applicationId"].(string); ok {
		input.ApplicationID = applicationID
	}
	if riskLabel, ok := variables["riskLabel"].(string); ok {
		input.RiskLabel = riskLabel
	}
	if summary, ok := variables["summary"].(map[string]interface{}); ok {
		input.PersonalDetails = stringList(summary["personalDetails"])
		input.FinancialDetails = stringList(summary["financialDetails"])
	}

	return input, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	variables := map[string]interface{}{
		"notificationId":     output.NotificationID,
		"notificationStatus": output.Status,
		"channels":           output.Channels,
	}
	if !output.SentAt.IsZero() {
		variables["sentAt"] = output.SentAt.Format(time.RFC3339)
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

	h.logger.Info("Successfully completed risk review notification", map[string]interface{}{
		"jobKey": job.GetKey(),
		"status": output.Status,
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

		n := appConfig.Notifications
		cfg.SNSEnabled = n.SNS.Enabled
		cfg.TopicARN = n.SNS.TopicARN
		cfg.SESEnabled = n.SES.Enabled
		cfg.FromEmail = n.SES.FromEmail
		cfg.ReviewEmail = n.SES.ReviewEmail
	}

	return cfg
}

func notificationID(assessmentID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("risk-review:"+assessmentID)).String()
}

func stringList(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
