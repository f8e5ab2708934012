// internal/workers/notify/render-notification/handler.go
package rendernotification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"notify-workers/internal/common/logger"
	"notify-workers/internal/common/metrics"
	"notify-workers/internal/i18n"
	"notify-workers/internal/templates/submission"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/xeipuuv/gojsonschema"
)

const (
	TaskType = "render-notification"
)

var (
	ErrContextInvalid = errors.New("NOTIFICATION_CONTEXT_INVALID")
)

// contextSchema guards against structurally broken notification payloads.
// A missing request, receiver or topic is an integration defect in the
// workflow, not a business rule; blank titles are allowed and degrade to
// blank substitutions.
const contextSchema = `{
	"type": "object",
	"required": ["notification"],
	"properties": {
		"notification": {
			"type": "object",
			"required": ["request"],
			"properties": {
				"request": {
					"type": "object",
					"required": ["id", "receiver", "createdBy", "topic"],
					"properties": {
						"id": {"type": "string", "minLength": 1},
						"receiver": {"type": "object"},
						"createdBy": {"type": "object"},
						"topic": {"type": "object"}
					}
				},
				"message": {"type": "string"}
			}
		},
		"locale": {"type": "string"}
	}
}`

type Handler struct {
	config   *Config
	renderer *submission.Renderer
	catalogs map[string]i18n.Translator
	logger   logger.Logger
}

// NewHandler builds the render worker. catalogs maps a locale tag to its
// translator; a missing or unknown locale renders in English.
func NewHandler(config *Config, catalogs map[string]i18n.Translator, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		renderer: submission.NewRenderer(nil, config.BaseUIURL, config.SettingsURL),
		catalogs: catalogs,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	if err := h.validateContext(job.Variables); err != nil {
		h.failJob(client, job, "NOTIFICATION_CONTEXT_INVALID", err.Error())
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "RENDER_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

// Execute renders the four channel strings for one notification context.
// Rendering itself is pure; the only failure mode is an invalid context,
// which Handle already screens out for jobs coming off the wire.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if input.Notification.Request.ID == "" {
		return nil, fmt.Errorf("%w: request id is empty", ErrContextInvalid)
	}

	r := h.renderer
	if tr, ok := h.catalogs[input.Locale]; ok {
		r = r.WithTranslator(tr)
	}

	msg := r.Render(input.Notification)

	return &Output{
		Subject:   msg.Subject,
		HTMLBody:  msg.HTMLBody,
		PlainBody: msg.PlainBody,
		MDBody:    msg.MarkdownBody,
	}, nil
}

// validateContext checks the raw job variables against the context schema.
func (h *Handler) validateContext(variables string) error {
	schemaLoader := gojsonschema.NewStringLoader(contextSchema)
	documentLoader := gojsonschema.NewStringLoader(variables)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w: %v", ErrContextInvalid, errs)
	}

	return nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}
