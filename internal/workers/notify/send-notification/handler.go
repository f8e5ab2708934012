// internal/workers/notify/send-notification/handler.go
package sendnotification

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"notify-workers/internal/common/logger"
	"notify-workers/internal/common/metrics"
	"notify-workers/internal/templates/submission"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "send-notification"

	dedupKeyPrefix = "notify:sent:"
)

var (
	ErrRecipientLookupFailed  = errors.New("RECIPIENT_LOOKUP_FAILED")
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	db        *sql.DB
	redis     *redis.Client
	es        *elasticsearch.Client
	renderer  *submission.Renderer
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger
}

// NewHandler builds the dispatch worker. esClient may be nil to disable the
// audit trail; sesClient and snsClient are injected so tests can mock them.
func NewHandler(
	config *Config,
	db *sql.DB,
	redisClient *redis.Client,
	esClient *elasticsearch.Client,
	renderer *submission.Renderer,
	sesClient SESService,
	snsClient SNSService,
	log logger.Logger,
) *Handler {
	return &Handler{
		config:    config,
		db:        db,
		redis:     redisClient,
		es:        esClient,
		renderer:  renderer,
		sesClient: sesClient,
		snsClient: snsClient,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}
	if input.Notification.Request.ID == "" {
		h.failJob(client, job, "NOTIFICATION_CONTEXT_INVALID", "request id is empty")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "NOTIFICATION_SEND_FAILED"
		if errors.Is(err, ErrRecipientLookupFailed) {
			errorCode = "RECIPIENT_LOOKUP_FAILED"
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	req := input.Notification.Request
	sentAt := time.Now().UTC().Format(time.RFC3339)
	notificationID := uuid.New().String()

	recipients, err := h.getCuratorEmails(ctx, req.Receiver.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecipientLookupFailed, err)
	}
	if len(recipients) == 0 {
		h.logger.Warn("no curators to notify", map[string]interface{}{
			"communityId": req.Receiver.ID,
			"requestId":   req.ID,
		})
		return &Output{NotificationID: notificationID, Status: StatusDisabled, SentAt: sentAt}, nil
	}

	// Claim the request before sending so a workflow retry of an already
	// delivered notification completes as a duplicate instead of re-sending.
	dedupKey := dedupKeyPrefix + req.ID
	claimed, err := h.redis.SetNX(ctx, dedupKey, notificationID, h.config.DedupTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: dedup check: %v", ErrNotificationSendFailed, err)
	}
	if !claimed {
		h.logger.Info("notification already delivered", map[string]interface{}{
			"requestId": req.ID,
		})
		return &Output{NotificationID: notificationID, Status: StatusDuplicate, Recipients: len(recipients), SentAt: sentAt}, nil
	}

	msg := h.renderer.Render(input.Notification)

	emailSent := false
	chatSent := false

	if h.config.EmailEnabled {
		if err := h.sendEmail(ctx, recipients, msg.Subject, msg.HTMLBody, msg.PlainBody); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"error":     err,
				"requestId": req.ID,
			})
			metrics.NotificationsDelivered.WithLabelValues("email", StatusFailed).Inc()
			h.releaseClaim(ctx, dedupKey)
			return &Output{NotificationID: notificationID, Status: StatusFailed, Recipients: len(recipients), SentAt: sentAt}, nil
		}
		emailSent = true
		metrics.NotificationsDelivered.WithLabelValues("email", StatusSent).Inc()
	}

	if h.config.ChatEnabled && h.config.ChatTopicARN != "" {
		if err := h.sendChat(ctx, msg.MarkdownBody); err != nil {
			h.logger.Error("chat publish failed", map[string]interface{}{
				"error":     err,
				"requestId": req.ID,
			})
			metrics.NotificationsDelivered.WithLabelValues("chat", StatusFailed).Inc()
			h.releaseClaim(ctx, dedupKey)
			return &Output{NotificationID: notificationID, Status: StatusFailed, Recipients: len(recipients), SentAt: sentAt}, nil
		}
		chatSent = true
		metrics.NotificationsDelivered.WithLabelValues("chat", StatusSent).Inc()
	}

	status := StatusDisabled
	if emailSent || chatSent {
		status = StatusSent
	}

	h.auditDelivery(ctx, auditDocument{
		NotificationID: notificationID,
		RequestID:      req.ID,
		CommunityID:    req.Receiver.ID,
		CommunityTitle: req.Receiver.Title,
		Recipients:     recipients,
		Status:         status,
		SentAt:         sentAt,
	})

	return &Output{
		NotificationID: notificationID,
		Status:         status,
		Recipients:     len(recipients),
		SentAt:         sentAt,
	}, nil
}

func (h *Handler) getCuratorEmails(ctx context.Context, communityID string) ([]string, error) {
	query := `SELECT u.email
		FROM community_curators cc
		JOIN users u ON u.id = cc.user_id
		WHERE cc.community_id = $1 AND u.email <> ''`

	rows, err := h.db.QueryContext(ctx, query, communityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

func (h *Handler) sendEmail(ctx context.Context, to []string, subject, htmlBody, plainBody string) error {
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: to,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(plainBody)},
				Html: &types.Content{Data: aws.String(htmlBody)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendChat(ctx context.Context, mdBody string) error {
	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(h.config.ChatTopicARN),
		Message:  aws.String(mdBody),
	})
	return err
}

// releaseClaim frees the dedup slot after a failed delivery so the workflow
// can retry the job.
func (h *Handler) releaseClaim(ctx context.Context, key string) {
	if err := h.redis.Del(ctx, key).Err(); err != nil {
		h.logger.Warn("failed to release dedup claim", map[string]interface{}{
			"error": err,
			"key":   key,
		})
	}
}

// auditDelivery indexes an audit document. Audit failures are logged and
// never fail the job.
func (h *Handler) auditDelivery(ctx context.Context, doc auditDocument) {
	if h.es == nil {
		return
	}

	body, err := json.Marshal(doc)
	if err != nil {
		h.logger.Warn("audit document marshal failed", map[string]interface{}{"error": err})
		return
	}

	res, err := esapi.IndexRequest{
		Index:      h.config.AuditIndex,
		DocumentID: doc.NotificationID,
		Body:       bytes.NewReader(body),
	}.Do(ctx, h.es)
	if err != nil {
		h.logger.Warn("audit write failed", map[string]interface{}{
			"error":          err,
			"notificationId": doc.NotificationID,
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		h.logger.Warn("audit write rejected", map[string]interface{}{
			"status":         res.Status(),
			"notificationId": doc.NotificationID,
		})
	}
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

// Execute exposes the core flow for tests.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
