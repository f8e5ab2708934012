// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeNotificationContextInvalid ErrorCode = "NOTIFICATION_CONTEXT_INVALID"
	ErrCodeRecipientLookupFailed      ErrorCode = "RECIPIENT_LOOKUP_FAILED"
	ErrCodeNotificationSendFailed     ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeAuditWriteFailed           ErrorCode = "AUDIT_WRITE_FAILED"
	ErrCodeExternalServiceFailed      ErrorCode = "EXTERNAL_SERVICE_FAILED"
	ErrCodeTimeout                    ErrorCode = "TIMEOUT"
)

// StandardError represents a structured application error.
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

// BPMNError represents an error that can be thrown to the workflow engine.
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

// ToErrorVariables returns a map suitable for setting job fail variables.
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

// NewNotificationContextInvalidError creates a non-retryable integration error
// for structurally invalid notification payloads.
func NewNotificationContextInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationContextInvalid,
		Message:   "Notification context failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecipientLookupFailedError creates a retryable database error.
func NewRecipientLookupFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecipientLookupFailed,
		Message:   "Database error during curator lookup",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable delivery error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditWriteFailedError creates a non-retryable audit error. Audit writes
// never fail the delivery job; callers log this and move on.
func NewAuditWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditWriteFailed,
		Message:   "Notification audit write failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExternalServiceError creates a retryable error for an upstream outage.
func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalServiceFailed,
		Message:   fmt.Sprintf("External service %s unavailable", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTimeoutError creates a retryable timeout error.
func NewTimeoutError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("Operation %s timed out", operation),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryable reports whether err carries a retryable StandardError.
func IsRetryable(err error) bool {
	if se, ok := err.(*StandardError); ok {
		return se.Retryable
	}
	return false
}

// ToBPMNError converts a StandardError into the workflow-facing form.
func ToBPMNError(se *StandardError, retries int) *BPMNError {
	return &BPMNError{
		Code:      string(se.Code),
		Message:   se.Message,
		Details:   se.Details,
		Retryable: se.Retryable,
		Retries:   retries,
	}
}
