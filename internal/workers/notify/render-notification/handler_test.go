// internal/workers/notify/render-notification/handler_test.go
package rendernotification

import (
	"context"
	"testing"
	"time"

	"notify-workers/internal/common/logger"
	"notify-workers/internal/i18n"
	"notify-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		BaseUIURL:   "https://repo.example",
		SettingsURL: "https://repo.example/account/settings/notifications",
		Timeout:     10 * time.Second,
	}
}

func createTestHandler(t *testing.T, catalogs map[string]i18n.Translator) *Handler {
	testLogger := logger.NewTestLogger(t)
	return NewHandler(createTestConfig(), catalogs, testLogger)
}

func createInput(requestID, communityTitle, recordTitle, username, message string) *Input {
	return &Input{
		Notification: models.Notification{
			Request: models.SubmissionRequest{
				ID:        requestID,
				Receiver:  models.Community{ID: "comm-1", Title: communityTitle},
				CreatedBy: models.Actor{Username: username},
				Topic:     models.Record{Title: recordTitle},
			},
			Message: message,
		},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		input          *Input
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:  "renders all four channels",
			input: createInput("42", "Open Science", "Dataset X", "jdoe", ""),
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, "📥 New record submission to your community 'Open Science'", output.Subject)
				assert.Contains(t, output.PlainBody,
					"The record 'Dataset X' was submitted to your community 'Open Science' by @'jdoe'.")
				assert.Contains(t, output.PlainBody,
					"[Review the submission request](https://repo.example/me/requests/42)")
				assert.Contains(t, output.HTMLBody, `<a href="https://repo.example/me/requests/42">`)
				assert.Contains(t, output.MDBody, "*Dataset X*")
			},
		},
		{
			name:  "message carried into every body",
			input: createInput("7", "Geo", "Rocks", "sam", "Please review soon"),
			validateOutput: func(t *testing.T, output *Output) {
				for _, body := range []string{output.HTMLBody, output.PlainBody, output.MDBody} {
					assert.Contains(t, body, "Please review soon")
				}
				assert.Contains(t, output.HTMLBody, "<em>Please review soon</em>")
			},
		},
		{
			name:  "no message omits lead-in",
			input: createInput("7", "Geo", "Rocks", "sam", ""),
			validateOutput: func(t *testing.T, output *Output) {
				for _, out := range []string{output.Subject, output.HTMLBody, output.PlainBody, output.MDBody} {
					assert.NotContains(t, out, "with the following message")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, nil)
			output, err := handler.Execute(context.Background(), tt.input)

			require.NoError(t, err)
			require.NotNil(t, output)
			tt.validateOutput(t, output)
		})
	}
}

func TestHandler_Execute_LocaleCatalog(t *testing.T) {
	catalogs := map[string]i18n.Translator{
		"es": i18n.NewCatalog(map[string]string{
			"Review the submission request": "Revisar la solicitud",
		}),
	}
	handler := createTestHandler(t, catalogs)

	t.Run("known locale uses catalog", func(t *testing.T) {
		input := createInput("1", "C", "R", "u", "")
		input.Locale = "es"

		output, err := handler.Execute(context.Background(), input)

		require.NoError(t, err)
		assert.Contains(t, output.PlainBody, "[Revisar la solicitud](")
	})

	t.Run("unknown locale falls back to english", func(t *testing.T) {
		input := createInput("1", "C", "R", "u", "")
		input.Locale = "fr"

		output, err := handler.Execute(context.Background(), input)

		require.NoError(t, err)
		assert.Contains(t, output.PlainBody, "[Review the submission request](")
	})
}

func TestHandler_Execute_EmptyRequestID(t *testing.T) {
	handler := createTestHandler(t, nil)
	input := createInput("", "C", "R", "u", "")

	output, err := handler.Execute(context.Background(), input)

	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrContextInvalid)
}

// ==========================
// Payload Validation Tests
// ==========================

func TestHandler_ValidateContext(t *testing.T) {
	tests := []struct {
		name      string
		variables string
		wantErr   bool
	}{
		{
			name: "valid payload",
			variables: `{"notification": {"request": {
				"id": "42",
				"receiver": {"id": "c1", "title": "Open Science"},
				"createdBy": {"username": "jdoe"},
				"topic": {"title": "Dataset X"}
			}}}`,
			wantErr: false,
		},
		{
			name: "valid payload with message and locale",
			variables: `{"locale": "es", "notification": {"message": "hi", "request": {
				"id": "42", "receiver": {}, "createdBy": {}, "topic": {}
			}}}`,
			wantErr: false,
		},
		{
			name:      "missing notification",
			variables: `{"unrelated": true}`,
			wantErr:   true,
		},
		{
			name:      "missing request",
			variables: `{"notification": {"message": "hi"}}`,
			wantErr:   true,
		},
		{
			name: "missing receiver",
			variables: `{"notification": {"request": {
				"id": "42", "createdBy": {}, "topic": {}
			}}}`,
			wantErr: true,
		},
		{
			name: "empty request id",
			variables: `{"notification": {"request": {
				"id": "", "receiver": {}, "createdBy": {}, "topic": {}
			}}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, nil)
			err := handler.validateContext(tt.variables)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
