// internal/templates/submission/template_test.go
package submission

import (
	"strings"
	"testing"

	"notify-workers/internal/i18n"
	"notify-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

const (
	testBaseURL     = "https://repo.example"
	testSettingsURL = "https://repo.example/account/settings/notifications"
)

func createTestRenderer() *Renderer {
	return NewRenderer(nil, testBaseURL, testSettingsURL)
}

func createNotification(requestID, communityTitle, recordTitle, username, fullName, message string) models.Notification {
	return models.Notification{
		Request: models.SubmissionRequest{
			ID:        requestID,
			Receiver:  models.Community{ID: "comm-1", Title: communityTitle},
			CreatedBy: models.Actor{Username: username, FullName: fullName},
			Topic:     models.Record{Title: recordTitle},
		},
		Message: message,
	}
}

func allOutputs(msg models.RenderedMessage) map[string]string {
	return map[string]string{
		"subject": msg.Subject,
		"html":    msg.HTMLBody,
		"plain":   msg.PlainBody,
		"md":      msg.MarkdownBody,
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestRenderer_Render_Example(t *testing.T) {
	r := createTestRenderer()
	n := createNotification("42", "Open Science", "Dataset X", "jdoe", "", "")

	msg := r.Render(n)

	assert.Equal(t, "📥 New record submission to your community 'Open Science'", msg.Subject)
	assert.Contains(t, msg.PlainBody,
		"The record 'Dataset X' was submitted to your community 'Open Science' by @'jdoe'.")
	assert.Contains(t, msg.PlainBody,
		"[Review the submission request](https://repo.example/me/requests/42)")
}

func TestRenderer_Render_AllChannelsCarrySameFacts(t *testing.T) {
	r := createTestRenderer()
	n := createNotification("req-7", "Marine Biology", "Coral Survey 2026", "mcurie", "Marie Curie", "")

	msg := r.Render(n)

	for channel, out := range allOutputs(msg) {
		assert.NotEmpty(t, out, "channel %s", channel)
		assert.Contains(t, out, "Marine Biology", "channel %s must carry the community title", channel)
	}
	for _, body := range []string{msg.HTMLBody, msg.PlainBody, msg.MarkdownBody} {
		assert.Contains(t, body, "Coral Survey 2026")
		assert.Contains(t, body, "mcurie")
	}
}

func TestRenderer_Render_RequestLink(t *testing.T) {
	tests := []struct {
		name      string
		baseURL   string
		requestID string
		expected  string
	}{
		{
			name:      "plain id",
			baseURL:   "https://repo.example",
			requestID: "42",
			expected:  "https://repo.example/me/requests/42",
		},
		{
			name:      "uuid id",
			baseURL:   "https://inveniordm.example.org",
			requestID: "0b1d-44aa",
			expected:  "https://inveniordm.example.org/me/requests/0b1d-44aa",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(nil, tt.baseURL, testSettingsURL)
			n := createNotification(tt.requestID, "C", "R", "u", "", "")

			msg := r.Render(n)

			assert.Equal(t, tt.expected, r.RequestLink(tt.requestID))
			for _, body := range []string{msg.HTMLBody, msg.PlainBody, msg.MarkdownBody} {
				assert.Contains(t, body, tt.expected)
			}
		})
	}
}

func TestRenderer_Render_CreatorNameFallback(t *testing.T) {
	tests := []struct {
		name     string
		username string
		fullName string
		expected string
	}{
		{
			name:     "username wins over full name",
			username: "jdoe",
			fullName: "Jane Doe",
			expected: "jdoe",
		},
		{
			name:     "full name when username absent",
			username: "",
			fullName: "Jane Doe",
			expected: "Jane Doe",
		},
		{
			name:     "blank when both absent",
			username: "",
			fullName: "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := createTestRenderer()
			n := createNotification("1", "C", "R", tt.username, tt.fullName, "")

			msg := r.Render(n)

			assert.Contains(t, msg.PlainBody, "by @'"+tt.expected+"'")
			assert.Contains(t, msg.MarkdownBody, "*@"+tt.expected+"*")
		})
	}
}

func TestRenderer_Render_Message(t *testing.T) {
	t.Run("absent message omits lead-in everywhere", func(t *testing.T) {
		r := createTestRenderer()
		msg := r.Render(createNotification("1", "C", "R", "u", "", ""))

		for channel, out := range allOutputs(msg) {
			assert.NotContains(t, out, "with the following message", "channel %s", channel)
		}
	})

	t.Run("present message appears verbatim in all channels", func(t *testing.T) {
		r := createTestRenderer()
		msg := r.Render(createNotification("1", "C", "R", "u", "", "Please review soon"))

		for _, body := range []string{msg.HTMLBody, msg.PlainBody, msg.MarkdownBody} {
			assert.Contains(t, body, "Please review soon")
			assert.Contains(t, body, "with the following message:")
		}
	})

	t.Run("html wraps message in emphasis", func(t *testing.T) {
		r := createTestRenderer()
		msg := r.Render(createNotification("1", "C", "R", "u", "", "Please review soon"))

		assert.Contains(t, msg.HTMLBody, "<em>Please review soon</em>")
	})
}

func TestRenderer_Render_ChannelMarkup(t *testing.T) {
	r := createTestRenderer()
	msg := r.Render(createNotification("9", "Open Science", "Dataset X", "jdoe", "", ""))

	t.Run("plain has no markup", func(t *testing.T) {
		assert.NotContains(t, msg.PlainBody, "<")
		assert.NotContains(t, msg.PlainBody, ">")
	})

	t.Run("markdown wraps names in emphasis", func(t *testing.T) {
		assert.Contains(t, msg.MarkdownBody, "*Dataset X*")
		assert.Contains(t, msg.MarkdownBody, "*Open Science*")
		assert.Contains(t, msg.MarkdownBody, "*@jdoe*")
	})

	t.Run("html links are anchors", func(t *testing.T) {
		assert.Contains(t, msg.HTMLBody, `<a href="https://repo.example/me/requests/9">Review the submission request</a>`)
		assert.Contains(t, msg.HTMLBody, `<a href="`+testSettingsURL+`">Check your account notification settings</a>`)
	})

	t.Run("text links use bracket syntax", func(t *testing.T) {
		for _, body := range []string{msg.PlainBody, msg.MarkdownBody} {
			assert.Contains(t, body, "[Review the submission request](https://repo.example/me/requests/9)")
			assert.Contains(t, body, "[Check your account notification settings]("+testSettingsURL+")")
		}
	})
}

func TestRenderer_Render_SettingsLinkPassthrough(t *testing.T) {
	r := NewRenderer(nil, testBaseURL, "https://other.example/prefs?tab=mail")
	msg := r.Render(createNotification("1", "C", "R", "u", "", ""))

	assert.Contains(t, msg.PlainBody, "(https://other.example/prefs?tab=mail)")
	assert.Contains(t, msg.HTMLBody, `href="https://other.example/prefs?tab=mail"`)
}

func TestRenderer_Render_BlankTitlesDegradeToBlank(t *testing.T) {
	r := createTestRenderer()
	msg := r.Render(createNotification("1", "", "", "", "", ""))

	assert.Equal(t, "📥 New record submission to your community ''", msg.Subject)
	assert.Contains(t, msg.PlainBody, "The record '' was submitted to your community '' by @''.")
}

func TestRenderer_WithTranslator(t *testing.T) {
	cat := i18n.NewCatalog(map[string]string{
		phraseReview: "Revisar la solicitud",
	})
	base := createTestRenderer()
	localized := base.WithTranslator(cat)

	n := createNotification("1", "C", "R", "u", "", "")

	require.Contains(t, base.Render(n).PlainBody, "[Review the submission request](")
	assert.Contains(t, localized.Render(n).PlainBody, "[Revisar la solicitud](")
}

func TestRenderer_Render_Idempotent(t *testing.T) {
	r := createTestRenderer()
	n := createNotification("42", "Open Science", "Dataset X", "jdoe", "", "Please review soon")

	first := r.Render(n)
	second := r.Render(n)

	assert.Equal(t, first, second)
}

func TestRenderer_Render_HTMLBlockLayout(t *testing.T) {
	r := createTestRenderer()
	msg := r.Render(createNotification("1", "C", "R", "u", "", "hello"))

	lines := strings.Split(msg.HTMLBody, "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "<p>"))
	assert.Equal(t, "<p><em>hello</em></p>", lines[1])
}
