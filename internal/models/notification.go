// internal/models/notification.go
package models

// Notification is the context bundle describing a single record-submission
// event. It is assembled by the review workflow before any worker runs;
// workers only read it.
type Notification struct {
	Request SubmissionRequest `json:"request"`
	// Message is optional curator-facing free text from the submitter.
	// Sanitized upstream; rendered verbatim when non-empty.
	Message string `json:"message,omitempty"`
}

// SubmissionRequest represents one record-submission-to-community workflow
// instance.
type SubmissionRequest struct {
	ID        string    `json:"id"`
	Receiver  Community `json:"receiver"`
	CreatedBy Actor     `json:"createdBy"`
	Topic     Record    `json:"topic"`
}

// Community is the receiving organizational entity in the repository.
type Community struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Record is the submitted repository record.
type Record struct {
	Title string `json:"title"`
}

// Actor is the user who initiated the submission. Username and FullName are
// both optional; an empty string marks absence.
type Actor struct {
	Username string `json:"username,omitempty"`
	FullName string `json:"fullName,omitempty"`
}

// DisplayName returns the username when set, otherwise the profile full
// name, otherwise the empty string.
func (a Actor) DisplayName() string {
	if a.Username != "" {
		return a.Username
	}
	return a.FullName
}

// RenderedMessage holds the per-channel renderings of one notification. All
// four carry the same facts and differ only in markup conventions.
type RenderedMessage struct {
	Subject      string `json:"subject"`
	HTMLBody     string `json:"htmlBody"`
	PlainBody    string `json:"plainBody"`
	MarkdownBody string `json:"mdBody"`
}
