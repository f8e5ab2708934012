// internal/templates/submission/template.go

// Package submission renders the notification sent to community curators
// when a record is submitted to their community. One notification context in,
// four channel renderings out: subject, HTML, plain text, chat markdown.
package submission

import (
	"strings"

	"notify-workers/internal/i18n"
	"notify-workers/internal/models"
)

// User-facing phrases. Each one is resolved through the Translator keyed by
// its literal English form; placeholders are substituted after lookup.
const (
	phraseSubject = "📥 New record submission to your community '{{community_title}}'"

	phraseSubmitted   = "The record '{{record_title}}' was submitted to your community '{{community_title}}' by @'{{creator_name}}'"
	phraseSubmittedMD = "The record *{{record_title}}* was submitted to your community *{{community_title}}* by *@{{creator_name}}*"

	phraseWithMessage = "with the following message:"
	phraseReview      = "Review the submission request"
	phraseSettings    = "Check your account notification settings"
)

// requestPath is the UI route under which a request is reviewed.
const requestPath = "/me/requests/"

// Renderer is a pure projection from a notification context to the four
// channel strings. It holds no mutable state and is safe for concurrent use.
type Renderer struct {
	translator  i18n.Translator
	baseUIURL   string
	settingsURL string
}

// NewRenderer creates a Renderer. baseUIURL is the repository UI root used to
// build the review link; settingsURL is the already-resolved notification
// settings page. A nil translator keeps phrases in English.
func NewRenderer(translator i18n.Translator, baseUIURL, settingsURL string) *Renderer {
	if translator == nil {
		translator = i18n.Passthrough()
	}
	return &Renderer{
		translator:  translator,
		baseUIURL:   baseUIURL,
		settingsURL: settingsURL,
	}
}

// WithTranslator returns a copy of the Renderer using the given translator.
func (r *Renderer) WithTranslator(translator i18n.Translator) *Renderer {
	if translator == nil {
		return r
	}
	c := *r
	c.translator = translator
	return &c
}

// RequestLink builds the review URL for a request id. The id is assumed
// URL-safe; the base URL is concatenated verbatim.
func (r *Renderer) RequestLink(requestID string) string {
	return r.baseUIURL + requestPath + requestID
}

// Render produces all four channel renderings for one notification. Blank
// titles or creator names degrade to blank substitutions; an empty message
// omits the message block and its lead-in phrase entirely.
func (r *Renderer) Render(n models.Notification) models.RenderedMessage {
	params := map[string]string{
		"community_title": n.Request.Receiver.Title,
		"record_title":    n.Request.Topic.Title,
		"creator_name":    n.Request.CreatedBy.DisplayName(),
	}
	requestLink := r.RequestLink(n.Request.ID)
	hasMessage := n.Message != ""

	review := r.translator.Translate(phraseReview, nil)
	settings := r.translator.Translate(phraseSettings, nil)
	withMessage := r.translator.Translate(phraseWithMessage, nil)

	return models.RenderedMessage{
		Subject:      r.translator.Translate(phraseSubject, params),
		HTMLBody:     r.renderHTML(params, n.Message, hasMessage, requestLink, review, settings, withMessage),
		PlainBody:    r.renderText(phraseSubmitted, params, n.Message, hasMessage, requestLink, review, settings, withMessage),
		MarkdownBody: r.renderText(phraseSubmittedMD, params, n.Message, hasMessage, requestLink, review, settings, withMessage),
	}
}

// renderText covers the plain and markdown channels, which differ only in
// the sentence phrase; links use [label](url) syntax in both.
func (r *Renderer) renderText(sentencePhrase string, params map[string]string, message string, hasMessage bool, requestLink, review, settings, withMessage string) string {
	sentence := r.translator.Translate(sentencePhrase, params)

	var blocks []string
	if hasMessage {
		blocks = append(blocks, sentence+" "+withMessage, message)
	} else {
		blocks = append(blocks, sentence+".")
	}
	blocks = append(blocks,
		"["+review+"]("+requestLink+")",
		"["+settings+"]("+r.settingsURL+")",
	)

	return strings.Join(blocks, "\n\n")
}

// renderHTML emits paragraph blocks. The message is trusted upstream and
// included without escaping, wrapped in an emphasis tag.
func (r *Renderer) renderHTML(params map[string]string, message string, hasMessage bool, requestLink, review, settings, withMessage string) string {
	sentence := r.translator.Translate(phraseSubmitted, params)

	var blocks []string
	if hasMessage {
		blocks = append(blocks,
			"<p>"+sentence+" "+withMessage+"</p>",
			"<p><em>"+message+"</em></p>",
		)
	} else {
		blocks = append(blocks, "<p>"+sentence+".</p>")
	}
	blocks = append(blocks,
		`<p><a href="`+requestLink+`">`+review+`</a></p>`,
		`<p><a href="`+r.settingsURL+`">`+settings+`</a></p>`,
	)

	return strings.Join(blocks, "\n")
}
