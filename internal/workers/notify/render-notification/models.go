// internal/workers/notify/render-notification/models.go
package rendernotification

import "notify-workers/internal/models"

type Input struct {
	Notification models.Notification `json:"notification"`
	Locale       string              `json:"locale,omitempty"`
}

type Output struct {
	Subject   string `json:"subject"`
	HTMLBody  string `json:"htmlBody"`
	PlainBody string `json:"plainBody"`
	MDBody    string `json:"mdBody"`
}
