// internal/workers/notify/send-notification/config.go
package sendnotification

import "time"

type Config struct {
	EmailEnabled bool
	ChatEnabled  bool
	FromEmail    string
	ChatTopicARN string
	AWSRegion    string
	AuditIndex   string
	DedupTTL     time.Duration
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		AuditIndex: "notifications",
		DedupTTL:   24 * time.Hour,
		Timeout:    30 * time.Second,
	}
}
