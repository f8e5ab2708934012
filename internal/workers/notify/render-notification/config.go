// internal/workers/notify/render-notification/config.go
package rendernotification

import "time"

type Config struct {
	BaseUIURL   string
	SettingsURL string
	Timeout     time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
