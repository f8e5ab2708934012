// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like NOTIFICATIONS_AWS_REGION
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay, e.g. config.production.yaml
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads a .env if one is reachable from the working directory.
// Multiple paths cover running from the repo root, cmd/ and test dirs.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	for _, p := range possiblePaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// expandEnvVars resolves ${VAR} references in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(val, "${") {
			v.Set(key, os.ExpandEnv(val))
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "notify-workers"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Camunda.BrokerAddress == "" {
		cfg.Camunda.BrokerAddress = "localhost:26500"
	}
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 20
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Notifications.AuditIndex == "" {
		cfg.Notifications.AuditIndex = "notifications"
	}
	if cfg.Notifications.DedupTTLHours == 0 {
		cfg.Notifications.DedupTTLHours = 24
	}
	if cfg.Workers == nil {
		cfg.Workers = map[string]WorkerConfig{}
	}
	for task, wc := range cfg.Workers {
		if wc.Timeout == 0 {
			wc.Timeout = 30000
		}
		if wc.MaxJobsActive == 0 {
			wc.MaxJobsActive = cfg.Camunda.MaxJobsActive
		}
		cfg.Workers[task] = wc
	}
}

func validateConfig(cfg *Config) error {
	if cfg.UI.BaseURL == "" {
		return fmt.Errorf("ui.base_url is required")
	}
	if cfg.Notifications.Email.Enabled && cfg.Notifications.Email.FromEmail == "" {
		return fmt.Errorf("notifications.email.from_email is required when email is enabled")
	}
	if cfg.Notifications.Chat.Enabled && cfg.Notifications.Chat.TopicARN == "" {
		return fmt.Errorf("notifications.chat.topic_arn is required when chat is enabled")
	}
	return nil
}
