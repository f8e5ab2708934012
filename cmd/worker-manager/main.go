// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	awsclients "notify-workers/internal/common/aws"
	"notify-workers/internal/common/camunda"
	"notify-workers/internal/common/config"
	"notify-workers/internal/common/database"
	"notify-workers/internal/common/logger"
	"notify-workers/internal/common/observability"
	"notify-workers/internal/i18n"
	"notify-workers/internal/templates/submission"

	rn "notify-workers/internal/workers/notify/render-notification"
	sn "notify-workers/internal/workers/notify/send-notification"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry ---
	// The audit trail is best effort, so an unreachable cluster only disables
	// auditing instead of blocking startup.
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 5, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Warn("elasticsearch unavailable, audit trail disabled", zap.Error(err))
		esClient = nil
	} else {
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Init AWS Clients ---
	sesClient, err := awsclients.NewSESClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("ses client init failed", zap.Error(err))
	}
	snsClient, err := awsclients.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("sns client init failed", zap.Error(err))
	}
	zapLog.Info("AWS clients initialized")

	// Locale catalogs are registered here as translations ship.
	catalogs := map[string]i18n.Translator{}

	renderer := submission.NewRenderer(nil, cfg.UI.BaseURL, cfg.UI.SettingsURL())

	var auditES *elasticsearch.Client
	if esClient != nil {
		auditES = esClient.Client
	}

	// --- Register Workers ---
	var workers []*camunda.JobWorker

	if wcfg := cfg.Workers[rn.TaskType]; wcfg.Enabled {
		handler := rn.NewHandler(
			&rn.Config{
				BaseUIURL:   cfg.UI.BaseURL,
				SettingsURL: cfg.UI.SettingsURL(),
				Timeout:     time.Duration(wcfg.Timeout) * time.Millisecond,
			},
			catalogs, log,
		)
		workers = append(workers,
			camunda.StartWorker(zeebe.GetClient(), rn.TaskType, wcfg.MaxJobsActive, handler.Handle, zapLog))
	}

	if wcfg := cfg.Workers[sn.TaskType]; wcfg.Enabled {
		handler := sn.NewHandler(
			&sn.Config{
				EmailEnabled: cfg.Notifications.Email.Enabled,
				ChatEnabled:  cfg.Notifications.Chat.Enabled,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				ChatTopicARN: cfg.Notifications.Chat.TopicARN,
				AWSRegion:    cfg.Notifications.AWS.Region,
				AuditIndex:   cfg.Notifications.AuditIndex,
				DedupTTL:     time.Duration(cfg.Notifications.DedupTTLHours) * time.Hour,
				Timeout:      time.Duration(wcfg.Timeout) * time.Millisecond,
			},
			pg.DB, redisClient.Client, auditES,
			renderer, sesClient, snsClient, log,
		)
		workers = append(workers,
			camunda.StartWorker(zeebe.GetClient(), sn.TaskType, wcfg.MaxJobsActive, handler.Handle, zapLog))
	}

	zapLog.Info("All workers registered successfully", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := zeebe.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	for _, w := range workers {
		w.Stop()
	}

	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
