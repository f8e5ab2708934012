// internal/common/camunda/worker.go
package camunda

import (
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// HandlerFunc is the job callback shape the notify workers expose.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// JobWorker wraps an open Zeebe job subscription.
type JobWorker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

// StartWorker opens a job subscription for taskType and returns the running
// worker. The handler is responsible for completing or failing the job.
func StartWorker(
	client zbc.Client,
	taskType string,
	maxJobsActive int,
	handler HandlerFunc,
	logger *zap.Logger,
) *JobWorker {
	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(handler)).
		MaxJobsActive(maxJobsActive).
		Open()

	logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", maxJobsActive),
	)

	return &JobWorker{
		worker:   jobWorker,
		logger:   logger,
		taskType: taskType,
	}
}

// Stop closes the job subscription.
func (w *JobWorker) Stop() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
}
