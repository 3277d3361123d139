package jobs

import (
	"github.com/warp/resource-engine/internal/config"
	"github.com/warp/resource-engine/internal/logger"
	"github.com/warp/resource-engine/internal/repository"
	"github.com/warp/resource-engine/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	store  repository.Store
	policy service.Policy
	config *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(store repository.Store, policy service.Policy, cfg *config.Config) *JobRunner {
	return &JobRunner{
		store:  store,
		policy: policy,
		config: cfg,
	}
}

// Config exposes the loaded configuration to the scheduler.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}
