package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"ordermanagement/internal/core/application/usecases/queries"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	staleOrderReportJob *StaleOrderReportJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	staleOrdersHandler queries.GetStaleOrdersQueryHandler,
	staleOrderSchedule string,
	staleOrderThreshold time.Duration,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		staleOrderReportJob: NewStaleOrderReportJob(staleOrdersHandler, staleOrderSchedule, staleOrderThreshold, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.staleOrderReportJob.Start(); err != nil {
		return fmt.Errorf("failed to start stale order report job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.staleOrderReportJob.Stop()
}
