package jobs

import (
	"context"
	"log/slog"
	"time"

	"ordermanagement/internal/core/application/usecases/queries"

	"github.com/robfig/cron/v3"
)

const (
	// DefaultStaleOrderSchedule runs the report at the top of every fifth minute.
	DefaultStaleOrderSchedule = "0 */5 * * * *"

	// DefaultStaleOrderThreshold is how long an unfinished order may sit idle.
	DefaultStaleOrderThreshold = 15 * time.Minute
)

// StaleOrderReportJob periodically logs orders stuck in Pending or Processing.
// It only reports; such orders are never republished or modified.
type StaleOrderReportJob struct {
	handler   queries.GetStaleOrdersQueryHandler
	schedule  string
	threshold time.Duration
	cron      *cron.Cron
	logger    *slog.Logger
	now       func() time.Time
}

// NewStaleOrderReportJob creates the job. schedule is a six-field cron
// expression (with seconds).
func NewStaleOrderReportJob(
	handler queries.GetStaleOrdersQueryHandler,
	schedule string,
	threshold time.Duration,
	logger *slog.Logger,
) *StaleOrderReportJob {
	return &StaleOrderReportJob{
		handler:   handler,
		schedule:  schedule,
		threshold: threshold,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With("component", "stale_order_report_job"),
		now:       time.Now,
	}
}

// Start schedules the report.
func (j *StaleOrderReportJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx := context.Background()
		if _, err := j.Report(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Stale order report failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Stale order report job started",
		"schedule", j.schedule, "threshold", j.threshold.String())
	return nil
}

// Stop stops the schedule and waits for a running report to finish.
func (j *StaleOrderReportJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Stale order report job stopped")
}

// Report runs one pass and returns the number of stale orders found.
func (j *StaleOrderReportJob) Report(ctx context.Context) (int, error) {
	query, err := queries.NewGetStaleOrdersQuery(j.now().Add(-j.threshold))
	if err != nil {
		return 0, err
	}

	stale, err := j.handler.Handle(ctx, query)
	if err != nil {
		return 0, err
	}

	for _, o := range stale {
		j.logger.WarnContext(ctx, "Order is stale",
			"orderId", o.ID.String(),
			"productName", o.ProductName,
			"status", o.Status.String(),
			"createdDate", o.CreatedDate,
			"idleFor", j.now().Sub(o.LastActivity).Round(time.Second).String(),
		)
	}
	if len(stale) > 0 {
		j.logger.WarnContext(ctx, "Stale orders found", "count", len(stale))
	}

	return len(stale), nil
}
