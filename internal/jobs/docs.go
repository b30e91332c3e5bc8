// Package jobs provides the background work of the worker binary.
//
// # Available Jobs
//
//  1. OrderProcessingWorker - long-running consumer of the order queue; drives each
//     order Pending -> Processing -> Completed and settles the message
//  2. StaleOrderReportJob - cron job (github.com/robfig/cron/v3) that logs orders
//     idle in Pending or Processing for longer than a threshold
//
// # Usage
//
//	worker := jobs.NewOrderProcessingWorker(source, handler, workerMetrics, 10*time.Second, logger)
//	go func() { errCh <- worker.Run(ctx) }()
//
//	jobManager := jobs.NewJobManager(staleOrdersHandler, jobs.DefaultStaleOrderSchedule, 15*time.Minute, logger)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
//   - The worker never stops on a per-message error; the message is rejected without requeue
//   - An unreachable broker at startup ends Run with the connection error
//   - A lost connection later on is retried at a fixed interval until ctx is cancelled
//   - Failed job starts are returned from StartAll
package jobs
