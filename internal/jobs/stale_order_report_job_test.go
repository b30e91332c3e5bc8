package jobs_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"ordermanagement/internal/core/application/usecases/queries"
	"ordermanagement/internal/core/domain/model/kernel"
	"ordermanagement/internal/core/domain/model/order"
	"ordermanagement/internal/core/ports"
	"ordermanagement/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeOrderAt(t *testing.T, repo ports.OrderRepository, status order.Status, createdDate time.Time, updatedDate *time.Time) *order.Order {
	t.Helper()
	price, err := kernel.PriceFromString("5.00")
	require.NoError(t, err)
	o, err := order.RestoreOrder(kernel.NewUUID(), "Stale item", price, status, createdDate, updatedDate)
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), o)
	require.NoError(t, err)
	return o
}

func TestStaleOrderReportJob_Report(t *testing.T) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("should count only unfinished orders idle longer than threshold", func(t *testing.T) {
		db := openTestDB(t)
		repo := newSQLiteRepositoryFromDB(db)
		now := time.Now().UTC()
		hourAgo := now.Add(-time.Hour)
		minuteAgo := now.Add(-time.Minute)

		storeOrderAt(t, repo, order.Pending, hourAgo, nil)
		storeOrderAt(t, repo, order.Processing, hourAgo, &hourAgo)
		storeOrderAt(t, repo, order.Processing, hourAgo, &minuteAgo)
		storeOrderAt(t, repo, order.Completed, hourAgo, &hourAgo)
		storeOrderAt(t, repo, order.Pending, minuteAgo, nil)

		job := jobs.NewStaleOrderReportJob(
			queries.NewGetStaleOrdersQueryHandler(db),
			jobs.DefaultStaleOrderSchedule,
			15*time.Minute,
			discard,
		)

		count, err := job.Report(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("should report zero on empty store", func(t *testing.T) {
		job := jobs.NewStaleOrderReportJob(
			queries.NewGetStaleOrdersQueryHandler(openTestDB(t)),
			jobs.DefaultStaleOrderSchedule,
			jobs.DefaultStaleOrderThreshold,
			discard,
		)

		count, err := job.Report(context.Background())

		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestStaleOrderReportJob_Start(t *testing.T) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := queries.NewGetStaleOrdersQueryHandler(openTestDB(t))

	t.Run("should reject invalid schedule", func(t *testing.T) {
		job := jobs.NewStaleOrderReportJob(handler, "every now and then", time.Minute, discard)

		require.Error(t, job.Start())
	})

	t.Run("should start and stop with valid schedule", func(t *testing.T) {
		job := jobs.NewStaleOrderReportJob(handler, jobs.DefaultStaleOrderSchedule, time.Minute, discard)

		require.NoError(t, job.Start())
		job.Stop()
	})
}
