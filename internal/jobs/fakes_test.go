package jobs_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"ordermanagement/internal/adapters/out/postgres"
	"ordermanagement/internal/adapters/out/postgres/orderrepo"
	"ordermanagement/internal/adapters/rabbitmq"
	"ordermanagement/internal/core/domain/model/kernel"
	"ordermanagement/internal/core/domain/model/order"
	"ordermanagement/internal/core/ports"
	"ordermanagement/internal/jobs"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type settlement struct {
	tag     uint64
	ack     bool
	requeue bool
}

// recordingAcknowledger captures how deliveries were settled.
type recordingAcknowledger struct {
	mu          sync.Mutex
	settlements []settlement
}

func (a *recordingAcknowledger) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.settlements = append(a.settlements, settlement{tag: tag, ack: true})
	return nil
}

func (a *recordingAcknowledger) Nack(tag uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.settlements = append(a.settlements, settlement{tag: tag, requeue: requeue})
	return nil
}

func (a *recordingAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func (a *recordingAcknowledger) all() []settlement {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]settlement(nil), a.settlements...)
}

func (a *recordingAcknowledger) count() int {
	return len(a.all())
}

type fakeSubscription struct {
	deliveries chan amqp.Delivery
	closed     chan *amqp.Error

	mu         sync.Mutex
	closeCalls int
}

func newFakeSubscription() *fakeSubscription {
	return &fakeSubscription{
		deliveries: make(chan amqp.Delivery, 16),
		closed:     make(chan *amqp.Error, 1),
	}
}

func (s *fakeSubscription) Deliveries() <-chan amqp.Delivery { return s.deliveries }
func (s *fakeSubscription) NotifyClose() <-chan *amqp.Error  { return s.closed }

func (s *fakeSubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCalls++
	return nil
}

func (s *fakeSubscription) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCalls
}

// drop simulates the broker closing the channel.
func (s *fakeSubscription) drop() {
	s.closed <- &amqp.Error{Code: amqp.ConnectionForced, Reason: "CONNECTION_FORCED"}
}

type subscribeResult struct {
	sub *fakeSubscription
	err error
}

// scriptedSource answers Subscribe calls from a fixed script; once the script
// runs out every call fails.
type scriptedSource struct {
	mu      sync.Mutex
	results []subscribeResult
	calls   int
}

func (s *scriptedSource) Subscribe(context.Context) (jobs.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.results) == 0 {
		return nil, fmt.Errorf("%w: script exhausted", rabbitmq.ErrConnectionFailure)
	}
	next := s.results[0]
	s.results = s.results[1:]
	if next.err != nil {
		return nil, next.err
	}
	return next.sub, nil
}

func (s *scriptedSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// trackingRepository records concurrency and Processing writes.
type trackingRepository struct {
	ports.OrderRepository

	mu          sync.Mutex
	active      int
	maxActive   int
	processing  chan kernel.UUID
	createCalls int
}

func newTrackingRepository(inner ports.OrderRepository) *trackingRepository {
	return &trackingRepository{OrderRepository: inner, processing: make(chan kernel.UUID, 16)}
}

func (r *trackingRepository) Create(ctx context.Context, o *order.Order) (*order.Order, error) {
	r.mu.Lock()
	r.createCalls++
	r.mu.Unlock()
	return r.OrderRepository.Create(ctx, o)
}

func (r *trackingRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	o, err := r.OrderRepository.Get(ctx, id)
	if err == nil && !o.Status().IsTerminal() {
		r.mu.Lock()
		r.active++
		r.maxActive = max(r.maxActive, r.active)
		r.mu.Unlock()
	}
	return o, err
}

func (r *trackingRepository) Update(ctx context.Context, o *order.Order) error {
	err := r.OrderRepository.Update(ctx, o)
	switch o.Status() {
	case order.Processing:
		r.processing <- o.ID()
	case order.Completed:
		r.mu.Lock()
		r.active--
		r.mu.Unlock()
	}
	return err
}

func (r *trackingRepository) maxConcurrent() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxActive
}

func (r *trackingRepository) creates() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createCalls
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := postgres.Open(postgres.Config{
		Driver: postgres.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "orders.db") + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
	})
	require.NoError(t, err)
	return db
}

func newSQLiteRepository(t *testing.T) *orderrepo.GormOrderRepository {
	t.Helper()
	return orderrepo.NewGormOrderRepository(openTestDB(t))
}

func newSQLiteRepositoryFromDB(db *gorm.DB) *orderrepo.GormOrderRepository {
	return orderrepo.NewGormOrderRepository(db)
}
