package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ordermanagement/internal/core/domain/model/order"
	"ordermanagement/internal/core/ports"
	"ordermanagement/internal/pkg/errs"
)

// ErrProcessingFailure wraps every storage or lifecycle error raised while
// processing an order.
var ErrProcessingFailure = errors.New("order processing failure")

// ProcessOrderOutcome tells the caller how a message should be settled.
type ProcessOrderOutcome int

const (
	// OutcomeCompleted means the order reached Completed during this call.
	OutcomeCompleted ProcessOrderOutcome = iota + 1

	// OutcomeNotFound means no order with the id exists; nothing was written.
	OutcomeNotFound

	// OutcomeSkipped means the order was already terminal; nothing was written.
	OutcomeSkipped
)

func (o ProcessOrderOutcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// ProcessOrderCommandHandler drives a stored order through
// Pending -> Processing -> Completed with a simulated work delay in between.
//
// The current state is read first, so redelivered messages are safe: a
// terminal order is left untouched and an order already in Processing resumes
// at the delay.
type ProcessOrderCommandHandler struct {
	repository ports.OrderRepository
	delay      time.Duration
	sleep      func(time.Duration)
}

// NewProcessOrderCommandHandler creates a handler that waits delay between
// marking an order Processing and Completed.
func NewProcessOrderCommandHandler(repository ports.OrderRepository, delay time.Duration) ProcessOrderCommandHandler {
	return ProcessOrderCommandHandler{
		repository: repository,
		delay:      delay,
		sleep:      time.Sleep,
	}
}

// Handle processes the order named by cmd. The delay is not interrupted by
// ctx; callers that must let in-flight work finish pass a detached context.
func (h *ProcessOrderCommandHandler) Handle(ctx context.Context, cmd ProcessOrderCommand) (ProcessOrderOutcome, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	current, err := h.repository.Get(ctx, cmd.OrderID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return OutcomeNotFound, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: load order %s: %w", ErrProcessingFailure, cmd.OrderID(), err)
	}

	if current.Status().IsTerminal() {
		return OutcomeSkipped, nil
	}

	if current.Status() == order.Pending {
		if err = current.StartProcessing(); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrProcessingFailure, err)
		}
		if err = h.repository.Update(ctx, current); err != nil {
			return 0, fmt.Errorf("%w: mark order %s processing: %w", ErrProcessingFailure, current.ID(), err)
		}
	}

	if h.delay > 0 {
		h.sleep(h.delay)
	}

	if err = current.Complete(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrProcessingFailure, err)
	}
	if err = h.repository.Update(ctx, current); err != nil {
		return 0, fmt.Errorf("%w: mark order %s completed: %w", ErrProcessingFailure, current.ID(), err)
	}

	return OutcomeCompleted, nil
}
