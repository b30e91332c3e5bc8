package order

import (
	"fmt"

	"ordermanagement/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions:
//
//	Pending ──> Processing ──> Completed
//	   │
//	   └──> Cancelled
//
// Completed and Cancelled are terminal. Status never moves backwards.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status; the order waits for the worker.
	Pending

	// Processing means a worker has picked the order up.
	Processing

	// Completed is a final state reached after processing succeeds.
	Completed

	// Cancelled is a final state reachable only from Pending.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "Unknown",
		Pending:    "Pending",
		Processing: "Processing",
		Completed:  "Completed",
		Cancelled:  "Cancelled",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:    "Pending",
		Processing: "Processing",
		Completed:  "Completed",
		Cancelled:  "Cancelled",
	}
}

// ParseStatus converts a status name as written by String back to a Status.
// Names are case-sensitive; "Unknown" is rejected.
func ParseStatus(s string) (Status, error) {
	for status, name := range getValidStatusStrings() {
		if name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks that s is one of Pending, Processing, Completed or Cancelled.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the status name, or "Unknown" for values outside the enum.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled
}

// StartProcessing transitions Pending to Processing.
func (s Status) StartProcessing() (Status, error) {
	if s != Pending {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to start processing", s.String()),
		)
	}

	return Processing, nil
}

// Complete transitions Processing to Completed.
//
// Invalid transitions:
//   - Pending -> Completed (must be processing first)
//   - Completed -> Completed (already completed)
//   - Cancelled -> Completed (terminal)
func (s Status) Complete() (Status, error) {
	if s != Processing {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to complete", s.String()),
		)
	}

	return Completed, nil
}

// Cancel transitions Pending to Cancelled.
func (s Status) Cancel() (Status, error) {
	if s != Pending {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to cancel", s.String()),
		)
	}

	return Cancelled, nil
}

// ReachableFrom lists the statuses a stored record may hold for a write of s
// to be accepted. Rewriting the same status is allowed so redelivered work
// stays idempotent; anything else would move the order backwards.
func (s Status) ReachableFrom() []Status {
	switch s {
	case Pending:
		return []Status{Pending}
	case Processing:
		return []Status{Pending, Processing}
	case Completed:
		return []Status{Processing, Completed}
	case Cancelled:
		return []Status{Pending, Cancelled}
	default:
		return nil
	}
}
