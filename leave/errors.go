/*
errors.go - Centralized error types for the leave core

PURPOSE:
  All error kinds in one place. Every core operation returns either a
  record or one of these; nothing is logged, retried, or treated as
  fatal inside the core.

ERROR TAXONOMY:
  NotFound            - employee id or request id does not exist
  Validation          - unknown leave type, inverted range, bad date
  InsufficientBalance - requested days exceed the current balance
  InvalidTransition   - status change illegal for the current status

USAGE:
  Callers classify with errors.Is/errors.As:

    if errors.Is(err, leave.ErrInsufficientBalance) { ... }

    var tr *leave.InvalidTransitionError
    if errors.As(err, &tr) { log(tr.Status) }
*/
package leave

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when an employee id matches nothing
	// in the directory.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrRequestNotFound is returned when a request id is unknown.
	ErrRequestNotFound = errors.New("leave request not found")

	// ErrValidation is the base of all input validation failures.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientBalance is returned when a submission asks for more
	// days than the employee has left for that leave type.
	ErrInsufficientBalance = errors.New("insufficient leave balance")

	// ErrInvalidTransition is returned when a status change is illegal
	// given the request's current status.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// =============================================================================
// STRUCTURED ERRORS - Carry the offending field/value
// =============================================================================

// NotFoundError identifies which entity kind and id was missing.
type NotFoundError struct {
	Kind string // "employee" or "request"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	if e.Kind == "employee" {
		return ErrEmployeeNotFound
	}
	return ErrRequestNotFound
}

// ValidationError reports a malformed or semantically invalid input.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// InsufficientBalanceError details a balance shortage.
type InsufficientBalanceError struct {
	EmployeeID EmployeeID
	Type       LeaveType
	Requested  int
	Available  int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s leave balance for %s: requested %d day(s), available %d day(s)",
		e.Type, e.EmployeeID, e.Requested, e.Available)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// Shortfall is how many days the request exceeded the balance by.
func (e *InsufficientBalanceError) Shortfall() int { return e.Requested - e.Available }

// InvalidTransitionError names the current status that blocked an event.
type InvalidTransitionError struct {
	RequestID RequestID
	Status    Status // status at the time of the attempt
	Event     string // "approve", "reject", "cancel"
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s request %s: status is %q", e.Event, e.RequestID, e.Status)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) || errors.Is(err, ErrRequestNotFound)
}

// IsClientError returns true if the error is due to invalid caller input
// rather than an internal failure. All of these are recoverable.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInvalidTransition) ||
		IsNotFound(err)
}
