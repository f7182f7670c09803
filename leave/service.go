/*
service.go - Request lifecycle: the leave request state machine

PURPOSE:
  Owns leave request records from validated submission through
  approval, rejection, or cancellation, and triggers ledger mutations
  at exactly the right transition points.

STATE MACHINE:

   submit            approve
  ───────▶ pending ──────────▶ approved
              │                    │
              │ reject             │ cancel (credits days back)
              ├──────▶ rejected    ▼
              │ cancel          cancelled
              └──────▶ cancelled

  Transition legality is decided in one place (canTransition); handlers
  and stores never inspect statuses themselves.

LEDGER COUPLING:
  submit            no ledger effect (balance is read, never written)
  approve           debit(employee, type, days)
  reject            no ledger effect
  cancel pending    no ledger effect (nothing was ever debited)
  cancel approved   credit(employee, type, days)

  Each request's days are debited or credited at most once per
  approval/cancellation cycle; an illegal transition fails before any
  side effect.

VALIDATION ORDER AT SUBMISSION (first failing check wins):
  1. employee exists
  2. leave type is in the fixed enumeration
  3. dates parse and end >= start
  4. computed days fit the current balance

CONCURRENCY:
  A single service mutex serializes transitions, so two concurrent
  approvals of the same request cannot both debit: one wins, the other
  observes the post-transition status and fails with InvalidTransition.
  Distinct requests and employees carry no ordering guarantee.
*/
package leave

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// =============================================================================
// TRANSITION TABLE - The single authority on status changes
// =============================================================================

const (
	eventApprove = "approve"
	eventReject  = "reject"
	eventCancel  = "cancel"
)

// canTransition implements the lifecycle table. Anything not listed here
// is illegal.
func canTransition(from Status, event string) bool {
	switch event {
	case eventApprove, eventReject:
		return from == StatusPending
	case eventCancel:
		return from == StatusPending || from == StatusApproved
	}
	return false
}

// =============================================================================
// SERVICE
// =============================================================================

// Service orchestrates the request lifecycle. All mutating operations
// are serialized by an internal mutex.
type Service struct {
	ledger    *Ledger
	requests  RequestStore
	directory Directory
	ids       IDSource

	// Clock is overridable for deterministic tests.
	Clock func() time.Time

	mu sync.Mutex
}

func NewService(ledger *Ledger, requests RequestStore, directory Directory, ids IDSource) *Service {
	return &Service{
		ledger:    ledger,
		requests:  requests,
		directory: directory,
		ids:       ids,
		Clock:     time.Now,
	}
}

// SubmitInput carries the raw boundary values for a submission. Dates
// are YYYY-MM-DD strings; ids and the leave type are matched
// case-insensitively.
type SubmitInput struct {
	EmployeeID string
	LeaveType  string
	StartDate  string
	EndDate    string
	Reason     string
}

// Submit validates a new leave request and persists it in pending state.
// The ledger is read for the balance check but never written; on any
// failure nothing is persisted.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 1. Employee existence
	empID := NormalizeEmployeeID(in.EmployeeID)
	emp, err := s.directory.FindByID(ctx, empID)
	if err != nil {
		return nil, fmt.Errorf("directory lookup failed: %w", err)
	}
	if emp == nil {
		return nil, &NotFoundError{Kind: "employee", ID: string(empID)}
	}

	// 2. Leave type membership
	leaveType, err := ParseLeaveType(in.LeaveType)
	if err != nil {
		return nil, err
	}

	// 3. Date parsing and ordering
	start, err := ParseDate(in.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(in.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, &ValidationError{
			Field:   "end_date",
			Value:   in.EndDate,
			Message: fmt.Sprintf("end date %s is before start date %s", end, start),
		}
	}

	// 4. Balance sufficiency for the inclusive span
	days := DaysInclusive(start, end)
	balance, err := s.ledger.Balance(ctx, empID, leaveType)
	if err != nil {
		return nil, err
	}
	if days > balance {
		return nil, &InsufficientBalanceError{
			EmployeeID: empID,
			Type:       leaveType,
			Requested:  days,
			Available:  balance,
		}
	}

	id, err := s.ids.NextRequestID(ctx)
	if err != nil {
		return nil, fmt.Errorf("id generation failed: %w", err)
	}

	now := s.Clock()
	req := &LeaveRequest{
		ID:         id,
		EmployeeID: empID,
		Type:       leaveType,
		StartDate:  start,
		EndDate:    end,
		Days:       days,
		Reason:     in.Reason,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.requests.SaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to persist request: %w", err)
	}
	return req, nil
}

// Get returns a request by id.
func (s *Service) Get(ctx context.Context, id RequestID) (*LeaveRequest, error) {
	req, err := s.requests.GetRequest(ctx, NormalizeRequestID(string(id)))
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, &NotFoundError{Kind: "request", ID: string(id)}
	}
	return req, nil
}

// ListPending returns all pending requests in insertion order.
func (s *Service) ListPending(ctx context.Context) ([]*LeaveRequest, error) {
	status := StatusPending
	return s.requests.ListRequests(ctx, RequestFilter{Status: &status})
}

// ListForEmployee returns an employee's requests, any status, in
// insertion order. Fails with NotFound for unknown employees.
func (s *Service) ListForEmployee(ctx context.Context, id EmployeeID) ([]*LeaveRequest, error) {
	empID := NormalizeEmployeeID(string(id))
	emp, err := s.directory.FindByID(ctx, empID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, &NotFoundError{Kind: "employee", ID: string(empID)}
	}
	return s.requests.ListRequests(ctx, RequestFilter{EmployeeID: &empID})
}

// ListAll returns every request in insertion order.
func (s *Service) ListAll(ctx context.Context) ([]*LeaveRequest, error) {
	return s.requests.ListRequests(ctx, RequestFilter{})
}

// Balances returns an employee's remaining days per leave type.
func (s *Service) Balances(ctx context.Context, id EmployeeID) (map[LeaveType]int, error) {
	empID := NormalizeEmployeeID(string(id))
	emp, err := s.directory.FindByID(ctx, empID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, &NotFoundError{Kind: "employee", ID: string(empID)}
	}
	return s.ledger.Balances(ctx, empID)
}

// Approve transitions a pending request to approved and debits the
// employee's balance by the request's days. Either both happen or
// neither does.
func (s *Service) Approve(ctx context.Context, id RequestID) (*LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := s.loadForTransition(ctx, id, eventApprove)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.Debit(ctx, req.EmployeeID, req.Type, req.Days, req.ID, req.Reason); err != nil {
		return nil, err
	}

	req.Status = StatusApproved
	req.UpdatedAt = s.Clock()
	if err := s.requests.SaveRequest(ctx, req); err != nil {
		// Undo the debit so a failed write does not leak days.
		_ = s.ledger.Credit(ctx, req.EmployeeID, req.Type, req.Days, req.ID, "approval write failed")
		return nil, fmt.Errorf("failed to persist approval: %w", err)
	}
	return req, nil
}

// Reject transitions a pending request to rejected, recording the
// reason. No ledger effect: nothing was ever debited.
func (s *Service) Reject(ctx context.Context, id RequestID, reason string) (*LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := s.loadForTransition(ctx, id, eventReject)
	if err != nil {
		return nil, err
	}

	req.Status = StatusRejected
	req.RejectionReason = reason
	req.UpdatedAt = s.Clock()
	if err := s.requests.SaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to persist rejection: %w", err)
	}
	return req, nil
}

// Cancel transitions a pending or approved request to cancelled. When
// the request was approved, its days are credited back; this is a
// credit-reversal, not a re-open. Cancelling a pending request has no
// ledger effect.
func (s *Service) Cancel(ctx context.Context, id RequestID) (*LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := s.loadForTransition(ctx, id, eventCancel)
	if err != nil {
		return nil, err
	}

	wasApproved := req.Status == StatusApproved
	if wasApproved {
		if err := s.ledger.Credit(ctx, req.EmployeeID, req.Type, req.Days, req.ID, "approved leave cancelled"); err != nil {
			return nil, err
		}
	}

	req.Status = StatusCancelled
	req.UpdatedAt = s.Clock()
	if err := s.requests.SaveRequest(ctx, req); err != nil {
		if wasApproved {
			// Undo the credit so a failed write does not mint days.
			_ = s.ledger.Debit(ctx, req.EmployeeID, req.Type, req.Days, req.ID, "cancellation write failed")
		}
		return nil, fmt.Errorf("failed to persist cancellation: %w", err)
	}
	return req, nil
}

// loadForTransition fetches the record and checks the transition table.
// Unknown ids fail with NotFound before any status inspection.
func (s *Service) loadForTransition(ctx context.Context, id RequestID, event string) (*LeaveRequest, error) {
	reqID := NormalizeRequestID(string(id))
	req, err := s.requests.GetRequest(ctx, reqID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, &NotFoundError{Kind: "request", ID: string(id)}
	}
	if !canTransition(req.Status, event) {
		return nil, &InvalidTransitionError{RequestID: reqID, Status: req.Status, Event: event}
	}
	return req, nil
}
