/*
Package leave implements the leave-accounting core: a balance ledger of
per-employee, per-type day counters, and the request lifecycle that moves
leave requests through pending/approved/rejected/cancelled while keeping
the ledger consistent.

KEY CONCEPTS IN THIS FILE (types.go):
  - LeaveType: closed enumeration of leave categories
  - Status:    closed enumeration of request states
  - Date:      a calendar date (day granularity, no time-of-day)
  - LeaveRequest: the central entity

DESIGN PRINCIPLES:
  1. Closed enums: leave types and statuses are fixed sets, validated at
     the boundary, never extended at runtime.
  2. Fixed-shape records: every entity is a typed struct, not a map.
  3. Value errors: every failure is a returned, structured error (see
     errors.go); the core never logs or panics.

SEE ALSO:
  - ledger.go:  balance counters and the entry audit trail
  - service.go: the request state machine
*/
package leave

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// EmployeeID is an organization-defined identifier, e.g. "E001".
// Treated case-insensitively; normalized to uppercase at the boundary.
type EmployeeID string

// RequestID identifies a leave request, e.g. "L001". Generated by the
// core: zero-padded, sequential, never reused.
type RequestID string

// NormalizeEmployeeID uppercases and trims an employee identifier.
func NormalizeEmployeeID(id string) EmployeeID {
	return EmployeeID(strings.ToUpper(strings.TrimSpace(id)))
}

// NormalizeRequestID uppercases and trims a request identifier.
func NormalizeRequestID(id string) RequestID {
	return RequestID(strings.ToUpper(strings.TrimSpace(id)))
}

// =============================================================================
// LEAVE TYPE - Closed enumeration
// =============================================================================

type LeaveType string

const (
	Casual    LeaveType = "casual"
	Sick      LeaveType = "sick"
	Annual    LeaveType = "annual"
	Maternity LeaveType = "maternity"
	Paternity LeaveType = "paternity"
)

// LeaveTypes returns the fixed set of valid leave types, sorted.
func LeaveTypes() []LeaveType {
	types := []LeaveType{Casual, Sick, Annual, Maternity, Paternity}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// IsValid reports whether t is a member of the fixed enumeration.
func (t LeaveType) IsValid() bool {
	switch t {
	case Casual, Sick, Annual, Maternity, Paternity:
		return true
	}
	return false
}

// ParseLeaveType parses a leave type, case-insensitively.
func ParseLeaveType(s string) (LeaveType, error) {
	t := LeaveType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", &ValidationError{
			Field:   "leave_type",
			Value:   s,
			Message: fmt.Sprintf("unknown leave type %q, valid types: %s", s, joinTypes()),
		}
	}
	return t, nil
}

func joinTypes() string {
	types := LeaveTypes()
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

// =============================================================================
// STATUS - Request state machine states
// =============================================================================

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// =============================================================================
// DATE - Calendar date, day granularity
// =============================================================================

// DateLayout is the wire format for dates: YYYY-MM-DD, no timezone.
const DateLayout = "2006-01-02"

// Date is a calendar date. The zero value is the zero date.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, &ValidationError{
			Field:   "date",
			Value:   s,
			Message: fmt.Sprintf("invalid date %q (use YYYY-MM-DD)", s),
		}
	}
	return Date{t: t.UTC()}, nil
}

// Today returns the current date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }
func (d Date) IsZero() bool           { return d.t.IsZero() }

func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) Year() int          { return d.t.Year() }

func (d Date) String() string { return d.t.Format(DateLayout) }

// DaysInclusive returns the inclusive day span between two dates:
// (end - start in whole days) + 1. A same-day span is 1 day.
// Purely calendar arithmetic; weekends and holidays are not excluded.
func DaysInclusive(start, end Date) int {
	return int(end.t.Sub(start.t).Hours()/24) + 1
}

// =============================================================================
// LEAVE REQUEST - The central entity
// =============================================================================

// LeaveRequest is a single request for leave. Days, dates, type, and
// reason are immutable after creation; only Status, RejectionReason,
// and UpdatedAt change as the request moves through its lifecycle.
type LeaveRequest struct {
	ID         RequestID
	EmployeeID EmployeeID
	Type       LeaveType
	StartDate  Date
	EndDate    Date

	// Days is the inclusive day span, computed once at creation.
	// Invariant: Days >= 1.
	Days int

	Reason string
	Status Status

	// RejectionReason is set only when Status reaches StatusRejected.
	RejectionReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a copy of the request. Stores hand out clones so callers
// cannot mutate persisted state through aliasing.
func (r *LeaveRequest) Clone() *LeaveRequest {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}
