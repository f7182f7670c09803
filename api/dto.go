/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the domain model
  from the external contract. Dates cross the boundary as YYYY-MM-DD
  strings; timestamps as RFC3339.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

VALIDATION:
  Handlers pass raw values to the core, which owns validation; DTOs are
  pure data carriers.
*/
package api

import (
	"time"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// EmployeeDTO represents a directory record.
type EmployeeDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Role       string `json:"role"`
	Email      string `json:"email"`
	ManagerID  string `json:"manager_id,omitempty"`
}

// BalanceDTO is an employee's remaining days per leave type.
type BalanceDTO struct {
	EmployeeID string         `json:"employee_id"`
	Balances   map[string]int `json:"balances"`
}

// LeaveRequestDTO represents a leave request. EmployeeName is resolved
// from the directory for display; the core record carries only the id.
type LeaveRequestDTO struct {
	ID              string `json:"id"`
	EmployeeID      string `json:"employee_id"`
	EmployeeName    string `json:"employee_name,omitempty"`
	LeaveType       string `json:"leave_type"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Days            int    `json:"days"`
	Reason          string `json:"reason"`
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// EntryDTO is one ledger entry in an employee's mutation trail.
type EntryDTO struct {
	EmployeeID string `json:"employee_id"`
	LeaveType  string `json:"leave_type"`
	Delta      int    `json:"delta"`
	Kind       string `json:"kind"`
	RequestID  string `json:"request_id,omitempty"`
	Reason     string `json:"reason,omitempty"`
	At         string `json:"at"`
}

// PolicyDTO is the company entitlement policy.
type PolicyDTO struct {
	Entitlements            map[string]int `json:"entitlements"`
	AnnualCarryoverCap      int            `json:"annual_carryover_cap"`
	CancellationNoticeHours int            `json:"cancellation_notice_hours"`
}

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// SubmitLeaveRequest is the body of POST /api/leaves.
type SubmitLeaveRequest struct {
	EmployeeID string `json:"employee_id"`
	LeaveType  string `json:"leave_type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Reason     string `json:"reason"`
}

// RejectLeaveRequest is the body of POST /api/leaves/{id}/reject.
type RejectLeaveRequest struct {
	Reason string `json:"reason"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toEmployeeDTO(e leave.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:         string(e.ID),
		Name:       e.Name,
		Department: e.Department,
		Role:       e.Role,
		Email:      e.Email,
		ManagerID:  string(e.ManagerID),
	}
}

func toLeaveRequestDTO(r *leave.LeaveRequest, employeeName string) LeaveRequestDTO {
	return LeaveRequestDTO{
		ID:              string(r.ID),
		EmployeeID:      string(r.EmployeeID),
		EmployeeName:    employeeName,
		LeaveType:       string(r.Type),
		StartDate:       r.StartDate.String(),
		EndDate:         r.EndDate.String(),
		Days:            r.Days,
		Reason:          r.Reason,
		Status:          string(r.Status),
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toEntryDTO(e leave.Entry) EntryDTO {
	return EntryDTO{
		EmployeeID: string(e.EmployeeID),
		LeaveType:  string(e.Type),
		Delta:      e.Delta,
		Kind:       string(e.Kind),
		RequestID:  string(e.RequestID),
		Reason:     e.Reason,
		At:         e.At.UTC().Format(time.RFC3339),
	}
}

func toBalanceDTO(id leave.EmployeeID, balances map[leave.LeaveType]int) BalanceDTO {
	out := make(map[string]int, len(balances))
	for t, days := range balances {
		out[string(t)] = days
	}
	return BalanceDTO{EmployeeID: string(id), Balances: out}
}
