/*
handlers.go - HTTP API handlers for the leave management system

PURPOSE:
  Exposes the leave core via REST. Handles HTTP request/response and
  JSON serialization, and delegates everything else to the domain.

ENDPOINTS:
  Employees:
    GET    /api/employees                 List directory
    GET    /api/employees/search?name=    Fuzzy name lookup
    GET    /api/employees/{id}            Employee detail
    GET    /api/employees/{id}/balance    Per-type balance
    GET    /api/employees/{id}/leaves     Employee's requests
    GET    /api/employees/{id}/ledger     Ledger entry trail

  Leaves:
    POST   /api/leaves                    Submit a request
    GET    /api/leaves                    All requests
    GET    /api/leaves/pending            Pending requests
    GET    /api/leaves/{id}               Request detail
    POST   /api/leaves/{id}/approve       Approve
    POST   /api/leaves/{id}/reject        Reject (body: reason)
    POST   /api/leaves/{id}/cancel        Cancel

  Policy / admin:
    GET    /api/policy                    Entitlement table
    POST   /api/admin/rollover            Year-end rollover
    POST   /api/seed/demo                 Load the demo organization

ERROR HANDLING:
  Domain error kinds map to HTTP status:
  - 400: validation (unknown type, bad dates)
  - 404: unknown employee or request id
  - 409: insufficient balance, illegal transition
  - 500: everything else

SEE ALSO:
  - dto.go: request/response data structures
  - server.go: router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/seed"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service   *leave.Service
	Ledger    *leave.Ledger
	Directory leave.Directory
}

func NewHandler(service *leave.Service, ledger *leave.Ledger, directory leave.Directory) *Handler {
	return &Handler{Service: service, Ledger: ledger, Directory: directory}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns the full directory.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Directory.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee by id.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := leave.NormalizeEmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Directory.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// SearchEmployee looks an employee up by name substring.
func (h *Handler) SearchEmployee(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "Query parameter 'name' is required", nil)
		return
	}

	emp, err := h.Directory.FindByName(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to search employees", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "No employee matches that name", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// GetBalance returns an employee's remaining days per leave type.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := leave.NormalizeEmployeeID(chi.URLParam(r, "id"))

	balances, err := h.Service.Balances(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(id, balances))
}

// ListEmployeeLeaves returns an employee's requests, any status.
func (h *Handler) ListEmployeeLeaves(w http.ResponseWriter, r *http.Request) {
	id := leave.NormalizeEmployeeID(chi.URLParam(r, "id"))

	requests, err := h.Service.ListForEmployee(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toRequestDTOs(r, requests))
}

// GetLedger returns an employee's balance mutation trail.
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	id := leave.NormalizeEmployeeID(chi.URLParam(r, "id"))

	entries, err := h.Ledger.Entries(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load ledger entries", err)
		return
	}

	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// SubmitLeave validates and creates a new pending request.
func (h *Handler) SubmitLeave(w http.ResponseWriter, r *http.Request) {
	var req SubmitLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	record, err := h.Service.Submit(r.Context(), leave.SubmitInput{
		EmployeeID: req.EmployeeID,
		LeaveType:  req.LeaveType,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Reason:     req.Reason,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toRequestDTO(r, record))
}

// GetLeave returns a request by id.
func (h *Handler) GetLeave(w http.ResponseWriter, r *http.Request) {
	record, err := h.Service.Get(r.Context(), leave.RequestID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toRequestDTO(r, record))
}

// ListLeaves returns every request.
func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Service.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toRequestDTOs(r, requests))
}

// ListPendingLeaves returns requests awaiting action.
func (h *Handler) ListPendingLeaves(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Service.ListPending(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list pending requests", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toRequestDTOs(r, requests))
}

// ApproveLeave approves a pending request, debiting the balance.
func (h *Handler) ApproveLeave(w http.ResponseWriter, r *http.Request) {
	record, err := h.Service.Approve(r.Context(), leave.RequestID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toRequestDTO(r, record))
}

// RejectLeave rejects a pending request with a reason.
func (h *Handler) RejectLeave(w http.ResponseWriter, r *http.Request) {
	var req RejectLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	record, err := h.Service.Reject(r.Context(), leave.RequestID(chi.URLParam(r, "id")), req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toRequestDTO(r, record))
}

// CancelLeave cancels a pending or approved request.
func (h *Handler) CancelLeave(w http.ResponseWriter, r *http.Request) {
	record, err := h.Service.Cancel(r.Context(), leave.RequestID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toRequestDTO(r, record))
}

// =============================================================================
// POLICY / ADMIN HANDLERS
// =============================================================================

// GetPolicy returns the company entitlement table.
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	entitlements := make(map[string]int)
	for t, days := range leave.DefaultEntitlements() {
		entitlements[string(t)] = days
	}
	writeJSON(w, http.StatusOK, PolicyDTO{
		Entitlements:            entitlements,
		AnnualCarryoverCap:      leave.AnnualCarryoverCap,
		CancellationNoticeHours: leave.CancellationNoticeHours,
	})
}

// TriggerRollover applies the year-end rollover to every employee.
func (h *Handler) TriggerRollover(w http.ResponseWriter, r *http.Request) {
	if err := leave.Rollover(r.Context(), h.Directory, h.Ledger); err != nil {
		writeError(w, http.StatusInternalServerError, "Rollover failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rolled over"})
}

// SeedDemo loads the demo organization.
func (h *Handler) SeedDemo(w http.ResponseWriter, r *http.Request) {
	if err := seed.Load(r.Context(), h.Directory, h.Ledger); err != nil {
		writeError(w, http.StatusInternalServerError, "Seeding failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "seeded"})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) toRequestDTO(r *http.Request, record *leave.LeaveRequest) LeaveRequestDTO {
	name := ""
	if emp, err := h.Directory.FindByID(r.Context(), record.EmployeeID); err == nil && emp != nil {
		name = emp.Name
	}
	return toLeaveRequestDTO(record, name)
}

func (h *Handler) toRequestDTOs(r *http.Request, records []*leave.LeaveRequest) []LeaveRequestDTO {
	dtos := make([]LeaveRequestDTO, len(records))
	for i, record := range records {
		dtos[i] = h.toRequestDTO(r, record)
	}
	return dtos
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps core error kinds to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case leave.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, leave.ErrValidation):
		writeError(w, http.StatusBadRequest, "Invalid input", err)
	case errors.Is(err, leave.ErrInsufficientBalance):
		writeError(w, http.StatusConflict, "Insufficient balance", err)
	case errors.Is(err, leave.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "Invalid transition", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
