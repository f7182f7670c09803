package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/api"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/memory"
	"github.com/warp/leave-engine/store/seed"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	store := memory.New()
	ledger := leave.NewLedger(store)
	service := leave.NewService(ledger, store, store, store)
	require.NoError(t, seed.Load(context.Background(), store, ledger))

	return api.NewRouter(api.NewHandler(service, ledger, store))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func submitLeave(t *testing.T, router http.Handler, body api.SubmitLeaveRequest) api.LeaveRequestDTO {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/leaves", body)
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	return decode[api.LeaveRequestDTO](t, rec)
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

func TestAPI_ListEmployees(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/employees", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	employees := decode[[]api.EmployeeDTO](t, rec)
	require.Len(t, employees, 5)
	assert.Equal(t, "E001", employees[0].ID)
	assert.Equal(t, "Alice Johnson", employees[0].Name)
}

func TestAPI_GetEmployee(t *testing.T) {
	router := newTestRouter(t)

	// Lowercase ids are accepted and normalized.
	rec := doJSON(t, router, http.MethodGet, "/api/employees/e002", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	emp := decode[api.EmployeeDTO](t, rec)
	assert.Equal(t, "E002", emp.ID)
	assert.Equal(t, "Bob Smith", emp.Name)

	rec = doJSON(t, router, http.MethodGet, "/api/employees/E999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_SearchEmployee(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/employees/search?name=carol", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	emp := decode[api.EmployeeDTO](t, rec)
	assert.Equal(t, "E003", emp.ID)

	rec = doJSON(t, router, http.MethodGet, "/api/employees/search?name=nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/employees/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_GetBalance(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/employees/E001/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	balance := decode[api.BalanceDTO](t, rec)
	assert.Equal(t, "E001", balance.EmployeeID)
	assert.Equal(t, 20, balance.Balances["annual"])
	assert.Equal(t, 12, balance.Balances["sick"])
	// Every leave type is present, zero entitlements included.
	assert.Contains(t, balance.Balances, "maternity")
	assert.Equal(t, 0, balance.Balances["maternity"])

	rec = doJSON(t, router, http.MethodGet, "/api/employees/E999/balance", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// LEAVE LIFECYCLE
// =============================================================================

func TestAPI_SubmitApproveFlow(t *testing.T) {
	router := newTestRouter(t)

	// GIVEN a submitted request
	dto := submitLeave(t, router, api.SubmitLeaveRequest{
		EmployeeID: "E001",
		LeaveType:  "annual",
		StartDate:  "2026-09-07",
		EndDate:    "2026-09-09",
		Reason:     "family trip",
	})
	assert.Equal(t, "L001", dto.ID)
	assert.Equal(t, "pending", dto.Status)
	assert.Equal(t, 3, dto.Days)
	assert.Equal(t, "Alice Johnson", dto.EmployeeName)

	// WHEN it is approved
	rec := doJSON(t, router, http.MethodPost, "/api/leaves/L001/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	approved := decode[api.LeaveRequestDTO](t, rec)
	assert.Equal(t, "approved", approved.Status)

	// THEN the balance reflects the debit
	rec = doJSON(t, router, http.MethodGet, "/api/employees/E001/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	balance := decode[api.BalanceDTO](t, rec)
	assert.Equal(t, 17, balance.Balances["annual"])

	// AND the ledger shows the debit entry
	rec = doJSON(t, router, http.MethodGet, "/api/employees/E001/ledger", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	entries := decode[[]api.EntryDTO](t, rec)
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1]
	assert.Equal(t, -3, last.Delta)
	assert.Equal(t, "debit", last.Kind)
	assert.Equal(t, "L001", last.RequestID)
}

func TestAPI_RejectWithReason(t *testing.T) {
	router := newTestRouter(t)

	dto := submitLeave(t, router, api.SubmitLeaveRequest{
		EmployeeID: "E002",
		LeaveType:  "casual",
		StartDate:  "2026-09-14",
		EndDate:    "2026-09-14",
	})

	rec := doJSON(t, router, http.MethodPost, "/api/leaves/"+dto.ID+"/reject",
		api.RejectLeaveRequest{Reason: "blackout week"})
	require.Equal(t, http.StatusOK, rec.Code)

	rejected := decode[api.LeaveRequestDTO](t, rec)
	assert.Equal(t, "rejected", rejected.Status)
	assert.Equal(t, "blackout week", rejected.RejectionReason)

	// Balance untouched: the rejection never reached the ledger.
	rec = doJSON(t, router, http.MethodGet, "/api/employees/E002/balance", nil)
	balance := decode[api.BalanceDTO](t, rec)
	assert.Equal(t, 8, balance.Balances["casual"])
}

func TestAPI_CancelApprovedRestoresBalance(t *testing.T) {
	router := newTestRouter(t)

	dto := submitLeave(t, router, api.SubmitLeaveRequest{
		EmployeeID: "E003",
		LeaveType:  "annual",
		StartDate:  "2026-10-01",
		EndDate:    "2026-10-05",
	})
	rec := doJSON(t, router, http.MethodPost, "/api/leaves/"+dto.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/leaves/"+dto.ID+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cancelled := decode[api.LeaveRequestDTO](t, rec)
	assert.Equal(t, "cancelled", cancelled.Status)

	rec = doJSON(t, router, http.MethodGet, "/api/employees/E003/balance", nil)
	balance := decode[api.BalanceDTO](t, rec)
	assert.Equal(t, 25, balance.Balances["annual"])
}

func TestAPI_PendingList(t *testing.T) {
	router := newTestRouter(t)

	first := submitLeave(t, router, api.SubmitLeaveRequest{
		EmployeeID: "E001", LeaveType: "casual",
		StartDate: "2026-09-01", EndDate: "2026-09-01",
	})
	second := submitLeave(t, router, api.SubmitLeaveRequest{
		EmployeeID: "E002", LeaveType: "sick",
		StartDate: "2026-09-02", EndDate: "2026-09-02",
	})
	rec := doJSON(t, router, http.MethodPost, "/api/leaves/"+first.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/leaves/pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pending := decode[[]api.LeaveRequestDTO](t, rec)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	rec = doJSON(t, router, http.MethodGet, "/api/leaves", nil)
	all := decode[[]api.LeaveRequestDTO](t, rec)
	assert.Len(t, all, 2)
}

func TestAPI_EmployeeLeavesListing(t *testing.T) {
	router := newTestRouter(t)

	for i := 0; i < 2; i++ {
		submitLeave(t, router, api.SubmitLeaveRequest{
			EmployeeID: "E005", LeaveType: "casual",
			StartDate: fmt.Sprintf("2026-09-%02d", 7+i),
			EndDate:   fmt.Sprintf("2026-09-%02d", 7+i),
		})
	}
	submitLeave(t, router, api.SubmitLeaveRequest{
		EmployeeID: "E001", LeaveType: "casual",
		StartDate: "2026-09-07", EndDate: "2026-09-07",
	})

	rec := doJSON(t, router, http.MethodGet, "/api/employees/E005/leaves", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	leaves := decode[[]api.LeaveRequestDTO](t, rec)
	require.Len(t, leaves, 2)
	assert.Equal(t, "L001", leaves[0].ID)
	assert.Equal(t, "L002", leaves[1].ID)
	assert.Equal(t, "Eva Martinez", leaves[0].EmployeeName)
}

// =============================================================================
// ERROR STATUS MAPPING
// =============================================================================

func TestAPI_ErrorStatuses(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
	}{
		{
			name:   "unknown employee is 404",
			method: http.MethodPost, path: "/api/leaves",
			body: api.SubmitLeaveRequest{
				EmployeeID: "E999", LeaveType: "annual",
				StartDate: "2026-09-01", EndDate: "2026-09-02",
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "unknown leave type is 400",
			method: http.MethodPost, path: "/api/leaves",
			body: api.SubmitLeaveRequest{
				EmployeeID: "E001", LeaveType: "sabbatical",
				StartDate: "2026-09-01", EndDate: "2026-09-02",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "bad date is 400",
			method: http.MethodPost, path: "/api/leaves",
			body: api.SubmitLeaveRequest{
				EmployeeID: "E001", LeaveType: "annual",
				StartDate: "01/09/2026", EndDate: "2026-09-02",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "inverted range is 400",
			method: http.MethodPost, path: "/api/leaves",
			body: api.SubmitLeaveRequest{
				EmployeeID: "E001", LeaveType: "annual",
				StartDate: "2026-09-10", EndDate: "2026-09-02",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "insufficient balance is 409",
			method: http.MethodPost, path: "/api/leaves",
			body: api.SubmitLeaveRequest{
				EmployeeID: "E001", LeaveType: "paternity",
				StartDate: "2026-09-01", EndDate: "2026-09-30",
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:   "unknown request id is 404",
			method: http.MethodPost, path: "/api/leaves/L999/approve",
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "get unknown request is 404",
			method: http.MethodGet, path: "/api/leaves/L999",
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "malformed body is 400",
			method: http.MethodPost, path: "/api/leaves",
			body:       "not an object",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, "body: %s", rec.Body.String())

			resp := decode[api.ErrorResponse](t, rec)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestAPI_DoubleApproveIsConflict(t *testing.T) {
	router := newTestRouter(t)

	dto := submitLeave(t, router, api.SubmitLeaveRequest{
		EmployeeID: "E004", LeaveType: "sick",
		StartDate: "2026-09-21", EndDate: "2026-09-22",
	})

	rec := doJSON(t, router, http.MethodPost, "/api/leaves/"+dto.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/leaves/"+dto.ID+"/approve", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The failed retry must not debit again.
	rec = doJSON(t, router, http.MethodGet, "/api/employees/E004/balance", nil)
	balance := decode[api.BalanceDTO](t, rec)
	assert.Equal(t, 10, balance.Balances["sick"])
}

// =============================================================================
// POLICY / ADMIN
// =============================================================================

func TestAPI_GetPolicy(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/policy", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	policy := decode[api.PolicyDTO](t, rec)
	assert.Equal(t, 20, policy.Entitlements["annual"])
	assert.Equal(t, 90, policy.Entitlements["maternity"])
	assert.Equal(t, 5, policy.AnnualCarryoverCap)
	assert.Equal(t, 24, policy.CancellationNoticeHours)
}

func TestAPI_Rollover(t *testing.T) {
	router := newTestRouter(t)

	// Spend some annual days first so carryover has something to cap.
	dto := submitLeave(t, router, api.SubmitLeaveRequest{
		EmployeeID: "E001", LeaveType: "annual",
		StartDate: "2026-11-02", EndDate: "2026-11-16",
	})
	rec := doJSON(t, router, http.MethodPost, "/api/leaves/"+dto.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/admin/rollover", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// 20 - 15 used leaves 5 unused, all of it within the carryover cap.
	rec = doJSON(t, router, http.MethodGet, "/api/employees/E001/balance", nil)
	balance := decode[api.BalanceDTO](t, rec)
	assert.Equal(t, 25, balance.Balances["annual"])
	assert.Equal(t, 10, balance.Balances["casual"])
}

func TestAPI_SeedDemoReloadKeepsDirectory(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/seed/demo", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/employees", nil)
	employees := decode[[]api.EmployeeDTO](t, rec)
	assert.Len(t, employees, 5)
}

func TestAPI_Healthz(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
