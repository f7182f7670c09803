package leave_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/memory"
	"github.com/warp/leave-engine/store/seed"
)

func TestRolloverBalances(t *testing.T) {
	tests := []struct {
		name       string
		current    map[leave.LeaveType]int
		wantAnnual int
	}{
		{"unused annual under cap", map[leave.LeaveType]int{leave.Annual: 3}, 23},
		{"unused annual at cap", map[leave.LeaveType]int{leave.Annual: 5}, 25},
		{"unused annual over cap", map[leave.LeaveType]int{leave.Annual: 12}, 25},
		{"nothing left", map[leave.LeaveType]int{leave.Annual: 0}, 20},
		{"empty balances", map[leave.LeaveType]int{}, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := leave.RolloverBalances(tt.current)

			assert.Equal(t, tt.wantAnnual, next[leave.Annual])
			// Everything else resets to the entitlement, no carryover.
			assert.Equal(t, 10, next[leave.Casual])
			assert.Equal(t, 12, next[leave.Sick])
			assert.Equal(t, 90, next[leave.Maternity])
			assert.Equal(t, 5, next[leave.Paternity])
		})
	}
}

func TestProratedEntitlements(t *testing.T) {
	// Hired January 1: full entitlements.
	jan1 := leave.ProratedEntitlements(leave.NewDate(2026, time.January, 1))
	assert.Equal(t, leave.DefaultEntitlements(), jan1)

	// Hired July 1: 184 of 365 days remain, fraction ~0.504. Partial
	// days are floored, never granted.
	jul1 := leave.ProratedEntitlements(leave.NewDate(2026, time.July, 1))
	assert.Equal(t, 5, jul1[leave.Casual])  // 10 * 184/365 = 5.04 -> 5
	assert.Equal(t, 6, jul1[leave.Sick])    // 12 * 184/365 = 6.04 -> 6
	assert.Equal(t, 10, jul1[leave.Annual]) // 20 * 184/365 = 10.08 -> 10

	// Per-event types are never prorated.
	assert.Equal(t, 90, jul1[leave.Maternity])
	assert.Equal(t, 5, jul1[leave.Paternity])

	// Hired December 31: one day left, everything prorated floors to 0.
	dec31 := leave.ProratedEntitlements(leave.NewDate(2026, time.December, 31))
	assert.Equal(t, 0, dec31[leave.Casual])
	assert.Equal(t, 0, dec31[leave.Annual])
	assert.Equal(t, 90, dec31[leave.Maternity])
}

func TestRollover_AppliesToWholeDirectory(t *testing.T) {
	// GIVEN: The demo org, with E001 having consumed down to annual=7
	// WHEN: Running the year-end rollover
	// THEN: E001 gets 20+5 (carryover capped), everyone resets, and the
	//       change is visible in the entry trail

	st := memory.New()
	ledger := leave.NewLedger(st)
	ctx := context.Background()
	require.NoError(t, seed.Load(ctx, st, ledger))

	require.NoError(t, ledger.Debit(ctx, "E001", leave.Annual, 13, "L001", "consumed this year"))

	require.NoError(t, leave.Rollover(ctx, st, ledger))

	e1, err := ledger.Balances(ctx, "E001")
	require.NoError(t, err)
	assert.Equal(t, 25, e1[leave.Annual], "7 unused, capped at 5 carryover")
	assert.Equal(t, 10, e1[leave.Casual])
	assert.Equal(t, 12, e1[leave.Sick])

	// E002 had annual=18 unused: also capped at +5.
	e2, err := ledger.Balances(ctx, "E002")
	require.NoError(t, err)
	assert.Equal(t, 25, e2[leave.Annual])

	entries, err := ledger.Entries(ctx, "E001")
	require.NoError(t, err)
	var sawRollover bool
	for _, e := range entries {
		if e.Kind == leave.EntryRollover {
			sawRollover = true
		}
	}
	assert.True(t, sawRollover, "rollover must be recorded in the trail")
}
