/*
policy.go - Company entitlement policy

PURPOSE:
  The fixed entitlement table, the year-end rollover rule, and
  first-year proration for new hires. Policy is administration: the
  request lifecycle never consults it, and rollover is an explicit
  operation, never a transition side effect.

POLICY (as documented for employees):

  | Leave type | Days/year | Notes                                   |
  |------------|-----------|-----------------------------------------|
  | casual     | 10        | does not carry over                     |
  | sick       | 12        | does not carry over                     |
  | annual     | 20        | up to 5 unused days carry over          |
  | maternity  | 90        | granted per event, reset yearly         |
  | paternity  | 5         | granted per event, reset yearly         |

  Employees may cancel an approved leave up to 24 hours before it
  starts. That notice period is policy text for humans; the lifecycle
  does not enforce it.
*/
package leave

import (
	"context"

	"github.com/shopspring/decimal"
)

// DefaultEntitlements returns the per-type annual entitlement in days.
func DefaultEntitlements() map[LeaveType]int {
	return map[LeaveType]int{
		Casual:    10,
		Sick:      12,
		Annual:    20,
		Maternity: 90,
		Paternity: 5,
	}
}

// AnnualCarryoverCap is the maximum number of unused annual days that
// roll into the next year.
const AnnualCarryoverCap = 5

// CancellationNoticeHours is the documented notice period for cancelling
// an approved leave. Documentation only; not enforced by the lifecycle.
const CancellationNoticeHours = 24

// RolloverBalances computes next year's balances from this year's:
// every type resets to its entitlement, and annual additionally carries
// over unused days up to AnnualCarryoverCap.
func RolloverBalances(current map[LeaveType]int) map[LeaveType]int {
	next := DefaultEntitlements()

	carry := current[Annual]
	if carry < 0 {
		carry = 0
	}
	if carry > AnnualCarryoverCap {
		carry = AnnualCarryoverCap
	}
	next[Annual] += carry
	return next
}

// ProratedEntitlements returns first-year entitlements for an employee
// hired mid-year: casual, sick, and annual scale by the fraction of the
// calendar year remaining from the hire date (inclusive), rounded down.
// Maternity and paternity are per-event grants and are never prorated.
func ProratedEntitlements(hire Date) map[LeaveType]int {
	full := DefaultEntitlements()

	yearStart := NewDate(hire.Year(), 1, 1)
	yearEnd := NewDate(hire.Year(), 12, 31)
	yearDays := decimal.NewFromInt(int64(DaysInclusive(yearStart, yearEnd)))
	remaining := decimal.NewFromInt(int64(DaysInclusive(hire, yearEnd)))
	fraction := remaining.Div(yearDays)

	prorated := map[LeaveType]bool{Casual: true, Sick: true, Annual: true}
	out := make(map[LeaveType]int, len(full))
	for t, days := range full {
		if !prorated[t] {
			out[t] = days
			continue
		}
		d := decimal.NewFromInt(int64(days)).Mul(fraction)
		out[t] = int(d.IntPart()) // floor: never grant a partial day
	}
	return out
}

// Rollover applies RolloverBalances to every employee in the directory,
// recording each change as a rollover entry. Intended to run once at
// year end by an administrator.
func Rollover(ctx context.Context, dir Directory, ledger *Ledger) error {
	employees, err := dir.List(ctx)
	if err != nil {
		return err
	}
	for _, emp := range employees {
		current, err := ledger.Balances(ctx, emp.ID)
		if err != nil {
			return err
		}
		next := RolloverBalances(current)
		for _, t := range LeaveTypes() {
			if err := ledger.Grant(ctx, emp.ID, t, next[t], EntryRollover, "year-end rollover"); err != nil {
				return err
			}
		}
	}
	return nil
}
