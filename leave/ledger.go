/*
ledger.go - Balance ledger: per-employee, per-type day counters

PURPOSE:
  The Ledger owns every employee's remaining days per leave type and
  applies atomic adjustments. It never initiates anything: debits and
  credits happen only under instruction from the request lifecycle (or
  from seeding/rollover administration).

CRITICAL INVARIANTS:
  1. Balances never go negative. Debit fails with an
     InsufficientBalanceError rather than overdraw, so the ledger is
     safe to call directly without relying on caller discipline.
  2. Every mutation is a serialized read-modify-write. A single mutex
     guards all keys; at this scale per-key locking buys nothing.
  3. Every mutation appends an Entry, so any balance can be explained
     from its trail.

CORRECTIONS:
  Credits are only ever reversals of a prior debit of the same amount,
  so no upper bound is enforced on credit.
*/
package leave

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Ledger applies atomic balance adjustments over a BalanceStore.
type Ledger struct {
	mu    sync.Mutex
	store BalanceStore

	// Clock is overridable for deterministic tests.
	Clock func() time.Time
}

func NewLedger(store BalanceStore) *Ledger {
	return &Ledger{store: store, Clock: time.Now}
}

// Balance returns the current balance for one key. Missing keys read as 0.
func (l *Ledger) Balance(ctx context.Context, id EmployeeID, t LeaveType) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Balance(ctx, id, t)
}

// Balances returns the balance for every leave type, filling types the
// store has never seen with 0.
func (l *Ledger) Balances(ctx context.Context, id EmployeeID) (map[LeaveType]int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stored, err := l.store.Balances(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make(map[LeaveType]int, len(LeaveTypes()))
	for _, t := range LeaveTypes() {
		out[t] = stored[t]
	}
	return out, nil
}

// Debit decreases the balance by amount. Fails without effect if the
// balance would go negative.
func (l *Ledger) Debit(ctx context.Context, id EmployeeID, t LeaveType, amount int, ref RequestID, reason string) error {
	if err := checkAmount(amount); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance, err := l.store.Balance(ctx, id, t)
	if err != nil {
		return err
	}
	if amount > balance {
		return &InsufficientBalanceError{
			EmployeeID: id,
			Type:       t,
			Requested:  amount,
			Available:  balance,
		}
	}
	if err := l.store.SetBalance(ctx, id, t, balance-amount); err != nil {
		return err
	}
	return l.store.AppendEntry(ctx, Entry{
		EmployeeID: id,
		Type:       t,
		Delta:      -amount,
		Kind:       EntryDebit,
		RequestID:  ref,
		Reason:     reason,
		At:         l.Clock(),
	})
}

// Credit increases the balance by amount. No upper bound: credits only
// ever reverse a prior debit of the same amount.
func (l *Ledger) Credit(ctx context.Context, id EmployeeID, t LeaveType, amount int, ref RequestID, reason string) error {
	if err := checkAmount(amount); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance, err := l.store.Balance(ctx, id, t)
	if err != nil {
		return err
	}
	if err := l.store.SetBalance(ctx, id, t, balance+amount); err != nil {
		return err
	}
	return l.store.AppendEntry(ctx, Entry{
		EmployeeID: id,
		Type:       t,
		Delta:      amount,
		Kind:       EntryCredit,
		RequestID:  ref,
		Reason:     reason,
		At:         l.Clock(),
	})
}

// Grant sets the balance for a key outright, recording the change as a
// grant or rollover entry. Used by seeding and year-end administration,
// never by the request lifecycle.
func (l *Ledger) Grant(ctx context.Context, id EmployeeID, t LeaveType, days int, kind EntryKind, reason string) error {
	if days < 0 {
		return &ValidationError{
			Field:   "days",
			Value:   fmt.Sprintf("%d", days),
			Message: "grant must not be negative",
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance, err := l.store.Balance(ctx, id, t)
	if err != nil {
		return err
	}
	if err := l.store.SetBalance(ctx, id, t, days); err != nil {
		return err
	}
	return l.store.AppendEntry(ctx, Entry{
		EmployeeID: id,
		Type:       t,
		Delta:      days - balance,
		Kind:       kind,
		Reason:     reason,
		At:         l.Clock(),
	})
}

// Entries returns an employee's mutation trail in append order.
func (l *Ledger) Entries(ctx context.Context, id EmployeeID) ([]Entry, error) {
	return l.store.Entries(ctx, id)
}

func checkAmount(amount int) error {
	if amount < 1 {
		return &ValidationError{
			Field:   "days",
			Value:   fmt.Sprintf("%d", amount),
			Message: "adjustment must be at least 1 day",
		}
	}
	return nil
}
