/*
store.go - Persistence interfaces for the leave core

PURPOSE:
  Defines the interfaces between the domain logic and storage. Different
  implementations can use SQLite or in-memory maps; the core is
  indifferent to durability (the reference behavior is purely in-memory).

KEY INTERFACES:
  BalanceStore: per-(employee, leave type) day counters + entry log
  RequestStore: leave request records, insertion-ordered listing
  IDSource:     monotonic request id generation
  Store:        everything, plus the Directory

ENTRY LOG:
  Every balance mutation appends an Entry. Entries are append-only and
  never updated or deleted; the counters are the source of truth and the
  entries are the trail explaining how they got there.

IMPLEMENTATIONS:
  - store/memory: mutex-guarded maps, reference implementation for tests
  - store/sqlite: SQLite-backed, WAL mode
*/
package leave

import (
	"context"
	"time"
)

// =============================================================================
// LEDGER ENTRIES - Append-only audit trail of balance mutations
// =============================================================================

type EntryKind string

const (
	EntryDebit    EntryKind = "debit"    // approval consumed days
	EntryCredit   EntryKind = "credit"   // cancellation restored days
	EntryGrant    EntryKind = "grant"    // seeding / initial entitlement
	EntryRollover EntryKind = "rollover" // year-end reset and carryover
)

// Entry records a single balance mutation. Delta is signed: negative for
// debits, positive for credits and grants.
type Entry struct {
	EmployeeID EmployeeID
	Type       LeaveType
	Delta      int
	Kind       EntryKind
	RequestID  RequestID // causing request, empty for grants/rollover
	Reason     string
	At         time.Time
}

// =============================================================================
// STORE INTERFACES
// =============================================================================

// BalanceStore persists the per-key counters and the entry log.
// Implementations need no internal locking discipline beyond atomic
// single-key reads and writes; serialization of read-modify-write cycles
// is the Ledger's job.
type BalanceStore interface {
	// Balance returns the current counter; a missing entry reads as 0.
	Balance(ctx context.Context, id EmployeeID, t LeaveType) (int, error)

	// Balances returns all stored counters for an employee.
	Balances(ctx context.Context, id EmployeeID) (map[LeaveType]int, error)

	// SetBalance writes the counter for a single key.
	SetBalance(ctx context.Context, id EmployeeID, t LeaveType, days int) error

	// AppendEntry appends to the entry log. Append-only.
	AppendEntry(ctx context.Context, e Entry) error

	// Entries returns an employee's entries in append order.
	Entries(ctx context.Context, id EmployeeID) ([]Entry, error)
}

// RequestFilter narrows request listings. Nil fields match everything.
type RequestFilter struct {
	EmployeeID *EmployeeID
	Status     *Status
}

// RequestStore persists leave request records.
type RequestStore interface {
	// SaveRequest inserts a new record or updates an existing one by ID.
	SaveRequest(ctx context.Context, r *LeaveRequest) error

	// GetRequest returns the record, or (nil, nil) when the id is unknown.
	GetRequest(ctx context.Context, id RequestID) (*LeaveRequest, error)

	// ListRequests returns matching records in insertion order.
	ListRequests(ctx context.Context, f RequestFilter) ([]*LeaveRequest, error)
}

// IDSource generates request ids. Ids are monotonically increasing and
// never reused; the textual format is zero-padded sequential ("L001").
type IDSource interface {
	NextRequestID(ctx context.Context) (RequestID, error)
}

// Store is the full persistence surface: counters, requests, directory,
// and the id counter, all backed by the same engine.
type Store interface {
	BalanceStore
	RequestStore
	Directory
	IDSource
}
