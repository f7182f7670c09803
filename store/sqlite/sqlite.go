/*
Package sqlite provides a SQLite-backed implementation of leave.Store.

PURPOSE:
  Durable persistence for the leave core. In production, the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  employees:      directory records
  balances:       per-(employee, leave type) day counters
  ledger_entries: append-only trail of balance mutations
  leave_requests: request records
  counters:       named sequences (request ids)

ORDERING:
  Listings rely on SQLite's rowid for insertion order. Upserts with
  ON CONFLICT DO UPDATE keep the original rowid, so updating a request's
  status does not reorder it.

WAL MODE:
  Opened with WAL (Write-Ahead Logging): readers don't block, single
  writer at a time, better crash recovery.

CONCURRENCY:
  A sync.RWMutex serializes access; with PostgreSQL, database-level
  concurrency control would handle this instead.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool with versioned migrations.

USAGE:
  store, err := sqlite.New("./data/leave.db")  // or ":memory:"
  if err != nil { ... }
  defer store.Close()

SEE ALSO:
  - leave/store.go: interface definitions
  - store/memory:   in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/leave-engine/leave"
)

// Store implements leave.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ leave.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer, and a pooled ":memory:" DSN would give
	// every connection its own empty database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		department TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		manager_id TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS balances (
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		days INTEGER NOT NULL,
		PRIMARY KEY (employee_id, leave_type)
	);

	-- Append-only: no UPDATE or DELETE is ever issued against this table.
	CREATE TABLE IF NOT EXISTS ledger_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		delta INTEGER NOT NULL,
		kind TEXT NOT NULL,
		request_id TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ledger_entries_employee
		ON ledger_entries(employee_id, id);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		days INTEGER NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		rejection_reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_employee
		ON leave_requests(employee_id);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_status
		ON leave_requests(status);

	CREATE TABLE IF NOT EXISTS counters (
		name TEXT PRIMARY KEY,
		last_value INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// BALANCE STORE
// =============================================================================

func (s *Store) Balance(ctx context.Context, id leave.EmployeeID, t leave.LeaveType) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var days int
	err := s.db.QueryRowContext(ctx,
		`SELECT days FROM balances WHERE employee_id = ? AND leave_type = ?`,
		string(id), string(t)).Scan(&days)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return days, nil
}

func (s *Store) Balances(ctx context.Context, id leave.EmployeeID) (map[leave.LeaveType]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT leave_type, days FROM balances WHERE employee_id = ?`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[leave.LeaveType]int)
	for rows.Next() {
		var t string
		var days int
		if err := rows.Scan(&t, &days); err != nil {
			return nil, err
		}
		out[leave.LeaveType(t)] = days
	}
	return out, rows.Err()
}

func (s *Store) SetBalance(ctx context.Context, id leave.EmployeeID, t leave.LeaveType, days int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO balances (employee_id, leave_type, days) VALUES (?, ?, ?)
		ON CONFLICT (employee_id, leave_type) DO UPDATE SET days = excluded.days`,
		string(id), string(t), days)
	return err
}

func (s *Store) AppendEntry(ctx context.Context, e leave.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ledger_entries (employee_id, leave_type, delta, kind, request_id, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(e.EmployeeID), string(e.Type), e.Delta, string(e.Kind),
		string(e.RequestID), e.Reason, e.At.UTC().Format(time.RFC3339))
	return err
}

func (s *Store) Entries(ctx context.Context, id leave.EmployeeID) ([]leave.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, leave_type, delta, kind, request_id, reason, created_at
		FROM ledger_entries WHERE employee_id = ? ORDER BY id`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.Entry
	for rows.Next() {
		var e leave.Entry
		var empID, leaveType, kind, reqID, createdAt string
		if err := rows.Scan(&empID, &leaveType, &e.Delta, &kind, &reqID, &e.Reason, &createdAt); err != nil {
			return nil, err
		}
		e.EmployeeID = leave.EmployeeID(empID)
		e.Type = leave.LeaveType(leaveType)
		e.Kind = leave.EntryKind(kind)
		e.RequestID = leave.RequestID(reqID)
		at, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("corrupt created_at %q: %w", createdAt, err)
		}
		e.At = at
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// REQUEST STORE
// =============================================================================

func (s *Store) SaveRequest(ctx context.Context, r *leave.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_requests
			(id, employee_id, leave_type, start_date, end_date, days, reason, status, rejection_reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			rejection_reason = excluded.rejection_reason,
			updated_at = excluded.updated_at`,
		string(r.ID), string(r.EmployeeID), string(r.Type),
		r.StartDate.String(), r.EndDate.String(), r.Days, r.Reason,
		string(r.Status), r.RejectionReason,
		r.CreatedAt.UTC().Format(time.RFC3339), r.UpdatedAt.UTC().Format(time.RFC3339))
	return err
}

func (s *Store) GetRequest(ctx context.Context, id leave.RequestID) (*leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, leave_type, start_date, end_date, days, reason, status, rejection_reason, created_at, updated_at
		FROM leave_requests WHERE id = ?`, string(id))

	r, err := scanRequest(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

func (s *Store) ListRequests(ctx context.Context, f leave.RequestFilter) ([]*leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, leave_type, start_date, end_date, days, reason, status, rejection_reason, created_at, updated_at
		FROM leave_requests WHERE 1=1`
	var args []any
	if f.EmployeeID != nil {
		query += ` AND employee_id = ?`
		args = append(args, string(*f.EmployeeID))
	}
	if f.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*f.Status))
	}
	query += ` ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*leave.LeaveRequest
	for rows.Next() {
		r, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRequest(scan func(dest ...any) error) (*leave.LeaveRequest, error) {
	var r leave.LeaveRequest
	var id, empID, leaveType, start, end, status, createdAt, updatedAt string
	if err := scan(&id, &empID, &leaveType, &start, &end, &r.Days, &r.Reason, &status, &r.RejectionReason, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	r.ID = leave.RequestID(id)
	r.EmployeeID = leave.EmployeeID(empID)
	r.Type = leave.LeaveType(leaveType)
	r.Status = leave.Status(status)

	var err error
	if r.StartDate, err = leave.ParseDate(start); err != nil {
		return nil, fmt.Errorf("corrupt start_date %q: %w", start, err)
	}
	if r.EndDate, err = leave.ParseDate(end); err != nil {
		return nil, fmt.Errorf("corrupt end_date %q: %w", end, err)
	}
	if r.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("corrupt created_at %q: %w", createdAt, err)
	}
	if r.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("corrupt updated_at %q: %w", updatedAt, err)
	}
	return &r, nil
}

// =============================================================================
// DIRECTORY
// =============================================================================

func (s *Store) FindByID(ctx context.Context, id leave.EmployeeID) (*leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, department, role, email, manager_id
		FROM employees WHERE id = ?`, string(id))

	emp, err := scanEmployee(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return emp, err
}

func (s *Store) FindByName(ctx context.Context, name string) (*leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := "%" + name + "%"
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, department, role, email, manager_id
		FROM employees WHERE name LIKE ? COLLATE NOCASE
		ORDER BY rowid LIMIT 1`, needle)

	emp, err := scanEmployee(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return emp, err
}

func (s *Store) List(ctx context.Context) ([]leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, department, role, email, manager_id
		FROM employees ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *emp)
	}
	return out, rows.Err()
}

func (s *Store) SaveEmployee(ctx context.Context, emp leave.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, department, role, email, manager_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			department = excluded.department,
			role = excluded.role,
			email = excluded.email,
			manager_id = excluded.manager_id`,
		string(emp.ID), emp.Name, emp.Department, emp.Role, emp.Email, string(emp.ManagerID))
	return err
}

func scanEmployee(scan func(dest ...any) error) (*leave.Employee, error) {
	var emp leave.Employee
	var id, managerID string
	if err := scan(&id, &emp.Name, &emp.Department, &emp.Role, &emp.Email, &managerID); err != nil {
		return nil, err
	}
	emp.ID = leave.EmployeeID(id)
	emp.ManagerID = leave.EmployeeID(managerID)
	return &emp, nil
}

// =============================================================================
// ID SOURCE
// =============================================================================

// NextRequestID increments the request counter in a single atomic upsert
// and formats it as a zero-padded sequential id.
func (s *Store) NextRequestID(ctx context.Context) (leave.RequestID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO counters (name, last_value) VALUES ('leave_request', 1)
		ON CONFLICT (name) DO UPDATE SET last_value = counters.last_value + 1
		RETURNING last_value`).Scan(&next)
	if err != nil {
		return "", err
	}
	return leave.RequestID(fmt.Sprintf("L%03d", next)), nil
}
