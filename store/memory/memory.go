// Package memory provides an in-memory implementation of leave.Store.
//
// This mirrors the reference behavior of the system: everything in maps,
// no durability. It is also the store the tests run against.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/warp/leave-engine/leave"
)

type balanceKey struct {
	EmployeeID leave.EmployeeID
	Type       leave.LeaveType
}

// Store implements leave.Store with mutex-guarded maps. Listing order is
// insertion order, tracked with explicit order slices.
type Store struct {
	mu sync.RWMutex

	employees     map[leave.EmployeeID]leave.Employee
	employeeOrder []leave.EmployeeID

	balances map[balanceKey]int
	entries  map[leave.EmployeeID][]leave.Entry

	requests     map[leave.RequestID]*leave.LeaveRequest
	requestOrder []leave.RequestID

	counter int
}

var _ leave.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		employees: make(map[leave.EmployeeID]leave.Employee),
		balances:  make(map[balanceKey]int),
		entries:   make(map[leave.EmployeeID][]leave.Entry),
		requests:  make(map[leave.RequestID]*leave.LeaveRequest),
	}
}

// =============================================================================
// BALANCE STORE
// =============================================================================

func (s *Store) Balance(_ context.Context, id leave.EmployeeID, t leave.LeaveType) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[balanceKey{id, t}], nil
}

func (s *Store) Balances(_ context.Context, id leave.EmployeeID) (map[leave.LeaveType]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[leave.LeaveType]int)
	for k, v := range s.balances {
		if k.EmployeeID == id {
			out[k.Type] = v
		}
	}
	return out, nil
}

func (s *Store) SetBalance(_ context.Context, id leave.EmployeeID, t leave.LeaveType, days int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[balanceKey{id, t}] = days
	return nil
}

func (s *Store) AppendEntry(_ context.Context, e leave.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.EmployeeID] = append(s.entries[e.EmployeeID], e)
	return nil
}

func (s *Store) Entries(_ context.Context, id leave.EmployeeID) ([]leave.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]leave.Entry, len(s.entries[id]))
	copy(out, s.entries[id])
	return out, nil
}

// =============================================================================
// REQUEST STORE
// =============================================================================

func (s *Store) SaveRequest(_ context.Context, r *leave.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[r.ID]; !exists {
		s.requestOrder = append(s.requestOrder, r.ID)
	}
	s.requests[r.ID] = r.Clone()
	return nil
}

func (s *Store) GetRequest(_ context.Context, id leave.RequestID) (*leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requests[id].Clone(), nil
}

func (s *Store) ListRequests(_ context.Context, f leave.RequestFilter) ([]*leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*leave.LeaveRequest
	for _, id := range s.requestOrder {
		r := s.requests[id]
		if f.EmployeeID != nil && r.EmployeeID != *f.EmployeeID {
			continue
		}
		if f.Status != nil && r.Status != *f.Status {
			continue
		}
		out = append(out, r.Clone())
	}
	return out, nil
}

// =============================================================================
// DIRECTORY
// =============================================================================

func (s *Store) FindByID(_ context.Context, id leave.EmployeeID) (*leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	emp, ok := s.employees[id]
	if !ok {
		return nil, nil
	}
	cp := emp
	return &cp, nil
}

func (s *Store) FindByName(_ context.Context, name string) (*leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, nil
	}
	for _, id := range s.employeeOrder {
		emp := s.employees[id]
		if strings.Contains(strings.ToLower(emp.Name), needle) {
			cp := emp
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) List(_ context.Context) ([]leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]leave.Employee, 0, len(s.employeeOrder))
	for _, id := range s.employeeOrder {
		out = append(out, s.employees[id])
	}
	return out, nil
}

func (s *Store) SaveEmployee(_ context.Context, emp leave.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.employees[emp.ID]; !exists {
		s.employeeOrder = append(s.employeeOrder, emp.ID)
	}
	s.employees[emp.ID] = emp
	return nil
}

// =============================================================================
// ID SOURCE
// =============================================================================

// NextRequestID returns zero-padded sequential ids: L001, L002, ...
// The padding widens past L999 rather than wrapping.
func (s *Store) NextRequestID(_ context.Context) (leave.RequestID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	return leave.RequestID(fmt.Sprintf("L%03d", s.counter)), nil
}
