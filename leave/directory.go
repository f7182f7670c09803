// directory.go - Employee directory collaborator interface.
//
// The directory is external to the core: the core reads identity and
// existence through it and never writes employee records. Lookups are
// fully resolved before the core proceeds; the core never operates on
// partial data.
package leave

import "context"

// Employee is a directory record. Read-only to the core; balances are
// owned by the Ledger, not stored here.
type Employee struct {
	ID         EmployeeID
	Name       string
	Department string
	Role       string
	Email      string
	ManagerID  EmployeeID // empty for employees with no manager
}

// Directory is the employee lookup collaborator.
type Directory interface {
	// FindByID returns the employee with the given id, or (nil, nil)
	// when no such employee exists. The id is matched case-insensitively.
	FindByID(ctx context.Context, id EmployeeID) (*Employee, error)

	// FindByName returns the first employee whose display name contains
	// the given substring, case-insensitively, or (nil, nil) when none
	// matches.
	FindByName(ctx context.Context, name string) (*Employee, error)

	// List returns all employees in insertion order.
	List(ctx context.Context) ([]Employee, error)

	// SaveEmployee inserts or replaces a directory record. Used by
	// seeding and administration, never by the lifecycle.
	SaveEmployee(ctx context.Context, emp Employee) error
}
