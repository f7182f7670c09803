// Package seed loads the demo organization: five employees across
// Engineering, Marketing, HR, and Finance with their starting balances.
// Useful for development servers and end-to-end exercises; never loaded
// implicitly.
package seed

import (
	"context"
	"fmt"

	"github.com/warp/leave-engine/leave"
)

type employeeSeed struct {
	emp      leave.Employee
	balances map[leave.LeaveType]int
}

func demoEmployees() []employeeSeed {
	return []employeeSeed{
		{
			emp: leave.Employee{
				ID: "E001", Name: "Alice Johnson", Department: "Engineering",
				Role: "Software Engineer", Email: "alice.johnson@company.com", ManagerID: "E003",
			},
			balances: map[leave.LeaveType]int{
				leave.Casual: 10, leave.Sick: 12, leave.Annual: 20,
				leave.Maternity: 0, leave.Paternity: 5,
			},
		},
		{
			emp: leave.Employee{
				ID: "E002", Name: "Bob Smith", Department: "Marketing",
				Role: "Marketing Analyst", Email: "bob.smith@company.com", ManagerID: "E004",
			},
			balances: map[leave.LeaveType]int{
				leave.Casual: 8, leave.Sick: 10, leave.Annual: 18,
				leave.Maternity: 0, leave.Paternity: 5,
			},
		},
		{
			emp: leave.Employee{
				ID: "E003", Name: "Carol Williams", Department: "Engineering",
				Role: "Engineering Manager", Email: "carol.williams@company.com",
			},
			balances: map[leave.LeaveType]int{
				leave.Casual: 10, leave.Sick: 12, leave.Annual: 25,
				leave.Maternity: 90, leave.Paternity: 0,
			},
		},
		{
			emp: leave.Employee{
				ID: "E004", Name: "David Brown", Department: "HR",
				Role: "HR Manager", Email: "david.brown@company.com",
			},
			balances: map[leave.LeaveType]int{
				leave.Casual: 10, leave.Sick: 12, leave.Annual: 22,
				leave.Maternity: 0, leave.Paternity: 5,
			},
		},
		{
			emp: leave.Employee{
				ID: "E005", Name: "Eva Martinez", Department: "Finance",
				Role: "Financial Analyst", Email: "eva.martinez@company.com", ManagerID: "E004",
			},
			balances: map[leave.LeaveType]int{
				leave.Casual: 9, leave.Sick: 11, leave.Annual: 19,
				leave.Maternity: 90, leave.Paternity: 0,
			},
		},
	}
}

// Load writes the demo organization into the directory and grants each
// employee's starting balances through the ledger, so the grants appear
// in the entry trail like any other mutation.
func Load(ctx context.Context, dir leave.Directory, ledger *leave.Ledger) error {
	for _, s := range demoEmployees() {
		if err := dir.SaveEmployee(ctx, s.emp); err != nil {
			return fmt.Errorf("seed employee %s: %w", s.emp.ID, err)
		}
		for _, t := range leave.LeaveTypes() {
			if err := ledger.Grant(ctx, s.emp.ID, t, s.balances[t], leave.EntryGrant, "initial entitlement"); err != nil {
				return fmt.Errorf("seed balance %s/%s: %w", s.emp.ID, t, err)
			}
		}
	}
	return nil
}
