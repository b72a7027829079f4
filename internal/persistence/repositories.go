package persistence

import (
	"context"
	"time"
)

// EmployeeRepository exposes CRUD operations for employees.
type EmployeeRepository interface {
	CreateEmployee(ctx context.Context, employee Employee) error
	UpdateEmployee(ctx context.Context, employee Employee) error
	GetEmployee(ctx context.Context, id string) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	FindEmployeesByName(ctx context.Context, firstName, lastName string) ([]Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
}

// UserRepository exposes CRUD operations for manager accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	CountUsers(ctx context.Context) (int, error)
	DeleteUser(ctx context.Context, id string) error
}

// ShiftRepository stores slots and the assignments attached to them.
// Range bounds are inclusive calendar days.
type ShiftRepository interface {
	ListSlots(ctx context.Context, from, to time.Time) ([]ShiftSlot, error)
	// InsertSlots creates the given slots, ignoring any (date, shift type)
	// that already exists, and reports how many rows were inserted.
	InsertSlots(ctx context.Context, slots []ShiftSlot) (int, error)
	FindSlot(ctx context.Context, date time.Time, shiftType string) (ShiftSlot, error)
	// UpsertAssignment writes the assignment at (slot, position), replacing
	// any previous occupant.
	UpsertAssignment(ctx context.Context, assignment ShiftAssignment) (ShiftAssignment, error)
	DeleteAssignmentsInRange(ctx context.Context, from, to time.Time) (int, error)
	ListAssignmentRows(ctx context.Context, from, to time.Time) ([]AssignmentRow, error)
}
