package application

import (
	"time"

	"github.com/example/staff-roster/internal/calendar"
)

// EmployeeInput captures caller provided employee fields.
type EmployeeInput struct {
	FirstName   string
	LastName    string
	Position    string
	PhoneNumber string
	Email       string
}

// Employee represents a staff member who can be rostered.
type Employee struct {
	ID          string
	FirstName   string
	LastName    string
	Position    string
	PhoneNumber string
	Email       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserInput captures caller provided manager account fields. Password is
// plain text and only required on creation.
type UserInput struct {
	FirstName   string
	LastName    string
	Position    string
	PhoneNumber string
	Email       string
	Password    string
	IsConnected bool
}

// User represents a manager account.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Position     string
	PhoneNumber  string
	Email        string
	PasswordHash string
	IsConnected  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ShiftSlot is a staffable (date, shift type) unit.
type ShiftSlot struct {
	ID        string
	Date      time.Time
	ShiftType calendar.ShiftType
	DayName   string
	CreatedAt time.Time
}

// Assignment binds an employee to a position of a slot.
type Assignment struct {
	ID         string
	SlotID     string
	EmployeeID string
	Position   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// EnsureResult reports what slot materialization did.
type EnsureResult struct {
	Created  int
	Existing int
}

// AssignmentTuple is one UI selection: the employee at a position of a
// shift on a date. EmployeeID, when set, takes precedence over the name.
type AssignmentTuple struct {
	Position   int
	FirstName  string
	LastName   string
	ShiftType  string
	Date       string
	EmployeeID string
}

// SkipReason explains why a tuple was not persisted.
type SkipReason string

const (
	SkipInvalidTuple      SkipReason = "InvalidTuple"
	SkipDuplicatePosition SkipReason = "DuplicatePosition"
	SkipSlotNotFound      SkipReason = "SlotNotFound"
	SkipEmployeeNotFound  SkipReason = "EmployeeNotFound"
	SkipAmbiguousEmployee SkipReason = "AmbiguousEmployee"
	SkipStorageError      SkipReason = "StorageError"
	SkipTimeout           SkipReason = "Timeout"
)

// Skip records a tuple, by its index in the batch, that was dropped.
type Skip struct {
	Index  int
	Reason SkipReason
	Detail string
}

// ResolveResult aggregates a batch resolution. Incomplete is set when the
// deadline passed before every tuple was processed.
type ResolveResult struct {
	Persisted  int
	Skipped    []Skip
	Incomplete bool
}

// RefreshResult reports a clear-then-ensure cycle.
type RefreshResult struct {
	Cleared int
	Slots   EnsureResult
}

// SaveResult reports a clear, ensure and resolve cycle.
type SaveResult struct {
	Cleared     int
	Slots       EnsureResult
	Assignments ResolveResult
}
