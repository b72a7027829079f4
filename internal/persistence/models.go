package persistence

import "time"

// Employee is a staff member who can be placed on shifts.
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

// User is a manager account.
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

// ShiftSlot is a (date, shift type) cell that assignments attach to.
// Date is a UTC calendar day.
type ShiftSlot struct {
	ID        string
	Date      time.Time
	ShiftType string
	DayName   string
	CreatedAt time.Time
}

// ShiftAssignment places an employee at a numbered position of a slot.
type ShiftAssignment struct {
	ID         string
	SlotID     string
	EmployeeID string
	Position   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AssignmentRow is an assignment joined with its slot and employee.
type AssignmentRow struct {
	SlotID     string
	Date       time.Time
	DayName    string
	ShiftType  string
	Position   int
	EmployeeID string
	FirstName  string
	LastName   string
}
