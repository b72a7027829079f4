package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/staff-roster/internal/calendar"
	"github.com/example/staff-roster/internal/persistence"
)

var (
	employeeCounter uint64
	userCounter     uint64
)

// referenceTime is Sunday 01/09/24, the first day of the reference week.
var referenceTime = time.Date(2024, time.September, 1, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// Day parses a DD/MM/YY literal and panics on malformed input.
func Day(value string) time.Time {
	return calendar.MustParseDate(value)
}

var givenNames = []string{"Dana", "Noa", "Yael", "Tamar", "Maya", "Shira", "Lior", "Roni"}

// EmployeeOption configures a generated employee.
type EmployeeOption func(*persistence.Employee)

// NewEmployee returns a unique employee. Names cycle through a fixed list so
// homonyms only appear when a test asks for them with WithEmployeeName.
func NewEmployee(opts ...EmployeeOption) persistence.Employee {
	idx := atomic.AddUint64(&employeeCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	employee := persistence.Employee{
		ID:          fmt.Sprintf("emp-%03d", idx),
		FirstName:   givenNames[int(idx-1)%len(givenNames)],
		LastName:    fmt.Sprintf("Staff%03d", idx),
		Position:    "Nurse",
		PhoneNumber: fmt.Sprintf("050-000-%04d", idx),
		Email:       fmt.Sprintf("employee-%03d@example.com", idx),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&employee)
	}
	return employee
}

func WithEmployeeID(id string) EmployeeOption {
	return func(e *persistence.Employee) { e.ID = id }
}

func WithEmployeeName(firstName, lastName string) EmployeeOption {
	return func(e *persistence.Employee) {
		e.FirstName = firstName
		e.LastName = lastName
	}
}

func WithEmployeeEmail(email string) EmployeeOption {
	return func(e *persistence.Employee) { e.Email = email }
}

// UserOption configures a generated user.
type UserOption func(*persistence.User)

// NewUser returns a unique manager account with a placeholder hash.
func NewUser(opts ...UserOption) persistence.User {
	idx := atomic.AddUint64(&userCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	user := persistence.User{
		ID:           fmt.Sprintf("user-%03d", idx),
		FirstName:    "Manager",
		LastName:     fmt.Sprintf("%03d", idx),
		Position:     "Shift lead",
		Email:        fmt.Sprintf("manager-%03d@example.com", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

func WithUserEmail(email string) UserOption {
	return func(u *persistence.User) { u.Email = email }
}

func WithPasswordHash(hash string) UserOption {
	return func(u *persistence.User) { u.PasswordHash = hash }
}

// Slots returns every slot the policy allows for the days of [from, to],
// ordered by date then shift type. from == to yields a single day.
func Slots(from, to time.Time, policy calendar.ShiftPolicy, ids func() string) []persistence.ShiftSlot {
	rng := calendar.Range{Start: calendar.DateOf(from), End: calendar.DateOf(to)}
	var slots []persistence.ShiftSlot
	for _, day := range rng.Days() {
		for _, st := range policy.Allowed(day.Weekday()) {
			slots = append(slots, persistence.ShiftSlot{
				ID:        ids(),
				Date:      day,
				ShiftType: string(st),
				DayName:   calendar.DayName(day),
				CreatedAt: referenceTime,
			})
		}
	}
	return slots
}
