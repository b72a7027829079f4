package main

import (
	"context"
	"fmt"
	"time"

	"github.com/example/staff-roster/internal/application"
	"github.com/example/staff-roster/internal/calendar"
	"github.com/example/staff-roster/internal/persistence"
	"github.com/example/staff-roster/internal/timetable"
)

type employeeRepositoryAdapter struct {
	repo persistence.EmployeeRepository
}

func newEmployeeRepositoryAdapter(repo persistence.EmployeeRepository) *employeeRepositoryAdapter {
	return &employeeRepositoryAdapter{repo: repo}
}

func (a *employeeRepositoryAdapter) CreateEmployee(ctx context.Context, employee application.Employee) (application.Employee, error) {
	if err := a.repo.CreateEmployee(ctx, toPersistenceEmployee(employee)); err != nil {
		return application.Employee{}, err
	}
	return a.GetEmployee(ctx, employee.ID)
}

func (a *employeeRepositoryAdapter) GetEmployee(ctx context.Context, id string) (application.Employee, error) {
	stored, err := a.repo.GetEmployee(ctx, id)
	if err != nil {
		return application.Employee{}, err
	}
	return toApplicationEmployee(stored), nil
}

func (a *employeeRepositoryAdapter) UpdateEmployee(ctx context.Context, employee application.Employee) (application.Employee, error) {
	if err := a.repo.UpdateEmployee(ctx, toPersistenceEmployee(employee)); err != nil {
		return application.Employee{}, err
	}
	return a.GetEmployee(ctx, employee.ID)
}

func (a *employeeRepositoryAdapter) DeleteEmployee(ctx context.Context, id string) error {
	return a.repo.DeleteEmployee(ctx, id)
}

func (a *employeeRepositoryAdapter) ListEmployees(ctx context.Context) ([]application.Employee, error) {
	stored, err := a.repo.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	return toApplicationEmployees(stored), nil
}

func (a *employeeRepositoryAdapter) FindEmployeesByName(ctx context.Context, firstName, lastName string) ([]application.Employee, error) {
	stored, err := a.repo.FindEmployeesByName(ctx, firstName, lastName)
	if err != nil {
		return nil, err
	}
	return toApplicationEmployees(stored), nil
}

type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) CreateUser(ctx context.Context, user application.User) (application.User, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(user)); err != nil {
		return application.User{}, err
	}
	return a.GetUser(ctx, user.ID)
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) UpdateUser(ctx context.Context, user application.User) (application.User, error) {
	if err := a.repo.UpdateUser(ctx, toPersistenceUser(user)); err != nil {
		return application.User{}, err
	}
	return a.GetUser(ctx, user.ID)
}

func (a *userRepositoryAdapter) DeleteUser(ctx context.Context, id string) error {
	return a.repo.DeleteUser(ctx, id)
}

func (a *userRepositoryAdapter) ListUsers(ctx context.Context) ([]application.User, error) {
	stored, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]application.User, 0, len(stored))
	for _, user := range stored {
		users = append(users, toApplicationUser(user))
	}
	return users, nil
}

func (a *userRepositoryAdapter) CountUsers(ctx context.Context) (int, error) {
	return a.repo.CountUsers(ctx)
}

// shiftRepositoryAdapter serves both the catalog and the resolver.
type shiftRepositoryAdapter struct {
	repo persistence.ShiftRepository
}

func newShiftRepositoryAdapter(repo persistence.ShiftRepository) *shiftRepositoryAdapter {
	return &shiftRepositoryAdapter{repo: repo}
}

func (a *shiftRepositoryAdapter) ListSlots(ctx context.Context, from, to time.Time) ([]application.ShiftSlot, error) {
	stored, err := a.repo.ListSlots(ctx, from, to)
	if err != nil {
		return nil, err
	}
	slots := make([]application.ShiftSlot, 0, len(stored))
	for _, slot := range stored {
		converted, err := toApplicationSlot(slot)
		if err != nil {
			return nil, err
		}
		slots = append(slots, converted)
	}
	return slots, nil
}

func (a *shiftRepositoryAdapter) InsertSlots(ctx context.Context, slots []application.ShiftSlot) (int, error) {
	stored := make([]persistence.ShiftSlot, 0, len(slots))
	for _, slot := range slots {
		stored = append(stored, persistence.ShiftSlot{
			ID:        slot.ID,
			Date:      slot.Date,
			ShiftType: string(slot.ShiftType),
			DayName:   slot.DayName,
			CreatedAt: slot.CreatedAt,
		})
	}
	return a.repo.InsertSlots(ctx, stored)
}

func (a *shiftRepositoryAdapter) FindSlot(ctx context.Context, date time.Time, shiftType calendar.ShiftType) (application.ShiftSlot, error) {
	stored, err := a.repo.FindSlot(ctx, date, string(shiftType))
	if err != nil {
		return application.ShiftSlot{}, err
	}
	return toApplicationSlot(stored)
}

func (a *shiftRepositoryAdapter) UpsertAssignment(ctx context.Context, assignment application.Assignment) (application.Assignment, error) {
	stored, err := a.repo.UpsertAssignment(ctx, persistence.ShiftAssignment{
		ID:         assignment.ID,
		SlotID:     assignment.SlotID,
		EmployeeID: assignment.EmployeeID,
		Position:   assignment.Position,
		CreatedAt:  assignment.CreatedAt,
		UpdatedAt:  assignment.UpdatedAt,
	})
	if err != nil {
		return application.Assignment{}, err
	}
	return application.Assignment{
		ID:         stored.ID,
		SlotID:     stored.SlotID,
		EmployeeID: stored.EmployeeID,
		Position:   stored.Position,
		CreatedAt:  stored.CreatedAt,
		UpdatedAt:  stored.UpdatedAt,
	}, nil
}

func (a *shiftRepositoryAdapter) DeleteAssignmentsInRange(ctx context.Context, from, to time.Time) (int, error) {
	return a.repo.DeleteAssignmentsInRange(ctx, from, to)
}

// ListAssignmentRows passes unknown shift types through; the grid projector
// counts them as dropped.
func (a *shiftRepositoryAdapter) ListAssignmentRows(ctx context.Context, from, to time.Time) ([]timetable.Row, error) {
	stored, err := a.repo.ListAssignmentRows(ctx, from, to)
	if err != nil {
		return nil, err
	}
	rows := make([]timetable.Row, 0, len(stored))
	for _, row := range stored {
		rows = append(rows, timetable.Row{
			Date:       row.Date,
			ShiftType:  calendar.ShiftType(row.ShiftType),
			Position:   row.Position,
			EmployeeID: row.EmployeeID,
			FirstName:  row.FirstName,
			LastName:   row.LastName,
		})
	}
	return rows, nil
}

func toApplicationSlot(slot persistence.ShiftSlot) (application.ShiftSlot, error) {
	st, err := calendar.ParseShiftType(slot.ShiftType)
	if err != nil {
		return application.ShiftSlot{}, fmt.Errorf("slot %s: %w", slot.ID, err)
	}
	return application.ShiftSlot{
		ID:        slot.ID,
		Date:      slot.Date,
		ShiftType: st,
		DayName:   slot.DayName,
		CreatedAt: slot.CreatedAt,
	}, nil
}

func toPersistenceEmployee(employee application.Employee) persistence.Employee {
	return persistence.Employee{
		ID:          employee.ID,
		FirstName:   employee.FirstName,
		LastName:    employee.LastName,
		Position:    employee.Position,
		PhoneNumber: employee.PhoneNumber,
		Email:       employee.Email,
		CreatedAt:   employee.CreatedAt,
		UpdatedAt:   employee.UpdatedAt,
	}
}

func toApplicationEmployee(employee persistence.Employee) application.Employee {
	return application.Employee{
		ID:          employee.ID,
		FirstName:   employee.FirstName,
		LastName:    employee.LastName,
		Position:    employee.Position,
		PhoneNumber: employee.PhoneNumber,
		Email:       employee.Email,
		CreatedAt:   employee.CreatedAt,
		UpdatedAt:   employee.UpdatedAt,
	}
}

func toApplicationEmployees(stored []persistence.Employee) []application.Employee {
	employees := make([]application.Employee, 0, len(stored))
	for _, employee := range stored {
		employees = append(employees, toApplicationEmployee(employee))
	}
	return employees
}

func toPersistenceUser(user application.User) persistence.User {
	return persistence.User{
		ID:           user.ID,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Position:     user.Position,
		PhoneNumber:  user.PhoneNumber,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		IsConnected:  user.IsConnected,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func toApplicationUser(user persistence.User) application.User {
	return application.User{
		ID:           user.ID,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Position:     user.Position,
		PhoneNumber:  user.PhoneNumber,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		IsConnected:  user.IsConnected,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}
