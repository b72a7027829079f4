package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/staff-roster/internal/persistence"
)

// EmployeeRepository implements persistence.EmployeeRepository using SQLite
type EmployeeRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewEmployeeRepository creates a new SQLite employee repository
func NewEmployeeRepository(pool *ConnectionPool) *EmployeeRepository {
	return &EmployeeRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const employeeColumns = `id, first_name, last_name, position, phone_number, email, created_at, updated_at`

// CreateEmployee inserts a new employee into the database
func (r *EmployeeRepository) CreateEmployee(ctx context.Context, employee persistence.Employee) error {
	if employee.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO employees (` + employeeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.helper.Exec(ctx, query,
		employee.ID,
		strings.TrimSpace(employee.FirstName),
		strings.TrimSpace(employee.LastName),
		employee.Position,
		employee.PhoneNumber,
		normalizeEmail(employee.Email),
		formatTimestamp(employee.CreatedAt),
		formatTimestamp(employee.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateEmployee updates an existing employee in the database
func (r *EmployeeRepository) UpdateEmployee(ctx context.Context, employee persistence.Employee) error {
	if employee.ID == "" {
		return persistence.ErrNotFound
	}

	query := `
		UPDATE employees
		SET first_name = ?, last_name = ?, position = ?, phone_number = ?, email = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.helper.Exec(ctx, query,
		strings.TrimSpace(employee.FirstName),
		strings.TrimSpace(employee.LastName),
		employee.Position,
		employee.PhoneNumber,
		normalizeEmail(employee.Email),
		formatTimestamp(employee.UpdatedAt),
		employee.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireAffected(result)
}

// GetEmployee retrieves an employee by ID from the database
func (r *EmployeeRepository) GetEmployee(ctx context.Context, id string) (persistence.Employee, error) {
	if id == "" {
		return persistence.Employee{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	return r.scanEmployee(row)
}

// ListEmployees returns every employee ordered by first name, then last name.
func (r *EmployeeRepository) ListEmployees(ctx context.Context) ([]persistence.Employee, error) {
	return r.list(ctx, `SELECT `+employeeColumns+` FROM employees
		ORDER BY first_name COLLATE NOCASE, last_name COLLATE NOCASE, id`)
}

// FindEmployeesByName matches first and last name case-insensitively. More
// than one result means the name is ambiguous.
func (r *EmployeeRepository) FindEmployeesByName(ctx context.Context, firstName, lastName string) ([]persistence.Employee, error) {
	firstName, lastName = strings.TrimSpace(firstName), strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+employeeColumns+` FROM employees
		WHERE first_name = ? COLLATE NOCASE AND last_name = ? COLLATE NOCASE
		ORDER BY created_at, id`, firstName, lastName)
}

// DeleteEmployee removes an employee. Their assignments go with them.
func (r *EmployeeRepository) DeleteEmployee(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.helper.Exec(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireAffected(result)
}

func (r *EmployeeRepository) list(ctx context.Context, query string, args ...any) ([]persistence.Employee, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var employees []persistence.Employee
	for rows.Next() {
		employee, err := r.scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return employees, nil
}

func (r *EmployeeRepository) scanEmployee(row rowScanner) (persistence.Employee, error) {
	var employee persistence.Employee
	var createdAt, updatedAt string
	err := row.Scan(
		&employee.ID,
		&employee.FirstName,
		&employee.LastName,
		&employee.Position,
		&employee.PhoneNumber,
		&employee.Email,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Employee{}, persistence.ErrNotFound
		}
		return persistence.Employee{}, r.mapper.MapError(err)
	}
	if employee.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Employee{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if employee.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Employee{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return employee, nil
}
