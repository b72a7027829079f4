package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"sort"
	"strings"
	"time"
)

// EmployeeRepository captures the persistence operations needed by the service.
type EmployeeRepository interface {
	CreateEmployee(ctx context.Context, employee Employee) (Employee, error)
	GetEmployee(ctx context.Context, id string) (Employee, error)
	UpdateEmployee(ctx context.Context, employee Employee) (Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
	ListEmployees(ctx context.Context) ([]Employee, error)
	FindEmployeesByName(ctx context.Context, firstName, lastName string) ([]Employee, error)
}

var duplicateEmployeeEmail = &ConflictError{Field: "email", Message: "An employee with this email already exists"}

// EmployeeService orchestrates validation and persistence for employees.
type EmployeeService struct {
	employees   EmployeeRepository
	directory   *EmployeeDirectory
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewEmployeeService constructs an employee service. directory may be nil.
func NewEmployeeService(employees EmployeeRepository, directory *EmployeeDirectory, idGenerator func() string, now func() time.Time) *EmployeeService {
	return NewEmployeeServiceWithLogger(employees, directory, idGenerator, now, nil)
}

// NewEmployeeServiceWithLogger constructs an employee service with a specified logger.
func NewEmployeeServiceWithLogger(employees EmployeeRepository, directory *EmployeeDirectory, idGenerator func() string, now func() time.Time, logger *slog.Logger) *EmployeeService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EmployeeService{
		employees:   employees,
		directory:   directory,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *EmployeeService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EmployeeService", operation, attrs...)
}

// CreateEmployee validates input and persists a new employee.
func (s *EmployeeService) CreateEmployee(ctx context.Context, input EmployeeInput) (employee Employee, err error) {
	if s == nil {
		err = fmt.Errorf("EmployeeService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateEmployee")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create employee", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("employee_id", employee.ID).InfoContext(ctx, "employee created")
	}()

	normalized := normalizeEmployeeInput(input)
	if vErr := validateEmployeeInput(normalized); vErr.HasErrors() {
		err = vErr
		return
	}

	employee = Employee{
		ID:          s.idGenerator(),
		FirstName:   normalized.FirstName,
		LastName:    normalized.LastName,
		Position:    normalized.Position,
		PhoneNumber: normalized.PhoneNumber,
		Email:       normalized.Email,
		CreatedAt:   s.now(),
	}
	employee.UpdatedAt = employee.CreatedAt

	if s.employees == nil {
		return
	}

	var persisted Employee
	persisted, err = s.employees.CreateEmployee(ctx, employee)
	if err != nil {
		err = mapRepoError(err, duplicateEmployeeEmail)
		return
	}
	s.directory.Invalidate()

	employee = persisted
	return
}

// GetEmployee returns a single employee.
func (s *EmployeeService) GetEmployee(ctx context.Context, id string) (Employee, error) {
	if s == nil {
		return Employee{}, fmt.Errorf("EmployeeService is nil")
	}
	if s.employees == nil {
		return Employee{}, fmt.Errorf("employee repository not configured")
	}
	employee, err := s.employees.GetEmployee(ctx, strings.TrimSpace(id))
	if err != nil {
		return Employee{}, mapRepoError(err, nil)
	}
	return employee, nil
}

// UpdateEmployee validates input and updates an existing employee.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, id string, input EmployeeInput) (employee Employee, err error) {
	if s == nil {
		err = fmt.Errorf("EmployeeService is nil")
		return
	}
	if s.employees == nil {
		err = fmt.Errorf("employee repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateEmployee", "employee_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update employee", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "employee updated")
	}()

	var existing Employee
	existing, err = s.employees.GetEmployee(ctx, id)
	if err != nil {
		err = mapRepoError(err, nil)
		return
	}

	normalized := normalizeEmployeeInput(input)
	if vErr := validateEmployeeInput(normalized); vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.FirstName = normalized.FirstName
	updated.LastName = normalized.LastName
	updated.Position = normalized.Position
	updated.PhoneNumber = normalized.PhoneNumber
	updated.Email = normalized.Email
	updated.UpdatedAt = s.now()

	employee, err = s.employees.UpdateEmployee(ctx, updated)
	if err != nil {
		err = mapRepoError(err, duplicateEmployeeEmail)
		return
	}
	s.directory.Invalidate()
	return
}

// DeleteEmployee removes an employee together with their assignments.
func (s *EmployeeService) DeleteEmployee(ctx context.Context, id string) (err error) {
	if s == nil {
		return fmt.Errorf("EmployeeService is nil")
	}
	if s.employees == nil {
		return fmt.Errorf("employee repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteEmployee", "employee_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete employee", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "employee deleted")
	}()

	if err = s.employees.DeleteEmployee(ctx, id); err != nil {
		err = mapRepoError(err, nil)
		return
	}
	s.directory.Invalidate()
	return nil
}

// ListEmployees returns every employee ordered by first name, then last name.
func (s *EmployeeService) ListEmployees(ctx context.Context) ([]Employee, error) {
	if s == nil {
		return nil, fmt.Errorf("EmployeeService is nil")
	}
	if s.employees == nil {
		return nil, nil
	}

	employees, err := s.employees.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Employee, len(employees))
	copy(out, employees)
	sort.SliceStable(out, func(i, j int) bool {
		fi, fj := strings.ToLower(out[i].FirstName), strings.ToLower(out[j].FirstName)
		if fi != fj {
			return fi < fj
		}
		li, lj := strings.ToLower(out[i].LastName), strings.ToLower(out[j].LastName)
		if li != lj {
			return li < lj
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func normalizeEmployeeInput(input EmployeeInput) EmployeeInput {
	return EmployeeInput{
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		Position:    strings.TrimSpace(input.Position),
		PhoneNumber: strings.TrimSpace(input.PhoneNumber),
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
	}
}

func validateEmployeeInput(input EmployeeInput) *ValidationError {
	vErr := &ValidationError{}
	vErr.merge(validatePersonName(input.FirstName, input.LastName))

	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	}

	if input.PhoneNumber != "" && !validPhoneNumber(input.PhoneNumber) {
		vErr.add("phoneNumber", "phone number may only contain digits, spaces and + - . ( )")
	}

	return vErr
}

func validatePersonName(firstName, lastName string) *ValidationError {
	vErr := &ValidationError{}
	if firstName == "" {
		vErr.add("firstName", "first name is required")
	}
	if lastName == "" {
		vErr.add("lastName", "last name is required")
	}
	return vErr
}

func validPhoneNumber(value string) bool {
	digits := 0
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case strings.ContainsRune(" +-.()", r):
		default:
			return false
		}
	}
	return digits > 0
}
