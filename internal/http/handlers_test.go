package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/staff-roster/internal/application"
)

type employeeServiceStub struct {
	created   application.EmployeeInput
	updatedID string
	deletedID string
	employees []application.Employee
	err       error
}

func (s *employeeServiceStub) CreateEmployee(ctx context.Context, input application.EmployeeInput) (application.Employee, error) {
	s.created = input
	if s.err != nil {
		return application.Employee{}, s.err
	}
	return application.Employee{ID: "emp-1", FirstName: input.FirstName, LastName: input.LastName, Email: input.Email}, nil
}

func (s *employeeServiceStub) GetEmployee(ctx context.Context, id string) (application.Employee, error) {
	for _, e := range s.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return application.Employee{}, application.ErrNotFound
}

func (s *employeeServiceStub) UpdateEmployee(ctx context.Context, id string, input application.EmployeeInput) (application.Employee, error) {
	s.updatedID = id
	if s.err != nil {
		return application.Employee{}, s.err
	}
	return application.Employee{ID: id, FirstName: input.FirstName, LastName: input.LastName}, nil
}

func (s *employeeServiceStub) DeleteEmployee(ctx context.Context, id string) error {
	s.deletedID = id
	return s.err
}

func (s *employeeServiceStub) ListEmployees(ctx context.Context) ([]application.Employee, error) {
	return s.employees, s.err
}

type userServiceStub struct {
	exists bool
	users  []application.User
	input  application.UserInput
	err    error
}

func (s *userServiceStub) CreateUser(ctx context.Context, input application.UserInput) (application.User, error) {
	s.input = input
	if s.err != nil {
		return application.User{}, s.err
	}
	return application.User{ID: "user-1", Email: input.Email, PasswordHash: "$argon2id$secret"}, nil
}

func (s *userServiceStub) GetUser(ctx context.Context, id string) (application.User, error) {
	return application.User{}, application.ErrNotFound
}

func (s *userServiceStub) UpdateUser(ctx context.Context, id string, input application.UserInput) (application.User, error) {
	s.input = input
	return application.User{ID: id, Email: input.Email}, s.err
}

func (s *userServiceStub) DeleteUser(ctx context.Context, id string) error {
	return s.err
}

func (s *userServiceStub) ListUsers(ctx context.Context) ([]application.User, error) {
	return s.users, s.err
}

func (s *userServiceStub) Exists(ctx context.Context) (bool, error) {
	return s.exists, s.err
}

func serve(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestEmployeeHandlers(t *testing.T) {
	t.Parallel()

	t.Run("create returns message and id", func(t *testing.T) {
		t.Parallel()

		stub := &employeeServiceStub{}
		router := NewRouter(RouterConfig{Employees: NewEmployeeHandler(stub, nil)})
		rec := serve(t, router, http.MethodPost, "/employees", `{"firstName":"Dana","lastName":"Levi","email":"dana@example.com"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp employeeCreatedResponse
		decodeBody(t, rec, &resp)
		if resp.Message != "New employee added successfully" || resp.ID != "emp-1" || resp.Data.FirstName != "Dana" {
			t.Fatalf("unexpected response %+v", resp)
		}
		if stub.created.Email != "dana@example.com" {
			t.Fatalf("expected input to reach the service, got %+v", stub.created)
		}
	})

	t.Run("duplicate email answers 409 with the service message", func(t *testing.T) {
		t.Parallel()

		stub := &employeeServiceStub{err: &application.ConflictError{Field: "email", Message: "An employee with this email already exists"}}
		router := NewRouter(RouterConfig{Employees: NewEmployeeHandler(stub, nil)})
		rec := serve(t, router, http.MethodPost, "/employees", `{"firstName":"Dana","lastName":"Levi","email":"dana@example.com"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		var resp errorResponse
		decodeBody(t, rec, &resp)
		if resp.Message != "An employee with this email already exists" {
			t.Fatalf("unexpected message %q", resp.Message)
		}
	})

	t.Run("validation failures answer 422 with field errors", func(t *testing.T) {
		t.Parallel()

		stub := &employeeServiceStub{err: &application.ValidationError{FieldErrors: map[string]string{"firstName": "firstName is required"}}}
		router := NewRouter(RouterConfig{Employees: NewEmployeeHandler(stub, nil)})
		rec := serve(t, router, http.MethodPost, "/employees", `{}`)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		var resp errorResponse
		decodeBody(t, rec, &resp)
		if resp.Errors["firstName"] != "firstName is required" {
			t.Fatalf("expected field errors, got %+v", resp)
		}
	})

	t.Run("malformed body answers 400", func(t *testing.T) {
		t.Parallel()

		router := NewRouter(RouterConfig{Employees: NewEmployeeHandler(&employeeServiceStub{}, nil)})
		rec := serve(t, router, http.MethodPost, "/employees", `{"firstName":`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("get, update and delete resolve the path id", func(t *testing.T) {
		t.Parallel()

		stub := &employeeServiceStub{employees: []application.Employee{{ID: "emp-7", FirstName: "Noa", CreatedAt: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)}}}
		router := NewRouter(RouterConfig{Employees: NewEmployeeHandler(stub, nil)})

		rec := serve(t, router, http.MethodGet, "/employees/emp-7", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var got employeeResponse
		decodeBody(t, rec, &got)
		if got.Data.ID != "emp-7" || got.Data.CreatedAt != "2024-09-01T00:00:00Z" {
			t.Fatalf("unexpected employee %+v", got.Data)
		}

		if rec := serve(t, router, http.MethodGet, "/employees/missing", ""); rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}

		rec = serve(t, router, http.MethodPut, "/employees/emp-7", `{"firstName":"Noa","lastName":"Cohen"}`)
		if rec.Code != http.StatusOK || stub.updatedID != "emp-7" {
			t.Fatalf("expected update of emp-7, got %d for %q", rec.Code, stub.updatedID)
		}

		rec = serve(t, router, http.MethodDelete, "/employees/emp-7", "")
		var msg messageResponse
		decodeBody(t, rec, &msg)
		if rec.Code != http.StatusOK || stub.deletedID != "emp-7" || msg.Message != "Employee deleted successfully" {
			t.Fatalf("unexpected delete result %d %+v", rec.Code, msg)
		}
	})

	t.Run("list wraps employees in data", func(t *testing.T) {
		t.Parallel()

		stub := &employeeServiceStub{employees: []application.Employee{{ID: "a"}, {ID: "b"}}}
		router := NewRouter(RouterConfig{Employees: NewEmployeeHandler(stub, nil)})
		rec := serve(t, router, http.MethodGet, "/employees", "")

		var resp listEmployeesResponse
		decodeBody(t, rec, &resp)
		if len(resp.Data) != 2 || resp.Data[0].ID != "a" {
			t.Fatalf("unexpected list %+v", resp)
		}
	})

	t.Run("unsupported methods answer 405", func(t *testing.T) {
		t.Parallel()

		router := NewRouter(RouterConfig{Employees: NewEmployeeHandler(&employeeServiceStub{}, nil)})
		rec := serve(t, router, http.MethodPatch, "/employees/emp-1", "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); allow != "GET, PUT, DELETE" {
			t.Fatalf("unexpected Allow header %q", allow)
		}
	})
}

func TestUserHandlers(t *testing.T) {
	t.Parallel()

	t.Run("check reports whether users exist", func(t *testing.T) {
		t.Parallel()

		router := NewRouter(RouterConfig{Users: NewUserHandler(&userServiceStub{}, nil)})
		rec := serve(t, router, http.MethodGet, "/users/check", "")

		var resp userCheckResponse
		decodeBody(t, rec, &resp)
		if rec.Code != http.StatusOK || resp.Exists || resp.Message == "" {
			t.Fatalf("expected exists=false with a message, got %d %+v", rec.Code, resp)
		}

		router = NewRouter(RouterConfig{Users: NewUserHandler(&userServiceStub{exists: true}, nil)})
		rec = serve(t, router, http.MethodGet, "/users/check", "")
		decodeBody(t, rec, &resp)
		if !resp.Exists {
			t.Fatalf("expected exists=true")
		}
	})

	t.Run("create passes the password and never returns the hash", func(t *testing.T) {
		t.Parallel()

		stub := &userServiceStub{}
		router := NewRouter(RouterConfig{Users: NewUserHandler(stub, nil)})
		rec := serve(t, router, http.MethodPost, "/users", `{"email":"lead@example.com","password":"correct horse"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if stub.input.Password != "correct horse" {
			t.Fatalf("expected password to reach the service")
		}
		if strings.Contains(rec.Body.String(), "argon2id") {
			t.Fatalf("response leaked the password hash: %s", rec.Body.String())
		}
	})

	t.Run("unknown user answers 404", func(t *testing.T) {
		t.Parallel()

		router := NewRouter(RouterConfig{Users: NewUserHandler(&userServiceStub{}, nil)})
		if rec := serve(t, router, http.MethodGet, "/users/nobody", ""); rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
