package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/staff-roster/internal/persistence"
	"github.com/example/staff-roster/internal/persistence/sqlite"
	"github.com/example/staff-roster/internal/persistence/sqlite/migration"
)

// SQLiteHarness is a migrated temporary-file database for integration tests.
type SQLiteHarness struct {
	Storage   *sqlite.Storage
	Employees persistence.EmployeeRepository
	Users     persistence.UserRepository
	Shifts    persistence.ShiftRepository
}

// NewSQLiteHarness opens and migrates a database under tb.TempDir. The
// storage is closed by a cleanup registered on tb.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "roster.db")
	storage, err := sqlite.Open(migration.TempFileTestSQLiteConfig(path), nil)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	tb.Cleanup(func() { _ = storage.Close() })

	if err := storage.Migrate(context.Background()); err != nil {
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	return &SQLiteHarness{
		Storage:   storage,
		Employees: storage,
		Users:     storage,
		Shifts:    storage,
	}
}

// SeedEmployees stores the given employees and returns them.
func (h *SQLiteHarness) SeedEmployees(tb testing.TB, employees ...persistence.Employee) []persistence.Employee {
	tb.Helper()
	for _, e := range employees {
		if err := h.Employees.CreateEmployee(context.Background(), e); err != nil {
			tb.Fatalf("failed to seed employee %s: %v", e.ID, err)
		}
	}
	return employees
}
