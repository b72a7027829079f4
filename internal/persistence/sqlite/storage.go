package sqlite

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/example/staff-roster/internal/persistence"
	"github.com/example/staff-roster/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var (
	_ persistence.EmployeeRepository = (*Storage)(nil)
	_ persistence.UserRepository     = (*Storage)(nil)
	_ persistence.ShiftRepository    = (*Storage)(nil)
)

// Storage bundles the SQLite repositories behind one connection pool.
type Storage struct {
	*EmployeeRepository
	*UserRepository
	*ShiftRepository

	pool   *ConnectionPool
	logger *slog.Logger
}

// Open connects to the database described by config. Call Migrate before use.
func Open(config migration.SQLiteConfig, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}
	return &Storage{
		EmployeeRepository: NewEmployeeRepository(pool),
		UserRepository:     NewUserRepository(pool),
		ShiftRepository:    NewShiftRepository(pool),
		pool:               pool,
		logger:             logger,
	}, nil
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}

// Ping checks that the database answers.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	scanner := migration.NewFileScanner(migrationFiles, "migrations")
	manager := migration.NewManager(scanner, migration.NewSQLiteExecutor(s.pool.DB()), s.logger)
	if _, err := manager.Run(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}
