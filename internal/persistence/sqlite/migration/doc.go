// Package migration applies versioned SQL files to a SQLite database.
//
// Files are read from any fs.FS (typically an embed.FS) and must be named
// {version}_{description}.sql, e.g. "001_initial_schema.sql". Each file runs
// in its own transaction and is recorded, with its checksum, in the
// schema_migrations table so it is never applied twice.
//
//	scanner := NewFileScanner(files, "migrations")
//	manager := NewManager(scanner, NewSQLiteExecutor(db), logger)
//	if _, err := manager.Run(ctx); err != nil {
//		return err
//	}
package migration
