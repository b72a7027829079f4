package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/staff-roster/internal/application"
	"github.com/example/staff-roster/internal/config"
	httptransport "github.com/example/staff-roster/internal/http"
	"github.com/example/staff-roster/internal/persistence/sqlite"
	"github.com/example/staff-roster/internal/persistence/sqlite/migration"
)

func main() {
	bootstrap := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	envFile := os.Getenv("ROSTER_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := config.LoadDotEnv(envFile); err != nil {
		bootstrap.Error("failed to read env file", "path", envFile, "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		bootstrap.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("roster API stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	storage, err := openStorage(ctx, cfg.SQLitePath, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           newHandler(storage, cfg, logger, time.Now, uuid.NewString),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("roster API listening",
		"addr", server.Addr,
		"database", cfg.SQLitePath,
		"week_start", cfg.WeekStart.String(),
		"week_length", cfg.WeekLength,
		"shift_policy", cfg.ShiftPolicy.String(),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// openStorage opens the database file and applies pending migrations.
func openStorage(ctx context.Context, path string, logger *slog.Logger) (*sqlite.Storage, error) {
	storage, err := sqlite.Open(migration.DefaultSQLiteConfig(path), logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if err := storage.Migrate(ctx); err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return storage, nil
}

// newHandler wires services, handlers and middleware over storage. The
// router is mounted under /api.
func newHandler(storage *sqlite.Storage, cfg config.Config, logger *slog.Logger, now func() time.Time, idGenerator func() string) http.Handler {
	employeeRepo := newEmployeeRepositoryAdapter(storage)
	userRepo := newUserRepositoryAdapter(storage)
	shiftRepo := newShiftRepositoryAdapter(storage)

	directory := application.NewEmployeeDirectory(employeeRepo, cfg.DirectoryCacheSize, cfg.DirectoryCacheTTL)
	employeeService := application.NewEmployeeServiceWithLogger(employeeRepo, directory, idGenerator, now, logger)
	userService := application.NewUserServiceWithLogger(userRepo, idGenerator, now, logger)
	catalog := application.NewShiftCatalogWithLogger(shiftRepo, cfg.ShiftPolicy, idGenerator, now, logger)
	resolver := application.NewAssignmentResolverWithLogger(shiftRepo, directory, cfg.AssignConcurrency, idGenerator, now, logger)
	ranges := application.NewRangeServiceWithLogger(catalog, resolver, shiftRepo, application.WeekLayout{
		FirstDay: cfg.WeekStart,
		Length:   cfg.WeekLength,
	}, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Employees: httptransport.NewEmployeeHandler(employeeService, logger),
		Users:     httptransport.NewUserHandler(userService, logger),
		Shifts:    httptransport.NewShiftHandler(ranges, resolver, cfg.ExportTitle, logger),
		Health:    httptransport.NewHealthHandler(storage, logger),
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", router))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Server is running\n"))
	})

	return httptransport.Chain(mux,
		httptransport.RequestLogger(logger),
		httptransport.Recoverer(logger),
		httptransport.SecurityHeaders(httptransport.SecurityHeadersConfig{}),
		httptransport.RequestTimeout(cfg.RequestTimeout),
	)
}
