package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/staff-roster/internal/calendar"
)

var rosterVariables = []string{
	"ROSTER_HTTP_PORT",
	"ROSTER_SQLITE_PATH",
	"ROSTER_REQUEST_TIMEOUT",
	"ROSTER_WEEK_LENGTH",
	"ROSTER_WEEK_START",
	"ROSTER_WEEKDAY_SHIFTS",
	"ROSTER_ASSIGN_CONCURRENCY",
	"ROSTER_DIRECTORY_CACHE_TTL",
	"ROSTER_DIRECTORY_CACHE_SIZE",
	"ROSTER_EXPORT_TITLE",
	"ROSTER_LOG_LEVEL",
}

// clearEnvironment unsets every roster variable for the duration of the test.
func clearEnvironment(t *testing.T) {
	t.Helper()
	for _, key := range rosterVariables {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnvironment(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLitePath != "roster.db" {
			t.Fatalf("unexpected default path: %q", cfg.SQLitePath)
		}
		if cfg.RequestTimeout != 3*time.Second || cfg.WeekLength != 6 || cfg.WeekStart != time.Sunday {
			t.Fatalf("unexpected defaults %+v", cfg)
		}
		if cfg.AssignConcurrency != 4 || cfg.ExportTitle != "Weekly Roster" || cfg.LogLevel != slog.LevelInfo {
			t.Fatalf("unexpected defaults %+v", cfg)
		}
		if got := cfg.ShiftPolicy.Allowed(time.Friday); len(got) != 3 {
			t.Fatalf("expected full week policy, got %v on Friday", got)
		}
	})

	t.Run("parses every variable", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("ROSTER_HTTP_PORT", "9090")
		t.Setenv("ROSTER_SQLITE_PATH", "/tmp/roster.db")
		t.Setenv("ROSTER_REQUEST_TIMEOUT", "5s")
		t.Setenv("ROSTER_WEEK_LENGTH", "7")
		t.Setenv("ROSTER_WEEK_START", "Mon")
		t.Setenv("ROSTER_WEEKDAY_SHIFTS", "friday=morning")
		t.Setenv("ROSTER_ASSIGN_CONCURRENCY", "8")
		t.Setenv("ROSTER_DIRECTORY_CACHE_TTL", "30s")
		t.Setenv("ROSTER_DIRECTORY_CACHE_SIZE", "64")
		t.Setenv("ROSTER_EXPORT_TITLE", "Ward 3")
		t.Setenv("ROSTER_LOG_LEVEL", "debug")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 || cfg.SQLitePath != "/tmp/roster.db" || cfg.RequestTimeout != 5*time.Second {
			t.Fatalf("unexpected config %+v", cfg)
		}
		if cfg.WeekLength != 7 || cfg.WeekStart != time.Monday {
			t.Fatalf("unexpected week layout %d/%s", cfg.WeekLength, cfg.WeekStart)
		}
		if got := cfg.ShiftPolicy.Allowed(time.Friday); len(got) != 1 || got[0] != calendar.Morning {
			t.Fatalf("expected Friday morning only, got %v", got)
		}
		if cfg.AssignConcurrency != 8 || cfg.DirectoryCacheTTL != 30*time.Second || cfg.DirectoryCacheSize != 64 {
			t.Fatalf("unexpected tuning %+v", cfg)
		}
		if cfg.ExportTitle != "Ward 3" || cfg.LogLevel != slog.LevelDebug {
			t.Fatalf("unexpected presentation %+v", cfg)
		}
	})

	t.Run("reports every invalid variable at once", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("ROSTER_HTTP_PORT", "-1")
		t.Setenv("ROSTER_WEEK_LENGTH", "5")
		t.Setenv("ROSTER_WEEKDAY_SHIFTS", "friday=brunch")
		t.Setenv("ROSTER_LOG_LEVEL", "loud")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		expected := "invalid environment variables: ROSTER_HTTP_PORT, ROSTER_WEEK_LENGTH, ROSTER_WEEKDAY_SHIFTS, ROSTER_LOG_LEVEL"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	clearEnvironment(t)
	t.Setenv("ROSTER_HTTP_PORT", "7000")

	path := filepath.Join(t.TempDir(), ".env")
	content := strings.Join([]string{
		"# local overrides",
		"ROSTER_HTTP_PORT=9999",
		`export ROSTER_EXPORT_TITLE="Night Desk"`,
		"not a pair",
		"ROSTER_SQLITE_PATH = data/roster.db",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv returned error: %v", err)
	}

	if got := os.Getenv("ROSTER_HTTP_PORT"); got != "7000" {
		t.Fatalf("expected existing variable to win, got %q", got)
	}
	if got := os.Getenv("ROSTER_EXPORT_TITLE"); got != "Night Desk" {
		t.Fatalf("expected unquoted title, got %q", got)
	}
	if got := os.Getenv("ROSTER_SQLITE_PATH"); got != "data/roster.db" {
		t.Fatalf("expected trimmed path, got %q", got)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}
