package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/staff-roster/internal/calendar"
	"github.com/example/staff-roster/internal/logging"
)

// Config captures environment driven configuration values for the roster service.
type Config struct {
	HTTPPort           int
	SQLitePath         string
	RequestTimeout     time.Duration
	WeekLength         int
	WeekStart          time.Weekday
	ShiftPolicy        calendar.ShiftPolicy
	AssignConcurrency  int
	DirectoryCacheTTL  time.Duration
	DirectoryCacheSize int
	ExportTitle        string
	LogLevel           slog.Level
}

// Default returns the configuration used when no variable is set.
func Default() Config {
	return Config{
		HTTPPort:           8080,
		SQLitePath:         "roster.db",
		RequestTimeout:     3 * time.Second,
		WeekLength:         calendar.DefaultWeekLength,
		WeekStart:          time.Sunday,
		ShiftPolicy:        calendar.FullWeekPolicy(),
		AssignConcurrency:  4,
		DirectoryCacheTTL:  time.Minute,
		DirectoryCacheSize: 256,
		ExportTitle:        "Weekly Roster",
		LogLevel:           slog.LevelInfo,
	}
}

// Load parses configuration values from the current process environment.
//
// Unset variables keep their defaults. Every unparsable variable is reported
// in a single error so an operator can fix them in one pass.
func Load() (Config, error) {
	cfg := Default()
	invalid := make([]string, 0, 2)

	positiveInt := func(key string, dst *int) {
		value := strings.TrimSpace(os.Getenv(key))
		if value == "" {
			return
		}
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			invalid = append(invalid, key)
			return
		}
		*dst = n
	}
	positiveDuration := func(key string, dst *time.Duration) {
		value := strings.TrimSpace(os.Getenv(key))
		if value == "" {
			return
		}
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			invalid = append(invalid, key)
			return
		}
		*dst = d
	}

	positiveInt("ROSTER_HTTP_PORT", &cfg.HTTPPort)
	positiveDuration("ROSTER_REQUEST_TIMEOUT", &cfg.RequestTimeout)
	positiveInt("ROSTER_ASSIGN_CONCURRENCY", &cfg.AssignConcurrency)
	positiveDuration("ROSTER_DIRECTORY_CACHE_TTL", &cfg.DirectoryCacheTTL)
	positiveInt("ROSTER_DIRECTORY_CACHE_SIZE", &cfg.DirectoryCacheSize)

	if path := strings.TrimSpace(os.Getenv("ROSTER_SQLITE_PATH")); path != "" {
		cfg.SQLitePath = path
	}

	if value := strings.TrimSpace(os.Getenv("ROSTER_WEEK_LENGTH")); value != "" {
		n, err := strconv.Atoi(value)
		if err != nil || (n != 6 && n != 7) {
			invalid = append(invalid, "ROSTER_WEEK_LENGTH")
		} else {
			cfg.WeekLength = n
		}
	}

	if value := strings.TrimSpace(os.Getenv("ROSTER_WEEK_START")); value != "" {
		day, err := calendar.ParseWeekday(value)
		if err != nil {
			invalid = append(invalid, "ROSTER_WEEK_START")
		} else {
			cfg.WeekStart = day
		}
	}

	if value := os.Getenv("ROSTER_WEEKDAY_SHIFTS"); strings.TrimSpace(value) != "" {
		policy, err := calendar.ParseShiftPolicy(value)
		if err != nil {
			invalid = append(invalid, "ROSTER_WEEKDAY_SHIFTS")
		} else {
			cfg.ShiftPolicy = policy
		}
	}

	if title := strings.TrimSpace(os.Getenv("ROSTER_EXPORT_TITLE")); title != "" {
		cfg.ExportTitle = title
	}

	if value := strings.TrimSpace(os.Getenv("ROSTER_LOG_LEVEL")); value != "" {
		level, err := logging.ParseLevel(value)
		if err != nil {
			invalid = append(invalid, "ROSTER_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
