package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/staff-roster/internal/calendar"
	"github.com/example/staff-roster/internal/timetable"
)

// WeekLayout describes how the roster week is displayed.
type WeekLayout struct {
	FirstDay time.Weekday
	Length   int
}

// RangeService drives the clear-then-rebuild cycle run on every week
// navigation and save, and reads ranges back for display.
type RangeService struct {
	catalog     *ShiftCatalog
	resolver    *AssignmentResolver
	assignments AssignmentRepository
	layout      WeekLayout
	now         func() time.Time
	logger      *slog.Logger
}

// NewRangeService constructs a range service.
func NewRangeService(catalog *ShiftCatalog, resolver *AssignmentResolver, assignments AssignmentRepository, layout WeekLayout, now func() time.Time) *RangeService {
	return NewRangeServiceWithLogger(catalog, resolver, assignments, layout, now, nil)
}

// NewRangeServiceWithLogger constructs a range service with a specified logger.
func NewRangeServiceWithLogger(catalog *ShiftCatalog, resolver *AssignmentResolver, assignments AssignmentRepository, layout WeekLayout, now func() time.Time, logger *slog.Logger) *RangeService {
	if layout.Length == 0 {
		layout.Length = calendar.DefaultWeekLength
	}
	if now == nil {
		now = time.Now
	}
	return &RangeService{
		catalog:     catalog,
		resolver:    resolver,
		assignments: assignments,
		layout:      layout,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *RangeService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RangeService", operation, attrs...)
}

// ClearRange deletes every assignment whose slot falls in [startDate,
// endDate] and reports how many were removed. Slots are kept.
func (s *RangeService) ClearRange(ctx context.Context, startDate, endDate string) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("RangeService is nil")
	}
	rng, err := validateRange(startDate, endDate)
	if err != nil {
		return 0, err
	}
	return s.clear(ctx, rng)
}

func (s *RangeService) clear(ctx context.Context, rng calendar.Range) (deleted int, err error) {
	logger := s.loggerWith(ctx, "ClearRange", "range", rng.String())
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to clear range", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "range cleared", "deleted", deleted)
	}()

	if s.assignments == nil {
		err = fmt.Errorf("assignment repository not configured")
		return
	}
	deleted, err = s.assignments.DeleteAssignmentsInRange(ctx, rng.Start, rng.End)
	return
}

// RefreshRange clears the range and then materializes its slots. The clear
// completes before any slot is ensured.
func (s *RangeService) RefreshRange(ctx context.Context, startDate, endDate string) (RefreshResult, error) {
	if s == nil {
		return RefreshResult{}, fmt.Errorf("RangeService is nil")
	}
	rng, err := validateRange(startDate, endDate)
	if err != nil {
		return RefreshResult{}, err
	}
	return s.refresh(ctx, rng)
}

func (s *RangeService) refresh(ctx context.Context, rng calendar.Range) (RefreshResult, error) {
	if s.catalog == nil {
		return RefreshResult{}, fmt.Errorf("shift catalog not configured")
	}
	var result RefreshResult
	cleared, err := s.clear(ctx, rng)
	if err != nil {
		return RefreshResult{}, err
	}
	result.Cleared = cleared

	slots, err := s.catalog.ensureRange(ctx, rng)
	if err != nil {
		return RefreshResult{}, err
	}
	result.Slots = slots
	return result, nil
}

// SaveWeek replaces the stored assignments of [startDate, endDate] with
// tuples: clear, ensure slots, then resolve. Tuples dated outside the range
// are skipped as invalid.
func (s *RangeService) SaveWeek(ctx context.Context, startDate, endDate string, tuples []AssignmentTuple) (result SaveResult, err error) {
	if s == nil {
		err = fmt.Errorf("RangeService is nil")
		return
	}
	var rng calendar.Range
	rng, err = validateRange(startDate, endDate)
	if err != nil {
		return
	}

	logger := s.loggerWith(ctx, "SaveWeek", "range", rng.String(), "tuples", len(tuples))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to save week", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	var refreshed RefreshResult
	refreshed, err = s.refresh(ctx, rng)
	if err != nil {
		return
	}
	result.Cleared = refreshed.Cleared
	result.Slots = refreshed.Slots

	inRange := make([]AssignmentTuple, 0, len(tuples))
	original := make([]int, 0, len(tuples))
	var outside []Skip
	for i, tuple := range tuples {
		if day, perr := parseDate(tuple.Date); perr == nil && !rng.Contains(day) {
			outside = append(outside, Skip{
				Index:  i,
				Reason: SkipInvalidTuple,
				Detail: fmt.Sprintf("date %s is outside %s", calendar.FormatDate(day), rng.String()),
			})
			continue
		}
		inRange = append(inRange, tuple)
		original = append(original, i)
	}

	result.Assignments, err = s.resolver.ResolveAndPersist(ctx, inRange)
	if err != nil {
		return
	}
	for i := range result.Assignments.Skipped {
		result.Assignments.Skipped[i].Index = original[result.Assignments.Skipped[i].Index]
	}
	result.Assignments.Skipped = mergeSkips(result.Assignments.Skipped, outside)
	return
}

// ListRows returns the joined assignment rows of [startDate, endDate]
// ordered by date, shift and position.
func (s *RangeService) ListRows(ctx context.Context, startDate, endDate string) ([]timetable.Row, error) {
	if s == nil {
		return nil, fmt.Errorf("RangeService is nil")
	}
	rng, err := validateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	if s.assignments == nil {
		return nil, fmt.Errorf("assignment repository not configured")
	}
	rows, err := s.assignments.ListAssignmentRows(ctx, rng.Start, rng.End)
	if err != nil {
		s.loggerWith(ctx, "ListRows", "range", rng.String()).
			ErrorContext(ctx, "failed to list rows", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return rows, nil
}

// Week returns the configured week containing weekStart, a DD/MM/YY or ISO
// date. An empty value means the current week.
func (s *RangeService) Week(weekStart string) (calendar.Week, error) {
	anchor := s.now()
	if strings.TrimSpace(weekStart) != "" {
		day, err := parseDate(weekStart)
		if err != nil {
			vErr := &ValidationError{}
			vErr.add("weekStart", "weekStart must be a DD/MM/YY date")
			return calendar.Week{}, vErr
		}
		anchor = day
	}
	return calendar.WeekOf(anchor, s.layout.FirstDay, s.layout.Length), nil
}

// WeekGrid projects the stored assignments of a week onto the display grid.
func (s *RangeService) WeekGrid(ctx context.Context, weekStart string) (timetable.WeekGrid, error) {
	if s == nil {
		return timetable.WeekGrid{}, fmt.Errorf("RangeService is nil")
	}
	week, err := s.Week(weekStart)
	if err != nil {
		return timetable.WeekGrid{}, err
	}
	if s.assignments == nil {
		return timetable.WeekGrid{}, fmt.Errorf("assignment repository not configured")
	}

	rows, err := s.assignments.ListAssignmentRows(ctx, week.Start, week.End())
	if err != nil {
		return timetable.WeekGrid{}, err
	}

	policy := calendar.FullWeekPolicy()
	if s.catalog != nil {
		policy = s.catalog.Policy()
	}
	grid := timetable.Project(week, policy, rows)
	if grid.Dropped > 0 {
		s.loggerWith(ctx, "WeekGrid").WarnContext(ctx, "rows dropped from grid", "dropped", grid.Dropped)
	}
	return grid, nil
}

func mergeSkips(a, b []Skip) []Skip {
	if len(b) == 0 {
		return a
	}
	out := make([]Skip, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].Index < b[j].Index {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
