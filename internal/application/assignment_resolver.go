package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/staff-roster/internal/calendar"
	"github.com/example/staff-roster/internal/timetable"
)

// AssignmentRepository captures the slot lookup and assignment writes of the resolver.
type AssignmentRepository interface {
	FindSlot(ctx context.Context, date time.Time, shiftType calendar.ShiftType) (ShiftSlot, error)
	// UpsertAssignment must replace any occupant of (slot, position) atomically.
	UpsertAssignment(ctx context.Context, assignment Assignment) (Assignment, error)
	DeleteAssignmentsInRange(ctx context.Context, from, to time.Time) (int, error)
	ListAssignmentRows(ctx context.Context, from, to time.Time) ([]timetable.Row, error)
}

// DefaultResolveConcurrency bounds in-flight tuples when none is configured.
const DefaultResolveConcurrency = 4

// AssignmentResolver binds UI selections to stored slots and employees.
type AssignmentResolver struct {
	assignments AssignmentRepository
	directory   *EmployeeDirectory
	concurrency int
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAssignmentResolver constructs a resolver processing up to concurrency
// tuples at once.
func NewAssignmentResolver(assignments AssignmentRepository, directory *EmployeeDirectory, concurrency int, idGenerator func() string, now func() time.Time) *AssignmentResolver {
	return NewAssignmentResolverWithLogger(assignments, directory, concurrency, idGenerator, now, nil)
}

// NewAssignmentResolverWithLogger constructs a resolver with a specified logger.
func NewAssignmentResolverWithLogger(assignments AssignmentRepository, directory *EmployeeDirectory, concurrency int, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AssignmentResolver {
	if concurrency <= 0 {
		concurrency = DefaultResolveConcurrency
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AssignmentResolver{
		assignments: assignments,
		directory:   directory,
		concurrency: concurrency,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

type resolvedTuple struct {
	index     int
	position  int
	date      time.Time
	shiftType calendar.ShiftType
	tuple     AssignmentTuple
}

// ResolveAndPersist upserts each tuple whose slot and employee can be found.
// A tuple that cannot be bound is skipped with a reason; it never aborts the
// batch. When the same (date, shift type, position) appears more than once
// the last occurrence wins. If ctx expires, unprocessed tuples are reported
// as timeouts and the result is marked incomplete.
func (r *AssignmentResolver) ResolveAndPersist(ctx context.Context, tuples []AssignmentTuple) (result ResolveResult, err error) {
	if r == nil {
		err = fmt.Errorf("AssignmentResolver is nil")
		return
	}
	if r.assignments == nil || r.directory == nil {
		err = fmt.Errorf("assignment resolver not configured")
		return
	}

	logger := serviceLogger(ctx, r.logger, "AssignmentResolver", "ResolveAndPersist", "tuples", len(tuples))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to resolve assignments", "error", err, "error_kind", ErrorKind(err))
			return
		}
		level := slog.LevelInfo
		if result.Incomplete {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "assignments resolved",
			"persisted", result.Persisted,
			"skipped", len(result.Skipped),
			"incomplete", result.Incomplete,
		)
	}()

	skips := make([]*Skip, len(tuples))
	work := r.prepare(tuples, skips)

	var persisted atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, item := range work {
		g.Go(func() error {
			if gctx.Err() != nil {
				skips[item.index] = &Skip{Index: item.index, Reason: SkipTimeout, Detail: gctx.Err().Error()}
				return nil
			}
			if skip := r.persist(gctx, item); skip != nil {
				skips[item.index] = skip
				logger.DebugContext(ctx, "assignment skipped", "index", item.index, "reason", skip.Reason, "detail", skip.Detail)
				return nil
			}
			persisted.Add(1)
			return nil
		})
	}
	// Workers report failures as skips and never return an error.
	_ = g.Wait()

	result.Persisted = int(persisted.Load())
	for _, skip := range skips {
		if skip == nil {
			continue
		}
		result.Skipped = append(result.Skipped, *skip)
		if skip.Reason == SkipTimeout {
			result.Incomplete = true
		}
	}
	return
}

// prepare validates tuples and drops earlier duplicates of a key, filling
// skips for every tuple that will not be processed.
func (r *AssignmentResolver) prepare(tuples []AssignmentTuple, skips []*Skip) []resolvedTuple {
	valid := make([]resolvedTuple, 0, len(tuples))
	last := make(map[string]int, len(tuples))

	for i, tuple := range tuples {
		item, detail := validateTuple(i, tuple)
		if detail != "" {
			skips[i] = &Skip{Index: i, Reason: SkipInvalidTuple, Detail: detail}
			continue
		}
		last[fmt.Sprintf("%s|%d", slotKey(item.date, item.shiftType), item.position)] = i
		valid = append(valid, item)
	}

	work := valid[:0]
	for _, item := range valid {
		key := fmt.Sprintf("%s|%d", slotKey(item.date, item.shiftType), item.position)
		if winner := last[key]; winner != item.index {
			skips[item.index] = &Skip{
				Index:  item.index,
				Reason: SkipDuplicatePosition,
				Detail: fmt.Sprintf("superseded by tuple %d", winner),
			}
			continue
		}
		work = append(work, item)
	}
	return work
}

func validateTuple(index int, tuple AssignmentTuple) (resolvedTuple, string) {
	var problems []string

	if tuple.Position < 1 || tuple.Position > timetable.MaxPositions {
		problems = append(problems, fmt.Sprintf("position must be between 1 and %d", timetable.MaxPositions))
	}
	shiftType, err := calendar.ParseShiftType(tuple.ShiftType)
	if err != nil {
		problems = append(problems, fmt.Sprintf("unknown shift type %q", tuple.ShiftType))
	}
	date, err := parseDate(tuple.Date)
	if err != nil {
		problems = append(problems, fmt.Sprintf("invalid date %q", tuple.Date))
	}
	if strings.TrimSpace(tuple.EmployeeID) == "" &&
		(strings.TrimSpace(tuple.FirstName) == "" || strings.TrimSpace(tuple.LastName) == "") {
		problems = append(problems, "employee name or id is required")
	}

	if len(problems) > 0 {
		return resolvedTuple{}, strings.Join(problems, "; ")
	}
	return resolvedTuple{
		index:     index,
		position:  tuple.Position,
		date:      date,
		shiftType: shiftType,
		tuple:     tuple,
	}, ""
}

// persist runs the slot lookup, employee lookup and upsert for one tuple.
func (r *AssignmentResolver) persist(ctx context.Context, item resolvedTuple) *Skip {
	skip := func(reason SkipReason, err error) *Skip {
		if isContextError(err) {
			reason = SkipTimeout
		}
		return &Skip{Index: item.index, Reason: reason, Detail: err.Error()}
	}

	slot, err := r.assignments.FindSlot(ctx, item.date, item.shiftType)
	if err != nil {
		if errors.Is(mapRepoError(err, nil), ErrNotFound) {
			return &Skip{
				Index:  item.index,
				Reason: SkipSlotNotFound,
				Detail: fmt.Sprintf("no %s slot on %s", item.shiftType, calendar.FormatDate(item.date)),
			}
		}
		return skip(SkipStorageError, err)
	}

	var employee Employee
	if id := strings.TrimSpace(item.tuple.EmployeeID); id != "" {
		employee, err = r.directory.Get(ctx, id)
	} else {
		employee, err = r.directory.Lookup(ctx, item.tuple.FirstName, item.tuple.LastName)
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return &Skip{Index: item.index, Reason: SkipEmployeeNotFound, Detail: describeEmployee(item.tuple)}
		case errors.Is(err, ErrAmbiguousEmployee):
			return &Skip{Index: item.index, Reason: SkipAmbiguousEmployee, Detail: err.Error()}
		}
		return skip(SkipStorageError, err)
	}

	now := r.now()
	_, err = r.assignments.UpsertAssignment(ctx, Assignment{
		ID:         r.idGenerator(),
		SlotID:     slot.ID,
		EmployeeID: employee.ID,
		Position:   item.position,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return skip(SkipStorageError, err)
	}
	return nil
}

func describeEmployee(tuple AssignmentTuple) string {
	if id := strings.TrimSpace(tuple.EmployeeID); id != "" {
		return fmt.Sprintf("no employee with id %s", id)
	}
	return fmt.Sprintf("no employee named %s %s", strings.TrimSpace(tuple.FirstName), strings.TrimSpace(tuple.LastName))
}

func isContextError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
