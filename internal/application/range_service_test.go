package application

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/example/staff-roster/internal/calendar"
)

func newRangeFixture(t *testing.T) (*memoryStore, *RangeService) {
	t.Helper()
	store := newMemoryStore()
	store.addEmployee("e1", "Alice", "Martin")
	store.addEmployee("e2", "Bob", "Durand")

	policy := calendar.FullWeekPolicy().With(time.Friday, calendar.Morning)
	catalog := NewShiftCatalog(store, policy, sequence("slot"), fixedNow)
	directory := NewEmployeeDirectory(store, 16, time.Minute)
	resolver := NewAssignmentResolver(store, directory, 2, sequence("asg"), fixedNow)
	layout := WeekLayout{FirstDay: time.Sunday, Length: 6}
	return store, NewRangeService(catalog, resolver, store, layout, fixedNow)
}

func TestRangeService_RefreshRange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, svc := newRangeFixture(t)

	saved, err := svc.SaveWeek(ctx, "01/09/24", "06/09/24", []AssignmentTuple{
		{Position: 1, FirstName: "Alice", LastName: "Martin", ShiftType: "morning", Date: "01/09/24"},
		{Position: 1, FirstName: "Bob", LastName: "Durand", ShiftType: "morning", Date: "06/09/24"},
	})
	if err != nil {
		t.Fatalf("SaveWeek failed: %v", err)
	}
	if saved.Assignments.Persisted != 2 || saved.Slots.Created != 16 {
		t.Fatalf("unexpected save result %+v", saved)
	}

	store.calls = nil
	result, err := svc.RefreshRange(ctx, "01/09/24", "06/09/24")
	if err != nil {
		t.Fatalf("RefreshRange failed: %v", err)
	}
	if result.Cleared != 2 || result.Slots.Created != 0 || result.Slots.Existing != 16 {
		t.Fatalf("unexpected refresh result %+v", result)
	}

	want := []string{"DeleteAssignmentsInRange", "ListSlots"}
	if !reflect.DeepEqual(store.calls, want) {
		t.Fatalf("expected phases %v, got %v", want, store.calls)
	}

	rows, err := svc.ListRows(ctx, "01/09/24", "06/09/24")
	if err != nil {
		t.Fatalf("ListRows failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no assignments after refresh, got %d", len(rows))
	}
	if len(store.slots) != 16 {
		t.Fatalf("expected the full slot set, got %d", len(store.slots))
	}
}

func TestRangeService_SaveWeek(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("clears before ensuring before resolving", func(t *testing.T) {
		t.Parallel()
		store, svc := newRangeFixture(t)

		_, err := svc.SaveWeek(ctx, "01/09/24", "06/09/24", []AssignmentTuple{
			{Position: 1, FirstName: "Alice", LastName: "Martin", ShiftType: "evening", Date: "02/09/24"},
		})
		if err != nil {
			t.Fatalf("SaveWeek failed: %v", err)
		}
		want := []string{"DeleteAssignmentsInRange", "ListSlots", "InsertSlots"}
		if !reflect.DeepEqual(store.calls, want) {
			t.Fatalf("expected phases %v, got %v", want, store.calls)
		}
	})

	t.Run("replaces the previous save", func(t *testing.T) {
		t.Parallel()
		store, svc := newRangeFixture(t)

		first := []AssignmentTuple{
			{Position: 1, FirstName: "Alice", LastName: "Martin", ShiftType: "morning", Date: "01/09/24"},
			{Position: 2, FirstName: "Bob", LastName: "Durand", ShiftType: "morning", Date: "01/09/24"},
		}
		if _, err := svc.SaveWeek(ctx, "01/09/24", "06/09/24", first); err != nil {
			t.Fatalf("SaveWeek failed: %v", err)
		}
		second := []AssignmentTuple{
			{Position: 1, FirstName: "Bob", LastName: "Durand", ShiftType: "afternoon", Date: "03/09/24"},
		}
		result, err := svc.SaveWeek(ctx, "01/09/24", "06/09/24", second)
		if err != nil {
			t.Fatalf("SaveWeek failed: %v", err)
		}
		if result.Cleared != 2 || result.Assignments.Persisted != 1 {
			t.Fatalf("unexpected result %+v", result)
		}
		if got := store.occupant("01/09/24", calendar.Morning, 1); got != "" {
			t.Fatalf("expected earlier save to be cleared, found %q", got)
		}
	})

	t.Run("skips tuples outside the range with their batch index", func(t *testing.T) {
		t.Parallel()
		_, svc := newRangeFixture(t)

		result, err := svc.SaveWeek(ctx, "01/09/24", "06/09/24", []AssignmentTuple{
			{Position: 1, FirstName: "Nobody", LastName: "Known", ShiftType: "morning", Date: "01/09/24"},
			{Position: 1, FirstName: "Alice", LastName: "Martin", ShiftType: "morning", Date: "10/09/24"},
			{Position: 1, FirstName: "Alice", LastName: "Martin", ShiftType: "evening", Date: "06/09/24"},
		})
		if err != nil {
			t.Fatalf("SaveWeek failed: %v", err)
		}
		skipped := result.Assignments.Skipped
		if len(skipped) != 3 {
			t.Fatalf("expected 3 skips, got %+v", skipped)
		}
		if skipped[0].Index != 0 || skipped[0].Reason != SkipEmployeeNotFound {
			t.Fatalf("unexpected first skip %+v", skipped[0])
		}
		if skipped[1].Index != 1 || skipped[1].Reason != SkipInvalidTuple {
			t.Fatalf("unexpected second skip %+v", skipped[1])
		}
		// Friday runs mornings only.
		if skipped[2].Index != 2 || skipped[2].Reason != SkipSlotNotFound {
			t.Fatalf("unexpected third skip %+v", skipped[2])
		}
	})

	t.Run("validates the range first", func(t *testing.T) {
		t.Parallel()
		store, svc := newRangeFixture(t)
		if _, err := svc.SaveWeek(ctx, "06/09/24", "01/09/24", nil); !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("expected ErrInvalidRange, got %v", err)
		}
		if _, err := svc.ClearRange(ctx, "bad", "01/09/24"); !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("expected ErrInvalidRange, got %v", err)
		}
		if len(store.calls) != 0 {
			t.Fatalf("expected no storage calls, got %v", store.calls)
		}
	})
}

func TestRangeService_WeekGrid(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, svc := newRangeFixture(t)

	_, err := svc.SaveWeek(ctx, "01/09/24", "06/09/24", []AssignmentTuple{
		{Position: 2, FirstName: "Alice", LastName: "Martin", ShiftType: "afternoon", Date: "03/09/24"},
		{Position: 1, FirstName: "Bob", LastName: "Durand", ShiftType: "afternoon", Date: "03/09/24"},
	})
	if err != nil {
		t.Fatalf("SaveWeek failed: %v", err)
	}

	// Any day of the week selects the same week.
	grid, err := svc.WeekGrid(ctx, "04/09/24")
	if err != nil {
		t.Fatalf("WeekGrid failed: %v", err)
	}
	if len(grid.Days) != 6 || calendar.FormatDate(grid.Start) != "01/09/24" {
		t.Fatalf("unexpected grid bounds %s, %d days", calendar.FormatDate(grid.Start), len(grid.Days))
	}
	cell, ok := grid.Cell(calendar.MustParseDate("03/09/24"), calendar.Afternoon)
	if !ok || len(cell.Entries) != 2 || cell.Entries[0].FirstName != "Bob" || cell.Entries[1].FirstName != "Alice" {
		t.Fatalf("unexpected cell %+v", cell)
	}
	friday, _ := grid.Cell(calendar.MustParseDate("06/09/24"), calendar.Evening)
	if friday.Available {
		t.Fatalf("expected Friday evening to be unavailable")
	}

	current, err := svc.WeekGrid(ctx, "")
	if err != nil {
		t.Fatalf("WeekGrid failed: %v", err)
	}
	if !current.Start.Equal(grid.Start) {
		t.Fatalf("expected the clock's week, got %s", calendar.FormatDate(current.Start))
	}

	var vErr *ValidationError
	if _, err := svc.WeekGrid(ctx, "someday"); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
