package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/staff-roster/internal/calendar"
)

func newResolverFixture(t *testing.T) (*memoryStore, *AssignmentResolver) {
	t.Helper()
	store := newMemoryStore()
	catalog := NewShiftCatalog(store, calendar.FullWeekPolicy(), sequence("slot"), fixedNow)
	if _, err := catalog.EnsureSlots(context.Background(), "01/09/24", "06/09/24"); err != nil {
		t.Fatalf("EnsureSlots failed: %v", err)
	}
	store.addEmployee("e1", "Alice", "Martin")
	store.addEmployee("e2", "Bob", "Durand")
	store.addEmployee("e3", "Chloe", "Petit")

	directory := NewEmployeeDirectory(store, 16, time.Minute)
	resolver := NewAssignmentResolver(store, directory, 3, sequence("asg"), fixedNow)
	return store, resolver
}

func TestAssignmentResolver_ResolveAndPersist(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("persists the resolvable tuples of a partially bad batch", func(t *testing.T) {
		t.Parallel()
		store, resolver := newResolverFixture(t)

		result, err := resolver.ResolveAndPersist(ctx, []AssignmentTuple{
			{Position: 1, FirstName: "Alice", LastName: "Martin", ShiftType: "morning", Date: "01/09/24"},
			{Position: 2, FirstName: "bob", LastName: "durand", ShiftType: "morning", Date: "01/09/24"},
			{Position: 1, FirstName: "Chloe", LastName: "Petit", ShiftType: "evening", Date: "02/09/24"},
			{Position: 3, FirstName: "Nobody", LastName: "Known", ShiftType: "afternoon", Date: "03/09/24"},
			{Position: 1, FirstName: "Alice", LastName: "Martin", ShiftType: "afternoon", Date: "2024-09-04"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Persisted != 4 {
			t.Fatalf("expected 4 persisted, got %d", result.Persisted)
		}
		if len(result.Skipped) != 1 || result.Skipped[0].Index != 3 || result.Skipped[0].Reason != SkipEmployeeNotFound {
			t.Fatalf("expected one EmployeeNotFound skip at index 3, got %+v", result.Skipped)
		}
		if result.Incomplete {
			t.Fatalf("expected complete result")
		}
		if got := store.occupant("02/09/24", calendar.Evening, 1); got != "e3" {
			t.Fatalf("expected Chloe on Monday evening, got %q", got)
		}
	})

	t.Run("a second assignment replaces the occupant", func(t *testing.T) {
		t.Parallel()
		store, resolver := newResolverFixture(t)

		for _, name := range [][2]string{{"Alice", "Martin"}, {"Bob", "Durand"}} {
			_, err := resolver.ResolveAndPersist(ctx, []AssignmentTuple{
				{Position: 2, FirstName: name[0], LastName: name[1], ShiftType: "morning", Date: "05/09/24"},
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if got := store.occupant("05/09/24", calendar.Morning, 2); got != "e2" {
			t.Fatalf("expected Bob to hold the position, got %q", got)
		}
		if len(store.assignments) != 1 {
			t.Fatalf("expected a single assignment, got %d", len(store.assignments))
		}
	})

	t.Run("the last duplicate key in a batch wins", func(t *testing.T) {
		t.Parallel()
		store, resolver := newResolverFixture(t)

		result, err := resolver.ResolveAndPersist(ctx, []AssignmentTuple{
			{Position: 1, FirstName: "Alice", LastName: "Martin", ShiftType: "morning", Date: "01/09/24"},
			{Position: 1, FirstName: "Bob", LastName: "Durand", ShiftType: "morning", Date: "01/09/24"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Persisted != 1 || len(result.Skipped) != 1 || result.Skipped[0].Reason != SkipDuplicatePosition || result.Skipped[0].Index != 0 {
			t.Fatalf("unexpected result %+v", result)
		}
		if got := store.occupant("01/09/24", calendar.Morning, 1); got != "e2" {
			t.Fatalf("expected Bob, got %q", got)
		}
	})

	t.Run("reports every skip reason", func(t *testing.T) {
		t.Parallel()
		store, resolver := newResolverFixture(t)
		store.addEmployee("e4", "Alice", "Martin")

		result, err := resolver.ResolveAndPersist(ctx, []AssignmentTuple{
			{Position: 4, FirstName: "Bob", LastName: "Durand", ShiftType: "morning", Date: "01/09/24"},
			{Position: 1, FirstName: "Bob", LastName: "Durand", ShiftType: "night", Date: "01/09/24"},
			{Position: 1, FirstName: "Bob", LastName: "Durand", ShiftType: "morning", Date: "20/09/24"},
			{Position: 1, FirstName: "Alice", LastName: "Martin", ShiftType: "morning", Date: "02/09/24"},
			{Position: 2, EmployeeID: "e4", ShiftType: "morning", Date: "02/09/24"},
			{Position: 3, EmployeeID: "ghost", ShiftType: "morning", Date: "02/09/24"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []SkipReason{SkipInvalidTuple, SkipInvalidTuple, SkipSlotNotFound, SkipAmbiguousEmployee, SkipEmployeeNotFound}
		if len(result.Skipped) != len(want) {
			t.Fatalf("expected %d skips, got %+v", len(want), result.Skipped)
		}
		for i, reason := range want {
			if result.Skipped[i].Reason != reason {
				t.Fatalf("skip %d: expected %s, got %+v", i, reason, result.Skipped[i])
			}
		}
		if result.Persisted != 1 {
			t.Fatalf("expected the id-addressed tuple to persist, got %d", result.Persisted)
		}
		if got := store.occupant("02/09/24", calendar.Morning, 2); got != "e4" {
			t.Fatalf("expected e4 by id, got %q", got)
		}
	})

	t.Run("storage failures become skips", func(t *testing.T) {
		t.Parallel()
		store, resolver := newResolverFixture(t)
		store.upsertErr = errors.New("write failed")

		result, err := resolver.ResolveAndPersist(ctx, []AssignmentTuple{
			{Position: 1, FirstName: "Alice", LastName: "Martin", ShiftType: "morning", Date: "01/09/24"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Persisted != 0 || len(result.Skipped) != 1 || result.Skipped[0].Reason != SkipStorageError {
			t.Fatalf("unexpected result %+v", result)
		}
	})

	t.Run("an expired deadline returns an incomplete result", func(t *testing.T) {
		t.Parallel()
		store, resolver := newResolverFixture(t)
		store.upsertDelay = time.Second

		deadline, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		tuples := make([]AssignmentTuple, 0, 6)
		for i, date := range []string{"01/09/24", "02/09/24", "03/09/24", "04/09/24", "05/09/24", "06/09/24"} {
			tuples = append(tuples, AssignmentTuple{Position: 1 + i%3, FirstName: "Alice", LastName: "Martin", ShiftType: "evening", Date: date})
		}
		result, err := resolver.ResolveAndPersist(deadline, tuples)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Incomplete {
			t.Fatalf("expected incomplete result")
		}
		if result.Persisted != 0 || len(result.Skipped) != len(tuples) {
			t.Fatalf("expected every tuple to time out, got %+v", result)
		}
		for _, skip := range result.Skipped {
			if skip.Reason != SkipTimeout {
				t.Fatalf("expected Timeout, got %+v", skip)
			}
		}
	})

	t.Run("name lookups are cached across tuples", func(t *testing.T) {
		t.Parallel()
		store, resolver := newResolverFixture(t)

		var tuples []AssignmentTuple
		for _, date := range []string{"01/09/24", "02/09/24", "03/09/24"} {
			tuples = append(tuples, AssignmentTuple{Position: 1, FirstName: "Alice", LastName: "Martin", ShiftType: "morning", Date: date})
		}
		if _, err := resolver.ResolveAndPersist(ctx, tuples[:1]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := resolver.ResolveAndPersist(ctx, tuples[1:]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if store.nameQueries != 1 {
			t.Fatalf("expected one name query, got %d", store.nameQueries)
		}
	})
}
