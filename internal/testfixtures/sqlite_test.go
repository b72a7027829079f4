package testfixtures

import (
	"context"
	"testing"

	"github.com/example/staff-roster/internal/calendar"
)

func TestSQLiteHarness(t *testing.T) {
	h := NewSQLiteHarness(t)
	ctx := context.Background()

	seeded := h.SeedEmployees(t, NewEmployee(), NewEmployee(WithEmployeeName("Dana", "Levi")))
	got, err := h.Employees.FindEmployeesByName(ctx, "dana", "LEVI")
	if err != nil || len(got) != 1 || got[0].ID != seeded[1].ID {
		t.Fatalf("expected to find the seeded employee, got %v (%v)", got, err)
	}

	ids := NewIDGenerator("slot")
	slots := Slots(Day("01/09/24"), Day("06/09/24"), calendar.FullWeekPolicy(), ids.NextFunc())
	if len(slots) != 18 {
		t.Fatalf("expected 18 fixture slots, got %d", len(slots))
	}
	inserted, err := h.Shifts.InsertSlots(ctx, slots)
	if err != nil || inserted != 18 {
		t.Fatalf("expected 18 inserted slots, got %d (%v)", inserted, err)
	}

	if err := h.Storage.Ping(ctx); err != nil {
		t.Fatalf("expected a live connection: %v", err)
	}
}

func TestSlotsHonourPolicy(t *testing.T) {
	policy := calendar.FullWeekPolicy().With(ReferenceTime().AddDate(0, 0, 5).Weekday(), calendar.Morning)
	slots := Slots(Day("06/09/24"), Day("06/09/24"), policy, NewIDGenerator("").NextFunc())
	if len(slots) != 1 || slots[0].ShiftType != string(calendar.Morning) || slots[0].DayName != "Friday" {
		t.Fatalf("expected a single Friday morning slot, got %+v", slots)
	}
}
