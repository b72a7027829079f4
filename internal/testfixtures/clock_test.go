package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
	if clock.Now().Weekday() != time.Sunday {
		t.Fatalf("expected the reference week to start on a Sunday, got %s", clock.Now().Weekday())
	}
}

func TestClockAdvance(t *testing.T) {
	clock := NewClock(time.Time{})
	nowFn := clock.NowFunc()

	if got := clock.Advance(90 * time.Minute); !got.Equal(ReferenceTime().Add(90 * time.Minute)) {
		t.Fatalf("advance returned %v", got)
	}

	next := clock.AdvanceDays(7)
	if next.Format("02/01/06") != "08/09/24" || next.Hour() != ReferenceTime().Add(90*time.Minute).Hour() {
		t.Fatalf("expected the following Sunday at the same hour, got %v", next)
	}
	if !nowFn().Equal(next) {
		t.Fatalf("expected NowFunc to follow the clock, got %v", nowFn())
	}

	clock.Set(ReferenceTime())
	if !nowFn().Equal(ReferenceTime()) {
		t.Fatalf("expected Set to rewind the clock")
	}
}
