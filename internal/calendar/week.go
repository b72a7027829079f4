package calendar

import (
	"fmt"
	"strings"
	"time"
)

// DefaultWeekLength is the number of displayed days in a roster week.
const DefaultWeekLength = 6

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// DayName returns the English day name of t's UTC calendar day.
func DayName(t time.Time) string {
	return dayNames[t.UTC().Weekday()]
}

// DayNames returns the fixed Sunday..Saturday name set.
func DayNames() []string {
	out := make([]string, len(dayNames))
	copy(out, dayNames[:])
	return out
}

// ParseWeekday accepts a full or three letter day name in any case.
func ParseWeekday(value string) (time.Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if len(v) >= 3 {
		for i, name := range dayNames {
			lower := strings.ToLower(name)
			if v == lower || v == lower[:3] {
				return time.Weekday(i), nil
			}
		}
	}
	return time.Sunday, fmt.Errorf("calendar: unknown weekday %q", value)
}

// Week is a run of consecutive roster days starting on Start.
type Week struct {
	Start  time.Time
	Length int
}

// WeekOf returns the week containing anchor that begins on the given weekday.
func WeekOf(anchor time.Time, first time.Weekday, length int) Week {
	if length < 2 || length > 7 {
		length = DefaultWeekLength
	}
	day := DateOf(anchor)
	offset := (int(day.Weekday()) - int(first) + 7) % 7
	return Week{Start: day.AddDate(0, 0, -offset), Length: length}
}

// End is the last displayed day of the week.
func (w Week) End() time.Time {
	return w.Start.AddDate(0, 0, w.Length-1)
}

// Days lists the displayed days in order.
func (w Week) Days() []time.Time {
	days := make([]time.Time, w.Length)
	for i := range days {
		days[i] = w.Start.AddDate(0, 0, i)
	}
	return days
}

// Next returns the following week.
func (w Week) Next() Week {
	return Week{Start: w.Start.AddDate(0, 0, 7), Length: w.Length}
}

// Prev returns the preceding week.
func (w Week) Prev() Week {
	return Week{Start: w.Start.AddDate(0, 0, -7), Length: w.Length}
}

// Range converts the week to an inclusive date range.
func (w Week) Range() Range {
	return Range{Start: w.Start, End: w.End()}
}

// Contains reports whether t is one of the displayed days.
func (w Week) Contains(t time.Time) bool {
	return w.Range().Contains(t)
}

// Boundaries returns the DD/MM/YY strings of the first and last displayed day.
func (w Week) Boundaries() (string, string) {
	return FormatDate(w.Start), FormatDate(w.End())
}
