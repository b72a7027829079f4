// Package calendar holds the date codec, week arithmetic and shift policy
// shared by the roster services. Every value it returns is a calendar day at
// midnight UTC.
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidDate indicates a value that is not a real DD/MM/YY calendar day.
	ErrInvalidDate = errors.New("calendar: invalid date")
	// ErrInvalidRange indicates a range whose start is not strictly before its end.
	ErrInvalidRange = errors.New("calendar: start date must be before end date")
)

const (
	displayLayout = "02/01/06"
	isoLayout     = "2006-01-02"
)

// ParseDate decodes a DD/MM/YY (or DD/MM/YYYY) value. Surrounding whitespace
// is ignored and two digit years are read as 2000+YY.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	parts := strings.Split(trimmed, "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}

	day, ok := parseDigits(parts[0], 1, 2)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	month, ok := parseDigits(parts[1], 1, 2)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}

	var year int
	switch len(parts[2]) {
	case 2:
		yy, ok := parseDigits(parts[2], 2, 2)
		if !ok {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
		}
		year = 2000 + yy
	case 4:
		yyyy, ok := parseDigits(parts[2], 4, 4)
		if !ok {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
		}
		year = yyyy
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalises 31/02 into March; reject instead.
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}

// MustParseDate is ParseDate for fixed literals; it panics on bad input.
func MustParseDate(value string) time.Time {
	t, err := ParseDate(value)
	if err != nil {
		panic(err)
	}
	return t
}

// FormatDate renders t as DD/MM/YY.
func FormatDate(t time.Time) string {
	return t.UTC().Format(displayLayout)
}

// FormatISO renders t as YYYY-MM-DD, the form used as storage key.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// ParseISO decodes a YYYY-MM-DD value into midnight UTC.
func ParseISO(value string) (time.Time, error) {
	t, err := time.ParseInLocation(isoLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func parseDigits(value string, minLen, maxLen int) (int, bool) {
	if len(value) < minLen || len(value) > maxLen {
		return 0, false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Range is an inclusive span of calendar days.
type Range struct {
	Start time.Time
	End   time.Time
}

// NewRange builds a range after truncating both bounds to calendar days.
// The start must be strictly before the end.
func NewRange(start, end time.Time) (Range, error) {
	start = DateOf(start)
	end = DateOf(end)
	if !start.Before(end) {
		return Range{}, fmt.Errorf("%w: %s .. %s", ErrInvalidRange, FormatDate(start), FormatDate(end))
	}
	return Range{Start: start, End: end}, nil
}

// ParseRange decodes both bounds with ParseDate and validates their order.
func ParseRange(start, end string) (Range, error) {
	from, err := ParseDate(start)
	if err != nil {
		return Range{}, err
	}
	to, err := ParseDate(end)
	if err != nil {
		return Range{}, err
	}
	return NewRange(from, to)
}

// Days lists every calendar day in the range, both bounds included.
func (r Range) Days() []time.Time {
	if r.End.Before(r.Start) {
		return nil
	}
	days := make([]time.Time, 0, r.Len())
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Len reports the number of days in the range.
func (r Range) Len() int {
	if r.End.Before(r.Start) {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Contains reports whether the calendar day of t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// String renders the range as "DD/MM/YY-DD/MM/YY".
func (r Range) String() string {
	return FormatDate(r.Start) + "-" + FormatDate(r.End)
}
