package calendar

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrInvalidShiftType indicates a value outside the morning/afternoon/evening set.
var ErrInvalidShiftType = errors.New("calendar: invalid shift type")

// ShiftType names one of the three daily shifts.
type ShiftType string

const (
	Morning   ShiftType = "morning"
	Afternoon ShiftType = "afternoon"
	Evening   ShiftType = "evening"
)

var shiftTypes = []ShiftType{Morning, Afternoon, Evening}

// ShiftTypes returns the shift types in display order.
func ShiftTypes() []ShiftType {
	out := make([]ShiftType, len(shiftTypes))
	copy(out, shiftTypes)
	return out
}

// ParseShiftType accepts a shift type name in any case.
func ParseShiftType(value string) (ShiftType, error) {
	st := ShiftType(strings.ToLower(strings.TrimSpace(value)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidShiftType, value)
	}
	return st, nil
}

// Valid reports whether s is a known shift type.
func (s ShiftType) Valid() bool {
	return s.Order() >= 0
}

// Order is the display index of s, or -1 when s is unknown.
func (s ShiftType) Order() int {
	for i, st := range shiftTypes {
		if st == s {
			return i
		}
	}
	return -1
}

// Label is the capitalised name used in rendered timetables.
func (s ShiftType) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// ShiftPolicy declares which shift types run on each weekday. The zero value
// runs every shift type every day.
type ShiftPolicy struct {
	overrides map[time.Weekday][]ShiftType
}

// FullWeekPolicy runs morning, afternoon and evening shifts on every day.
func FullWeekPolicy() ShiftPolicy {
	return ShiftPolicy{}
}

// With returns a copy of the policy in which day runs exactly types.
func (p ShiftPolicy) With(day time.Weekday, types ...ShiftType) ShiftPolicy {
	next := make(map[time.Weekday][]ShiftType, len(p.overrides)+1)
	for d, ts := range p.overrides {
		next[d] = ts
	}
	next[day] = normaliseShiftTypes(types)
	return ShiftPolicy{overrides: next}
}

// Allowed lists the shift types that run on day, in display order.
func (p ShiftPolicy) Allowed(day time.Weekday) []ShiftType {
	if types, ok := p.overrides[day]; ok {
		out := make([]ShiftType, len(types))
		copy(out, types)
		return out
	}
	return ShiftTypes()
}

// Allows reports whether shift type st runs on day.
func (p ShiftPolicy) Allows(day time.Weekday, st ShiftType) bool {
	types, ok := p.overrides[day]
	if !ok {
		return st.Valid()
	}
	for _, t := range types {
		if t == st {
			return true
		}
	}
	return false
}

// String renders only the overridden days, e.g. "friday=morning".
func (p ShiftPolicy) String() string {
	if len(p.overrides) == 0 {
		return ""
	}
	days := make([]int, 0, len(p.overrides))
	for d := range p.overrides {
		days = append(days, int(d))
	}
	sort.Ints(days)

	parts := make([]string, 0, len(days))
	for _, d := range days {
		types := p.overrides[time.Weekday(d)]
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = string(t)
		}
		parts = append(parts, strings.ToLower(dayNames[d])+"="+strings.Join(names, ","))
	}
	return strings.Join(parts, ";")
}

// ParseShiftPolicy reads overrides of the form "friday=morning;saturday=".
// Days that are not listed run every shift type; an empty list closes the day.
func ParseShiftPolicy(value string) (ShiftPolicy, error) {
	policy := FullWeekPolicy()
	value = strings.TrimSpace(value)
	if value == "" {
		return policy, nil
	}

	for _, entry := range strings.Split(value, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		dayPart, typesPart, found := strings.Cut(entry, "=")
		if !found {
			return ShiftPolicy{}, fmt.Errorf("calendar: malformed shift policy entry %q", entry)
		}
		day, err := ParseWeekday(dayPart)
		if err != nil {
			return ShiftPolicy{}, err
		}

		var types []ShiftType
		for _, raw := range strings.Split(typesPart, ",") {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			st, err := ParseShiftType(raw)
			if err != nil {
				return ShiftPolicy{}, err
			}
			types = append(types, st)
		}
		policy = policy.With(day, types...)
	}
	return policy, nil
}

func normaliseShiftTypes(types []ShiftType) []ShiftType {
	seen := make(map[ShiftType]bool, len(types))
	out := make([]ShiftType, 0, len(types))
	for _, st := range shiftTypes {
		for _, t := range types {
			if t == st && !seen[st] {
				seen[st] = true
				out = append(out, st)
			}
		}
	}
	return out
}
