package timetable

import (
	"fmt"
	"strings"
)

// NameFormat controls how renderers print an entry.
type NameFormat string

const (
	// FullName prints "First Last".
	FullName NameFormat = "full"
	// LastInitial prints "First L.".
	LastInitial NameFormat = "initial"
)

// ParseNameFormat maps a query value to a NameFormat; empty means FullName.
func ParseNameFormat(value string) (NameFormat, error) {
	switch NameFormat(strings.ToLower(strings.TrimSpace(value))) {
	case "", FullName:
		return FullName, nil
	case LastInitial:
		return LastInitial, nil
	default:
		return "", fmt.Errorf("timetable: unknown name format %q", value)
	}
}

// Format renders the entry's name.
func (f NameFormat) Format(e Entry) string {
	first := strings.TrimSpace(e.FirstName)
	last := strings.TrimSpace(e.LastName)
	if f == LastInitial && last != "" {
		r := []rune(last)
		last = string(r[0]) + "."
	}
	return strings.TrimSpace(first + " " + last)
}

// Names renders every entry of the cell in position order.
func (f NameFormat) Names(c Cell) []string {
	names := make([]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		names = append(names, f.Format(e))
	}
	return names
}
