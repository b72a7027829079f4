// Package timetable projects stored assignments onto a printable week grid.
//
// The projection is pure: it never touches storage, and renderers consume the
// resulting WeekGrid without knowing how it was produced.
package timetable

import (
	"sort"
	"time"

	"github.com/example/staff-roster/internal/calendar"
)

// MaxPositions is the number of staff slots per shift.
const MaxPositions = 3

// Row is one resolved assignment as read back from storage.
type Row struct {
	Date       time.Time
	ShiftType  calendar.ShiftType
	Position   int
	EmployeeID string
	FirstName  string
	LastName   string
}

// Entry is an employee placed in a cell.
type Entry struct {
	Position   int
	EmployeeID string
	FirstName  string
	LastName   string
}

// Cell holds the entries of one shift on one day. Available is false when the
// shift policy does not run that shift on that day.
type Cell struct {
	ShiftType calendar.ShiftType
	Available bool
	Entries   []Entry
}

// Day is one column of the grid.
type Day struct {
	Date  time.Time
	Name  string
	Cells []Cell
}

// WeekGrid is the projected timetable. Dropped counts rows that fell outside
// the week or carried an unknown shift type or position.
type WeekGrid struct {
	Start   time.Time
	End     time.Time
	Days    []Day
	Dropped int
}

// Project lays rows onto the days of week. Every day carries one cell per
// shift type in display order; entries within a cell are ordered by position.
func Project(week calendar.Week, policy calendar.ShiftPolicy, rows []Row) WeekGrid {
	days := week.Days()
	grid := WeekGrid{
		Start: week.Start,
		End:   week.End(),
		Days:  make([]Day, len(days)),
	}

	index := make(map[string]int, len(days))
	for i, d := range days {
		types := calendar.ShiftTypes()
		cells := make([]Cell, len(types))
		for j, st := range types {
			cells[j] = Cell{ShiftType: st, Available: policy.Allows(d.Weekday(), st)}
		}
		grid.Days[i] = Day{Date: d, Name: calendar.DayName(d), Cells: cells}
		index[calendar.FormatISO(d)] = i
	}

	for _, row := range rows {
		dayIdx, ok := index[calendar.FormatISO(row.Date)]
		order := row.ShiftType.Order()
		if !ok || order < 0 || row.Position < 1 || row.Position > MaxPositions {
			grid.Dropped++
			continue
		}
		cell := &grid.Days[dayIdx].Cells[order]
		if len(cell.Entries) >= MaxPositions || cell.hasPosition(row.Position) {
			grid.Dropped++
			continue
		}
		cell.Entries = append(cell.Entries, Entry{
			Position:   row.Position,
			EmployeeID: row.EmployeeID,
			FirstName:  row.FirstName,
			LastName:   row.LastName,
		})
	}

	for i := range grid.Days {
		for j := range grid.Days[i].Cells {
			entries := grid.Days[i].Cells[j].Entries
			sort.Slice(entries, func(a, b int) bool { return entries[a].Position < entries[b].Position })
		}
	}

	return grid
}

// Flatten returns the projected assignments ordered by date, shift and position.
func (g WeekGrid) Flatten() []Row {
	var rows []Row
	for _, day := range g.Days {
		for _, cell := range day.Cells {
			for _, e := range cell.Entries {
				rows = append(rows, Row{
					Date:       day.Date,
					ShiftType:  cell.ShiftType,
					Position:   e.Position,
					EmployeeID: e.EmployeeID,
					FirstName:  e.FirstName,
					LastName:   e.LastName,
				})
			}
		}
	}
	return rows
}

// Cell returns the cell for date and shift type, if the grid has one.
func (g WeekGrid) Cell(date time.Time, st calendar.ShiftType) (Cell, bool) {
	order := st.Order()
	if order < 0 {
		return Cell{}, false
	}
	key := calendar.FormatISO(date)
	for _, day := range g.Days {
		if calendar.FormatISO(day.Date) == key {
			return day.Cells[order], true
		}
	}
	return Cell{}, false
}

// Assigned counts the entries placed on the grid.
func (g WeekGrid) Assigned() int {
	n := 0
	for _, day := range g.Days {
		for _, cell := range day.Cells {
			n += len(cell.Entries)
		}
	}
	return n
}

func (c Cell) hasPosition(position int) bool {
	for _, e := range c.Entries {
		if e.Position == position {
			return true
		}
	}
	return false
}
