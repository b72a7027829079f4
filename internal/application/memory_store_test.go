package application

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/staff-roster/internal/calendar"
	"github.com/example/staff-roster/internal/persistence"
	"github.com/example/staff-roster/internal/timetable"
)

// memoryStore is an in-process stand-in for the SQLite store. It records the
// order of range-level calls so tests can assert phase ordering.
type memoryStore struct {
	mu sync.Mutex

	calls       []string
	slots       map[string]ShiftSlot
	assignments map[string]Assignment
	employees   map[string]Employee

	nameQueries int
	upsertDelay time.Duration
	upsertErr   error
	listSlotErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		slots:       make(map[string]ShiftSlot),
		assignments: make(map[string]Assignment),
		employees:   make(map[string]Employee),
	}
}

func (m *memoryStore) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *memoryStore) addEmployee(id, first, last string) Employee {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := Employee{ID: id, FirstName: first, LastName: last, Email: id + "@example.com"}
	m.employees[id] = e
	return e
}

func (m *memoryStore) ListSlots(ctx context.Context, from, to time.Time) ([]ShiftSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListSlots")
	if m.listSlotErr != nil {
		return nil, m.listSlotErr
	}
	var out []ShiftSlot
	for _, s := range m.slots {
		if !s.Date.Before(from) && !s.Date.After(to) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return slotKey(out[i].Date, out[i].ShiftType) < slotKey(out[j].Date, out[j].ShiftType)
	})
	return out, nil
}

func (m *memoryStore) InsertSlots(ctx context.Context, slots []ShiftSlot) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("InsertSlots")
	inserted := 0
	for _, s := range slots {
		key := slotKey(s.Date, s.ShiftType)
		if _, ok := m.slots[key]; ok {
			continue
		}
		m.slots[key] = s
		inserted++
	}
	return inserted, nil
}

func (m *memoryStore) FindSlot(ctx context.Context, date time.Time, st calendar.ShiftType) (ShiftSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[slotKey(date, st)]
	if !ok {
		return ShiftSlot{}, persistence.ErrNotFound
	}
	return s, nil
}

func (m *memoryStore) UpsertAssignment(ctx context.Context, a Assignment) (Assignment, error) {
	if m.upsertDelay > 0 {
		select {
		case <-ctx.Done():
			return Assignment{}, ctx.Err()
		case <-time.After(m.upsertDelay):
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return Assignment{}, m.upsertErr
	}
	key := fmt.Sprintf("%s|%d", a.SlotID, a.Position)
	if existing, ok := m.assignments[key]; ok {
		a.ID = existing.ID
		a.CreatedAt = existing.CreatedAt
	}
	m.assignments[key] = a
	return a, nil
}

func (m *memoryStore) DeleteAssignmentsInRange(ctx context.Context, from, to time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeleteAssignmentsInRange")
	deleted := 0
	for key, a := range m.assignments {
		slot := m.slotByIDLocked(a.SlotID)
		if !slot.Date.Before(from) && !slot.Date.After(to) {
			delete(m.assignments, key)
			deleted++
		}
	}
	return deleted, nil
}

func (m *memoryStore) ListAssignmentRows(ctx context.Context, from, to time.Time) ([]timetable.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []timetable.Row
	for _, a := range m.assignments {
		slot := m.slotByIDLocked(a.SlotID)
		if slot.Date.Before(from) || slot.Date.After(to) {
			continue
		}
		e := m.employees[a.EmployeeID]
		rows = append(rows, timetable.Row{
			Date:       slot.Date,
			ShiftType:  slot.ShiftType,
			Position:   a.Position,
			EmployeeID: e.ID,
			FirstName:  e.FirstName,
			LastName:   e.LastName,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		if rows[i].ShiftType != rows[j].ShiftType {
			return rows[i].ShiftType.Order() < rows[j].ShiftType.Order()
		}
		return rows[i].Position < rows[j].Position
	})
	return rows, nil
}

func (m *memoryStore) slotByIDLocked(id string) ShiftSlot {
	for _, s := range m.slots {
		if s.ID == id {
			return s
		}
	}
	return ShiftSlot{}
}

func (m *memoryStore) occupant(date string, st calendar.ShiftType, position int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot, ok := m.slots[slotKey(calendar.MustParseDate(date), st)]
	if !ok {
		return ""
	}
	return m.assignments[fmt.Sprintf("%s|%d", slot.ID, position)].EmployeeID
}

func (m *memoryStore) CreateEmployee(ctx context.Context, e Employee) (Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.employees {
		if strings.EqualFold(existing.Email, e.Email) {
			return Employee{}, persistence.ErrConflict
		}
	}
	m.employees[e.ID] = e
	return e, nil
}

func (m *memoryStore) GetEmployee(ctx context.Context, id string) (Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employees[id]
	if !ok {
		return Employee{}, persistence.ErrNotFound
	}
	return e, nil
}

func (m *memoryStore) UpdateEmployee(ctx context.Context, e Employee) (Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[e.ID]; !ok {
		return Employee{}, persistence.ErrNotFound
	}
	m.employees[e.ID] = e
	return e, nil
}

func (m *memoryStore) DeleteEmployee(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.employees, id)
	return nil
}

func (m *memoryStore) ListEmployees(ctx context.Context) ([]Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	return out, nil
}

func (m *memoryStore) FindEmployeesByName(ctx context.Context, first, last string) ([]Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nameQueries++
	var out []Employee
	for _, e := range m.employees {
		if strings.EqualFold(e.FirstName, first) && strings.EqualFold(e.LastName, last) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func sequence(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func fixedNow() time.Time {
	return time.Date(2024, time.September, 1, 9, 0, 0, 0, time.UTC)
}
