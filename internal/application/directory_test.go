package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// gatedLookup holds its first name query until release is closed, so a test
// can interleave a mutation with an in-flight lookup.
type gatedLookup struct {
	mu        sync.Mutex
	employees []Employee
	calls     int

	started chan struct{}
	release chan struct{}
}

func newGatedLookup() *gatedLookup {
	return &gatedLookup{started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedLookup) GetEmployee(ctx context.Context, id string) (Employee, error) {
	return Employee{}, ErrNotFound
}

func (g *gatedLookup) FindEmployeesByName(ctx context.Context, firstName, lastName string) ([]Employee, error) {
	g.mu.Lock()
	g.calls++
	first := g.calls == 1
	snapshot := append([]Employee(nil), g.employees...)
	g.mu.Unlock()

	if first {
		close(g.started)
		<-g.release
	}

	var out []Employee
	for _, e := range snapshot {
		if e.FirstName == firstName && e.LastName == lastName {
			out = append(out, e)
		}
	}
	return out, nil
}

func (g *gatedLookup) add(e Employee) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.employees = append(g.employees, e)
}

func (g *gatedLookup) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func TestEmployeeDirectory_InvalidateDuringLookup(t *testing.T) {
	t.Parallel()

	repo := newGatedLookup()
	directory := NewEmployeeDirectory(repo, 8, time.Minute)

	done := make(chan error, 1)
	go func() {
		_, err := directory.Lookup(context.Background(), "Dana", "Levi")
		done <- err
	}()

	<-repo.started
	repo.add(Employee{ID: "emp-dana", FirstName: "Dana", LastName: "Levi"})
	directory.Invalidate()
	close(repo.release)

	if err := <-done; !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected the in-flight lookup to miss, got %v", err)
	}

	employee, err := directory.Lookup(context.Background(), "Dana", "Levi")
	if err != nil {
		t.Fatalf("expected the new employee to resolve, got %v", err)
	}
	if employee.ID != "emp-dana" {
		t.Fatalf("expected emp-dana, got %q", employee.ID)
	}
	if got := repo.callCount(); got != 2 {
		t.Fatalf("expected the repository to be asked again, got %d calls", got)
	}
}

func TestEmployeeDirectory_CachesBetweenInvalidations(t *testing.T) {
	t.Parallel()

	repo := newGatedLookup()
	close(repo.release)
	repo.add(Employee{ID: "emp-noa", FirstName: "Noa", LastName: "Cohen"})
	directory := NewEmployeeDirectory(repo, 8, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := directory.Lookup(context.Background(), "Noa", "Cohen"); err != nil {
			t.Fatalf("lookup %d: unexpected error %v", i, err)
		}
	}
	if got := repo.callCount(); got != 1 {
		t.Fatalf("expected one repository query, got %d", got)
	}

	directory.Invalidate()
	if _, err := directory.Lookup(context.Background(), "Noa", "Cohen"); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if got := repo.callCount(); got != 2 {
		t.Fatalf("expected a fresh query after invalidation, got %d", got)
	}
}
