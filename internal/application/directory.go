package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// EmployeeLookup captures the reads the directory needs.
type EmployeeLookup interface {
	GetEmployee(ctx context.Context, id string) (Employee, error)
	FindEmployeesByName(ctx context.Context, firstName, lastName string) ([]Employee, error)
}

// EmployeeDirectory resolves employees by name for batch assignment,
// remembering recent matches so a week of tuples naming the same people
// costs one query per person. Mutations must call Invalidate.
type EmployeeDirectory struct {
	employees EmployeeLookup
	cache     *expirable.LRU[string, []Employee]

	// generation counts invalidations; a lookup only caches its result when
	// no invalidation happened while it queried the repository.
	mu         sync.Mutex
	generation uint64
}

// NewEmployeeDirectory builds a directory caching up to size names for ttl.
func NewEmployeeDirectory(employees EmployeeLookup, size int, ttl time.Duration) *EmployeeDirectory {
	if size <= 0 {
		size = 256
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &EmployeeDirectory{
		employees: employees,
		cache:     expirable.NewLRU[string, []Employee](size, nil, ttl),
	}
}

// Get returns the employee with the given ID.
func (d *EmployeeDirectory) Get(ctx context.Context, id string) (Employee, error) {
	if d == nil || d.employees == nil {
		return Employee{}, fmt.Errorf("employee directory not configured")
	}
	employee, err := d.employees.GetEmployee(ctx, strings.TrimSpace(id))
	if err != nil {
		return Employee{}, mapRepoError(err, nil)
	}
	return employee, nil
}

// Lookup returns the single employee with the given first and last name,
// compared case-insensitively. It fails with ErrNotFound when nobody matches
// and ErrAmbiguousEmployee when several do.
func (d *EmployeeDirectory) Lookup(ctx context.Context, firstName, lastName string) (Employee, error) {
	if d == nil || d.employees == nil {
		return Employee{}, fmt.Errorf("employee directory not configured")
	}
	key := nameKey(firstName, lastName)

	matches, ok := d.cache.Get(key)
	if !ok {
		d.mu.Lock()
		generation := d.generation
		d.mu.Unlock()

		var err error
		matches, err = d.employees.FindEmployeesByName(ctx, strings.TrimSpace(firstName), strings.TrimSpace(lastName))
		if err != nil {
			return Employee{}, mapRepoError(err, nil)
		}

		d.mu.Lock()
		if d.generation == generation {
			d.cache.Add(key, matches)
		}
		d.mu.Unlock()
	}

	switch len(matches) {
	case 0:
		return Employee{}, ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return Employee{}, fmt.Errorf("%w: %d employees named %s %s", ErrAmbiguousEmployee, len(matches), firstName, lastName)
	}
}

// Invalidate drops every cached name.
func (d *EmployeeDirectory) Invalidate() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.generation++
	d.cache.Purge()
}

func nameKey(firstName, lastName string) string {
	return strings.ToLower(strings.TrimSpace(firstName)) + "|" + strings.ToLower(strings.TrimSpace(lastName))
}
