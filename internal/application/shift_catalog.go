package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/staff-roster/internal/calendar"
)

// SlotRepository captures the slot reads and writes of the catalog.
type SlotRepository interface {
	ListSlots(ctx context.Context, from, to time.Time) ([]ShiftSlot, error)
	// InsertSlots must ignore slots whose (date, shift type) already exists.
	InsertSlots(ctx context.Context, slots []ShiftSlot) (int, error)
}

// ShiftCatalog materializes the staffable slots of a date range.
type ShiftCatalog struct {
	slots       SlotRepository
	policy      calendar.ShiftPolicy
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewShiftCatalog constructs a catalog applying the given weekday policy.
func NewShiftCatalog(slots SlotRepository, policy calendar.ShiftPolicy, idGenerator func() string, now func() time.Time) *ShiftCatalog {
	return NewShiftCatalogWithLogger(slots, policy, idGenerator, now, nil)
}

// NewShiftCatalogWithLogger constructs a catalog with a specified logger.
func NewShiftCatalogWithLogger(slots SlotRepository, policy calendar.ShiftPolicy, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ShiftCatalog {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ShiftCatalog{
		slots:       slots,
		policy:      policy,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// Policy returns the weekday policy the catalog applies.
func (c *ShiftCatalog) Policy() calendar.ShiftPolicy {
	return c.policy
}

// EnsureSlots creates every slot the policy allows for each day of
// [startDate, endDate] that does not exist yet. Dates are DD/MM/YY. Calling
// it again for an overlapping range creates only the missing slots.
func (c *ShiftCatalog) EnsureSlots(ctx context.Context, startDate, endDate string) (EnsureResult, error) {
	if c == nil {
		return EnsureResult{}, fmt.Errorf("ShiftCatalog is nil")
	}
	rng, err := validateRange(startDate, endDate)
	if err != nil {
		serviceLogger(ctx, c.logger, "ShiftCatalog", "EnsureSlots").
			WarnContext(ctx, "rejected slot range", "error", err, "error_kind", ErrorKind(err))
		return EnsureResult{}, err
	}
	return c.ensureRange(ctx, rng)
}

func (c *ShiftCatalog) ensureRange(ctx context.Context, rng calendar.Range) (result EnsureResult, err error) {
	logger := serviceLogger(ctx, c.logger, "ShiftCatalog", "EnsureSlots", "range", rng.String())
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to ensure slots", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "slots ensured", "created", result.Created, "existing", result.Existing)
	}()

	if c.slots == nil {
		err = fmt.Errorf("slot repository not configured")
		return
	}

	var existing []ShiftSlot
	existing, err = c.slots.ListSlots(ctx, rng.Start, rng.End)
	if err != nil {
		err = fmt.Errorf("list slots: %w", err)
		return
	}
	present := make(map[string]struct{}, len(existing))
	for _, slot := range existing {
		present[slotKey(slot.Date, slot.ShiftType)] = struct{}{}
	}

	createdAt := c.now()
	var missing []ShiftSlot
	for _, day := range rng.Days() {
		for _, st := range c.policy.Allowed(day.Weekday()) {
			if _, ok := present[slotKey(day, st)]; ok {
				result.Existing++
				continue
			}
			missing = append(missing, ShiftSlot{
				ID:        c.idGenerator(),
				Date:      day,
				ShiftType: st,
				DayName:   calendar.DayName(day),
				CreatedAt: createdAt,
			})
		}
	}
	if len(missing) == 0 {
		return
	}

	var inserted int
	inserted, err = c.slots.InsertSlots(ctx, missing)
	if err != nil {
		err = fmt.Errorf("insert slots: %w", err)
		return
	}
	result.Created = inserted
	// A concurrent caller may have inserted some of them first.
	result.Existing += len(missing) - inserted
	return
}

func slotKey(date time.Time, st calendar.ShiftType) string {
	return calendar.FormatISO(date) + "|" + string(st)
}

// validateRange parses a DD/MM/YY range. Every failure is a ValidationError
// wrapping ErrInvalidRange.
func validateRange(startDate, endDate string) (calendar.Range, error) {
	vErr := &ValidationError{cause: ErrInvalidRange}

	start, startErr := parseDay("startDate", startDate, vErr)
	end, endErr := parseDay("endDate", endDate, vErr)
	if startErr || endErr {
		return calendar.Range{}, vErr
	}

	rng, err := calendar.NewRange(start, end)
	if err != nil {
		vErr.add("endDate", "endDate must be after startDate")
		return calendar.Range{}, vErr
	}
	return rng, nil
}

func parseDay(field, value string, vErr *ValidationError) (time.Time, bool) {
	if strings.TrimSpace(value) == "" {
		vErr.add(field, field+" is required")
		return time.Time{}, true
	}
	day, err := parseDate(value)
	if err != nil {
		vErr.add(field, field+" must be a DD/MM/YY date")
		return time.Time{}, true
	}
	return day, false
}

// parseDate accepts DD/MM/YY, DD/MM/YYYY and ISO YYYY-MM-DD.
func parseDate(value string) (time.Time, error) {
	day, err := calendar.ParseDate(value)
	if err == nil {
		return day, nil
	}
	if iso, isoErr := calendar.ParseISO(strings.TrimSpace(value)); isoErr == nil {
		return iso, nil
	}
	return time.Time{}, err
}
