package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/staff-roster/internal/persistence"
)

const dateLayout = "2006-01-02"

// shiftOrder sorts slots morning, afternoon, evening within a day.
const shiftOrder = `CASE s.shift_type WHEN 'morning' THEN 0 WHEN 'afternoon' THEN 1 ELSE 2 END`

// ShiftRepository implements persistence.ShiftRepository using SQLite
type ShiftRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewShiftRepository creates a new SQLite shift repository
func NewShiftRepository(pool *ConnectionPool) *ShiftRepository {
	return &ShiftRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

// ListSlots returns the slots dated within [from, to].
func (r *ShiftRepository) ListSlots(ctx context.Context, from, to time.Time) ([]persistence.ShiftSlot, error) {
	query := `
		SELECT s.id, s.shift_date, s.shift_type, s.day_name, s.created_at
		FROM shift_slots s
		WHERE s.shift_date BETWEEN ? AND ?
		ORDER BY s.shift_date, ` + shiftOrder
	rows, err := r.helper.Query(ctx, query, formatDate(from), formatDate(to))
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var slots []persistence.ShiftSlot
	for rows.Next() {
		slot, err := r.scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return slots, nil
}

// InsertSlots writes slots in one transaction. Slots whose (date, shift type)
// already exists are left untouched and not counted.
func (r *ShiftRepository) InsertSlots(ctx context.Context, slots []persistence.ShiftSlot) (int, error) {
	if len(slots) == 0 {
		return 0, nil
	}

	var inserted int
	err := r.retry.WithRetry(ctx, func() error {
		inserted = 0
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			stmt, err := tx.PrepareContext(ctx, `
				INSERT INTO shift_slots (id, shift_date, shift_type, day_name, created_at)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT (shift_date, shift_type) DO NOTHING
			`)
			if err != nil {
				return err
			}
			defer stmt.Close()

			for _, slot := range slots {
				if slot.ID == "" {
					return persistence.ErrConstraintViolation
				}
				result, err := stmt.ExecContext(ctx,
					slot.ID,
					formatDate(slot.Date),
					slot.ShiftType,
					slot.DayName,
					formatTimestamp(slot.CreatedAt),
				)
				if err != nil {
					return err
				}
				n, err := result.RowsAffected()
				if err != nil {
					return fmt.Errorf("failed to get rows affected: %w", err)
				}
				inserted += int(n)
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// FindSlot returns the slot for a date and shift type.
func (r *ShiftRepository) FindSlot(ctx context.Context, date time.Time, shiftType string) (persistence.ShiftSlot, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT s.id, s.shift_date, s.shift_type, s.day_name, s.created_at
		FROM shift_slots s
		WHERE s.shift_date = ? AND s.shift_type = ?
	`, formatDate(date), shiftType)
	return r.scanSlot(row)
}

// UpsertAssignment stores the assignment at (slot, position). An existing
// occupant is replaced in place and keeps its ID and creation time.
func (r *ShiftRepository) UpsertAssignment(ctx context.Context, assignment persistence.ShiftAssignment) (persistence.ShiftAssignment, error) {
	if assignment.ID == "" || assignment.SlotID == "" || assignment.EmployeeID == "" {
		return persistence.ShiftAssignment{}, persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO shift_assignments (id, slot_id, employee_id, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (slot_id, position) DO UPDATE SET
			employee_id = excluded.employee_id,
			updated_at = excluded.updated_at
		RETURNING id, created_at, updated_at
	`
	stored := assignment
	err := r.retry.WithRetry(ctx, func() error {
		var createdAt, updatedAt string
		err := r.helper.QueryRow(ctx, query,
			assignment.ID,
			assignment.SlotID,
			assignment.EmployeeID,
			assignment.Position,
			formatTimestamp(assignment.CreatedAt),
			formatTimestamp(assignment.UpdatedAt),
		).Scan(&stored.ID, &createdAt, &updatedAt)
		if err != nil {
			return err
		}
		if stored.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return fmt.Errorf("failed to parse created_at: %w", err)
		}
		if stored.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
			return fmt.Errorf("failed to parse updated_at: %w", err)
		}
		return nil
	})
	if err != nil {
		return persistence.ShiftAssignment{}, err
	}
	return stored, nil
}

// DeleteAssignmentsInRange removes assignments whose slot falls within
// [from, to]. Slots themselves are kept.
func (r *ShiftRepository) DeleteAssignmentsInRange(ctx context.Context, from, to time.Time) (int, error) {
	var deleted int
	err := r.retry.WithRetry(ctx, func() error {
		result, err := r.helper.Exec(ctx, `
			DELETE FROM shift_assignments
			WHERE slot_id IN (SELECT id FROM shift_slots WHERE shift_date BETWEEN ? AND ?)
		`, formatDate(from), formatDate(to))
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		deleted = int(n)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// ListAssignmentRows joins assignments with slots and employees for [from, to],
// ordered by date, shift and position.
func (r *ShiftRepository) ListAssignmentRows(ctx context.Context, from, to time.Time) ([]persistence.AssignmentRow, error) {
	query := `
		SELECT s.id, s.shift_date, s.day_name, s.shift_type, a.position, e.id, e.first_name, e.last_name
		FROM shift_assignments a
		JOIN shift_slots s ON s.id = a.slot_id
		JOIN employees e ON e.id = a.employee_id
		WHERE s.shift_date BETWEEN ? AND ?
		ORDER BY s.shift_date, ` + shiftOrder + `, a.position`
	rows, err := r.helper.Query(ctx, query, formatDate(from), formatDate(to))
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var result []persistence.AssignmentRow
	for rows.Next() {
		var row persistence.AssignmentRow
		var date string
		if err := rows.Scan(&row.SlotID, &date, &row.DayName, &row.ShiftType, &row.Position,
			&row.EmployeeID, &row.FirstName, &row.LastName); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if row.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return result, nil
}

func (r *ShiftRepository) scanSlot(row rowScanner) (persistence.ShiftSlot, error) {
	var slot persistence.ShiftSlot
	var date, createdAt string
	err := row.Scan(&slot.ID, &date, &slot.ShiftType, &slot.DayName, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.ShiftSlot{}, persistence.ErrNotFound
		}
		return persistence.ShiftSlot{}, r.mapper.MapError(err)
	}
	if slot.Date, err = parseDate(date); err != nil {
		return persistence.ShiftSlot{}, err
	}
	if slot.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.ShiftSlot{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return slot, nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse shift_date %q: %w", value, err)
	}
	return t, nil
}
