package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ezzabuzaid/iworked/internal/db"
	"github.com/ezzabuzaid/iworked/internal/domain"
)

// EntryRepo is a SQLite implementation of TimeEntryRepository
type EntryRepo struct {
	db *db.DB
}

// NewEntryRepo creates a new EntryRepo
func NewEntryRepo(database *db.DB) *EntryRepo {
	return &EntryRepo{db: database}
}

const entryColumns = `id, user_id, project_id, started_at, ended_at, note, locked_by_invoice_id, created_at, updated_at`

// Create inserts a new time entry into the database
func (r *EntryRepo) Create(ctx context.Context, entry *domain.TimeEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO time_entries (user_id, project_id, started_at, ended_at, note, locked_by_invoice_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		entry.UserID,
		entry.ProjectID,
		entry.StartedAt.UTC().Format(timeLayout),
		entry.EndedAt.UTC().Format(timeLayout),
		entry.Note,
		entry.LockedByInvoiceID,
		entry.CreatedAt.UTC().Format(timeLayout),
		entry.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to create time entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get time entry ID: %w", err)
	}

	entry.ID = id
	return nil
}

// CreateBatch inserts all entries inside one transaction. The bulk overlap
// pre-flight runs before this, so either every entry lands or none do.
func (r *EntryRepo) CreateBatch(ctx context.Context, entries []*domain.TimeEntry) error {
	if len(entries) == 0 {
		return nil
	}

	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			return err
		}
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO time_entries (user_id, project_id, started_at, ended_at, note, locked_by_invoice_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, entry := range entries {
			result, err := stmt.ExecContext(ctx,
				entry.UserID,
				entry.ProjectID,
				entry.StartedAt.UTC().Format(timeLayout),
				entry.EndedAt.UTC().Format(timeLayout),
				entry.Note,
				entry.LockedByInvoiceID,
				entry.CreatedAt.UTC().Format(timeLayout),
				entry.UpdatedAt.UTC().Format(timeLayout),
			)
			if err != nil {
				return fmt.Errorf("failed to create time entry: %w", err)
			}

			id, err := result.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to get time entry ID: %w", err)
			}
			entry.ID = id
		}

		return nil
	})
}

// GetByID retrieves a time entry by ID, scoped to the owning user
func (r *EntryRepo) GetByID(ctx context.Context, userID, id int64) (*domain.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE id = ? AND user_id = ?`

	entry, err := scanEntryRow(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound("time entry", id)
		}
		return nil, fmt.Errorf("failed to get time entry: %w", err)
	}

	return entry, nil
}

// Update rewrites a time entry's mutable fields. The lock check, the write
// and the audit trail share one transaction: the guarded UPDATE only touches
// rows whose locked_by_invoice_id is still NULL, so a lock set by a
// concurrent invoice creation makes this fail rather than mutate.
func (r *EntryRepo) Update(ctx context.Context, entry *domain.TimeEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		old, err := scanEntryRow(tx.QueryRowContext(ctx,
			`SELECT `+entryColumns+` FROM time_entries WHERE id = ? AND user_id = ?`,
			entry.ID, entry.UserID,
		))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound("time entry", entry.ID)
			}
			return fmt.Errorf("failed to get time entry: %w", err)
		}
		if old.IsLocked() {
			return domain.NewErrorf(domain.CodeTimeEntryLocked, "time entry is locked",
				"entry #%d is billed by invoice #%d and cannot be changed", entry.ID, *old.LockedByInvoiceID)
		}

		entry.UpdatedAt = time.Now()

		result, err := tx.ExecContext(ctx, `
			UPDATE time_entries
			SET project_id = ?, started_at = ?, ended_at = ?, note = ?, updated_at = ?
			WHERE id = ? AND user_id = ? AND locked_by_invoice_id IS NULL
		`,
			entry.ProjectID,
			entry.StartedAt.UTC().Format(timeLayout),
			entry.EndedAt.UTC().Format(timeLayout),
			entry.Note,
			entry.UpdatedAt.UTC().Format(timeLayout),
			entry.ID,
			entry.UserID,
		)
		if err != nil {
			return fmt.Errorf("failed to update time entry: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return domain.NewErrorf(domain.CodeTimeEntryLocked, "time entry is locked",
				"entry #%d was locked concurrently", entry.ID)
		}

		return createAuditRecords(ctx, tx, old, entry)
	})
}

// Delete removes a time entry. Locked entries are rejected inside the same
// transaction as the delete.
func (r *EntryRepo) Delete(ctx context.Context, userID, id int64) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var locked sql.NullInt64
		err := tx.QueryRowContext(ctx,
			"SELECT locked_by_invoice_id FROM time_entries WHERE id = ? AND user_id = ?",
			id, userID,
		).Scan(&locked)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound("time entry", id)
			}
			return fmt.Errorf("failed to check lock status: %w", err)
		}
		if locked.Valid {
			return domain.NewErrorf(domain.CodeTimeEntryLocked, "time entry is locked",
				"entry #%d is billed by invoice #%d and cannot be deleted", id, locked.Int64)
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM entry_history WHERE entry_id = ?", id,
		); err != nil {
			return fmt.Errorf("failed to delete entry history: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			"DELETE FROM time_entries WHERE id = ? AND user_id = ? AND locked_by_invoice_id IS NULL",
			id, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete time entry: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return domain.NewErrorf(domain.CodeTimeEntryLocked, "time entry is locked",
				"entry #%d was locked concurrently", id)
		}

		return nil
	})
}

// List retrieves time entries with optional filters
func (r *EntryRepo) List(ctx context.Context, userID int64, projectID *int64, start, end *time.Time, includeLocked bool) ([]*domain.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE user_id = ?`
	args := []interface{}{userID}

	if projectID != nil {
		query += " AND project_id = ?"
		args = append(args, *projectID)
	}

	if start != nil {
		query += " AND started_at >= ?"
		args = append(args, start.UTC().Format(timeLayout))
	}

	if end != nil {
		query += " AND started_at <= ?"
		args = append(args, end.UTC().Format(timeLayout))
	}

	if !includeLocked {
		query += " AND locked_by_invoice_id IS NULL"
	}

	query += " ORDER BY started_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// FindOverlapping returns entries whose half-open [started_at, ended_at)
// interval intersects [start, end), joined with project and client names.
// Results are ordered by started_at so the first conflict reported to the
// user is deterministic rather than store-order dependent.
func (r *EntryRepo) FindOverlapping(ctx context.Context, userID int64, start, end time.Time, excludeIDs []int64) ([]*domain.EntryConflict, error) {
	query := `
		SELECT e.id, e.project_id, p.name, p.client_id, c.name, e.started_at, e.ended_at
		FROM time_entries e
		JOIN projects p ON p.id = e.project_id
		JOIN clients c ON c.id = p.client_id
		WHERE e.user_id = ?
		  AND e.started_at < ?
		  AND ? < e.ended_at
	`
	args := []interface{}{
		userID,
		end.UTC().Format(timeLayout),
		start.UTC().Format(timeLayout),
	}

	if len(excludeIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(excludeIDs)), ",")
		query += " AND e.id NOT IN (" + placeholders + ")"
		for _, id := range excludeIDs {
			args = append(args, id)
		}
	}

	query += " ORDER BY e.started_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping entries: %w", err)
	}
	defer rows.Close()

	conflicts := make([]*domain.EntryConflict, 0)
	for rows.Next() {
		conflict := &domain.EntryConflict{}
		var startedAt, endedAt string

		err := rows.Scan(
			&conflict.EntryID,
			&conflict.ProjectID,
			&conflict.ProjectName,
			&conflict.ClientID,
			&conflict.ClientName,
			&startedAt,
			&endedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conflict: %w", err)
		}

		if conflict.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, fmt.Errorf("failed to parse started_at: %w", err)
		}
		if conflict.EndedAt, err = parseTime(endedAt); err != nil {
			return nil, fmt.Errorf("failed to parse ended_at: %w", err)
		}

		conflicts = append(conflicts, conflict)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conflicts: %w", err)
	}

	return conflicts, nil
}

// FindBillable returns the client's currently-unlocked entries that started
// inside [from, to], ordered by started_at
func (r *EntryRepo) FindBillable(ctx context.Context, userID, clientID int64, from, to time.Time) ([]*domain.TimeEntry, error) {
	query := `
		SELECT e.id, e.user_id, e.project_id, e.started_at, e.ended_at, e.note, e.locked_by_invoice_id, e.created_at, e.updated_at
		FROM time_entries e
		JOIN projects p ON p.id = e.project_id
		WHERE e.user_id = ?
		  AND p.client_id = ?
		  AND e.locked_by_invoice_id IS NULL
		  AND e.started_at >= ?
		  AND e.started_at <= ?
		ORDER BY e.started_at
	`

	rows, err := r.db.QueryContext(ctx, query,
		userID,
		clientID,
		from.UTC().Format(timeLayout),
		to.UTC().Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find billable entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// GetHistory retrieves the audit trail for a time entry
func (r *EntryRepo) GetHistory(ctx context.Context, userID, entryID int64) ([]*domain.EntryHistory, error) {
	query := `
		SELECT h.id, h.entry_id, h.field_name, h.old_value, h.new_value, h.changed_at
		FROM entry_history h
		JOIN time_entries e ON e.id = h.entry_id
		WHERE h.entry_id = ? AND e.user_id = ?
		ORDER BY h.changed_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, entryID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entry history: %w", err)
	}
	defer rows.Close()

	history := make([]*domain.EntryHistory, 0)
	for rows.Next() {
		h := &domain.EntryHistory{}
		var changedAt string

		err := rows.Scan(&h.ID, &h.EntryID, &h.FieldName, &h.OldValue, &h.NewValue, &changedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}

		if h.ChangedAt, err = parseTime(changedAt); err != nil {
			return nil, fmt.Errorf("failed to parse changed_at: %w", err)
		}

		history = append(history, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return history, nil
}

// createAuditRecords creates history records for changed fields
func createAuditRecords(ctx context.Context, tx *sql.Tx, old, new *domain.TimeEntry) error {
	changedAt := formatTime()

	insertHistory := func(fieldName, oldVal, newVal string) error {
		if oldVal == newVal {
			return nil
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO entry_history (entry_id, field_name, old_value, new_value, changed_at)
			VALUES (?, ?, ?, ?, ?)
		`, new.ID, fieldName, oldVal, newVal, changedAt)
		if err != nil {
			return fmt.Errorf("failed to audit %s change: %w", fieldName, err)
		}
		return nil
	}

	if old.ProjectID != new.ProjectID {
		if err := insertHistory("project_id", strconv.FormatInt(old.ProjectID, 10), strconv.FormatInt(new.ProjectID, 10)); err != nil {
			return err
		}
	}
	if !old.StartedAt.Equal(new.StartedAt) {
		if err := insertHistory("started_at", old.StartedAt.UTC().Format(timeLayout), new.StartedAt.UTC().Format(timeLayout)); err != nil {
			return err
		}
	}
	if !old.EndedAt.Equal(new.EndedAt) {
		if err := insertHistory("ended_at", old.EndedAt.UTC().Format(timeLayout), new.EndedAt.UTC().Format(timeLayout)); err != nil {
			return err
		}
	}
	if old.Note != new.Note {
		if err := insertHistory("note", old.Note, new.Note); err != nil {
			return err
		}
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanEntryRow parses one time entry row
func scanEntryRow(row rowScanner) (*domain.TimeEntry, error) {
	entry := &domain.TimeEntry{}
	var startedAt, endedAt, createdAt, updatedAt string
	var lockedBy sql.NullInt64

	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.ProjectID,
		&startedAt,
		&endedAt,
		&entry.Note,
		&lockedBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lockedBy.Valid {
		val := lockedBy.Int64
		entry.LockedByInvoiceID = &val
	}

	if entry.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}
	if entry.EndedAt, err = parseTime(endedAt); err != nil {
		return nil, fmt.Errorf("failed to parse ended_at: %w", err)
	}
	if entry.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if entry.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return entry, nil
}

// scanEntries drains a result set of time entry rows
func scanEntries(rows *sql.Rows) ([]*domain.TimeEntry, error) {
	entries := make([]*domain.TimeEntry, 0)
	for rows.Next() {
		entry, err := scanEntryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time entries: %w", err)
	}

	return entries, nil
}
