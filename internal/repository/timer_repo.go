package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ezzabuzaid/iworked/internal/db"
	"github.com/ezzabuzaid/iworked/internal/domain"
)

// TimerRepo is a SQLite implementation of TimerRepository
type TimerRepo struct {
	db *db.DB
}

// NewTimerRepo creates a new TimerRepo
func NewTimerRepo(database *db.DB) *TimerRepo {
	return &TimerRepo{db: database}
}

// Get retrieves the user's active timer, or nil if none is running
func (r *TimerRepo) Get(ctx context.Context, userID int64) (*domain.ActiveTimer, error) {
	timer := &domain.ActiveTimer{}
	var startedAt string
	var pausedAt sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, project_id, note, started_at, paused_at, total_paused_seconds
		FROM active_timers
		WHERE user_id = ?
	`, userID).Scan(
		&timer.UserID,
		&timer.ProjectID,
		&timer.Note,
		&startedAt,
		&pausedAt,
		&timer.TotalPausedSeconds,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active timer: %w", err)
	}

	if timer.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}
	if pausedAt.Valid {
		t, err := parseTime(pausedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse paused_at: %w", err)
		}
		timer.PausedAt = &t
	}

	return timer, nil
}

// Save upserts the user's active timer
func (r *TimerRepo) Save(ctx context.Context, timer *domain.ActiveTimer) error {
	var pausedAt interface{}
	if timer.PausedAt != nil {
		pausedAt = timer.PausedAt.UTC().Format(timeLayout)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO active_timers (user_id, project_id, note, started_at, paused_at, total_paused_seconds)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			project_id = excluded.project_id,
			note = excluded.note,
			started_at = excluded.started_at,
			paused_at = excluded.paused_at,
			total_paused_seconds = excluded.total_paused_seconds
	`,
		timer.UserID,
		timer.ProjectID,
		timer.Note,
		timer.StartedAt.UTC().Format(timeLayout),
		pausedAt,
		timer.TotalPausedSeconds,
	)
	if err != nil {
		return fmt.Errorf("failed to save active timer: %w", err)
	}

	return nil
}

// Delete removes the user's active timer
func (r *TimerRepo) Delete(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM active_timers WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to delete active timer: %w", err)
	}
	return nil
}
