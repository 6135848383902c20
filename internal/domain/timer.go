package domain

import "time"

type TimerState string

const (
	TimerStateIdle    TimerState = "idle"
	TimerStateRunning TimerState = "running"
	TimerStatePaused  TimerState = "paused"
)

// ActiveTimer is the singleton in-progress timer for a user. Stopping it
// produces a TimeEntry that goes through the normal validation path.
type ActiveTimer struct {
	UserID             int64
	ProjectID          int64
	Note               string
	StartedAt          time.Time
	PausedAt           *time.Time
	TotalPausedSeconds int64
}

// NewActiveTimer creates a new running timer
func NewActiveTimer(userID, projectID int64, note string) *ActiveTimer {
	return &ActiveTimer{
		UserID:    userID,
		ProjectID: projectID,
		Note:      note,
		StartedAt: time.Now(),
	}
}

// State returns the current timer state
func (t *ActiveTimer) State() TimerState {
	if t.PausedAt != nil {
		return TimerStatePaused
	}
	return TimerStateRunning
}

// Elapsed returns the active duration, excluding paused time
func (t *ActiveTimer) Elapsed() time.Duration {
	paused := time.Duration(t.TotalPausedSeconds) * time.Second
	if t.PausedAt != nil {
		paused += time.Since(*t.PausedAt)
	}
	return time.Since(t.StartedAt) - paused
}

// Pause pauses the timer
func (t *ActiveTimer) Pause() {
	if t.PausedAt == nil {
		now := time.Now()
		t.PausedAt = &now
	}
}

// Resume resumes a paused timer
func (t *ActiveTimer) Resume() {
	if t.PausedAt != nil {
		t.TotalPausedSeconds += int64(time.Since(*t.PausedAt).Seconds())
		t.PausedAt = nil
	}
}

// ToTimeEntry converts the timer into a time entry ending now. The paused
// time is subtracted by shifting the start forward, keeping the entry
// contiguous for overlap purposes.
func (t *ActiveTimer) ToTimeEntry() *TimeEntry {
	if t.PausedAt != nil {
		t.Resume()
	}
	end := time.Now()
	start := end.Add(-t.Elapsed())
	return NewTimeEntry(t.UserID, t.ProjectID, start, end, t.Note)
}
