package domain

import "time"

// Duration bounds for a single time entry
const (
	MinEntryDuration = time.Minute
	MaxEntryDuration = 24 * time.Hour
)

type TimeEntry struct {
	ID                int64
	UserID            int64
	ProjectID         int64
	StartedAt         time.Time
	EndedAt           time.Time
	Note              string
	LockedByInvoiceID *int64 // nil = unbilled, non-nil = locked by that invoice
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewTimeEntry creates a new time entry
func NewTimeEntry(userID, projectID int64, startedAt, endedAt time.Time, note string) *TimeEntry {
	now := time.Now()
	return &TimeEntry{
		UserID:    userID,
		ProjectID: projectID,
		StartedAt: startedAt,
		EndedAt:   endedAt,
		Note:      note,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Duration returns the span of the entry
func (e *TimeEntry) Duration() time.Duration {
	return e.EndedAt.Sub(e.StartedAt)
}

// Hours returns the unrounded duration in hours
func (e *TimeEntry) Hours() float64 {
	return DurationHours(e.StartedAt, e.EndedAt)
}

// IsLocked returns true if the entry is attached to an invoice
func (e *TimeEntry) IsLocked() bool {
	return e.LockedByInvoiceID != nil
}

// Overlaps reports whether two half-open intervals [StartedAt, EndedAt)
// intersect. Entries that merely touch at a boundary do not overlap.
func (e *TimeEntry) Overlaps(other *TimeEntry) bool {
	return IntervalsOverlap(e.StartedAt, e.EndedAt, other.StartedAt, other.EndedAt)
}

// IntervalsOverlap is the half-open overlap test shared by the single and
// bulk detectors: aStart < bEnd && bStart < aEnd.
func IntervalsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Validate checks ownership and the duration invariants:
// strictly positive span, at least one minute, at most 24 hours.
func (e *TimeEntry) Validate() error {
	if e.UserID <= 0 {
		return NewError(CodeFieldRequired, "user is required")
	}
	if e.ProjectID <= 0 {
		return NewError(CodeFieldRequired, "project is required")
	}
	if e.StartedAt.IsZero() || e.EndedAt.IsZero() {
		return NewError(CodeFieldRequired, "start and end times are required")
	}
	return ValidateEntrySpan(e.StartedAt, e.EndedAt, MaxEntryDuration)
}

// ValidateEntrySpan enforces the duration bounds on a start/end pair.
// The max bound is inclusive: an entry of exactly max passes.
func ValidateEntrySpan(start, end time.Time, max time.Duration) error {
	d := end.Sub(start)
	if d <= 0 {
		return NewErrorf(CodeInvalidTimeRange, "end time must be after start time",
			"start %s, end %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	if d < MinEntryDuration {
		return NewErrorf(CodeDurationTooShort, "entry is too short",
			"minimum duration is 1 minute, got %s", d)
	}
	if d > max {
		return NewErrorf(CodeDurationTooLong, "entry is too long",
			"maximum duration is %s, got %s", max, d)
	}
	return nil
}
