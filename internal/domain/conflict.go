package domain

import "time"

// EntryConflict identifies a stored entry that overlaps a submitted span.
// It carries enough context (project, client, timestamps) for the caller to
// show the user exactly what is in the way.
type EntryConflict struct {
	EntryID     int64
	ProjectID   int64
	ProjectName string
	ClientID    int64
	ClientName  string
	StartedAt   time.Time
	EndedAt     time.Time
}
