package domain

import "time"

// EntryHistory records one field change on a time entry
type EntryHistory struct {
	ID        int64
	EntryID   int64
	FieldName string
	OldValue  string
	NewValue  string
	ChangedAt time.Time
}
