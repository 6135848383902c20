package domain

import "time"

// User owns every other entity. All repository queries are scoped by the
// owning user id; there is no shared ownership.
type User struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
}
