package domain

import (
	"strings"
	"time"
)

// MaxNameLength is the limit for client and project names
const MaxNameLength = 255

type Client struct {
	ID         int64
	UserID     int64
	Name       string // unique per user, case-insensitive
	Email      string
	Notes      string
	IsArchived bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewClient creates a new client with required fields
func NewClient(userID int64, name string) *Client {
	now := time.Now()
	return &Client{
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate returns an error if the client is invalid
func (c *Client) Validate() error {
	if c.UserID <= 0 {
		return NewError(CodeFieldRequired, "user is required")
	}
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return NewError(CodeFieldRequired, "client name is required")
	}
	if len(name) > MaxNameLength {
		return NewErrorf(CodeFieldTooLong, "client name is too long", "maximum %d characters", MaxNameLength)
	}
	return nil
}
