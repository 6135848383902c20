package domain

import (
	"strings"
	"time"
)

type Project struct {
	ID          int64
	UserID      int64
	ClientID    int64
	Name        string // unique per client, case-insensitive
	Description string
	HourlyRate  float64 // point-in-time rate; invoice lines snapshot it
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewProject creates a new project for a client
func NewProject(userID, clientID int64, name string, hourlyRate float64) *Project {
	now := time.Now()
	return &Project{
		UserID:     userID,
		ClientID:   clientID,
		Name:       strings.TrimSpace(name),
		HourlyRate: hourlyRate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate returns an error if the project is invalid
func (p *Project) Validate() error {
	if p.UserID <= 0 {
		return NewError(CodeFieldRequired, "user is required")
	}
	if p.ClientID <= 0 {
		return NewError(CodeFieldRequired, "client is required")
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return NewError(CodeFieldRequired, "project name is required")
	}
	if len(name) > MaxNameLength {
		return NewErrorf(CodeFieldTooLong, "project name is too long", "maximum %d characters", MaxNameLength)
	}
	if p.HourlyRate <= 0 {
		return NewError(CodeFieldRequired, "hourly rate must be greater than zero")
	}
	return nil
}
