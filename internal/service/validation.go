package service

import (
	"strings"
	"time"

	"github.com/ezzabuzaid/iworked/internal/domain"
)

// Sanitize trims surrounding whitespace from user input. An all-whitespace
// value collapses to empty, which callers treat as unset.
func Sanitize(s string) string {
	return strings.TrimSpace(s)
}

// ValidateName sanitizes a client or project name and checks the length
// bounds. Callers persist the returned value, not the raw input.
func ValidateName(name, field string) (string, error) {
	name = Sanitize(name)
	if name == "" {
		return "", domain.NewError(domain.CodeFieldRequired, field+" is required")
	}
	if len(name) > domain.MaxNameLength {
		return "", domain.NewErrorf(domain.CodeFieldTooLong, field+" is too long",
			"maximum %d characters, got %d", domain.MaxNameLength, len(name))
	}
	return name, nil
}

// BusinessHours is an optional rule restricting entries to a working window.
// Disabled by default; hours are local hour-of-day values.
type BusinessHours struct {
	Enabled   bool
	StartHour int // inclusive, 0-23
	EndHour   int // 1-24; an entry may end exactly on this hour
}

// Check rejects entries outside the configured window. The start must fall in
// [StartHour, EndHour) and the end in [StartHour, EndHour]; an entry ending
// exactly at closing time passes.
func (b BusinessHours) Check(start, end time.Time) error {
	if !b.Enabled {
		return nil
	}

	startHour := start.Hour()
	if startHour < b.StartHour || startHour >= b.EndHour {
		return domain.NewErrorf(domain.CodeOutsideBusinessHours, "entry starts outside business hours",
			"entries must start between %02d:00 and %02d:00, got %s",
			b.StartHour, b.EndHour, start.Format("15:04"))
	}

	endHour := end.Hour()
	endsOnTheHour := end.Minute() == 0 && end.Second() == 0 && end.Nanosecond() == 0
	if endHour == 0 && endsOnTheHour && b.EndHour == 24 {
		// A window closing at 24 admits an entry ending exactly at midnight,
		// which the clock reports as hour 0 of the next day.
		endHour = 24
	}
	if endHour < b.StartHour || endHour > b.EndHour || (endHour == b.EndHour && !endsOnTheHour) {
		return domain.NewErrorf(domain.CodeOutsideBusinessHours, "entry ends outside business hours",
			"entries must end between %02d:00 and %02d:00, got %s",
			b.StartHour, b.EndHour, end.Format("15:04"))
	}

	return nil
}
