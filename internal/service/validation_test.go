package service

import (
	"strings"
	"testing"
	"time"

	"github.com/ezzabuzaid/iworked/internal/domain"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     string
		wantCode string
	}{
		{"plain", "ACME", "ACME", ""},
		{"trimmed", "  ACME Corp  ", "ACME Corp", ""},
		{"empty", "", "", domain.CodeFieldRequired},
		{"whitespace only", "   ", "", domain.CodeFieldRequired},
		{"max length", strings.Repeat("a", 255), strings.Repeat("a", 255), ""},
		{"too long", strings.Repeat("a", 256), "", domain.CodeFieldTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateName(tt.input, "client name")
			if tt.wantCode != "" {
				if !domain.IsCode(err, tt.wantCode) {
					t.Fatalf("expected code %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBusinessHoursDisabled(t *testing.T) {
	hours := BusinessHours{Enabled: false, StartHour: 9, EndHour: 17}

	start := time.Date(2026, 3, 2, 2, 0, 0, 0, time.UTC)
	if err := hours.Check(start, start.Add(time.Hour)); err != nil {
		t.Fatalf("disabled rule should pass anything, got %v", err)
	}
}

func TestBusinessHoursCheck(t *testing.T) {
	hours := BusinessHours{Enabled: true, StartHour: 9, EndHour: 17}
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		start, end time.Time
		ok         bool
	}{
		{"inside window", day.Add(10 * time.Hour), day.Add(12 * time.Hour), true},
		{"starts at opening", day.Add(9 * time.Hour), day.Add(10 * time.Hour), true},
		{"ends exactly at closing", day.Add(16 * time.Hour), day.Add(17 * time.Hour), true},
		{"starts before opening", day.Add(8 * time.Hour), day.Add(10 * time.Hour), false},
		{"ends past closing", day.Add(16 * time.Hour), day.Add(17*time.Hour + time.Minute), false},
		{"entirely outside", day.Add(20 * time.Hour), day.Add(21 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := hours.Check(tt.start, tt.end)
			if tt.ok && err != nil {
				t.Fatalf("expected pass, got %v", err)
			}
			if !tt.ok && !domain.IsCode(err, domain.CodeOutsideBusinessHours) {
				t.Fatalf("expected OutsideBusinessHours, got %v", err)
			}
		})
	}
}

func TestBusinessHoursMidnightClose(t *testing.T) {
	// A window closing at hour 24 admits entries running up to midnight
	hours := BusinessHours{Enabled: true, StartHour: 9, EndHour: 24}
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		start, end time.Time
		ok         bool
	}{
		{"ends exactly at midnight", day.Add(22 * time.Hour), day.Add(24 * time.Hour), true},
		{"ends just before midnight", day.Add(22 * time.Hour), day.Add(23*time.Hour + 59*time.Minute), true},
		{"spills past midnight", day.Add(23 * time.Hour), day.Add(24*time.Hour + 30*time.Minute), false},
		{"starts before opening", day.Add(8 * time.Hour), day.Add(24 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := hours.Check(tt.start, tt.end)
			if tt.ok && err != nil {
				t.Fatalf("expected pass, got %v", err)
			}
			if !tt.ok && !domain.IsCode(err, domain.CodeOutsideBusinessHours) {
				t.Fatalf("expected OutsideBusinessHours, got %v", err)
			}
		})
	}
}
