package domain

import (
	"testing"
	"time"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{175.0, 175.0},
		{2.344, 2.34},
		{2.346, 2.35},
		{-2.346, -2.35},
		{116.655001, 116.66},
		{3.5 * 50, 175.0},
	}

	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRound2Idempotent(t *testing.T) {
	values := []float64{0, 0.005, 1.2345, 99.999, 175.004999, -3.14159, 1e6 / 3}
	for _, v := range values {
		once := Round2(v)
		if twice := Round2(once); twice != once {
			t.Errorf("Round2 not idempotent for %v: %v != %v", v, twice, once)
		}
	}
}

func TestDurationHours(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	if got := DurationHours(start, start.Add(90*time.Minute)); got != 1.5 {
		t.Errorf("DurationHours = %v, want 1.5", got)
	}
	if got := DurationHours(start, start.Add(24*time.Hour)); got != 24.0 {
		t.Errorf("DurationHours = %v, want 24", got)
	}
}

func TestProjectTotalAccumulatesUnrounded(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	total := &ProjectTotal{ProjectID: 1}
	total.Add(start, start.Add(2*time.Hour), 50)                      // 2.0h
	total.Add(start.Add(3*time.Hour), start.Add(270*time.Minute), 50) // 1.5h

	if got := total.RoundedHours(); got != 3.50 {
		t.Errorf("RoundedHours = %v, want 3.50", got)
	}
	if got := total.RoundedAmount(); got != 175.00 {
		t.Errorf("RoundedAmount = %v, want 175.00", got)
	}
}

func TestAmount(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	if got := Amount(start, start.Add(30*time.Minute), 80); got != 40.0 {
		t.Errorf("Amount = %v, want 40", got)
	}
}
