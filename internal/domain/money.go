package domain

import (
	"math"
	"time"
)

// DurationHours returns the exact span between start and end in hours.
// No rounding happens here; callers round once at output.
func DurationHours(start, end time.Time) float64 {
	return end.Sub(start).Hours()
}

// Amount returns the unrounded billable amount for a span at the given rate
func Amount(start, end time.Time, rate float64) float64 {
	return DurationHours(start, end) * rate
}

// Round2 rounds to two decimals, half away from zero. Applied wherever an
// hour or money total is persisted or displayed, never to intermediate sums,
// so accumulated totals don't drift.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// ProjectTotal accumulates unrounded hours and amount for one project while
// folding entries into invoice lines or reports.
type ProjectTotal struct {
	ProjectID int64
	ClientID  int64
	Hours     float64
	Amount    float64
}

// Add folds one entry span into the running total at the given rate
func (t *ProjectTotal) Add(start, end time.Time, rate float64) {
	t.Hours += DurationHours(start, end)
	t.Amount += Amount(start, end, rate)
}

// RoundedHours returns the accumulated hours rounded for output
func (t *ProjectTotal) RoundedHours() float64 {
	return Round2(t.Hours)
}

// RoundedAmount returns the accumulated amount rounded for output
func (t *ProjectTotal) RoundedAmount() float64 {
	return Round2(t.Amount)
}
