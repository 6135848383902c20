package tui

import (
	"fmt"
	"math"
	"strings"
)

// formatHours renders a decimal hour count as "3h 25m", rounded to the
// nearest minute
func formatHours(hours float64) string {
	minutes := int(math.Round(hours * 60))
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}

// formatMoney renders an amount as "$1,234.56"
func formatMoney(amount float64) string {
	var b strings.Builder
	if amount < 0 {
		b.WriteByte('-')
		amount = -amount
	}
	b.WriteByte('$')

	s := fmt.Sprintf("%.2f", amount)
	intDigits := len(s) - 3 // everything before ".XX"
	for i, c := range s {
		if i > 0 && i < intDigits && (intDigits-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// truncateStr shortens s to max runes, marking the cut with an ellipsis
func truncateStr(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max < 2 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
