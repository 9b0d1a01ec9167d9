// Package util provides common formatting helpers used across the map core.
package util

import (
	"fmt"
	"strings"
)

// FormatDistance renders a distance in meters the way the popup shows it:
// meters below one kilometer, otherwise kilometers with one decimal.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m away", meters)
	}
	return fmt.Sprintf("%.1f km away", meters/1000)
}

// DigitsOnly strips everything but ASCII digits from a phone number, the
// format messaging deep links require.
func DigitsOnly(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Truncate shortens s to at most max runes, appending an ellipsis when the
// text was cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
