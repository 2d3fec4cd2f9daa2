// README: Shared identifiers and small value helpers.
package types

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

type ID string

func NewID() ID {
	return ID(uuid.NewString())
}

// FormatDuration renders minutes as "2 hours 15 min", "1 hour" or "45 min".
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return "0 min"
	}
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%d min", m)
	case m == 0:
		return pluralHours(h)
	default:
		return fmt.Sprintf("%s %d min", pluralHours(h), m)
	}
}

func pluralHours(h int) string {
	if h == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", h)
}

// RoundTo1 rounds to one decimal place.
func RoundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}
