package plans

import (
	"fmt"
	"time"
)

// weekKeyLayout renders a Monday date as DD-MMM-YYYY (e.g. 15-Jan-2024):
// zero-padded two-digit day and the fixed Jan..Dec abbreviation table. The
// rendering is the storage key, so it must stay bit-exact.
const weekKeyLayout = "02-Jan-2006"

// FormatWeekKey renders a week's storage key from its Monday date.
func FormatWeekKey(weekStart time.Time) string {
	return weekStart.Format(weekKeyLayout)
}

// ParseWeekKey parses a storage key back into a UTC date. Keys that don't
// re-render to themselves (unpadded days, out-of-range values) are rejected.
func ParseWeekKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(weekKeyLayout, key, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid week key %q: %w", key, err)
	}
	if FormatWeekKey(t) != key {
		return time.Time{}, fmt.Errorf("invalid week key %q", key)
	}
	return t, nil
}

// MondayOf normalizes any timestamp to the Monday of its calendar week at
// midnight UTC. Week identity is date-only, so time-of-day is discarded.
func MondayOf(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	return d.AddDate(0, 0, -offset)
}
