package gamestate

import (
	"fmt"
	"strings"
	"time"
)

// DateKeyLayout is the one canonical form of a calendar day. Bucket building,
// "today" highlighting and selected-day lookup all go through it.
const DateKeyLayout = "2006-01-02"

// DateKey formats t as a calendar day in loc.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(location(loc)).Format(DateKeyLayout)
}

// NormalizeDateKey canonicalizes a feed date. Feeds send either a bare day or
// a full timestamp such as "2024-01-15T00:00:00.000Z"; the day part is taken
// verbatim so a UTC midnight never shifts to the previous local day. The
// second return is false when no day can be recovered.
func NormalizeDateKey(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) < len(DateKeyLayout) {
		return "", false
	}
	day := raw[:len(DateKeyLayout)]
	if _, err := time.Parse(DateKeyLayout, day); err != nil {
		return "", false
	}
	return day, true
}

// ParseMonth parses a "YYYY-MM" navigation parameter.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}

// NBADay returns the basketball day now falls on. Games run past midnight, so
// before cutoffHour local time the day is still the previous calendar day.
func NBADay(now time.Time, loc *time.Location, cutoffHour int) time.Time {
	local := now.In(location(loc))
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	if local.Hour() < cutoffHour {
		day = day.AddDate(0, 0, -1)
	}
	return day
}
