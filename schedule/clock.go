package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseClock parses "H:MM" or "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, bool) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if h > 23 || mm > 59 {
		return 0, false
	}
	return h*60 + mm, true
}

// FormatClock renders minutes since midnight as HH:MM, wrapping past midnight.
func FormatClock(minutes int) string {
	minutes %= minutesPerDay
	if minutes < 0 {
		minutes += minutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// EndTime adds a duration to a start time. It returns "" when either input
// is unusable.
func EndTime(start string, durationMinutes int) string {
	if durationMinutes <= 0 {
		return ""
	}
	m, ok := ParseClock(start)
	if !ok {
		return ""
	}
	return FormatClock(m + durationMinutes)
}
