package hos

import (
	"fmt"
)

const (
	MinutesPerDay = 1440

	// DefaultEventMinutes stands in for events recorded without a duration
	DefaultEventMinutes = 60
	// MinBarWidth keeps very short events visible on the grid
	MinBarWidth = 0.005
)

// ParseClock converts "HH:MM" to minutes after midnight. "24:00" is
// accepted as the end of the day.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' || !isDigits(s[:2]) || !isDigits(s[3:]) {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h > 24 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return h*60 + m, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatClock is the inverse of ParseClock
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
