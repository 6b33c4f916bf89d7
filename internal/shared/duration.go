package shared

import (
	"fmt"
	"strings"
)

// ParseDuration converts chart and search-result time text to seconds.
//
// Accepts "m:ss" and "h:mm:ss", with surrounding whitespace and parentheses ("(5:30)").
// Malformed input yields 0; it never fails.
func ParseDuration(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	text = strings.NewReplacer("(", "", ")", "").Replace(text)

	parts := strings.Split(text, ":")
	values := make([]int, len(parts))
	for i, p := range parts {
		values[i] = leadingInt(p)
	}

	switch len(values) {
	case 2:
		return values[0]*60 + values[1]
	case 3:
		return values[0]*3600 + values[1]*60 + values[2]
	default:
		return 0
	}
}

// maxSegment bounds one parsed segment so h:mm:ss arithmetic cannot overflow.
const maxSegment = 1_000_000

// leadingInt reads the run of decimal digits at the start of s, ignoring leading spaces.
// Returns 0 when there are none or when the value exceeds maxSegment.
func leadingInt(s string) int {
	s = strings.TrimLeft(s, " \t")
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		if n > maxSegment {
			return 0
		}
	}
	return n
}

// FormatDuration renders seconds as "m:ss", or "h:mm:ss" from one hour up.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}

	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
