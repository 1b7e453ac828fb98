package gtfs

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTime parses a GTFS time of the form H:MM:SS into seconds after the service day's midnight.
//
// The hour is not wrapped: "25:30:00" is 91800, a time on the following calendar day.
// The second return value is false when the string is empty or malformed.
func ParseTime(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, false
	}
	if len(parts[0]) > maxHourDigits {
		return 0, false
	}
	var hms [3]int
	for i, part := range parts {
		n, ok := parseNonNegative(part)
		if !ok {
			return 0, false
		}
		hms[i] = n
	}
	if hms[1] > 59 || hms[2] > 59 {
		return 0, false
	}
	return hms[0]*3600 + hms[1]*60 + hms[2], true
}

// FormatTime is the inverse of ParseTime and produces zero-padded HH:MM:SS.
func FormatTime(seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds/60)%60, seconds%60)
}

// ExtractHour returns the leading hour token of a raw GTFS time, verbatim.
func ExtractHour(s string) (int, bool) {
	hour, _, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found || len(hour) > maxHourDigits {
		return 0, false
	}
	return parseNonNegative(hour)
}

// Longer hour tokens are malformed; they would overflow the seconds count.
const maxHourDigits = 6

func parseNonNegative(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
