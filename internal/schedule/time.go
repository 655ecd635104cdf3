// Package schedule implements the clinic's availability engine: time
// arithmetic, rest-time policy, window merging, conflict detection and
// slot generation.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeToMinutes converts an "HH:MM" clock string to minutes since midnight.
// Empty or malformed input yields 0 so callers never have to branch on a
// parse error for display-only values.
func TimeToMinutes(hhmm string) int {
	hhmm = strings.TrimSpace(hhmm)
	if hhmm == "" {
		return 0
	}
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0
	}
	return hours*60 + minutes
}

// MinutesToTime is the inverse of TimeToMinutes. Negative input clamps to
// "00:00".
func MinutesToTime(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
