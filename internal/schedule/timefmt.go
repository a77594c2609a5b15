package schedule

import (
	"fmt"
	"time"
)

// FormatClock renders a clock time in 12- or 24-hour style.
func FormatClock(t time.Time, use24Hour bool) string {
	if use24Hour {
		return t.Format("15:04")
	}
	return t.Format("3:04 PM")
}

// FormatTimeRange renders "start - end" using the chosen clock style.
func FormatTimeRange(start, end time.Time, use24Hour bool) string {
	return FormatClock(start, use24Hour) + " - " + FormatClock(end, use24Hour)
}

// FormatCountdown renders a duration as h:mm:ss, or m:ss when under an hour.
// Negative durations render as zero.
func FormatCountdown(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
