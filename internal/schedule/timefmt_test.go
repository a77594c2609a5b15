package schedule

import (
	"testing"
	"time"
)

func TestFormatClock(t *testing.T) {
	afternoon := time.Date(2025, time.September, 8, 15, 31, 0, 0, time.UTC)
	morning := time.Date(2025, time.September, 8, 8, 5, 0, 0, time.UTC)

	tests := []struct {
		name      string
		at        time.Time
		use24Hour bool
		want      string
	}{
		{"afternoon 12h", afternoon, false, "3:31 PM"},
		{"afternoon 24h", afternoon, true, "15:31"},
		{"morning 12h", morning, false, "8:05 AM"},
		{"morning 24h", morning, true, "08:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatClock(tt.at, tt.use24Hour); got != tt.want {
				t.Errorf("FormatClock = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatTimeRange(t *testing.T) {
	start := time.Date(2025, time.September, 8, 8, 30, 0, 0, time.UTC)
	end := time.Date(2025, time.September, 8, 9, 22, 0, 0, time.UTC)

	if got, want := FormatTimeRange(start, end, false), "8:30 AM - 9:22 AM"; got != want {
		t.Errorf("12h range = %q, want %q", got, want)
	}
	if got, want := FormatTimeRange(start, end, true), "08:30 - 09:22"; got != want {
		t.Errorf("24h range = %q, want %q", got, want)
	}
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"under an hour", 52 * time.Minute, "52:00"},
		{"seconds only", 59 * time.Second, "0:59"},
		{"over an hour", time.Hour + 15*time.Minute + 7*time.Second, "1:15:07"},
		{"zero", 0, "0:00"},
		{"negative floors to zero", -30 * time.Second, "0:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCountdown(tt.d); got != tt.want {
				t.Errorf("FormatCountdown(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}
