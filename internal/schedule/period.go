// Package schedule implements the bell schedule engine: the period and
// schedule data model, the weekday catalog, and the status calculator that
// classifies an instant against the active schedule. Everything in this
// package is pure computation over static data; callers own timers, storage
// and delivery.
package schedule

import (
	"fmt"
	"time"
)

// Reserved period numbers. Lunch and ACCESS are fixed school-wide slots and
// are never user-customizable.
const (
	PeriodZero   = 0
	PeriodSeven  = 7
	PeriodLunch  = 98
	PeriodAccess = 99
)

// ClockTime is a wall-clock time of day, independent of any calendar date.
type ClockTime struct {
	Hour   int `yaml:"hour" json:"hour"`
	Minute int `yaml:"minute" json:"minute"`
}

// Clock is a ClockTime constructor shorthand used by the built-in catalog.
func Clock(hour, minute int) ClockTime {
	return ClockTime{Hour: hour, Minute: minute}
}

// Valid reports whether the clock time is within a single day.
func (c ClockTime) Valid() bool {
	return c.Hour >= 0 && c.Hour < 24 && c.Minute >= 0 && c.Minute < 60
}

// MinutesFromMidnight returns the offset of this clock time from midnight.
func (c ClockTime) MinutesFromMidnight() int {
	return c.Hour*60 + c.Minute
}

// On projects the clock time onto the calendar day of t, in t's location.
func (c ClockTime) On(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), c.Hour, c.Minute, 0, 0, t.Location())
}

// Before reports whether c is earlier in the day than other.
func (c ClockTime) Before(other ClockTime) bool {
	return c.MinutesFromMidnight() < other.MinutesFromMidnight()
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Period is a single time-boxed slot within a day's bell schedule. Periods
// are static catalog data and immutable once constructed.
type Period struct {
	Number      int       `yaml:"number" json:"number"`
	DefaultName string    `yaml:"name" json:"defaultName"`
	Start       ClockTime `yaml:"start" json:"start"`
	End         ClockTime `yaml:"end" json:"end"`
}

// NewPeriod builds a period from hour/minute pairs.
func NewPeriod(number, startHour, startMinute, endHour, endMinute int, defaultName string) Period {
	return Period{
		Number:      number,
		DefaultName: defaultName,
		Start:       Clock(startHour, startMinute),
		End:         Clock(endHour, endMinute),
	}
}

// Duration returns the length of the period.
func (p Period) Duration() time.Duration {
	return time.Duration(p.End.MinutesFromMidnight()-p.Start.MinutesFromMidnight()) * time.Minute
}

// StartOn returns the period's start instant on the calendar day of t.
func (p Period) StartOn(t time.Time) time.Time {
	return p.Start.On(t)
}

// EndOn returns the period's end instant on the calendar day of t.
func (p Period) EndOn(t time.Time) time.Time {
	return p.End.On(t)
}

// Contains reports whether t falls inside the period on t's own day.
// Containment is start-inclusive and end-exclusive, so an instant exactly at
// the end boundary belongs to the following gap, never to this period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.StartOn(t)) && t.Before(p.EndOn(t))
}

// TimeRemaining returns how long until the period ends, floored at zero.
func (p Period) TimeRemaining(t time.Time) time.Duration {
	remaining := p.EndOn(t).Sub(t)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Progress returns the elapsed fraction of the period at t, clamped to [0, 1].
func (p Period) Progress(t time.Time) float64 {
	duration := p.Duration()
	if duration <= 0 {
		return 0
	}
	elapsed := t.Sub(p.StartOn(t))
	progress := float64(elapsed) / float64(duration)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

// Validate checks the period's construction-time invariants.
func (p Period) Validate() error {
	if !p.Start.Valid() {
		return fmt.Errorf("period %d: invalid start time %s", p.Number, p.Start)
	}
	if !p.End.Valid() {
		return fmt.Errorf("period %d: invalid end time %s", p.Number, p.End)
	}
	if !p.Start.Before(p.End) {
		return fmt.Errorf("period %d: end %s is not after start %s", p.Number, p.End, p.Start)
	}
	return nil
}
