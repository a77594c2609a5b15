package schedule

import (
	"fmt"
	"time"
)

// Type identifies one of the canonical bell patterns.
type Type string

const (
	Monday     Type = "monday"
	Tuesday    Type = "tuesday"
	Wednesday  Type = "wednesday"
	Thursday   Type = "thursday"
	Friday     Type = "friday"
	MinimumDay Type = "minimum"
)

// AllTypes lists every schedule type in display order.
var AllTypes = []Type{Monday, Tuesday, Wednesday, Thursday, Friday, MinimumDay}

// ParseType converts a string into a schedule Type.
func ParseType(s string) (Type, error) {
	for _, t := range AllTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown schedule type %q", s)
}

// DisplayName returns the human-readable name for the schedule type.
func (t Type) DisplayName() string {
	switch t {
	case Monday:
		return "Monday"
	case Tuesday:
		return "Tuesday"
	case Wednesday:
		return "Wednesday"
	case Thursday:
		return "Thursday"
	case Friday:
		return "Friday"
	case MinimumDay:
		return "Minimum Day"
	default:
		return string(t)
	}
}

// Abbreviation returns the short display name for the schedule type.
func (t Type) Abbreviation() string {
	switch t {
	case Monday:
		return "Mon"
	case Tuesday:
		return "Tues"
	case Wednesday:
		return "Wed"
	case Thursday:
		return "Thurs"
	case Friday:
		return "Fri"
	case MinimumDay:
		return "Min"
	default:
		return string(t)
	}
}

// Schedule is the ordered set of periods defining one day's bell pattern.
type Schedule struct {
	Type    Type     `yaml:"type" json:"type"`
	Periods []Period `yaml:"periods" json:"periods"`
}

// CurrentPeriod returns the period containing t, if any.
func (s Schedule) CurrentPeriod(t time.Time) (Period, bool) {
	for _, p := range s.Periods {
		if p.Contains(t) {
			return p, true
		}
	}
	return Period{}, false
}

// NextPeriod returns the first period whose start is strictly after t.
func (s Schedule) NextPeriod(t time.Time) (Period, bool) {
	for _, p := range s.Periods {
		if p.StartOn(t).After(t) {
			return p, true
		}
	}
	return Period{}, false
}

// FilteredPeriods returns the periods visible under the display flags,
// preserving order. Period 0 and period 7 are the only optional slots.
func (s Schedule) FilteredPeriods(showPeriod0, showPeriod7 bool) []Period {
	filtered := make([]Period, 0, len(s.Periods))
	for _, p := range s.Periods {
		if p.Number == PeriodZero && !showPeriod0 {
			continue
		}
		if p.Number == PeriodSeven && !showPeriod7 {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// Validate checks per-period invariants plus ordering and non-overlap across
// the schedule. Gaps between consecutive periods are passing periods and are
// allowed; overlaps and out-of-order periods are construction-time failures.
func (s Schedule) Validate() error {
	for _, p := range s.Periods {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("schedule %s: %w", s.Type, err)
		}
	}
	for i := 1; i < len(s.Periods); i++ {
		prev, cur := s.Periods[i-1], s.Periods[i]
		if cur.Start.Before(prev.Start) {
			return fmt.Errorf("schedule %s: period %d starts before period %d", s.Type, cur.Number, prev.Number)
		}
		if cur.Start.Before(prev.End) {
			return fmt.Errorf("schedule %s: period %d overlaps period %d", s.Type, cur.Number, prev.Number)
		}
	}
	return nil
}
