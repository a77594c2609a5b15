// Package notify computes when schedule notifications should fire and what
// they should say. It only produces the plan; arming OS-level alerts from it
// is the delivery service's job.
package notify

import (
	"fmt"
	"sort"
	"time"

	"github.com/ehsprogramming/bellschedule-go/internal/prefs"
	"github.com/ehsprogramming/bellschedule-go/internal/schedule"
)

// Notification categories, matching the original app's notification
// category identifiers.
const (
	CategoryClassEnding   = "CLASS_ENDING"
	CategoryPassingPeriod = "PASSING_PERIOD"
)

// DefaultHorizonDays is how far ahead a plan reaches.
const DefaultHorizonDays = 7

// Notification is one planned alert. ID is stable per (period number,
// calendar day), so regenerating a plan and re-registering it with a
// delivery service replaces entries instead of duplicating them.
type Notification struct {
	ID       string    `json:"id"`
	FireAt   time.Time `json:"fireAt"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Category string    `json:"category"`
}

// Planner generates notification plans from the schedule engine.
type Planner struct {
	calc *schedule.Calculator
}

// NewPlanner creates a planner over the given calculator.
func NewPlanner(calc *schedule.Calculator) *Planner {
	return &Planner{calc: calc}
}

// Plan returns the notifications that should fire between now and the end of
// the horizon, in fire order. The plan is empty when notifications are
// disabled. Fire instants at or before now are skipped so a freshly
// generated plan never contains stale entries.
func (pl *Planner) Plan(now time.Time, display schedule.DisplayPrefs, settings prefs.Notifications, horizonDays int) []Notification {
	if !settings.Enabled {
		return []Notification{}
	}
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}

	plan := make([]Notification, 0, horizonDays*8)
	for dayOffset := 0; dayOffset < horizonDays; dayOffset++ {
		day := now.AddDate(0, 0, dayOffset)
		if !pl.calc.IsSchoolDay(day) {
			continue
		}
		plan = append(plan, pl.planDay(now, day, display, settings)...)
	}

	// A long lead time can push one period's ending alert ahead of the
	// previous period's passing alert; sort to restore fire order.
	sort.Slice(plan, func(i, j int) bool {
		return plan[i].FireAt.Before(plan[j].FireAt)
	})
	return plan
}

func (pl *Planner) planDay(now, day time.Time, display schedule.DisplayPrefs, settings prefs.Notifications) []Notification {
	visible := pl.calc.ScheduleFor(day).FilteredPeriods(display.ShowPeriod0, display.ShowPeriod7)
	notifications := make([]Notification, 0, len(visible)*2)

	for i, period := range visible {
		className := pl.calc.ClassInfo(period, display).DisplayName()

		if settings.MinutesBeforeEnd > 0 {
			fireAt := period.EndOn(day).Add(-time.Duration(settings.MinutesBeforeEnd) * time.Minute)
			if fireAt.After(now) {
				notifications = append(notifications, Notification{
					ID:       notificationID("class_ending", period.Number, day),
					FireAt:   fireAt,
					Title:    fmt.Sprintf("%s ending soon", className),
					Body:     fmt.Sprintf("%s ends in %d %s", className, settings.MinutesBeforeEnd, pluralMinutes(settings.MinutesBeforeEnd)),
					Category: CategoryClassEnding,
				})
			}
		}

		if settings.IncludePassingPeriods {
			fireAt := period.EndOn(day)
			if !fireAt.After(now) {
				continue
			}
			body := "You're done for the day"
			if i+1 < len(visible) {
				next := pl.calc.ClassInfo(visible[i+1], display).DisplayName()
				body = fmt.Sprintf("%s starts soon", next)
			}
			notifications = append(notifications, Notification{
				ID:       notificationID("passing_period", period.Number, day),
				FireAt:   fireAt,
				Title:    "Passing Period",
				Body:     body,
				Category: CategoryPassingPeriod,
			})
		}
	}
	return notifications
}

func notificationID(kind string, periodNumber int, day time.Time) string {
	return fmt.Sprintf("%s_%d_%s", kind, periodNumber, day.Format("2006-01-02"))
}

func pluralMinutes(n int) string {
	if n == 1 {
		return "minute"
	}
	return "minutes"
}
