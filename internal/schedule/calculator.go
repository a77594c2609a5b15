package schedule

import "time"

// DisplayPrefs is the read-only snapshot of user display preferences the
// calculator consumes. Callers pass a fresh snapshot per call; the calculator
// never retains or mutates it.
type DisplayPrefs struct {
	ShowPeriod0     bool
	ShowPeriod7     bool
	Use24HourFormat bool
	CustomClassInfo map[int]ClassInfo
}

// DefaultDisplayPrefs returns the out-of-the-box display preferences:
// all periods visible, 12-hour clock, no overrides.
func DefaultDisplayPrefs() DisplayPrefs {
	return DisplayPrefs{ShowPeriod0: true, ShowPeriod7: true}
}

// StatusKind tags a ScheduleStatus value.
type StatusKind string

const (
	StatusNoSchool      StatusKind = "no_school"
	StatusBeforeSchool  StatusKind = "before_school"
	StatusInClass       StatusKind = "in_class"
	StatusPassingPeriod StatusKind = "passing_period"
	StatusAfterSchool   StatusKind = "after_school"
)

// Label returns the display label for the status kind.
func (k StatusKind) Label() string {
	switch k {
	case StatusNoSchool:
		return "No School"
	case StatusBeforeSchool:
		return "Before School"
	case StatusInClass:
		return "In Class"
	case StatusPassingPeriod:
		return "Passing Period"
	case StatusAfterSchool:
		return "After School"
	default:
		return string(k)
	}
}

// ScheduleStatus classifies a single instant against the active schedule.
// It is terminal per evaluation: callers recompute on every tick instead of
// mutating a previous value.
//
// Field presence by kind:
//   - InClass: Period, TimeRemaining, Progress
//   - BeforeSchool, PassingPeriod: NextPeriod, TimeUntilNext
//   - NoSchool, AfterSchool: kind only
type ScheduleStatus struct {
	Kind          StatusKind
	Period        *Period
	NextPeriod    *Period
	TimeRemaining time.Duration
	TimeUntilNext time.Duration
	Progress      float64
}

// Calculator resolves schedule status from the catalog and an instant. It
// holds only the immutable catalog, so concurrent callers need no
// synchronization.
type Calculator struct {
	catalog *Catalog
}

// NewCalculator creates a calculator over the given catalog.
func NewCalculator(catalog *Catalog) *Calculator {
	return &Calculator{catalog: catalog}
}

// Catalog returns the catalog the calculator operates over.
func (c *Calculator) Catalog() *Catalog {
	return c.catalog
}

// IsSchoolDay reports whether t falls on an instructional weekday. There is
// no holiday calendar; Monday through Friday are school days.
func (c *Calculator) IsSchoolDay(t time.Time) bool {
	wd := t.Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// ScheduleFor returns the schedule in effect on t's weekday.
func (c *Calculator) ScheduleFor(t time.Time) Schedule {
	return c.catalog.ForWeekday(t.Weekday())
}

// Status classifies t against the active schedule under the given display
// preferences. It is a total, pure function: exactly one status kind is
// returned for every instant.
func (c *Calculator) Status(t time.Time, prefs DisplayPrefs) ScheduleStatus {
	if !c.IsSchoolDay(t) {
		return ScheduleStatus{Kind: StatusNoSchool}
	}

	filtered := c.ScheduleFor(t).FilteredPeriods(prefs.ShowPeriod0, prefs.ShowPeriod7)
	if len(filtered) == 0 {
		// Nothing visible to attend; degenerate to AfterSchool for all instants.
		return ScheduleStatus{Kind: StatusAfterSchool}
	}

	for i := range filtered {
		if filtered[i].Contains(t) {
			p := filtered[i]
			return ScheduleStatus{
				Kind:          StatusInClass,
				Period:        &p,
				TimeRemaining: p.TimeRemaining(t),
				Progress:      p.Progress(t),
			}
		}
	}

	// Strictly between the end of one visible period and the start of the next.
	for i := 0; i < len(filtered)-1; i++ {
		if t.Before(filtered[i].EndOn(t)) || !t.Before(filtered[i+1].StartOn(t)) {
			continue
		}
		next := filtered[i+1]
		return ScheduleStatus{
			Kind:          StatusPassingPeriod,
			NextPeriod:    &next,
			TimeUntilNext: next.StartOn(t).Sub(t),
		}
	}

	if first := filtered[0]; t.Before(first.StartOn(t)) {
		return ScheduleStatus{
			Kind:          StatusBeforeSchool,
			NextPeriod:    &first,
			TimeUntilNext: first.StartOn(t).Sub(t),
		}
	}

	if last := filtered[len(filtered)-1]; !t.Before(last.EndOn(t)) {
		return ScheduleStatus{Kind: StatusAfterSchool}
	}

	// Residual case: t sits in a gap left by a filtered-out period. Prefer
	// BeforeSchool against the next visible period when one exists.
	for i := range filtered {
		if filtered[i].StartOn(t).After(t) {
			next := filtered[i]
			return ScheduleStatus{
				Kind:          StatusBeforeSchool,
				NextPeriod:    &next,
				TimeUntilNext: next.StartOn(t).Sub(t),
			}
		}
	}
	return ScheduleStatus{Kind: StatusAfterSchool}
}

// ClassInfo resolves the display metadata for a period. Lunch and ACCESS
// always resolve to their fixed built-ins regardless of stored overrides;
// other periods use the custom override when present, else the default name.
func (c *Calculator) ClassInfo(p Period, prefs DisplayPrefs) ClassInfo {
	switch p.Number {
	case PeriodLunch:
		return lunchClassInfo
	case PeriodAccess:
		return accessClassInfo
	}
	if ci, ok := prefs.CustomClassInfo[p.Number]; ok && !ci.IsEmpty() {
		if ci.Name == "" {
			ci.Name = p.DefaultName
		}
		return ci
	}
	return ClassInfo{Name: p.DefaultName}
}

// UpcomingPeriods returns today's visible periods whose start is strictly
// after t, in order.
func (c *Calculator) UpcomingPeriods(t time.Time, prefs DisplayPrefs) []Period {
	if !c.IsSchoolDay(t) {
		return nil
	}
	filtered := c.ScheduleFor(t).FilteredPeriods(prefs.ShowPeriod0, prefs.ShowPeriod7)
	upcoming := make([]Period, 0, len(filtered))
	for _, p := range filtered {
		if p.StartOn(t).After(t) {
			upcoming = append(upcoming, p)
		}
	}
	return upcoming
}
