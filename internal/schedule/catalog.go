package schedule

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Catalog maps each schedule type to its canonical Schedule. A catalog is
// validated once at construction and immutable afterwards, so it is safe for
// concurrent readers.
type Catalog struct {
	schedules map[Type]Schedule
}

// NewCatalog builds a catalog from the given schedules, enforcing the
// data-integrity invariants (well-formed periods, ordering, non-overlap,
// exactly one schedule per type).
func NewCatalog(schedules []Schedule) (*Catalog, error) {
	byType := make(map[Type]Schedule, len(schedules))
	for _, s := range schedules {
		if _, err := ParseType(string(s.Type)); err != nil {
			return nil, err
		}
		if _, dup := byType[s.Type]; dup {
			return nil, fmt.Errorf("duplicate schedule for type %s", s.Type)
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		byType[s.Type] = s
	}
	for _, t := range AllTypes {
		if _, ok := byType[t]; !ok {
			return nil, fmt.Errorf("missing schedule for type %s", t)
		}
	}
	return &Catalog{schedules: byType}, nil
}

// Builtin returns the catalog of school bell schedules shipped with the
// application.
func Builtin() *Catalog {
	c, err := NewCatalog(builtinSchedules())
	if err != nil {
		// Static data validated by tests; a failure here is a programming error.
		panic(fmt.Sprintf("builtin catalog invalid: %v", err))
	}
	return c
}

// catalogFile is the YAML shape of an external catalog config file.
type catalogFile struct {
	Schedules []Schedule `yaml:"schedules"`
}

// LoadFile reads a full catalog from a YAML file. The file must define all
// six schedule types and passes the same fail-fast validation as the
// built-in data.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	c, err := NewCatalog(file.Schedules)
	if err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", path, err)
	}
	return c, nil
}

// ForType returns the canonical schedule for the given type.
func (c *Catalog) ForType(t Type) Schedule {
	return c.schedules[t]
}

// ForWeekday returns the schedule for a calendar weekday. Saturday and
// Sunday deterministically fall back to the Monday schedule; this mirrors
// the product behavior and keeps the lookup total.
func (c *Catalog) ForWeekday(d time.Weekday) Schedule {
	switch d {
	case time.Monday:
		return c.schedules[Monday]
	case time.Tuesday:
		return c.schedules[Tuesday]
	case time.Wednesday:
		return c.schedules[Wednesday]
	case time.Thursday:
		return c.schedules[Thursday]
	case time.Friday:
		return c.schedules[Friday]
	default:
		return c.schedules[Monday]
	}
}

// Len returns the number of schedules in the catalog.
func (c *Catalog) Len() int {
	return len(c.schedules)
}

// PeriodCount returns the total number of periods across all schedules.
func (c *Catalog) PeriodCount() int {
	total := 0
	for _, s := range c.schedules {
		total += len(s.Periods)
	}
	return total
}

func builtinSchedules() []Schedule {
	return []Schedule{
		{
			Type: Monday,
			Periods: []Period{
				NewPeriod(0, 7, 15, 8, 20, "Period 0"),
				NewPeriod(1, 8, 30, 9, 22, "Period 1"),
				NewPeriod(2, 9, 28, 10, 20, "Period 2"),
				NewPeriod(3, 10, 26, 11, 18, "Period 3"),
				NewPeriod(4, 11, 24, 12, 16, "Period 4"),
				NewPeriod(PeriodLunch, 12, 16, 12, 51, "Lunch"),
				NewPeriod(PeriodAccess, 12, 57, 13, 29, "ACCESS Period"),
				NewPeriod(5, 13, 35, 14, 27, "Period 5"),
				NewPeriod(6, 14, 33, 15, 25, "Period 6"),
				NewPeriod(7, 15, 31, 16, 36, "Period 7"),
			},
		},
		{
			Type: Tuesday,
			Periods: []Period{
				NewPeriod(0, 7, 15, 8, 20, "Period 0"),
				NewPeriod(1, 8, 30, 9, 28, "Period 1"),
				NewPeriod(2, 9, 34, 10, 32, "Period 2"),
				NewPeriod(3, 10, 38, 11, 38, "Period 3"),
				NewPeriod(4, 11, 44, 12, 42, "Period 4"),
				NewPeriod(PeriodLunch, 12, 42, 13, 17, "Lunch"),
				NewPeriod(5, 13, 23, 14, 21, "Period 5"),
				NewPeriod(6, 14, 27, 15, 25, "Period 6"),
				NewPeriod(7, 15, 31, 16, 36, "Period 7"),
			},
		},
		{
			Type: Wednesday,
			Periods: []Period{
				NewPeriod(1, 9, 0, 10, 30, "Period 1"),
				NewPeriod(3, 10, 36, 12, 6, "Period 3"),
				NewPeriod(PeriodLunch, 12, 6, 12, 41, "Lunch"),
				NewPeriod(PeriodAccess, 12, 47, 13, 49, "ACCESS Period"),
				NewPeriod(5, 13, 55, 15, 25, "Period 5"),
			},
		},
		{
			Type: Thursday,
			Periods: []Period{
				NewPeriod(0, 7, 15, 8, 20, "Period 0"),
				NewPeriod(2, 8, 30, 10, 0, "Period 2"),
				NewPeriod(4, 10, 6, 11, 36, "Period 4"),
				NewPeriod(PeriodLunch, 11, 36, 12, 11, "Lunch"),
				NewPeriod(PeriodAccess, 12, 17, 13, 9, "ACCESS Period"),
				NewPeriod(6, 13, 15, 14, 45, "Period 6"),
				NewPeriod(7, 14, 51, 15, 56, "Period 7"),
			},
		},
		{
			Type: Friday,
			Periods: []Period{
				NewPeriod(0, 7, 15, 8, 20, "Period 0"),
				NewPeriod(1, 8, 30, 9, 28, "Period 1"),
				NewPeriod(2, 9, 34, 10, 32, "Period 2"),
				NewPeriod(3, 10, 38, 11, 38, "Period 3"),
				NewPeriod(4, 11, 44, 12, 42, "Period 4"),
				NewPeriod(PeriodLunch, 12, 42, 13, 17, "Lunch"),
				NewPeriod(5, 13, 23, 14, 21, "Period 5"),
				NewPeriod(6, 14, 27, 15, 25, "Period 6"),
				NewPeriod(7, 15, 31, 16, 36, "Period 7"),
			},
		},
		{
			Type: MinimumDay,
			Periods: []Period{
				NewPeriod(0, 7, 30, 8, 5, "Period 0"),
				NewPeriod(1, 8, 15, 8, 50, "Period 1"),
				NewPeriod(2, 9, 0, 9, 35, "Period 2"),
				NewPeriod(3, 9, 45, 10, 20, "Period 3"),
				NewPeriod(4, 10, 30, 11, 5, "Period 4"),
				NewPeriod(5, 11, 15, 11, 50, "Period 5"),
				NewPeriod(6, 12, 0, 12, 35, "Period 6"),
				NewPeriod(7, 12, 45, 13, 20, "Period 7"),
			},
		},
	}
}
