package schedule

import "strings"

// ClassInfo is the user-facing display metadata overlaid on a period.
type ClassInfo struct {
	Name    string `json:"name"`
	Teacher string `json:"teacher,omitempty"`
	Room    string `json:"room,omitempty"`
}

// Fixed class info for the reserved, non-customizable periods.
var (
	lunchClassInfo  = ClassInfo{Name: "Lunch"}
	accessClassInfo = ClassInfo{Name: "ACCESS"}
)

// IsEmpty reports whether all fields are empty.
func (ci ClassInfo) IsEmpty() bool {
	return ci.Name == "" && ci.Teacher == "" && ci.Room == ""
}

// DisplayName returns the class name, falling back to a generic label when
// no name is set.
func (ci ClassInfo) DisplayName() string {
	if ci.Name != "" {
		return ci.Name
	}
	return "Period"
}

// Details returns the "teacher · room" line shown under the class name, or
// an empty string when neither is set.
func (ci ClassInfo) Details() string {
	parts := make([]string, 0, 2)
	if ci.Teacher != "" {
		parts = append(parts, ci.Teacher)
	}
	if ci.Room != "" {
		parts = append(parts, ci.Room)
	}
	return strings.Join(parts, " · ")
}

// IsReservedPeriod reports whether the period number belongs to a fixed,
// non-customizable slot (lunch or ACCESS).
func IsReservedPeriod(number int) bool {
	return number == PeriodLunch || number == PeriodAccess
}
