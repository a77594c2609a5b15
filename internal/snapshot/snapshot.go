// Package snapshot builds the flat widget-data record that display
// companions consume. The record is a point-in-time projection of a
// schedule status; fields that do not apply to the status kind are absent.
package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ehsprogramming/bellschedule-go/internal/schedule"
)

// WidgetData is the interchange record for companion displays. Optional
// fields are nil (absent in JSON) when the status kind has no use for them.
type WidgetData struct {
	CurrentPeriodName    *string    `json:"currentPeriodName,omitempty"`
	CurrentPeriodEndTime *time.Time `json:"currentPeriodEndInstant,omitempty"`
	CurrentPeriodTeacher *string    `json:"teacher,omitempty"`
	CurrentPeriodRoom    *string    `json:"room,omitempty"`
	NextPeriodName       *string    `json:"nextPeriodName,omitempty"`
	NextPeriodStartTime  *time.Time `json:"nextPeriodStartInstant,omitempty"`
	StatusLabel          string     `json:"statusLabel"`
	TimeRemainingSeconds *int64     `json:"timeRemainingSeconds,omitempty"`
	Progress             *float64   `json:"progress,omitempty"`
	LastUpdated          time.Time  `json:"lastUpdatedInstant"`
}

// Build projects a schedule status into a widget record. resolve maps a
// period to its display metadata (typically Calculator.ClassInfo with the
// current preferences snapshot).
func Build(st schedule.ScheduleStatus, resolve func(schedule.Period) schedule.ClassInfo, now time.Time) WidgetData {
	data := WidgetData{
		StatusLabel: st.Kind.Label(),
		LastUpdated: now,
	}

	switch st.Kind {
	case schedule.StatusInClass:
		if st.Period != nil {
			info := resolve(*st.Period)
			data.CurrentPeriodName = ptr(info.DisplayName())
			data.CurrentPeriodTeacher = optional(info.Teacher)
			data.CurrentPeriodRoom = optional(info.Room)
			end := st.Period.EndOn(now)
			data.CurrentPeriodEndTime = &end
		}
		data.TimeRemainingSeconds = ptr(int64(st.TimeRemaining.Seconds()))
		data.Progress = ptr(st.Progress)

	case schedule.StatusPassingPeriod, schedule.StatusBeforeSchool:
		if st.NextPeriod != nil {
			info := resolve(*st.NextPeriod)
			data.NextPeriodName = ptr(info.DisplayName())
			start := st.NextPeriod.StartOn(now)
			data.NextPeriodStartTime = &start
		}
		data.TimeRemainingSeconds = ptr(int64(st.TimeUntilNext.Seconds()))

	case schedule.StatusNoSchool, schedule.StatusAfterSchool:
		// Label only.
	}

	return data
}

// Encode serializes the record for storage or transport.
func Encode(data WidgetData) ([]byte, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode widget data: %w", err)
	}
	return encoded, nil
}

// Decode parses a stored record.
func Decode(encoded []byte) (WidgetData, error) {
	var data WidgetData
	if err := json.Unmarshal(encoded, &data); err != nil {
		return WidgetData{}, fmt.Errorf("decode widget data: %w", err)
	}
	return data, nil
}

func ptr[T any](v T) *T {
	return &v
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
