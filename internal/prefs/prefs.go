// Package prefs defines the typed user-settings records and their versioned
// import/export format. The original settings export was an untyped key-value
// dictionary; this package replaces it with explicit records validated at the
// deserialization boundary, migrating the legacy shape on import.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/ehsprogramming/bellschedule-go/internal/schedule"
)

// DocumentVersion is the current settings document schema version.
const DocumentVersion = 1

// MaxMinutesBeforeEnd bounds the class-ending notification lead time.
const MaxMinutesBeforeEnd = 60

// Sentinel errors for settings validation.
var (
	// ErrReservedPeriod indicates an attempt to override class info for
	// lunch or ACCESS, which are fixed.
	ErrReservedPeriod = errors.New("period is reserved and cannot be customized")

	// ErrInvalidMinutes indicates an out-of-range notification lead time.
	ErrInvalidMinutes = errors.New("minutes before end out of range")
)

// Display holds the user's display preferences.
type Display struct {
	ShowPeriod0     bool                       `json:"showPeriod0"`
	ShowPeriod7     bool                       `json:"showPeriod7"`
	Use24HourFormat bool                       `json:"use24HourFormat"`
	CustomClassInfo map[int]schedule.ClassInfo `json:"customClassInfo,omitempty"`
}

// DefaultDisplay returns the out-of-the-box display settings: periods 0 and 7
// visible, 12-hour clock.
func DefaultDisplay() Display {
	return Display{ShowPeriod0: true, ShowPeriod7: true}
}

// Prefs converts the stored record into the read-only snapshot the
// calculator consumes.
func (d Display) Prefs() schedule.DisplayPrefs {
	return schedule.DisplayPrefs{
		ShowPeriod0:     d.ShowPeriod0,
		ShowPeriod7:     d.ShowPeriod7,
		Use24HourFormat: d.Use24HourFormat,
		CustomClassInfo: d.CustomClassInfo,
	}
}

// Validate rejects overrides for reserved periods.
func (d Display) Validate() error {
	for number := range d.CustomClassInfo {
		if schedule.IsReservedPeriod(number) {
			return fmt.Errorf("class info for period %d: %w", number, ErrReservedPeriod)
		}
	}
	return nil
}

// Notifications holds the user's notification settings.
type Notifications struct {
	Enabled               bool `json:"enabled"`
	MinutesBeforeEnd      int  `json:"minutesBeforeEnd"`
	IncludePassingPeriods bool `json:"includePassingPeriods"`
}

// DefaultNotifications returns the out-of-the-box notification settings:
// disabled, two minutes before class end, no passing-period alerts.
func DefaultNotifications() Notifications {
	return Notifications{MinutesBeforeEnd: 2}
}

// Validate bounds the notification lead time.
func (n Notifications) Validate() error {
	if n.MinutesBeforeEnd < 0 || n.MinutesBeforeEnd > MaxMinutesBeforeEnd {
		return fmt.Errorf("minutesBeforeEnd %d: %w", n.MinutesBeforeEnd, ErrInvalidMinutes)
	}
	return nil
}

// Document is the versioned envelope for a full settings export.
type Document struct {
	Version       int           `json:"version"`
	Display       Display       `json:"display"`
	Notifications Notifications `json:"notifications"`
}

// DefaultDocument returns a document with all defaults.
func DefaultDocument() Document {
	return Document{
		Version:       DocumentVersion,
		Display:       DefaultDisplay(),
		Notifications: DefaultNotifications(),
	}
}

// Validate checks the whole document.
func (doc Document) Validate() error {
	if err := doc.Display.Validate(); err != nil {
		return err
	}
	return doc.Notifications.Validate()
}

// Export serializes the document as versioned JSON.
func Export(doc Document) ([]byte, error) {
	doc.Version = DocumentVersion
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

// legacyDocument mirrors the original app's untyped settings export. Class
// names were a bare number→string map and JSON object keys are strings, so
// the keys parse through strconv.
type legacyDocument struct {
	ShowPeriod0                     *bool             `json:"showPeriod0"`
	ShowPeriod7                     *bool             `json:"showPeriod7"`
	Use24HourFormat                 *bool             `json:"use24HourFormat"`
	CustomClassNames                map[string]string `json:"customClassNames"`
	NotificationMinutesBefore       *int              `json:"notificationMinutesBefore"`
	EnablePassingPeriodNotification *bool             `json:"enablePassingPeriodNotifications"`
}

// Import parses a settings document, accepting both the current versioned
// format and the legacy untyped export, and validates the result.
func Import(data []byte) (Document, error) {
	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Document{}, fmt.Errorf("parse settings: %w", err)
	}

	switch probe.Version {
	case 0:
		return importLegacy(data)
	case DocumentVersion:
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("parse settings: %w", err)
		}
		if err := doc.Validate(); err != nil {
			return Document{}, err
		}
		return doc, nil
	default:
		return Document{}, fmt.Errorf("unsupported settings version %d", probe.Version)
	}
}

// importLegacy migrates the original untyped export into a v1 document.
// Absent keys keep their defaults; legacy custom class names become
// name-only ClassInfo entries. Reserved-period keys are dropped rather than
// rejected, since old exports could legitimately contain them.
func importLegacy(data []byte) (Document, error) {
	var legacy legacyDocument
	if err := json.Unmarshal(data, &legacy); err != nil {
		return Document{}, fmt.Errorf("parse legacy settings: %w", err)
	}

	doc := DefaultDocument()
	if legacy.ShowPeriod0 != nil {
		doc.Display.ShowPeriod0 = *legacy.ShowPeriod0
	}
	if legacy.ShowPeriod7 != nil {
		doc.Display.ShowPeriod7 = *legacy.ShowPeriod7
	}
	if legacy.Use24HourFormat != nil {
		doc.Display.Use24HourFormat = *legacy.Use24HourFormat
	}
	if legacy.NotificationMinutesBefore != nil {
		doc.Notifications.MinutesBeforeEnd = *legacy.NotificationMinutesBefore
		doc.Notifications.Enabled = true
	}
	if legacy.EnablePassingPeriodNotification != nil {
		doc.Notifications.IncludePassingPeriods = *legacy.EnablePassingPeriodNotification
	}

	if len(legacy.CustomClassNames) > 0 {
		doc.Display.CustomClassInfo = make(map[int]schedule.ClassInfo, len(legacy.CustomClassNames))
		for key, name := range legacy.CustomClassNames {
			number, err := strconv.Atoi(key)
			if err != nil {
				return Document{}, fmt.Errorf("legacy class name key %q: %w", key, err)
			}
			if schedule.IsReservedPeriod(number) || name == "" {
				continue
			}
			doc.Display.CustomClassInfo[number] = schedule.ClassInfo{Name: name}
		}
	}

	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}
