package app

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ehsprogramming/bellschedule-go/internal/notify"
	"github.com/ehsprogramming/bellschedule-go/internal/prefs"
	"github.com/ehsprogramming/bellschedule-go/internal/schedule"
	"github.com/ehsprogramming/bellschedule-go/internal/snapshot"
	"github.com/ehsprogramming/bellschedule-go/internal/storage"
)

// effectiveDisplay loads stored display preferences and overlays class
// metadata from the class_info table. Table entries win over metadata
// embedded in the preferences document (the latter comes from imports).
func (a *Application) effectiveDisplay(ctx context.Context) (prefs.Display, schedule.DisplayPrefs, error) {
	display, err := a.db.LoadDisplaySettings(ctx)
	if err != nil {
		return prefs.Display{}, schedule.DisplayPrefs{}, err
	}

	stored, err := a.db.ListClassInfo(ctx)
	if err != nil {
		return prefs.Display{}, schedule.DisplayPrefs{}, err
	}
	if len(stored) > 0 {
		merged := make(map[int]schedule.ClassInfo, len(display.CustomClassInfo)+len(stored))
		for number, info := range display.CustomClassInfo {
			merged[number] = info
		}
		for number, info := range stored {
			merged[number] = info
		}
		display.CustomClassInfo = merged
	}

	return display, display.Prefs(), nil
}

func (a *Application) respondError(c *gin.Context, status int, errorType, message string) {
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	a.metrics.RecordHTTPError(errorType, route)
	c.JSON(status, gin.H{"error": message})
}

// parseInstant reads the optional instant query parameter, defaulting
// to the current time. The result is projected into the configured
// timezone so weekday and clock math follow the school's local day.
func (a *Application) parseInstant(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return time.Now().In(a.location), true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		a.respondError(c, http.StatusBadRequest, "bad_request", key+" must be RFC 3339")
		return time.Time{}, false
	}
	return t.In(a.location), true
}

// periodPayload renders a period with its resolved class metadata and
// formatted clock times.
func (a *Application) periodPayload(p schedule.Period, dp schedule.DisplayPrefs, day time.Time) gin.H {
	info := a.calc.ClassInfo(p, dp)
	payload := gin.H{
		"number":    p.Number,
		"name":      info.DisplayName(),
		"startTime": schedule.FormatClock(p.StartOn(day), dp.Use24HourFormat),
		"endTime":   schedule.FormatClock(p.EndOn(day), dp.Use24HourFormat),
		"timeRange": schedule.FormatTimeRange(p.StartOn(day), p.EndOn(day), dp.Use24HourFormat),
	}
	if info.Teacher != "" {
		payload["teacher"] = info.Teacher
	}
	if info.Room != "" {
		payload["room"] = info.Room
	}
	return payload
}

// getStatus evaluates the schedule state at an instant.
func (a *Application) getStatus(c *gin.Context) {
	at, ok := a.parseInstant(c, "at")
	if !ok {
		return
	}

	_, dp, err := a.effectiveDisplay(c.Request.Context())
	if err != nil {
		a.respondError(c, http.StatusInternalServerError, "internal", "failed to load preferences")
		return
	}

	st := a.calc.Status(at, dp)
	a.metrics.RecordStatusEvaluation(string(st.Kind))

	payload := gin.H{
		"instant":      at.Format(time.RFC3339),
		"scheduleType": a.calc.ScheduleFor(at).Type,
		"isSchoolDay":  a.calc.IsSchoolDay(at),
		"kind":         st.Kind,
		"label":        st.Kind.Label(),
	}

	switch st.Kind {
	case schedule.StatusInClass:
		payload["currentPeriod"] = a.periodPayload(*st.Period, dp, at)
		payload["timeRemainingSeconds"] = int64(st.TimeRemaining.Seconds())
		payload["countdown"] = schedule.FormatCountdown(st.TimeRemaining)
		payload["progress"] = st.Progress
	case schedule.StatusPassingPeriod, schedule.StatusBeforeSchool:
		payload["nextPeriod"] = a.periodPayload(*st.NextPeriod, dp, at)
		payload["timeUntilNextSeconds"] = int64(st.TimeUntilNext.Seconds())
		payload["countdown"] = schedule.FormatCountdown(st.TimeUntilNext)
	}

	c.JSON(http.StatusOK, payload)
}

// getSchedule returns the bell schedule for a type or date.
func (a *Application) getSchedule(c *gin.Context) {
	var sched schedule.Schedule
	day := time.Now().In(a.location)

	switch {
	case c.Query("type") != "":
		t, err := schedule.ParseType(c.Query("type"))
		if err != nil {
			a.respondError(c, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		sched = a.calc.Catalog().ForType(t)
	case c.Query("date") != "":
		parsed, err := time.ParseInLocation("2006-01-02", c.Query("date"), a.location)
		if err != nil {
			a.respondError(c, http.StatusBadRequest, "bad_request", "date must be YYYY-MM-DD")
			return
		}
		day = parsed
		sched = a.calc.ScheduleFor(parsed)
	case c.Query("at") != "":
		parsed, err := time.Parse(time.RFC3339, c.Query("at"))
		if err != nil {
			a.respondError(c, http.StatusBadRequest, "bad_request", "at must be RFC 3339")
			return
		}
		day = parsed.In(a.location)
		sched = a.calc.ScheduleFor(day)
	default:
		sched = a.calc.ScheduleFor(day)
	}

	_, dp, err := a.effectiveDisplay(c.Request.Context())
	if err != nil {
		a.respondError(c, http.StatusInternalServerError, "internal", "failed to load preferences")
		return
	}

	visible := sched.FilteredPeriods(dp.ShowPeriod0, dp.ShowPeriod7)
	periods := make([]gin.H, 0, len(visible))
	for _, p := range visible {
		periods = append(periods, a.periodPayload(p, dp, day))
	}

	c.JSON(http.StatusOK, gin.H{
		"type":         sched.Type,
		"displayName":  sched.Type.DisplayName(),
		"abbreviation": sched.Type.Abbreviation(),
		"periods":      periods,
	})
}

// getUpcomingPeriods returns the periods that have not started yet today.
func (a *Application) getUpcomingPeriods(c *gin.Context) {
	at, ok := a.parseInstant(c, "at")
	if !ok {
		return
	}

	_, dp, err := a.effectiveDisplay(c.Request.Context())
	if err != nil {
		a.respondError(c, http.StatusInternalServerError, "internal", "failed to load preferences")
		return
	}

	upcoming := a.calc.UpcomingPeriods(at, dp)
	periods := make([]gin.H, 0, len(upcoming))
	for _, p := range upcoming {
		periods = append(periods, a.periodPayload(p, dp, at))
	}

	c.JSON(http.StatusOK, gin.H{
		"instant": at.Format(time.RFC3339),
		"periods": periods,
	})
}

// getPreferences returns the stored display preferences.
func (a *Application) getPreferences(c *gin.Context) {
	display, err := a.db.LoadDisplaySettings(c.Request.Context())
	if err != nil {
		a.respondError(c, http.StatusInternalServerError, "internal", "failed to load preferences")
		return
	}
	c.JSON(http.StatusOK, display)
}

// putPreferences replaces the stored display preferences.
func (a *Application) putPreferences(c *gin.Context) {
	var display prefs.Display
	if err := c.ShouldBindJSON(&display); err != nil {
		a.respondError(c, http.StatusBadRequest, "bad_request", "invalid preferences document")
		return
	}
	if err := display.Validate(); err != nil {
		a.respondError(c, http.StatusUnprocessableEntity, "validation", err.Error())
		return
	}
	if err := a.db.SaveDisplaySettings(c.Request.Context(), display); err != nil {
		a.respondError(c, http.StatusInternalServerError, "internal", "failed to save preferences")
		return
	}
	a.metrics.RecordSettingsWrite("display")
	c.JSON(http.StatusOK, display)
}

type classInfoEntry struct {
	PeriodNumber int    `json:"periodNumber"`
	Name         string `json:"name"`
	Teacher      string `json:"teacher,omitempty"`
	Room         string `json:"room,omitempty"`
}

// listClassInfo returns all stored class metadata.
func (a *Application) listClassInfo(c *gin.Context) {
	stored, err := a.db.ListClassInfo(c.Request.Context())
	if err != nil {
		a.respondError(c, http.StatusInternalServerError, "internal", "failed to load class info")
		return
	}

	numbers, err := a.db.ClassInfoPeriods(c.Request.Context())
	if err != nil {
		a.respondError(c, http.StatusInternalServerError, "internal", "failed to load class info")
		return
	}

	entries := make([]classInfoEntry, 0, len(numbers))
	for _, number := range numbers {
		info := stored[number]
		entries = append(entries, classInfoEntry{
			PeriodNumber: number,
			Name:         info.Name,
			Teacher:      info.Teacher,
			Room:         info.Room,
		})
	}
	c.JSON(http.StatusOK, gin.H{"classInfo": entries})
}

func (a *Application) parsePeriodParam(c *gin.Context) (int, bool) {
	number, err := strconv.Atoi(c.Param("period"))
	if err != nil {
		a.respondError(c, http.StatusBadRequest, "bad_request", "period must be an integer")
		return 0, false
	}
	return number, true
}

// getClassInfo returns stored class metadata for one period.
func (a *Application) getClassInfo(c *gin.Context) {
	number, ok := a.parsePeriodParam(c)
	if !ok {
		return
	}

	info, err := a.db.GetClassInfo(c.Request.Context(), number)
	if err != nil {
		a.respondError(c, http.StatusInternalServerError, "internal", "failed to load class info")
		return
	}
	if info == nil {
		a.respondError(c, http.StatusNotFound, "not_found", "no class info for this period")
		return
	}

	c.JSON(http.StatusOK, classInfoEntry{
		PeriodNumber: number,
		Name:         info.Name,
		Teacher:      info.Teacher,
		Room:         info.Room,
	})
}

// putClassInfo stores class metadata for a period.
func (a *Application) putClassInfo(c *gin.Context) {
	number, ok := a.parsePeriodParam(c)
	if !ok {
		return
	}

	var info schedule.ClassInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		a.respondError(c, http.StatusBadRequest, "bad_request", "invalid class info document")
		return
	}
	if info.Name == "" {
		a.respondError(c, http.StatusUnprocessableEntity, "validation", "name is required")
		return
	}

	err := a.db.UpsertClassInfo(c.Request.Context(), number, info)
	if errors.Is(err, storage.ErrReservedPeriod) {
		a.respondError(c, http.StatusUnprocessableEntity, "validation", "lunch and access periods cannot be customized")
		return
	}
	if err != nil {
		a.respondError(c, http.StatusInternalServerError, "internal", "failed to save class info")
		return
	}
	a.metrics.RecordSettingsWrite("class_info")
	c.JSON(http.StatusOK, classInfoEntry{
		PeriodNumber: number,
		Name:         info.Name,
		Teacher:      info.Teacher,
		Room:         info.Room,
	})
}

// deleteClassInfo removes class metadata for a period.
func (a *Application) deleteClassInfo(c *gin.Context) {
	number, ok := a.parsePeriodParam(c)
	if !ok {
		return
	}

	err := a.db.DeleteClassInfo(c.Request.Context(), number)
	if errors.Is(err, storage.ErrReservedPeriod) {
		a.respondError(c, http.StatusUnprocessableEntity, "validation", "lunch and access periods cannot be customized")
		return
	}
	if err != nil {
		a.respondError(c, http.StatusInternalServerError, "internal", "failed to delete class info")
		return
	}
	a.metrics.RecordSettingsWrite("class_info")
	c.Status(http.StatusNoContent)
}

// getNotificationSettings returns the stored notification preferences.
func (a *Application) getNotificationSettings(c *gin.Context) {
	settings, err := a.db.LoadNotificationSettings(c.Request.Context())
	if err != nil {
		a.respondError(c, http.StatusInternalServerError, "internal", "failed to load notification settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// putNotificationSettings replaces the stored notification preferences.
func (a *Application) putNotificationSettings(c *gin.Context) {
	var settings prefs.Notifications
	if err := c.ShouldBindJSON(&settings); err != nil {
		a.respondError(c, http.StatusBadRequest, "bad_request", "invalid notification settings document")
		return
	}
	if err := settings.Validate(); err != nil {
		a.respondError(c, http.StatusUnprocessableEntity, "validation", err.Error())
		return
	}
	if err := a.db.SaveNotificationSettings(c.Request.Context(), settings); err != nil {
		a.respondError(c, http.StatusInternalServerError, "internal", "failed to save notification settings")
		return
	}
	a.metrics.RecordSettingsWrite("notifications")
	c.JSON(http.StatusOK, settings)
}

// getNotificationPlan computes the upcoming notification schedule.
func (a *Application) getNotificationPlan(c *gin.Context) {
	from, ok := a.parseInstant(c, "from")
	if !ok {
		return
	}

	days := a.cfg.NotificationHorizonDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			a.respondError(c, http.StatusBadRequest, "bad_request", "days must be a positive integer")
			return
		}
		days = parsed
	}

	_, dp, err := a.effectiveDisplay(c.Request.Context())
	if err != nil {
		a.respondError(c, http.StatusInternalServerError, "internal", "failed to load preferences")
		return
	}
	settings, err := a.db.LoadNotificationSettings(c.Request.Context())
	if err != nil {
		a.respondError(c, http.StatusInternalServerError, "internal", "failed to load notification settings")
		return
	}

	plan := a.planner.Plan(from, dp, settings, days)

	counts := make(map[string]int)
	for _, n := range plan {
		counts[n.Category]++
	}
	a.metrics.RecordNotificationPlan(counts)

	if plan == nil {
		plan = []notify.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{
		"generatedAt":   from.Format(time.RFC3339),
		"horizonDays":   days,
		"enabled":       settings.Enabled,
		"notifications": plan,
	})
}

// getWidget returns the latest widget snapshot, building one on demand
// when no background refresh has run yet.
func (a *Application) getWidget(c *gin.Context) {
	data, err := a.db.LoadWidgetSnapshot(c.Request.Context())
	if err != nil {
		a.respondError(c, http.StatusInternalServerError, "internal", "failed to load widget snapshot")
		return
	}

	if data == nil {
		record, err := a.buildSnapshot(c.Request.Context(), time.Now().In(a.location))
		if err != nil {
			a.respondError(c, http.StatusInternalServerError, "internal", "failed to build widget snapshot")
			return
		}
		data, err = snapshot.Encode(record)
		if err != nil {
			a.respondError(c, http.StatusInternalServerError, "internal", "failed to encode widget snapshot")
			return
		}
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// exportSettings serializes all user settings as a portable document.
func (a *Application) exportSettings(c *gin.Context) {
	display, _, err := a.effectiveDisplay(c.Request.Context())
	if err != nil {
		a.respondError(c, http.StatusInternalServerError, "internal", "failed to load preferences")
		return
	}
	settings, err := a.db.LoadNotificationSettings(c.Request.Context())
	if err != nil {
		a.respondError(c, http.StatusInternalServerError, "internal", "failed to load notification settings")
		return
	}

	doc := prefs.Document{
		Version:       prefs.DocumentVersion,
		Display:       display,
		Notifications: settings,
	}
	data, err := prefs.Export(doc)
	if err != nil {
		a.metrics.RecordSettingsTransfer("export", "error")
		a.respondError(c, http.StatusInternalServerError, "internal", "failed to export settings")
		return
	}

	a.metrics.RecordSettingsTransfer("export", "success")
	c.Header("Content-Disposition", `attachment; filename="bellschedule-settings.json"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// importSettings restores user settings from an exported document.
// Both current and legacy document formats are accepted.
func (a *Application) importSettings(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		a.metrics.RecordSettingsTransfer("import", "error")
		a.respondError(c, http.StatusBadRequest, "bad_request", "failed to read request body")
		return
	}

	doc, err := prefs.Import(body)
	if err != nil {
		a.metrics.RecordSettingsTransfer("import", "error")
		a.respondError(c, http.StatusUnprocessableEntity, "validation", err.Error())
		return
	}

	ctx := c.Request.Context()

	// Class metadata moves to the class_info table; the preferences
	// document stays free of per-period entries.
	classInfo := doc.Display.CustomClassInfo
	doc.Display.CustomClassInfo = nil

	if err := a.db.SaveDisplaySettings(ctx, doc.Display); err != nil {
		a.metrics.RecordSettingsTransfer("import", "error")
		a.respondError(c, http.StatusInternalServerError, "internal", "failed to save preferences")
		return
	}
	if err := a.db.SaveNotificationSettings(ctx, doc.Notifications); err != nil {
		a.metrics.RecordSettingsTransfer("import", "error")
		a.respondError(c, http.StatusInternalServerError, "internal", "failed to save notification settings")
		return
	}
	for number, info := range classInfo {
		if err := a.db.UpsertClassInfo(ctx, number, info); err != nil {
			a.logger.WithError(err).WithField("period_number", number).Warn("Skipped class info entry during import")
		}
	}

	a.metrics.RecordSettingsTransfer("import", "success")
	c.JSON(http.StatusOK, gin.H{
		"imported":         true,
		"classInfoEntries": len(classInfo),
	})
}
