package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ehsprogramming/bellschedule-go/internal/config"
	"github.com/ehsprogramming/bellschedule-go/internal/logger"
	"github.com/ehsprogramming/bellschedule-go/internal/metrics"
	"github.com/ehsprogramming/bellschedule-go/internal/notify"
	"github.com/ehsprogramming/bellschedule-go/internal/prefs"
	"github.com/ehsprogramming/bellschedule-go/internal/ratelimit"
	"github.com/ehsprogramming/bellschedule-go/internal/schedule"
	"github.com/ehsprogramming/bellschedule-go/internal/snapshot"
	"github.com/ehsprogramming/bellschedule-go/internal/storage"
)

// setupTestApp creates an Application with an in-memory database and the
// built-in schedule catalog, plus a router with all routes registered.
// Tests use UTC so clock anchors do not depend on the host timezone.
func setupTestApp(t *testing.T) (*Application, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.NewTestDB()
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	registry := prometheus.NewRegistry()
	calc := schedule.NewCalculator(schedule.Builtin())

	app := &Application{
		cfg: &config.Config{
			NotificationHorizonDays: 7,
			SnapshotRefreshInterval: time.Minute,
		},
		logger:   logger.NewWithWriter("error", io.Discard),
		db:       db,
		metrics:  metrics.New(registry),
		registry: registry,
		calc:     calc,
		planner:  notify.NewPlanner(calc),
		location: time.UTC,
		writeLimiter: ratelimit.NewPerKeyLimiter(ratelimit.PerKeyLimiterConfig{
			MaxTokens:     1000,
			RefillRate:    1000,
			CleanupPeriod: time.Minute,
		}),
	}
	t.Cleanup(app.writeLimiter.Stop)

	router := gin.New()
	app.registerRoutes(router)
	return app, router
}

func performRequest(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Failed to decode response body: %v\nbody: %s", err, w.Body.String())
	}
	return payload
}

func TestLivenessCheck(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	w := performRequest(router, http.MethodGet, "/livez", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if payload := decodeJSON(t, w); payload["status"] != "alive" {
		t.Errorf("Expected status alive, got %v", payload["status"])
	}
}

func TestReadinessCheck(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	w := performRequest(router, http.MethodGet, "/readyz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	payload := decodeJSON(t, w)
	if payload["status"] != "ready" {
		t.Errorf("Expected status ready, got %v", payload["status"])
	}
	if schedules, ok := payload["schedules"].(float64); !ok || schedules < 6 {
		t.Errorf("Expected at least 6 schedules, got %v", payload["schedules"])
	}
}

func TestGetStatusInClass(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	// Monday 2025-09-08, 08:45 falls inside period 1 (08:30 to 09:22).
	w := performRequest(router, http.MethodGet, "/api/v1/status?at=2025-09-08T08:45:00Z", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	payload := decodeJSON(t, w)
	if payload["kind"] != "in_class" {
		t.Fatalf("Expected kind in_class, got %v", payload["kind"])
	}
	if payload["isSchoolDay"] != true {
		t.Error("Expected isSchoolDay true")
	}
	if payload["scheduleType"] != "monday" {
		t.Errorf("Expected scheduleType monday, got %v", payload["scheduleType"])
	}

	current, ok := payload["currentPeriod"].(map[string]any)
	if !ok {
		t.Fatal("Expected currentPeriod object")
	}
	if current["number"] != float64(1) {
		t.Errorf("Expected period 1, got %v", current["number"])
	}
	if current["name"] != "Period 1" {
		t.Errorf("Expected name Period 1, got %v", current["name"])
	}
	if payload["timeRemainingSeconds"] != float64(37*60) {
		t.Errorf("Expected 2220 seconds remaining, got %v", payload["timeRemainingSeconds"])
	}
	if payload["countdown"] != "37:00" {
		t.Errorf("Expected countdown 37:00, got %v", payload["countdown"])
	}
}

func TestGetStatusPassingPeriod(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	// Monday 09:25 sits between period 1 and period 2 (starts 09:28).
	w := performRequest(router, http.MethodGet, "/api/v1/status?at=2025-09-08T09:25:00Z", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	payload := decodeJSON(t, w)
	if payload["kind"] != "passing_period" {
		t.Fatalf("Expected kind passing_period, got %v", payload["kind"])
	}
	next, ok := payload["nextPeriod"].(map[string]any)
	if !ok {
		t.Fatal("Expected nextPeriod object")
	}
	if next["number"] != float64(2) {
		t.Errorf("Expected next period 2, got %v", next["number"])
	}
	if payload["timeUntilNextSeconds"] != float64(3*60) {
		t.Errorf("Expected 180 seconds until next, got %v", payload["timeUntilNextSeconds"])
	}
}

func TestGetStatusWeekend(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	// Saturday 2025-09-06.
	w := performRequest(router, http.MethodGet, "/api/v1/status?at=2025-09-06T12:00:00Z", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	payload := decodeJSON(t, w)
	if payload["kind"] != "no_school" {
		t.Errorf("Expected kind no_school, got %v", payload["kind"])
	}
	if payload["isSchoolDay"] != false {
		t.Error("Expected isSchoolDay false")
	}
}

func TestGetStatusInvalidInstant(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	w := performRequest(router, http.MethodGet, "/api/v1/status?at=yesterday", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestGetScheduleByType(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	w := performRequest(router, http.MethodGet, "/api/v1/schedule?type=wednesday", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	payload := decodeJSON(t, w)
	if payload["type"] != "wednesday" {
		t.Errorf("Expected type wednesday, got %v", payload["type"])
	}
	periods, ok := payload["periods"].([]any)
	if !ok || len(periods) != 5 {
		t.Fatalf("Expected 5 periods on the late-start day, got %v", payload["periods"])
	}
	first := periods[0].(map[string]any)
	if first["number"] != float64(1) {
		t.Errorf("Expected first period 1, got %v", first["number"])
	}
}

func TestGetScheduleByDate(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	// 2025-09-06 is a Saturday, which maps to the Monday schedule.
	w := performRequest(router, http.MethodGet, "/api/v1/schedule?date=2025-09-06", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if payload := decodeJSON(t, w); payload["type"] != "monday" {
		t.Errorf("Expected weekend to fall back to monday, got %v", payload["type"])
	}
}

func TestGetUpcomingPeriods(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	// Monday 15:28 sits after period 6; only period 7 is still ahead.
	w := performRequest(router, http.MethodGet, "/api/v1/schedule/upcoming?at=2025-09-08T15:28:00Z", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	payload := decodeJSON(t, w)
	periods, ok := payload["periods"].([]any)
	if !ok || len(periods) != 1 {
		t.Fatalf("Expected 1 upcoming period, got %v", payload["periods"])
	}
	if first := periods[0].(map[string]any); first["number"] != float64(7) {
		t.Errorf("Expected period 7, got %v", first["number"])
	}

	// Weekends have no upcoming periods.
	w = performRequest(router, http.MethodGet, "/api/v1/schedule/upcoming?at=2025-09-06T09:00:00Z", nil)
	if periods, ok := decodeJSON(t, w)["periods"].([]any); !ok || len(periods) != 0 {
		t.Errorf("Expected empty upcoming list on a weekend, got %v", periods)
	}
}

func TestRootRedirect(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	w := performRequest(router, http.MethodGet, "/", nil)
	if w.Code != http.StatusMovedPermanently {
		t.Errorf("Expected status 301, got %d", w.Code)
	}
}

func TestGetScheduleInvalidParams(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	for _, path := range []string{
		"/api/v1/schedule?type=saturday",
		"/api/v1/schedule?date=next-week",
	} {
		if w := performRequest(router, http.MethodGet, path, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", path, w.Code)
		}
	}
}

func TestGetScheduleHonorsPeriodVisibility(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	body, _ := json.Marshal(prefs.Display{ShowPeriod0: false, ShowPeriod7: true})
	if w := performRequest(router, http.MethodPut, "/api/v1/preferences", body); w.Code != http.StatusOK {
		t.Fatalf("Failed to save preferences: %d", w.Code)
	}

	w := performRequest(router, http.MethodGet, "/api/v1/schedule?type=monday", nil)
	payload := decodeJSON(t, w)
	periods := payload["periods"].([]any)
	first := periods[0].(map[string]any)
	if first["number"] == float64(0) {
		t.Error("Expected period 0 to be hidden")
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	w := performRequest(router, http.MethodGet, "/api/v1/preferences", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if payload := decodeJSON(t, w); payload["showPeriod0"] != true {
		t.Error("Expected default showPeriod0 true")
	}

	body, _ := json.Marshal(prefs.Display{ShowPeriod0: false, ShowPeriod7: false, Use24HourFormat: true})
	if w := performRequest(router, http.MethodPut, "/api/v1/preferences", body); w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 on save, got %d", w.Code)
	}

	w = performRequest(router, http.MethodGet, "/api/v1/preferences", nil)
	payload := decodeJSON(t, w)
	if payload["showPeriod0"] != false || payload["use24HourFormat"] != true {
		t.Errorf("Preferences did not round trip: %v", payload)
	}
}

func TestPutPreferencesRejectsReservedOverride(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	body := []byte(`{"showPeriod0":true,"showPeriod7":true,"customClassInfo":{"98":{"name":"Lunch Club"}}}`)
	if w := performRequest(router, http.MethodPut, "/api/v1/preferences", body); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", w.Code)
	}
}

func TestClassInfoLifecycle(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	body, _ := json.Marshal(schedule.ClassInfo{Name: "Chemistry", Teacher: "Nguyen", Room: "214"})
	w := performRequest(router, http.MethodPut, "/api/v1/classinfo/3", body)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	w = performRequest(router, http.MethodGet, "/api/v1/classinfo", nil)
	payload := decodeJSON(t, w)
	entries := payload["classInfo"].([]any)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	entry := entries[0].(map[string]any)
	if entry["periodNumber"] != float64(3) || entry["name"] != "Chemistry" || entry["room"] != "214" {
		t.Errorf("Unexpected entry: %v", entry)
	}

	w = performRequest(router, http.MethodGet, "/api/v1/classinfo/3", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for single lookup, got %d", w.Code)
	}
	if single := decodeJSON(t, w); single["teacher"] != "Nguyen" {
		t.Errorf("Unexpected single entry: %v", single)
	}
	if w := performRequest(router, http.MethodGet, "/api/v1/classinfo/5", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for missing period, got %d", w.Code)
	}

	// The stored name replaces the default in schedule responses.
	w = performRequest(router, http.MethodGet, "/api/v1/schedule?type=monday", nil)
	found := false
	for _, raw := range decodeJSON(t, w)["periods"].([]any) {
		p := raw.(map[string]any)
		if p["number"] == float64(3) {
			found = true
			if p["name"] != "Chemistry" || p["teacher"] != "Nguyen" {
				t.Errorf("Expected class metadata in schedule, got %v", p)
			}
		}
	}
	if !found {
		t.Fatal("Period 3 missing from schedule response")
	}

	if w := performRequest(router, http.MethodDelete, "/api/v1/classinfo/3", nil); w.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", w.Code)
	}
	w = performRequest(router, http.MethodGet, "/api/v1/classinfo", nil)
	if entries := decodeJSON(t, w)["classInfo"].([]any); len(entries) != 0 {
		t.Errorf("Expected no entries after delete, got %d", len(entries))
	}
}

func TestClassInfoRejectsReservedPeriods(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	body, _ := json.Marshal(schedule.ClassInfo{Name: "Study Hall"})
	for _, period := range []string{"98", "99"} {
		if w := performRequest(router, http.MethodPut, "/api/v1/classinfo/"+period, body); w.Code != http.StatusUnprocessableEntity {
			t.Errorf("period %s: expected status 422, got %d", period, w.Code)
		}
		if w := performRequest(router, http.MethodDelete, "/api/v1/classinfo/"+period, nil); w.Code != http.StatusUnprocessableEntity {
			t.Errorf("period %s: expected status 422 on delete, got %d", period, w.Code)
		}
	}
}

func TestClassInfoInvalidPeriodParam(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	body, _ := json.Marshal(schedule.ClassInfo{Name: "Biology"})
	if w := performRequest(router, http.MethodPut, "/api/v1/classinfo/third", body); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestClassInfoRequiresName(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	body, _ := json.Marshal(schedule.ClassInfo{Teacher: "Nguyen"})
	if w := performRequest(router, http.MethodPut, "/api/v1/classinfo/3", body); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", w.Code)
	}
}

func TestNotificationSettingsRoundTrip(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	w := performRequest(router, http.MethodGet, "/api/v1/notifications/settings", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	payload := decodeJSON(t, w)
	if payload["enabled"] != false || payload["minutesBeforeEnd"] != float64(2) {
		t.Errorf("Unexpected defaults: %v", payload)
	}

	body, _ := json.Marshal(prefs.Notifications{Enabled: true, MinutesBeforeEnd: 5, IncludePassingPeriods: true})
	if w := performRequest(router, http.MethodPut, "/api/v1/notifications/settings", body); w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 on save, got %d", w.Code)
	}

	w = performRequest(router, http.MethodGet, "/api/v1/notifications/settings", nil)
	payload = decodeJSON(t, w)
	if payload["enabled"] != true || payload["minutesBeforeEnd"] != float64(5) {
		t.Errorf("Settings did not round trip: %v", payload)
	}
}

func TestPutNotificationSettingsValidation(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	body, _ := json.Marshal(prefs.Notifications{Enabled: true, MinutesBeforeEnd: 120})
	if w := performRequest(router, http.MethodPut, "/api/v1/notifications/settings", body); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", w.Code)
	}
}

func TestGetNotificationPlan(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	body, _ := json.Marshal(prefs.Notifications{Enabled: true, MinutesBeforeEnd: 2})
	if w := performRequest(router, http.MethodPut, "/api/v1/notifications/settings", body); w.Code != http.StatusOK {
		t.Fatalf("Failed to save settings: %d", w.Code)
	}

	w := performRequest(router, http.MethodGet, "/api/v1/notifications/plan?from=2025-09-08T00:00:00Z&days=1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	payload := decodeJSON(t, w)
	if payload["horizonDays"] != float64(1) {
		t.Errorf("Expected horizonDays 1, got %v", payload["horizonDays"])
	}
	notifications, ok := payload["notifications"].([]any)
	if !ok || len(notifications) == 0 {
		t.Fatalf("Expected notifications for a Monday, got %v", payload["notifications"])
	}
	first := notifications[0].(map[string]any)
	if first["category"] != notify.CategoryClassEnding {
		t.Errorf("Expected category %s, got %v", notify.CategoryClassEnding, first["category"])
	}
}

func TestGetNotificationPlanDisabled(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	w := performRequest(router, http.MethodGet, "/api/v1/notifications/plan?from=2025-09-08T00:00:00Z", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	payload := decodeJSON(t, w)
	if payload["enabled"] != false {
		t.Error("Expected enabled false")
	}
	if notifications, ok := payload["notifications"].([]any); !ok || len(notifications) != 0 {
		t.Errorf("Expected empty plan when disabled, got %v", payload["notifications"])
	}
}

func TestGetNotificationPlanInvalidDays(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	for _, path := range []string{
		"/api/v1/notifications/plan?days=0",
		"/api/v1/notifications/plan?days=soon",
	} {
		if w := performRequest(router, http.MethodGet, path, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", path, w.Code)
		}
	}
}

func TestGetWidgetBuildsOnDemand(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	w := performRequest(router, http.MethodGet, "/api/v1/widget", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	record, err := snapshot.Decode(w.Body.Bytes())
	if err != nil {
		t.Fatalf("Failed to decode widget snapshot: %v", err)
	}
	if record.StatusLabel == "" {
		t.Error("Expected a status label")
	}
	if record.LastUpdated.IsZero() {
		t.Error("Expected lastUpdated to be set")
	}
}

func TestGetWidgetServesStoredSnapshot(t *testing.T) {
	t.Parallel()
	app, router := setupTestApp(t)

	app.refreshSnapshot(context.Background())

	w := performRequest(router, http.MethodGet, "/api/v1/widget", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if _, err := snapshot.Decode(w.Body.Bytes()); err != nil {
		t.Fatalf("Failed to decode stored snapshot: %v", err)
	}
}

func TestSettingsExportImport(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	body, _ := json.Marshal(prefs.Display{ShowPeriod0: false, ShowPeriod7: true, Use24HourFormat: true})
	if w := performRequest(router, http.MethodPut, "/api/v1/preferences", body); w.Code != http.StatusOK {
		t.Fatalf("Failed to save preferences: %d", w.Code)
	}
	body, _ = json.Marshal(schedule.ClassInfo{Name: "AP Physics", Room: "108"})
	if w := performRequest(router, http.MethodPut, "/api/v1/classinfo/4", body); w.Code != http.StatusOK {
		t.Fatalf("Failed to save class info: %d", w.Code)
	}

	w := performRequest(router, http.MethodGet, "/api/v1/settings/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 on export, got %d", w.Code)
	}
	exported := w.Body.Bytes()

	doc, err := prefs.Import(exported)
	if err != nil {
		t.Fatalf("Exported document failed to parse: %v", err)
	}
	if doc.Display.ShowPeriod0 || !doc.Display.Use24HourFormat {
		t.Errorf("Exported display settings wrong: %+v", doc.Display)
	}
	if doc.Display.CustomClassInfo[4].Name != "AP Physics" {
		t.Errorf("Expected class info in export, got %+v", doc.Display.CustomClassInfo)
	}

	// Restore into a fresh application.
	_, fresh := setupTestApp(t)
	w = performRequest(fresh, http.MethodPost, "/api/v1/settings/import", exported)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 on import, got %d: %s", w.Code, w.Body.String())
	}
	if payload := decodeJSON(t, w); payload["classInfoEntries"] != float64(1) {
		t.Errorf("Expected 1 class info entry imported, got %v", payload["classInfoEntries"])
	}

	w = performRequest(fresh, http.MethodGet, "/api/v1/classinfo", nil)
	entries := decodeJSON(t, w)["classInfo"].([]any)
	if len(entries) != 1 || entries[0].(map[string]any)["name"] != "AP Physics" {
		t.Errorf("Imported class info missing: %v", entries)
	}
	w = performRequest(fresh, http.MethodGet, "/api/v1/preferences", nil)
	if payload := decodeJSON(t, w); payload["use24HourFormat"] != true {
		t.Errorf("Imported preferences missing: %v", payload)
	}
}

func TestWriteRateLimit(t *testing.T) {
	t.Parallel()
	app, router := setupTestApp(t)

	// Swap in a drained limiter so the next write is rejected.
	app.writeLimiter.Stop()
	app.writeLimiter = ratelimit.NewPerKeyLimiter(ratelimit.PerKeyLimiterConfig{
		MaxTokens:     1,
		RefillRate:    0,
		CleanupPeriod: time.Minute,
	})
	t.Cleanup(app.writeLimiter.Stop)

	body, _ := json.Marshal(prefs.Display{ShowPeriod0: true, ShowPeriod7: true})
	if w := performRequest(router, http.MethodPut, "/api/v1/preferences", body); w.Code != http.StatusOK {
		t.Fatalf("Expected first write to pass, got %d", w.Code)
	}
	if w := performRequest(router, http.MethodPut, "/api/v1/preferences", body); w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", w.Code)
	}

	// Reads are never limited.
	if w := performRequest(router, http.MethodGet, "/api/v1/preferences", nil); w.Code != http.StatusOK {
		t.Errorf("Expected read to pass, got %d", w.Code)
	}
}

func TestImportRejectsMalformedDocument(t *testing.T) {
	t.Parallel()
	_, router := setupTestApp(t)

	w := performRequest(router, http.MethodPost, "/api/v1/settings/import", []byte(`{"version":999}`))
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", w.Code)
	}
}
