package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ehsprogramming/bellschedule-go/internal/prefs"
	"github.com/ehsprogramming/bellschedule-go/internal/schedule"
)

// ErrReservedPeriod is returned when a caller tries to store class
// metadata for the lunch or access period.
var ErrReservedPeriod = errors.New("storage: period metadata is fixed")

// Settings section keys for the settings table.
const (
	settingsKeyDisplay       = "display"
	settingsKeyNotifications = "notifications"
)

func (db *DB) saveSetting(ctx context.Context, key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s settings: %w", key, err)
	}

	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	start := time.Now()
	_, err = db.conn.ExecContext(ctx, query, key, string(encoded), time.Now().Unix())
	if err != nil {
		slog.ErrorContext(ctx, "failed to save settings",
			"key", key,
			"error", err)
		return fmt.Errorf("failed to save %s settings: %w", key, err)
	}

	// Warn on slow queries (>100ms)
	if duration := time.Since(start); duration > 100*time.Millisecond {
		slog.WarnContext(ctx, "slow database operation",
			"operation", "saveSetting",
			"duration_ms", duration.Milliseconds(),
			"key", key)
	}
	return nil
}

// loadSetting decodes the stored JSON for key into dst. Returns false
// when no row exists so callers can fall back to defaults.
func (db *DB) loadSetting(ctx context.Context, key string, dst any) (bool, error) {
	query := `SELECT value FROM settings WHERE key = ?`

	var encoded string
	err := db.conn.QueryRowContext(ctx, query, key).Scan(&encoded)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to query settings",
			"key", key,
			"error", err)
		return false, fmt.Errorf("query %s settings: %w", key, err)
	}

	if err := json.Unmarshal([]byte(encoded), dst); err != nil {
		return false, fmt.Errorf("decode %s settings: %w", key, err)
	}
	return true, nil
}

// SaveDisplaySettings persists display preferences.
func (db *DB) SaveDisplaySettings(ctx context.Context, display prefs.Display) error {
	return db.saveSetting(ctx, settingsKeyDisplay, display)
}

// LoadDisplaySettings retrieves display preferences, falling back to
// defaults when none have been saved.
func (db *DB) LoadDisplaySettings(ctx context.Context) (prefs.Display, error) {
	display := prefs.DefaultDisplay()
	if _, err := db.loadSetting(ctx, settingsKeyDisplay, &display); err != nil {
		return prefs.DefaultDisplay(), err
	}
	return display, nil
}

// SaveNotificationSettings persists notification preferences.
func (db *DB) SaveNotificationSettings(ctx context.Context, settings prefs.Notifications) error {
	return db.saveSetting(ctx, settingsKeyNotifications, settings)
}

// LoadNotificationSettings retrieves notification preferences, falling
// back to defaults when none have been saved.
func (db *DB) LoadNotificationSettings(ctx context.Context) (prefs.Notifications, error) {
	settings := prefs.DefaultNotifications()
	if _, err := db.loadSetting(ctx, settingsKeyNotifications, &settings); err != nil {
		return prefs.DefaultNotifications(), err
	}
	return settings, nil
}

// UpsertClassInfo inserts or updates class metadata for a period.
func (db *DB) UpsertClassInfo(ctx context.Context, periodNumber int, info schedule.ClassInfo) error {
	if schedule.IsReservedPeriod(periodNumber) {
		return ErrReservedPeriod
	}

	query := `
		INSERT INTO class_info (period_number, name, teacher, room, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(period_number) DO UPDATE SET
			name = excluded.name,
			teacher = excluded.teacher,
			room = excluded.room,
			updated_at = excluded.updated_at
	`
	start := time.Now()
	_, err := db.conn.ExecContext(ctx, query, periodNumber, info.Name, info.Teacher, info.Room, time.Now().Unix())
	if err != nil {
		slog.ErrorContext(ctx, "failed to save class info",
			"period_number", periodNumber,
			"error", err)
		return fmt.Errorf("failed to save class info: %w", err)
	}

	if duration := time.Since(start); duration > 100*time.Millisecond {
		slog.WarnContext(ctx, "slow database operation",
			"operation", "UpsertClassInfo",
			"duration_ms", duration.Milliseconds(),
			"period_number", periodNumber)
	}
	return nil
}

// DeleteClassInfo removes class metadata for a period. Deleting a
// period with no stored metadata is not an error.
func (db *DB) DeleteClassInfo(ctx context.Context, periodNumber int) error {
	if schedule.IsReservedPeriod(periodNumber) {
		return ErrReservedPeriod
	}

	query := `DELETE FROM class_info WHERE period_number = ?`
	if _, err := db.conn.ExecContext(ctx, query, periodNumber); err != nil {
		slog.ErrorContext(ctx, "failed to delete class info",
			"period_number", periodNumber,
			"error", err)
		return fmt.Errorf("failed to delete class info: %w", err)
	}
	return nil
}

// GetClassInfo retrieves class metadata for a period.
// Returns nil when no metadata is stored for the period.
func (db *DB) GetClassInfo(ctx context.Context, periodNumber int) (*schedule.ClassInfo, error) {
	query := `SELECT name, teacher, room FROM class_info WHERE period_number = ?`

	var info schedule.ClassInfo
	err := db.conn.QueryRowContext(ctx, query, periodNumber).Scan(&info.Name, &info.Teacher, &info.Room)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to query class info",
			"period_number", periodNumber,
			"error", err)
		return nil, fmt.Errorf("query class info: %w", err)
	}
	return &info, nil
}

// ListClassInfo retrieves all stored class metadata keyed by period
// number, ordered by period number.
func (db *DB) ListClassInfo(ctx context.Context) (map[int]schedule.ClassInfo, error) {
	query := `SELECT period_number, name, teacher, room FROM class_info ORDER BY period_number`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list class info", "error", err)
		return nil, fmt.Errorf("list class info: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[int]schedule.ClassInfo)
	for rows.Next() {
		var number int
		var info schedule.ClassInfo
		if err := rows.Scan(&number, &info.Name, &info.Teacher, &info.Room); err != nil {
			return nil, fmt.Errorf("scan class info: %w", err)
		}
		result[number] = info
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate class info: %w", err)
	}
	return result, nil
}

// ClassInfoPeriods returns the period numbers with stored metadata in
// ascending order.
func (db *DB) ClassInfoPeriods(ctx context.Context) ([]int, error) {
	infos, err := db.ListClassInfo(ctx)
	if err != nil {
		return nil, err
	}
	numbers := make([]int, 0, len(infos))
	for number := range infos {
		numbers = append(numbers, number)
	}
	sort.Ints(numbers)
	return numbers, nil
}

// SaveWidgetSnapshot stores the encoded widget record, replacing any
// previous snapshot.
func (db *DB) SaveWidgetSnapshot(ctx context.Context, data []byte) error {
	query := `
		INSERT INTO widget_snapshot (id, data, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`
	start := time.Now()
	_, err := db.conn.ExecContext(ctx, query, string(data), time.Now().Unix())
	if err != nil {
		slog.ErrorContext(ctx, "failed to save widget snapshot", "error", err)
		return fmt.Errorf("failed to save widget snapshot: %w", err)
	}

	if duration := time.Since(start); duration > 100*time.Millisecond {
		slog.WarnContext(ctx, "slow database operation",
			"operation", "SaveWidgetSnapshot",
			"duration_ms", duration.Milliseconds())
	}
	return nil
}

// LoadWidgetSnapshot retrieves the stored widget record.
// Returns nil when no snapshot has been saved yet.
func (db *DB) LoadWidgetSnapshot(ctx context.Context) ([]byte, error) {
	query := `SELECT data FROM widget_snapshot WHERE id = 1`

	var data string
	err := db.conn.QueryRowContext(ctx, query).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to query widget snapshot", "error", err)
		return nil, fmt.Errorf("query widget snapshot: %w", err)
	}
	return []byte(data), nil
}
