package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
// Note: WAL mode is configured in db.go.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if err := createSettingsTable(ctx, db); err != nil {
		return err
	}

	if err := createClassInfoTable(ctx, db); err != nil {
		return err
	}

	return createWidgetSnapshotTable(ctx, db)
}

// createSettingsTable creates the key/value settings table. Values are
// JSON documents keyed by settings section (display, notifications).
func createSettingsTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create settings table: %w", err)
	}

	return nil
}

// createClassInfoTable creates the per-period class metadata table.
// Reserved periods (lunch, access) are never stored here.
func createClassInfoTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS class_info (
		period_number INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		teacher TEXT,
		room TEXT,
		updated_at INTEGER NOT NULL
	);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create class_info table: %w", err)
	}

	return nil
}

// createWidgetSnapshotTable creates the single-row table holding the
// most recent widget data record.
func createWidgetSnapshotTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS widget_snapshot (
		id INTEGER PRIMARY KEY CHECK(id = 1),
		data TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create widget_snapshot table: %w", err)
	}

	return nil
}
