package app

import (
	"context"
	"time"

	"github.com/ehsprogramming/bellschedule-go/internal/ctxutil"
	"github.com/ehsprogramming/bellschedule-go/internal/schedule"
	"github.com/ehsprogramming/bellschedule-go/internal/snapshot"
)

// buildSnapshot evaluates the current schedule state and renders it as
// widget data using the effective display preferences.
func (a *Application) buildSnapshot(ctx context.Context, now time.Time) (snapshot.WidgetData, error) {
	_, dp, err := a.effectiveDisplay(ctx)
	if err != nil {
		return snapshot.WidgetData{}, err
	}

	st := a.calc.Status(now, dp)
	resolve := func(p schedule.Period) schedule.ClassInfo {
		return a.calc.ClassInfo(p, dp)
	}
	return snapshot.Build(st, resolve, now), nil
}

// refreshSnapshot rebuilds the widget snapshot and persists it.
func (a *Application) refreshSnapshot(ctx context.Context) {
	start := time.Now()

	record, err := a.buildSnapshot(ctx, time.Now().In(a.location))
	if err != nil {
		a.metrics.RecordSnapshotRefresh("error", time.Since(start).Seconds())
		a.logger.WithError(err).Error("Failed to build widget snapshot")
		return
	}

	data, err := snapshot.Encode(record)
	if err != nil {
		a.metrics.RecordSnapshotRefresh("error", time.Since(start).Seconds())
		a.logger.WithError(err).Error("Failed to encode widget snapshot")
		return
	}

	if err := a.db.SaveWidgetSnapshot(ctx, data); err != nil {
		a.metrics.RecordSnapshotRefresh("error", time.Since(start).Seconds())
		a.logger.WithError(err).Error("Failed to save widget snapshot")
		return
	}

	a.metrics.RecordSnapshotRefresh("success", time.Since(start).Seconds())
	a.logger.WithField("status_label", record.StatusLabel).Debug("Refreshed widget snapshot")
}

// snapshotRefreshLoop keeps the stored widget snapshot current until the
// context is cancelled. It refreshes once immediately so the widget
// endpoint has data right after startup.
func (a *Application) snapshotRefreshLoop(ctx context.Context) {
	ctx = ctxutil.WithJob(ctx, "snapshot-refresh")

	a.refreshSnapshot(ctx)

	ticker := time.NewTicker(a.cfg.SnapshotRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Snapshot refresh loop stopped")
			return
		case <-ticker.C:
			a.refreshSnapshot(ctx)
		}
	}
}
