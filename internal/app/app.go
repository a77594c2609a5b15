// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/ehsprogramming/bellschedule-go/internal/buildinfo"
	"github.com/ehsprogramming/bellschedule-go/internal/config"
	"github.com/ehsprogramming/bellschedule-go/internal/logger"
	"github.com/ehsprogramming/bellschedule-go/internal/metrics"
	"github.com/ehsprogramming/bellschedule-go/internal/notify"
	"github.com/ehsprogramming/bellschedule-go/internal/ratelimit"
	"github.com/ehsprogramming/bellschedule-go/internal/schedule"
	"github.com/ehsprogramming/bellschedule-go/internal/sentry"
	"github.com/ehsprogramming/bellschedule-go/internal/storage"
)

// HTTP server timeouts. Requests are local reads, so the write timeout
// mostly guards against stuck clients.
const (
	httpReadHeaderTimeout = 10 * time.Second
	httpReadTimeout       = 10 * time.Second
	httpWriteTimeout      = 30 * time.Second
	httpIdleTimeout       = 120 * time.Second

	readinessCheckTimeout = 5 * time.Second
)

// Settings writes are interactive and rare, so the per-client budget
// stays small.
const (
	writeLimitBurst         = 10.0
	writeLimitRefillRate    = 1.0
	writeLimitCleanupPeriod = 5 * time.Minute
)

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg          *config.Config
	logger       *logger.Logger
	db           *storage.DB
	metrics      *metrics.Metrics
	registry     *prometheus.Registry
	calc         *schedule.Calculator
	planner      *notify.Planner
	location     *time.Location
	writeLimiter *ratelimit.PerKeyLimiter
	server       *http.Server
	wg           sync.WaitGroup // Track background goroutines for graceful shutdown
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	var logOpts logger.Options
	if cfg.BetterStackEnabled {
		logOpts.BetterStackToken = cfg.BetterStackToken
		logOpts.BetterStackEndpoint = cfg.BetterStackEndpoint
	}
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logOpts)

	log = log.WithField("service", cfg.ServerName).WithField("instance_id", cfg.InstanceID)

	// Set as default logger to enable context value extraction (request ID,
	// job name) via ContextHandler in package-level slog.*Context() calls.
	slog.SetDefault(log.Logger)

	log.Info("Initializing application...")
	if buildinfo.Version != "" {
		log.WithField("version", buildinfo.Version).
			WithField("commit", buildinfo.Commit).
			WithField("build_date", buildinfo.BuildDate).
			Info("Build info")
	}
	if cfg.BetterStackEnabled {
		log.WithField("endpoint", cfg.BetterStackEndpoint).Info("Better Stack logging enabled")
	}

	if cfg.SentryEnabled {
		release := cfg.SentryRelease
		if release == "" {
			release = buildinfo.Version
		}
		if err := sentry.Initialize(sentry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			Release:          release,
			SampleRate:       cfg.SentrySampleRate,
			TracesSampleRate: cfg.SentryTracesSampleRate,
		}); err != nil {
			return nil, fmt.Errorf("sentry: %w", err)
		}
		log.WithField("environment", cfg.SentryEnvironment).Info("Sentry error tracking enabled")
	}

	catalog, err := loadCatalog(cfg, log)
	if err != nil {
		return nil, err
	}

	db, err := storage.New(ctx, cfg.SQLitePath())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	// Preload stored settings concurrently so a corrupt database fails
	// startup instead of the first request.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := db.LoadDisplaySettings(gctx)
		return err
	})
	g.Go(func() error {
		_, err := db.LoadNotificationSettings(gctx)
		return err
	})
	g.Go(func() error {
		_, err := db.ListClassInfo(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("settings preload: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	calc := schedule.NewCalculator(catalog)

	app := &Application{
		cfg:      cfg,
		logger:   log,
		db:       db,
		metrics:  m,
		registry: registry,
		calc:     calc,
		planner:  notify.NewPlanner(calc),
		location: cfg.Location(),
		writeLimiter: ratelimit.NewPerKeyLimiter(ratelimit.PerKeyLimiterConfig{
			MaxTokens:     writeLimitBurst,
			RefillRate:    writeLimitRefillRate,
			CleanupPeriod: writeLimitCleanupPeriod,
		}),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(securityHeadersMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log, m))
	if cfg.SentryEnabled {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	app.registerRoutes(router)

	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: httpReadHeaderTimeout,
		ReadTimeout:       httpReadTimeout,
		WriteTimeout:      httpWriteTimeout,
		IdleTimeout:       httpIdleTimeout,
	}

	log.WithField("timezone", app.location.String()).Info("Initialization complete")
	return app, nil
}

// loadCatalog resolves the bell schedule catalog, preferring the YAML
// override file when configured.
func loadCatalog(cfg *config.Config, log *logger.Logger) (*schedule.Catalog, error) {
	if cfg.ScheduleConfigPath != "" {
		catalog, err := schedule.LoadFile(cfg.ScheduleConfigPath)
		if err != nil {
			return nil, fmt.Errorf("schedule config: %w", err)
		}
		log.WithField("path", cfg.ScheduleConfigPath).
			WithField("periods", catalog.PeriodCount()).
			Info("Loaded schedule catalog from file")
		return catalog, nil
	}

	catalog := schedule.Builtin()
	log.WithField("schedules", catalog.Len()).Info("Using built-in schedule catalog")
	return catalog, nil
}

func (a *Application) registerRoutes(router *gin.Engine) {
	// Root endpoint - redirect to GitHub
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "https://github.com/ehsprogramming/bellschedule-go")
	})

	router.GET("/livez", a.livenessCheck)
	router.HEAD("/livez", a.livenessCheck)
	router.GET("/readyz", a.readinessCheck)
	router.HEAD("/readyz", a.readinessCheck)

	api := router.Group("/api/v1")
	api.Use(a.writeRateLimitMiddleware())
	{
		api.GET("/status", a.getStatus)
		api.GET("/schedule", a.getSchedule)
		api.GET("/schedule/upcoming", a.getUpcomingPeriods)

		api.GET("/preferences", a.getPreferences)
		api.PUT("/preferences", a.putPreferences)

		api.GET("/classinfo", a.listClassInfo)
		api.GET("/classinfo/:period", a.getClassInfo)
		api.PUT("/classinfo/:period", a.putClassInfo)
		api.DELETE("/classinfo/:period", a.deleteClassInfo)

		api.GET("/notifications/settings", a.getNotificationSettings)
		api.PUT("/notifications/settings", a.putNotificationSettings)
		api.GET("/notifications/plan", a.getNotificationPlan)

		api.GET("/widget", a.getWidget)

		api.GET("/settings/export", a.exportSettings)
		api.POST("/settings/import", a.importSettings)
	}

	router.GET("/metrics",
		metricsAuthMiddleware(a.cfg.MetricsAuthEnabled, a.cfg.MetricsUsername, a.cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (a *Application) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessCheckTimeout)
	defer cancel()

	if err := a.db.Ready(ctx); err != nil {
		a.logger.WithError(err).Warn("Readiness check failed: database unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"database":  "connected",
		"schedules": a.calc.Catalog().Len(),
		"timezone":  a.location.String(),
	})
}

// Run starts the HTTP server and background jobs, then blocks until a
// shutdown signal arrives.
//
// Graceful shutdown sequence:
//  1. Receive shutdown signal (SIGINT/SIGTERM)
//  2. Cancel context to stop background jobs
//  3. Wait for background jobs to complete
//  4. Close resources in order (HTTP server, Sentry, database, logger)
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.startBackgroundJobs(ctx)
	a.startHTTPServer()

	sig := a.waitForShutdownSignal()
	a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")

	cancel()

	a.logger.Info("Waiting for background jobs to finish...")
	start := time.Now()
	a.wg.Wait()
	a.logger.WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("All background jobs completed")

	return a.shutdown()
}

// startBackgroundJobs starts all background goroutines tracked by WaitGroup.
func (a *Application) startBackgroundJobs(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.snapshotRefreshLoop(ctx)
	}()
}

// startHTTPServer starts the HTTP server in a goroutine.
func (a *Application) startHTTPServer() {
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.WithError(err).Error("HTTP server error")
		}
	}()
}

// waitForShutdownSignal blocks until SIGINT/SIGTERM is received.
func (a *Application) waitForShutdownSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}

// shutdown performs graceful shutdown of the HTTP server and resources.
// Call only after background jobs have completed.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	if a.cfg.SentryEnabled {
		if !sentry.Flush(2 * time.Second) {
			a.logger.Warn("Sentry flush timed out")
		}
	}

	a.logger.Info("Closing resources...")
	a.writeLimiter.Stop()
	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "database").Error("Component close error")
	}

	if err := a.logger.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Warn("Logger shutdown timed out")
	}

	a.logger.Info("Shutdown complete")
	return nil
}
