package app

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ehsprogramming/bellschedule-go/internal/ctxutil"
	"github.com/ehsprogramming/bellschedule-go/internal/logger"
	"github.com/ehsprogramming/bellschedule-go/internal/metrics"
)

// securityHeadersMiddleware adds security headers to responses.
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'")
		c.Header("X-Permitted-Cross-Domain-Policies", "none")
		c.Next()
	}
}

// requestIDMiddleware attaches a request ID to the request context for
// log correlation, honoring an inbound X-Request-Id when present.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = c.GetHeader("X-Request-ID")
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := ctxutil.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-Id", requestID)

		c.Next()
	}
}

// writeRateLimitMiddleware throttles mutating requests per client IP.
// Reads pass through untouched.
func (a *Application) writeRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if !a.writeLimiter.Allow(c.ClientIP()) {
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			a.metrics.RecordHTTPError("rate_limited", route)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}

		c.Next()
	}
}

// loggingMiddleware logs HTTP requests with status-based log levels
// (5xx=Error, 4xx=Warn, 404=Debug, 3xx/2xx=Debug) and records request
// metrics by route.
func loggingMiddleware(log *logger.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if m != nil {
			m.RecordHTTPRequest(route, strconv.Itoa(status), duration.Seconds())
		}

		entry := log.WithField("http_method", method).
			WithField("http_path", path).
			WithField("http_status", status).
			WithField("duration_ms", duration.Milliseconds()).
			WithField("client_ip", c.ClientIP())

		if requestID, ok := ctxutil.GetRequestID(c.Request.Context()); ok {
			entry = entry.WithRequestID(requestID)
		}

		if status >= 500 {
			entry.Error("HTTP request failed")
		} else if status >= 400 && status != 404 {
			entry.Warn("HTTP request rejected")
		} else if status == 404 {
			entry.Debug("HTTP request not found")
		} else {
			entry.Debug("HTTP request completed")
		}
	}
}
