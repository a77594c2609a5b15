// Package ctxutil provides type-safe context value management.
// Uses private key types to prevent collisions.
package ctxutil

import (
	"context"
)

type contextKey string

const (
	requestIDKey contextKey = "ctxutil.requestID"
	jobKey       contextKey = "ctxutil.job"
)

// WithRequestID adds a request ID to the context for tracing.
// Request ID is generated per HTTP request for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
// Returns the request ID and true if found, empty string and false otherwise.
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	return requestID, ok
}

// WithJob tags the context with the name of a background job so log
// records emitted from job goroutines can be attributed.
func WithJob(ctx context.Context, job string) context.Context {
	return context.WithValue(ctx, jobKey, job)
}

// GetJob retrieves the background job name from the context.
// Returns the job name if found, empty string otherwise.
func GetJob(ctx context.Context) string {
	if v := ctx.Value(jobKey); v != nil {
		if job, ok := v.(string); ok && job != "" {
			return job
		}
	}
	return ""
}

// PreserveTracing creates a detached context that preserves tracing values.
// The new context is independent of the parent's cancellation and deadlines.
//
// Use for async operations that need tracing but must outlive the parent
// context, such as snapshot writes that continue after the HTTP response.
func PreserveTracing(ctx context.Context) context.Context {
	newCtx := context.Background()

	if requestID, ok := GetRequestID(ctx); ok && requestID != "" {
		newCtx = WithRequestID(newCtx, requestID)
	}
	if job := GetJob(ctx); job != "" {
		newCtx = WithJob(newCtx, job)
	}

	return newCtx
}
