package common

import (
	"context"
	"time"
)

// ContextKey represents a context key type
type ContextKey string

// Context keys
const (
	ContextKeySubject     ContextKey = "subject"
	ContextKeyOperationID ContextKey = "operation_id"
	ContextKeyPathParams  ContextKey = "path_params"
	ContextKeyStartTime   ContextKey = "start_time"
)

// WithSubject adds the authenticated caller to context
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, ContextKeySubject, subject)
}

// GetSubject extracts the authenticated caller from context
func GetSubject(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(ContextKeySubject).(string)
	return subject, ok
}

// WithOperationID adds the matched API operation to context
func WithOperationID(ctx context.Context, operationID string) context.Context {
	return context.WithValue(ctx, ContextKeyOperationID, operationID)
}

// GetOperationID extracts the matched API operation from context
func GetOperationID(ctx context.Context) (string, bool) {
	operationID, ok := ctx.Value(ContextKeyOperationID).(string)
	return operationID, ok
}

// WithPathParams adds the decoded path parameters to context
func WithPathParams(ctx context.Context, params map[string]string) context.Context {
	return context.WithValue(ctx, ContextKeyPathParams, params)
}

// GetPathParam extracts a single path parameter from context
func GetPathParam(ctx context.Context, name string) string {
	params, _ := ctx.Value(ContextKeyPathParams).(map[string]string)
	return params[name]
}

// WithStartTime adds start time to context
func WithStartTime(ctx context.Context, startTime time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyStartTime, startTime)
}

// GetElapsedTime calculates elapsed time from start time in context
func GetElapsedTime(ctx context.Context) time.Duration {
	if startTime, ok := ctx.Value(ContextKeyStartTime).(time.Time); ok {
		return time.Since(startTime)
	}
	return 0
}
