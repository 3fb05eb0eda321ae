/*
Package log provides request-scoped logging, Context with logging metadata, and logging helper functions.
*/
package log

import (
	"context"
)

// unique type to prevent assignment.
type clogContextKeyType struct{}

// singleton value to identify our logging metadata in context
var clogContextKey = clogContextKeyType{}

// basic type to represent logging container. logging context is immutable after
// creation, so we don't have to worry about locking.
type metadata map[string]any

// Flat lists the metadata as keyvals, leaving out any keys in skip
func (m metadata) Flat(skip ...string) []any {
	out := []any{}
	for k, v := range m {
		if contains(skip, k) {
			continue
		}
		out = append(out, k, v)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, l := range list {
		if l == s {
			return true
		}
	}
	return false
}

// Return a new context, adding in the provided values to the logging metadata
func WithLogValues(ctx context.Context, args ...string) context.Context {
	oldMetadata, _ := ctx.Value(clogContextKey).(metadata)
	// No previous logging found, set up a new map
	if oldMetadata == nil {
		oldMetadata = metadata{}
	}
	var newMetadata = metadata{}
	for k, v := range oldMetadata {
		newMetadata[k] = v
	}
	for i := range args {
		if i%2 == 0 {
			continue
		}
		newMetadata[args[i-1]] = args[i]
	}
	return context.WithValue(ctx, clogContextKey, newMetadata)
}

// RequestID returns the request ID stored in the context's logging metadata, if any
func RequestID(ctx context.Context) string {
	meta, _ := ctx.Value(clogContextKey).(metadata)
	if meta == nil {
		return ""
	}
	requestID, _ := meta["request_id"].(string)
	return requestID
}

// LogCtx logs with the context's metadata. When a request ID is present the line also picks
// up everything added with AddContext for that request.
func LogCtx(ctx context.Context, message string, args ...any) {
	meta, _ := ctx.Value(clogContextKey).(metadata)
	requestID := RequestID(ctx)
	if requestID == "" {
		LogNoRequestID(message, append(meta.Flat(), args...)...)
		return
	}
	// the request logger already carries request_id
	Log(requestID, message, append(meta.Flat("request_id"), args...)...)
}

func LogCtxError(ctx context.Context, message string, err error, args ...any) {
	LogCtx(ctx, message, append([]any{"err", RedactLogs(err.Error(), " ")}, args...)...)
}
