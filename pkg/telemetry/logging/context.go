package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// BuilderIDKey is the context key for the builder that owns a call.
	BuilderIDKey contextKey = "builder_id"

	// HostKey is the context key for the host a call is made against.
	HostKey contextKey = "host"
)

// WithBuilderID adds a builder ID to the context.
func WithBuilderID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, BuilderIDKey, id)
}

// GetBuilderID retrieves the builder ID from the context.
func GetBuilderID(ctx context.Context) string {
	if id, ok := ctx.Value(BuilderIDKey).(string); ok {
		return id
	}
	return ""
}

// WithHost adds a host to the context.
func WithHost(ctx context.Context, host string) context.Context {
	return context.WithValue(ctx, HostKey, host)
}

// GetHost retrieves the host from the context.
func GetHost(ctx context.Context) string {
	if host, ok := ctx.Value(HostKey).(string); ok {
		return host
	}
	return ""
}

// extractContextFields returns the context's fields as key-value pairs.
func extractContextFields(ctx context.Context) []any {
	var fields []any
	if id := GetBuilderID(ctx); id != "" {
		fields = append(fields, string(BuilderIDKey), id)
	}
	if host := GetHost(ctx); host != "" {
		fields = append(fields, string(HostKey), host)
	}
	return fields
}
