// Package meta carries request-scoped metadata through context.
package meta

import "context"

// ContextKey is a type for keys used in context values for metadata.
type ContextKey string

const (
	// TraceID represents a unique identifier for tracing requests across services.
	TraceID ContextKey = "trace_id"

	// RequestUserID identifies the user making the request.
	RequestUserID ContextKey = "request_user_id"

	// IPAddress contains the client's IP address.
	IPAddress ContextKey = "ip_address"

	// UserAgent contains the user agent string from the request.
	UserAgent ContextKey = "user_agent"

	// Referer contains the address of the previous web page from which a link was followed.
	Referer ContextKey = "referer"

	// ServiceNameKey identifies the name of current running service.
	ServiceNameKey ContextKey = "service_name"

	// ServiceVersionKey indicates the version of the service.
	ServiceVersionKey ContextKey = "service_version"
)

// allKeys lists every key InjectMetaToContext may set.
//
//nolint:gochecknoglobals // static key registry
var allKeys = []ContextKey{
	TraceID,
	RequestUserID,
	IPAddress,
	UserAgent,
	Referer,
	ServiceNameKey,
	ServiceVersionKey,
}

// InjectMetaToContext adds metadata from the provided map to the context.
// Empty values are skipped. Returns a new context with the added values.
func InjectMetaToContext(ctx context.Context, data map[ContextKey]string) context.Context {
	for k, v := range data {
		if v != "" {
			ctx = context.WithValue(ctx, k, v) //nolint:fatcontext // finite number of keys
		}
	}
	return ctx
}

// ExtractMetaFromContext collects all known metadata keys from the context.
// Only non-empty string values are included in the returned map.
func ExtractMetaFromContext(ctx context.Context) map[ContextKey]string {
	data := make(map[ContextKey]string)
	for _, k := range allKeys {
		if v, ok := ctx.Value(k).(string); ok && v != "" {
			data[k] = v
		}
	}
	return data
}

// Find returns the value for a single metadata key, or "" when absent.
func Find(ctx context.Context, key ContextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
