package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache holds live values keyed by string. Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value and whether the key was present
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value. A zero expiration uses the cache default.
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)

	Delete(ctx context.Context, key string)
	DeleteByPrefix(ctx context.Context, prefix string)
	Flush(ctx context.Context)
}

const (
	// PrefixReport maps a report id or short code to its *report.Record
	PrefixReport = "report:v1:"
	// PrefixAnalysisKey maps an idempotency key to the report id it produced
	PrefixAnalysisKey = "analysis_key:v1:"
)

// GenerateKey joins the params with colons after the prefix
func GenerateKey(prefix string, params ...interface{}) string {
	parts := make([]string, len(params)+1)
	parts[0] = prefix

	for i, param := range params {
		parts[i+1] = fmt.Sprintf("%v", param)
	}

	return strings.Join(parts, ":")
}

// ReportKey is the cache key for a report looked up by id or short code
func ReportKey(idOrShortCode string) string {
	return GenerateKey(PrefixReport, idOrShortCode)
}

// AnalysisKey is the cache key for an analyze request's idempotency key
func AnalysisKey(idempotencyKey string) string {
	return GenerateKey(PrefixAnalysisKey, idempotencyKey)
}

// GetAs returns the cached value for key when it is present and of type T
func GetAs[T any](ctx context.Context, c Cache, key string) (T, bool) {
	var zero T

	v, ok := c.Get(ctx, key)
	if !ok {
		return zero, false
	}

	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
