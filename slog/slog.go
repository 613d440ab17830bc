// Package slog provides logging decorators for seoentity services.
// Each decorator logs one line per call and delegates to the wrapped value.
package slog
