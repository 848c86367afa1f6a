// Package observability provides hooks for metrics and tracing.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about correspondence runs and cache
// operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the core packages stay
// free of observability framework imports and different backends
// (OpenTelemetry, Prometheus, DataDog, etc.) can be plugged in.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetRunHooks(&myRunHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Run().OnZoneStart(ctx, zoneID)
//	// ... compute overlay ...
//	observability.Run().OnZoneComplete(ctx, zoneID, entries, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// RunHooks receives events from the correspondence pipeline.
type RunHooks interface {
	// Run lifecycle events
	OnRunStart(ctx context.Context, runID string, sourceZones, targetZones int)
	OnRunComplete(ctx context.Context, runID string, entries, skipped int, duration time.Duration, err error)

	// Per-zone overlay events
	OnZoneStart(ctx context.Context, zoneID string)
	OnZoneComplete(ctx context.Context, zoneID string, entries int, duration time.Duration, err error)
}

// CacheHooks receives events from result cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, backend string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, backend string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, backend string, size int)
}

// NoopRunHooks is a no-op implementation of RunHooks.
type NoopRunHooks struct{}

func (NoopRunHooks) OnRunStart(context.Context, string, int, int)                          {}
func (NoopRunHooks) OnRunComplete(context.Context, string, int, int, time.Duration, error) {}
func (NoopRunHooks) OnZoneStart(context.Context, string)                                   {}
func (NoopRunHooks) OnZoneComplete(context.Context, string, int, time.Duration, error)     {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

var (
	runHooks   RunHooks   = NoopRunHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetRunHooks registers custom run hooks.
// This should be called once at application startup before any runs.
func SetRunHooks(h RunHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		runHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Run returns the registered run hooks.
func Run() RunHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return runHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	runHooks = NoopRunHooks{}
	cacheHooks = NoopCacheHooks{}
}
