// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about flatten execution, cache operations, and result
// store operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetFlattenHooks(&myFlattenHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Flatten().OnFlattenStart(ctx, shape)
//	// ... flatten ...
//	observability.Flatten().OnFlattenComplete(ctx, shape, rowCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Flatten Hooks
// =============================================================================

// FlattenHooks receives events from the flatten pipeline.
type FlattenHooks interface {
	// Decode events
	OnDecodeStart(ctx context.Context, source string)
	OnDecodeComplete(ctx context.Context, source string, duration time.Duration, err error)

	// Flatten events. The shape is "directional", "bidirectional" or
	// "collection"; rowCount is the size of the resulting table.
	OnFlattenStart(ctx context.Context, shape string)
	OnFlattenComplete(ctx context.Context, shape string, rowCount int, duration time.Duration, err error)

	// Export events
	OnExportStart(ctx context.Context, format string)
	OnExportComplete(ctx context.Context, format string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from result store operations.
type StoreHooks interface {
	// OnSave records a stored flatten result.
	OnSave(ctx context.Context, id string, rowCount int, duration time.Duration, err error)

	// OnLoad records a result lookup.
	OnLoad(ctx context.Context, id string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopFlattenHooks is a no-op implementation of FlattenHooks.
type NoopFlattenHooks struct{}

func (NoopFlattenHooks) OnDecodeStart(context.Context, string)                               {}
func (NoopFlattenHooks) OnDecodeComplete(context.Context, string, time.Duration, error)      {}
func (NoopFlattenHooks) OnFlattenStart(context.Context, string)                              {}
func (NoopFlattenHooks) OnFlattenComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopFlattenHooks) OnExportStart(context.Context, string)                          {}
func (NoopFlattenHooks) OnExportComplete(context.Context, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnSave(context.Context, string, int, time.Duration, error) {}
func (NoopStoreHooks) OnLoad(context.Context, string, time.Duration, error)      {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	flattenHooks FlattenHooks = NoopFlattenHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	storeHooks   StoreHooks   = NoopStoreHooks{}
	hooksMu      sync.RWMutex
)

// SetFlattenHooks registers custom flatten hooks.
// This should be called once at application startup before any flatten operations.
func SetFlattenHooks(h FlattenHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		flattenHooks = h
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

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store operations.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Flatten returns the registered flatten hooks.
func Flatten() FlattenHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return flattenHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	flattenHooks = NoopFlattenHooks{}
	cacheHooks = NoopCacheHooks{}
	storeHooks = NoopStoreHooks{}
}
