// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup
// to receive events about fitting passes, cache operations, and API calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Libraries never import a metrics backend directly; [Prometheus] is one
// implementation that main packages may register.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    p := observability.NewPrometheus(nil, "overflow")
//	    observability.SetFitHooks(p)
//	    observability.SetCacheHooks(p)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Fit().OnFit(observability.FitEvent{Shown: 2, Hidden: 1})
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Fit Hooks
// =============================================================================

// FitEvent describes one completed fitting pass.
type FitEvent struct {
	Capacity float64       // Available capacity after padding
	Extent   float64       // Extent of the visible run when the pass finished
	Shown    int           // Items moved from hidden to visible
	Hidden   int           // Items moved from visible to hidden
	Visible  int           // Visible item count after the pass
	Overflow int           // Hidden item count after the pass
	Changed  bool          // Whether an update notification was emitted
	Duration time.Duration // Wall time of the pass
}

// FitHooks receives events from the overflow engine.
//
// The engine is synchronous and has no request context, so events carry no
// context.Context.
type FitHooks interface {
	OnFit(event FitEvent)
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
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the fitting service.
type HTTPHooks interface {
	// OnResponse records a served request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopFitHooks is a no-op implementation of FitHooks.
type NoopFitHooks struct{}

func (NoopFitHooks) OnFit(FitEvent) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	fitHooks   FitHooks   = NoopFitHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetFitHooks registers custom fit hooks.
// This should be called once at application startup before any engine is created.
func SetFitHooks(h FitHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		fitHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Fit returns the registered fit hooks.
func Fit() FitHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return fitHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	fitHooks = NoopFitHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
