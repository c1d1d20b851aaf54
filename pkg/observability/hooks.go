// Package observability provides hooks for metrics, tracing and logging.
//
// Libraries emit events through the registered hooks; main registers an
// implementation at startup. The defaults are no-ops, so nothing here
// requires an observability backend.
//
//	observability.SetSubmitHooks(observability.NewLogHooks(logger))
//
//	observability.Submit().OnExportStart(ctx, region)
//	// ... render ...
//	observability.Submit().OnExportComplete(ctx, region, len(data), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// SubmitHooks receives events from print file export and product submission.
type SubmitHooks interface {
	OnExportStart(ctx context.Context, region string)
	OnExportComplete(ctx context.Context, region string, size int, duration time.Duration, err error)

	OnMockupComplete(ctx context.Context, color string, duration time.Duration, err error)

	OnSubmitComplete(ctx context.Context, mode string, variants int, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from outgoing API calls.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError records a transport failure (no response received).
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopSubmitHooks is a no-op implementation of SubmitHooks.
type NoopSubmitHooks struct{}

func (NoopSubmitHooks) OnExportStart(context.Context, string)                                {}
func (NoopSubmitHooks) OnExportComplete(context.Context, string, int, time.Duration, error) {}
func (NoopSubmitHooks) OnMockupComplete(context.Context, string, time.Duration, error)      {}
func (NoopSubmitHooks) OnSubmitComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

var (
	submitHooks SubmitHooks = NoopSubmitHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetSubmitHooks registers submit hooks. Call once at startup.
func SetSubmitHooks(h SubmitHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		submitHooks = h
	}
}

// SetCacheHooks registers cache hooks. Call once at startup.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers HTTP hooks. Call once at startup.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Submit returns the registered submit hooks.
func Submit() SubmitHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return submitHooks
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
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	submitHooks = NoopSubmitHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
