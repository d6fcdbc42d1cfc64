// Package observability lets hosts watch photowall at work without the
// libraries depending on any metrics or tracing backend.
//
// # Hooks
//
// Each library reports through one hook interface:
//
//   - [LayoutHooks]: the gallery engine (recomputes, zoom steps)
//   - [PipelineHooks]: scans and renders run by the pipeline
//   - [CacheHooks]: hits, misses and writes of an observed cache
//   - [ServerHooks]: requests served by the HTTP host
//
// Every interface has a no-op implementation, which is what libraries get
// until a host installs something else. [LogHooks] logs layout, pipeline
// and cache events through a charmbracelet logger; the CLI installs it with
// --verbose.
//
// # Usage
//
//	observability.Install(observability.NewLogHooks(logger))
//
//	// in a library
//	observability.Pipeline().OnScanStart(ctx, root)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from the gallery layout engine. The engine is
// driven from a single goroutine and has no context, so these hooks take none.
type LayoutHooks interface {
	// OnRecompute records one full layout recompute.
	OnRecompute(binCount, itemCount int, duration time.Duration)

	// OnZoom records a zoom step; direction is "in" or "out".
	OnZoom(direction string, from, to int)
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the scan → layout → render pipeline.
type PipelineHooks interface {
	OnScanStart(ctx context.Context, root string)
	OnScanComplete(ctx context.Context, root string, itemCount int, duration time.Duration, err error)
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from an observed cache. keyType is the key's
// kind prefix: "probe", "layout" or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Server Hooks
// =============================================================================

// ServerHooks receives events from the HTTP host.
type ServerHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op implementations
// =============================================================================

// The Noop types ignore every event. Embed one to implement only part of an
// interface.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnRecompute(int, int, time.Duration) {}
func (NoopLayoutHooks) OnZoom(string, int, int)             {}

type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnScanStart(context.Context, string)                              {}
func (NoopPipelineHooks) OnScanComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string)                     {}
func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Registry
// =============================================================================

type registry struct {
	layout   LayoutHooks
	pipeline PipelineHooks
	cache    CacheHooks
	server   ServerHooks
}

var (
	mu      sync.RWMutex
	current = defaults()
)

func defaults() registry {
	return registry{NoopLayoutHooks{}, NoopPipelineHooks{}, NoopCacheHooks{}, NoopServerHooks{}}
}

// Install registers h for every hook interface it implements and leaves the
// others alone. Hosts call it at startup, before building engines or caches.
func Install(h any) {
	mu.Lock()
	defer mu.Unlock()
	if v, ok := h.(LayoutHooks); ok && v != nil {
		current.layout = v
	}
	if v, ok := h.(PipelineHooks); ok && v != nil {
		current.pipeline = v
	}
	if v, ok := h.(CacheHooks); ok && v != nil {
		current.cache = v
	}
	if v, ok := h.(ServerHooks); ok && v != nil {
		current.server = v
	}
}

// The Set functions replace a single kind of hooks. A nil value is ignored.

func SetLayoutHooks(h LayoutHooks)     { set(func(r *registry) { r.layout = h }, h == nil) }
func SetPipelineHooks(h PipelineHooks) { set(func(r *registry) { r.pipeline = h }, h == nil) }
func SetCacheHooks(h CacheHooks)       { set(func(r *registry) { r.cache = h }, h == nil) }
func SetServerHooks(h ServerHooks)     { set(func(r *registry) { r.server = h }, h == nil) }

func set(apply func(*registry), skip bool) {
	if skip {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	apply(&current)
}

func get() registry {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func Layout() LayoutHooks     { return get().layout }
func Pipeline() PipelineHooks { return get().pipeline }
func Cache() CacheHooks       { return get().cache }
func Server() ServerHooks     { return get().server }

// Reset restores the no-op hooks.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = defaults()
}
