// Package observability lets an application watch the diagram engine.
//
// Every instrumented component calls a registered hook; the defaults do
// nothing. Register implementations once at startup to forward events to a
// metrics or tracing backend:
//
//	observability.SetPipelineHooks(promPipeline{})
//	observability.SetDiagramHooks(promDiagram{})
//
// Components emit events through the accessors:
//
//	observability.Pipeline().OnRouteStart(ctx, nodeCount)
//	paths := route.Route(nodes, rc)
//	observability.Pipeline().OnRouteComplete(ctx, len(paths), time.Since(start), nil)
//
// Four hook families exist: the batch pipeline (build, route, render), the
// cache, inbound HTTP requests and the interactive diagram.
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from the batch diagram pipeline.
type PipelineHooks interface {
	// Stage is empty when the whole document is built.
	OnBuildStart(ctx context.Context, stage string)
	OnBuildComplete(ctx context.Context, stage string, nodeCount int, duration time.Duration, err error)

	OnRouteStart(ctx context.Context, nodeCount int)
	OnRouteComplete(ctx context.Context, links int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives cache lookups and writes. KeyType is one of
// "graph", "route" or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives inbound API requests. Route is the matched route
// pattern, not the raw path.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// DiagramHooks receives events from an interactive diagram. Diagrams have
// no request context, so these hooks take none.
type DiagramHooks interface {
	// OnReroute fires after every routing pass. Reason names the trigger,
	// such as "data" or "viewport.zoom".
	OnReroute(reason string, links, drawable int, duration time.Duration)

	// OnCollapse fires when a step group is collapsed or expanded.
	OnCollapse(groupID string, collapsed bool)
}

// NoopPipelineHooks ignores every pipeline event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBuildStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRouteStart(context.Context, int)                                  {}
func (NoopPipelineHooks) OnRouteComplete(context.Context, int, time.Duration, error)         {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                            {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)   {}

// NoopCacheHooks ignores every cache event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every HTTP event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// NoopDiagramHooks ignores every diagram event.
type NoopDiagramHooks struct{}

func (NoopDiagramHooks) OnReroute(string, int, int, time.Duration) {}
func (NoopDiagramHooks) OnCollapse(string, bool)                   {}

type registry struct {
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
	diagram  DiagramHooks
}

func defaults() registry {
	return registry{
		pipeline: NoopPipelineHooks{},
		cache:    NoopCacheHooks{},
		http:     NoopHTTPHooks{},
		diagram:  NoopDiagramHooks{},
	}
}

var (
	mu    sync.RWMutex
	hooks = defaults()
)

func set(apply func(r *registry)) {
	mu.Lock()
	defer mu.Unlock()
	apply(&hooks)
}

func get() registry {
	mu.RLock()
	defer mu.RUnlock()
	return hooks
}

// SetPipelineHooks registers pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		set(func(r *registry) { r.pipeline = h })
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		set(func(r *registry) { r.cache = h })
	}
}

// SetHTTPHooks registers HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		set(func(r *registry) { r.http = h })
	}
}

// SetDiagramHooks registers diagram hooks. Nil is ignored.
func SetDiagramHooks(h DiagramHooks) {
	if h != nil {
		set(func(r *registry) { r.diagram = h })
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return get().pipeline }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return get().cache }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return get().http }

// Diagram returns the registered diagram hooks.
func Diagram() DiagramHooks { return get().diagram }

// Reset restores the no-op defaults. Tests call it in t.Cleanup.
func Reset() { set(func(r *registry) { *r = defaults() }) }
