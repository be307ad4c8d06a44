package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	json "github.com/goccy/go-json"

	"github.com/matzehuels/stagegraph/pkg/cache"
	"github.com/matzehuels/stagegraph/pkg/graph"
	"github.com/matzehuels/stagegraph/pkg/observability"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeGraph    = "graph"
	keyTypeRoute    = "route"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete build → route → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Build
	buildStart := time.Now()
	built, buildHit, err := r.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Nodes = built.Nodes
	result.Errors = built.Errors
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = graph.Count(built.Nodes)
	result.CacheInfo.BuildHit = buildHit
	if h, err := cache.HashJSON(built); err == nil {
		result.GraphHash = h
	}

	r.Logger.Info("built graph state",
		"nodes", result.Stats.NodeCount,
		"violations", built.Errors.Len(),
		"duration", result.Stats.BuildTime)

	// Stage 2: Route
	routeStart := time.Now()
	routed, routeHit, err := r.RouteWithCacheInfo(ctx, built, opts)
	if err != nil {
		return nil, fmt.Errorf("route: %w", err)
	}
	result.Routed = routed
	result.Stats.RouteTime = time.Since(routeStart)
	result.Stats.LinkCount = len(routed.Paths)
	result.Stats.Drawable = routed.Paths.Drawable()
	result.CacheInfo.RouteHit = routeHit
	if h, err := cache.HashJSON(routed); err == nil {
		result.RouteHash = h
	}

	r.Logger.Info("routed links",
		"links", result.Stats.LinkCount,
		"drawable", result.Stats.Drawable,
		"duration", result.Stats.RouteTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, built, routed, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildWithCacheInfo builds the graph state with caching and returns cache hit info.
// A cached state keeps the node IDs of the build that produced it.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, opts Options) (Built, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForBuild(); err != nil {
		return Built{}, false, err
	}

	docHash := cache.Hash(append([]byte(string(opts.Format)+"\x00"), opts.Input...))
	cacheKey := r.Keyer.GraphKey(docHash, opts.GraphKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		var cached Built
		if r.get(ctx, keyTypeGraph, cacheKey, &cached) {
			return cached, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, opts.Stage)
	start := time.Now()
	built, err := Build(opts)
	hooks.OnBuildComplete(ctx, opts.Stage, graph.Count(built.Nodes), time.Since(start), err)
	if err != nil {
		return Built{}, false, err
	}

	r.set(ctx, keyTypeGraph, cacheKey, built, cache.TTLGraph)
	return built, false, nil
}

// BuildState is a convenience wrapper that calls BuildWithCacheInfo and discards the cache hit info.
func (r *Runner) BuildState(ctx context.Context, opts Options) (Built, error) {
	built, _, err := r.BuildWithCacheInfo(ctx, opts)
	return built, err
}

// RouteWithCacheInfo places and routes a built state with caching and returns cache hit info.
func (r *Runner) RouteWithCacheInfo(ctx context.Context, built Built, opts Options) (Routed, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRoute(); err != nil {
		return Routed{}, false, err
	}

	graphHash, err := cache.HashJSON(built)
	if err != nil {
		return Routed{}, false, fmt.Errorf("hash graph for cache key: %w", err)
	}
	keyOpts, err := opts.RouteKeyOpts()
	if err != nil {
		return Routed{}, false, err
	}
	cacheKey := r.Keyer.RouteKey(graphHash, keyOpts)

	if !opts.Refresh {
		var cached Routed
		if r.get(ctx, keyTypeRoute, cacheKey, &cached) {
			return cached, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnRouteStart(ctx, graph.Count(built.Nodes))
	start := time.Now()
	routed := Route(built.Nodes, opts)
	hooks.OnRouteComplete(ctx, len(routed.Paths), time.Since(start), nil)

	r.set(ctx, keyTypeRoute, cacheKey, routed, cache.TTLRoute)
	return routed, false, nil
}

// RouteState is a convenience wrapper that calls RouteWithCacheInfo and discards the cache hit info.
func (r *Runner) RouteState(ctx context.Context, built Built, opts Options) (Routed, error) {
	routed, _, err := r.RouteWithCacheInfo(ctx, built, opts)
	return routed, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, built Built, routed Routed, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	// The scene depends on the collapsed set and terminals as well as the
	// geometry, so both go into the key.
	collapsed := slices.Clone(opts.Collapsed)
	slices.Sort(collapsed)
	sceneHash, err := cache.HashJSON(struct {
		Built     Built
		Routed    Routed
		Collapsed []string
		Editable  bool
	}{built, routed, collapsed, opts.Editable})
	if err != nil {
		return nil, false, fmt.Errorf("hash scene for cache key: %w", err)
	}

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
				break
			}
			observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, built, routed, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err != nil {
			r.Logger.Debug("cache write failed", "key", cacheKey, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
	}

	return rendered, false, nil
}

// RenderArtifacts is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) RenderArtifacts(ctx context.Context, built Built, routed Routed, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, built, routed, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// get decodes a cached JSON value into v. Undecodable entries count as misses
// and are recomputed.
func (r *Runner) get(ctx context.Context, keyType, key string, v any) bool {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "key", key, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		r.Logger.Debug("discarding undecodable cache entry", "key", key, "err", err)
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true
}

func (r *Runner) set(ctx context.Context, keyType, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		r.Logger.Debug("cache encode failed", "key", key, "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
