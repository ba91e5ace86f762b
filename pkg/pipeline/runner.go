package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mosaic/pkg/cache"
	"github.com/matzehuels/mosaic/pkg/engine"
	"github.com/matzehuels/mosaic/pkg/observability"
)

// Runner runs headless layouts through a cache. It keeps no per-run state and
// may be shared between goroutines.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner returns a Runner. Nil arguments select a [cache.NullCache], the
// default keyer and log.Default().
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

// Execute simulates opts.Ticks ticks and renders every requested format.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}
	hooks := observability.Pipeline()

	simStart := time.Now()
	hooks.OnSimulateStart(ctx, len(opts.Catalog), opts.Ticks)
	frame, simHit, err := r.SimulateWithCacheInfo(ctx, opts)
	result.Stats.SimulateTime = time.Since(simStart)
	hooks.OnSimulateComplete(ctx, len(frame.Cells), result.Stats.SimulateTime, err)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	result.Frame = frame
	result.FrameHash = frameHash(frame)
	result.Stats.Items = len(opts.Catalog)
	result.Stats.Cells = len(frame.Cells)
	result.Stats.Dropped = len(frame.Dropped)
	result.Stats.Ticks = int(frame.Seq)
	result.CacheInfo.SimulateHit = simHit

	r.Logger.Info("simulated layout",
		"items", len(opts.Catalog),
		"cells", len(frame.Cells),
		"ticks", frame.Seq,
		"duration", result.Stats.SimulateTime)

	renderStart := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, frame, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered frame", "formats", opts.Formats, "duration", result.Stats.RenderTime)

	return result, nil
}

// SimulateWithCacheInfo returns the final frame of a run and whether it was
// served from the cache. Refresh skips the lookup but still stores the result.
func (r *Runner) SimulateWithCacheInfo(ctx context.Context, opts Options) (engine.Frame, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForSimulate(); err != nil {
		return engine.Frame{}, false, err
	}
	hooks := observability.Cache()

	catalogHash := cache.Hash(opts.Catalog.Canonical())
	cacheKey := r.Keyer.FrameKey(catalogHash, opts.FrameKeyOpts())

	if !opts.Refresh {
		var cached engine.Frame
		if err := cache.GetJSON(ctx, r.Cache, cacheKey, &cached); err == nil {
			hooks.OnCacheHit(ctx, "frame")
			return cached, true, nil
		}
		hooks.OnCacheMiss(ctx, "frame")
	}

	frame, err := Simulate(ctx, opts)
	if err != nil {
		return engine.Frame{}, false, err
	}

	if data, err := json.Marshal(frame); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLFrame); err != nil {
			r.Logger.Warn("cache frame", "err", err)
		} else {
			hooks.OnCacheSet(ctx, "frame", len(data))
		}
	}

	return frame, false, nil
}

// Simulate is SimulateWithCacheInfo without the hit flag.
func (r *Runner) Simulate(ctx context.Context, opts Options) (engine.Frame, error) {
	frame, _, err := r.SimulateWithCacheInfo(ctx, opts)
	return frame, err
}

// RenderWithCacheInfo renders f in every requested format. The cache counts
// as a hit only when it holds all of them; otherwise everything is rendered.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, f engine.Frame, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	hooks := observability.Cache()

	// Labels come from the catalog, so it is part of the key.
	base := cache.Hash([]byte(frameHash(f) + cache.Hash(opts.Catalog.Canonical())))

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(base, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		if err != nil || !hit {
			hooks.OnCacheMiss(ctx, "artifact")
			break
		}
		hooks.OnCacheHit(ctx, "artifact")
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered, err := Render(ctx, f, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(base, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache artifact", "format", format, "err", err)
			continue
		}
		hooks.OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil
}

// Render is RenderWithCacheInfo without the hit flag.
func (r *Runner) Render(ctx context.Context, f engine.Frame, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, f, opts)
	return artifacts, err
}

// Close closes the cache.
func (r *Runner) Close() error {
	if r.Cache == nil {
		return nil
	}
	return r.Cache.Close()
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// frameHash hashes the JSON encoding of f.
func frameHash(f engine.Frame) string {
	data, err := json.Marshal(f)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}
