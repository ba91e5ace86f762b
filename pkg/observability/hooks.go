// Package observability lets a host observe the layout engine, the headless
// pipeline and the cache without the libraries depending on any metrics
// backend.
//
// Each event category has a hook interface with a no-op default. main
// registers implementations once at startup; engines pick up the simulation
// hooks when they are created, the pipeline and cache read theirs per call.
// [LogHooks] implements every interface on top of a charmbracelet logger and
// is what the CLI installs under --verbose.
//
//	hooks := observability.NewLogHooks(logger)
//	hooks.TickEvery = 50
//	hooks.Install()
package observability

import (
	"context"
	"sync"
	"time"
)

// SimulationHooks receives events from a running layout engine. Calls are made
// while the engine holds its lock, so implementations must not call back into
// the engine.
type SimulationHooks interface {
	// OnStart records that a run began with n points.
	OnStart(runID string, n int)

	// OnTick records a published frame.
	OnTick(runID string, seq uint64, cells, dropped int, duration time.Duration)

	// OnStop records that a run ended.
	OnStop(runID string)

	// OnError records an abandoned tick or a scheduling failure.
	OnError(runID string, err error)
}

// PipelineHooks receives events from the headless simulate-and-render pipeline.
type PipelineHooks interface {
	OnSimulateStart(ctx context.Context, items, ticks int)
	OnSimulateComplete(ctx context.Context, cells int, duration time.Duration, err error)
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives the pipeline's cache lookups and writes. kind is
// "frame" or "artifact"; size is in bytes.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, kind string)
	OnCacheMiss(ctx context.Context, kind string)
	OnCacheSet(ctx context.Context, kind string, size int)
}

// NoopSimulationHooks ignores every event.
type NoopSimulationHooks struct{}

func (NoopSimulationHooks) OnStart(string, int)                            {}
func (NoopSimulationHooks) OnTick(string, uint64, int, int, time.Duration) {}
func (NoopSimulationHooks) OnStop(string)                                  {}
func (NoopSimulationHooks) OnError(string, error)                          {}

// NoopPipelineHooks ignores every event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnSimulateStart(context.Context, int, int)                        {}
func (NoopPipelineHooks) OnSimulateComplete(context.Context, int, time.Duration, error)    {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type registry struct {
	mu         sync.RWMutex
	simulation SimulationHooks
	pipeline   PipelineHooks
	cache      CacheHooks
}

var hooks = registry{
	simulation: NoopSimulationHooks{},
	pipeline:   NoopPipelineHooks{},
	cache:      NoopCacheHooks{},
}

// set runs fn under the write lock.
func (r *registry) set(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn()
}

// SetSimulationHooks registers simulation hooks for engines created
// afterwards without engine.WithHooks. nil is ignored.
func SetSimulationHooks(h SimulationHooks) {
	if h != nil {
		hooks.set(func() { hooks.simulation = h })
	}
}

// SetPipelineHooks registers pipeline hooks. nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		hooks.set(func() { hooks.pipeline = h })
	}
}

// SetCacheHooks registers cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		hooks.set(func() { hooks.cache = h })
	}
}

// Simulation returns the registered simulation hooks.
func Simulation() SimulationHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.simulation
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.pipeline
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.cache
}

// Reset restores the no-op defaults. Tests use it to undo registrations.
func Reset() {
	hooks.set(func() {
		hooks.simulation = NoopSimulationHooks{}
		hooks.pipeline = NoopPipelineHooks{}
		hooks.cache = NoopCacheHooks{}
	})
}
