package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event to a logger at debug level; errors are
// logged at warn. It implements all three hook interfaces.
type LogHooks struct {
	logger *log.Logger

	// TickEvery logs only every n-th tick. Values below 1 log every tick.
	TickEvery uint64
}

var (
	_ SimulationHooks = (*LogHooks)(nil)
	_ PipelineHooks   = (*LogHooks)(nil)
	_ CacheHooks      = (*LogHooks)(nil)
)

// NewLogHooks returns hooks writing to l with the "hooks" prefix.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l.WithPrefix("hooks")}
}

func (h *LogHooks) OnStart(runID string, n int) {
	h.logger.Debug("run started", "run", runID, "points", n)
}

func (h *LogHooks) OnTick(runID string, seq uint64, cells, dropped int, d time.Duration) {
	if h.TickEvery > 1 && seq%h.TickEvery != 0 {
		return
	}
	h.logger.Debug("tick", "run", runID, "seq", seq, "cells", cells, "dropped", dropped, "took", d)
}

func (h *LogHooks) OnStop(runID string) {
	h.logger.Debug("run stopped", "run", runID)
}

func (h *LogHooks) OnError(runID string, err error) {
	h.logger.Warn("run error", "run", runID, "err", err)
}

func (h *LogHooks) OnSimulateStart(_ context.Context, items, ticks int) {
	h.logger.Debug("simulate", "items", items, "ticks", ticks)
}

func (h *LogHooks) OnSimulateComplete(_ context.Context, cells int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("simulate failed", "err", err, "took", d)
		return
	}
	h.logger.Debug("simulated", "cells", cells, "took", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "formats", formats, "err", err, "took", d)
		return
	}
	h.logger.Debug("rendered", "formats", formats, "took", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, kind string) {
	h.logger.Debug("cache hit", "kind", kind)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, kind string) {
	h.logger.Debug("cache miss", "kind", kind)
}

func (h *LogHooks) OnCacheSet(_ context.Context, kind string, size int) {
	h.logger.Debug("cache set", "kind", kind, "bytes", size)
}

// Install registers h for simulation, pipeline and cache events.
func (h *LogHooks) Install() {
	SetSimulationHooks(h)
	SetPipelineHooks(h)
	SetCacheHooks(h)
}
