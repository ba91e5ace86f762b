// Package engine drives the layout simulation: it owns the simulation state,
// runs one tick per scheduler callback and publishes a [Frame] after each.
//
// # Lifecycle
//
// An Engine starts Stopped. Start initializes one point per catalog item and
// requests the first tick; every tick then runs
//
//	physics step -> collision relaxation -> clamp -> tessellation -> publish
//
// and requests the next. Stop cancels the pending request. A tick already in
// flight completes. Start after Stop begins again from fresh positions.
//
// # Concurrency
//
// Ticks are strictly sequential. SetQuery, Stop and Start may be called from
// any goroutine; they take the same lock as a tick, so they land between ticks.
// Each tick runs on a working copy of the points and is committed only when
// every stage succeeded.
package engine

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/mosaic/pkg/catalog"
	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/observability"
	"github.com/matzehuels/mosaic/pkg/relevance"
	"github.com/matzehuels/mosaic/pkg/sim"
	"github.com/matzehuels/mosaic/pkg/tessellate"
)

// ErrStopped is returned by Tick when the engine is not running.
var ErrStopped = errors.New(errors.ErrCodeInvalidInput, "engine is stopped")

// Status is the lifecycle state of an [Engine].
type Status int

const (
	Stopped Status = iota
	Running
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// =============================================================================
// Options
// =============================================================================

// Option configures an Engine.
type Option func(*Engine)

// WithScheduler sets the tick scheduler. The default is a [ClockScheduler]
// at [DefaultInterval].
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithScorer sets the relevance heuristic. The default is [relevance.Substring].
func WithScorer(s relevance.Scorer) Option {
	return func(e *Engine) { e.scorer = s }
}

// WithPlacer sets how initial positions are chosen. The default scatters
// points uniformly using the engine's random source.
func WithPlacer(p sim.Placer) Option {
	return func(e *Engine) { e.placer = p }
}

// WithRand sets the random source used by the default placer.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithSeed seeds the default placer for reproducible layouts.
func WithSeed(seed uint64) Option {
	return func(e *Engine) { e.rng = sim.NewRand(seed) }
}

// WithPublisher sets the frame consumer.
func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publish = p }
}

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.baseLogger = l }
}

// WithHooks sets the simulation hooks. The default is whatever was registered
// with observability.SetSimulationHooks when New ran.
func WithHooks(h observability.SimulationHooks) Option {
	return func(e *Engine) { e.hooks = h }
}

// =============================================================================
// Engine
// =============================================================================

// Engine owns one simulation. Multiple engines may run side by side.
type Engine struct {
	cfg        sim.Config
	sched      Scheduler
	scorer     relevance.Scorer
	placer     sim.Placer
	rng        *rand.Rand
	publish    Publisher
	baseLogger *log.Logger
	hooks      observability.SimulationHooks

	mu      sync.Mutex
	status  Status
	gen     uint64
	runID   string
	logger  *log.Logger
	items   catalog.Catalog
	state   *sim.State
	query   string
	applied string
	seq     uint64
	latest  Frame
}

// New validates cfg and returns a stopped engine.
func New(cfg sim.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.sched == nil {
		e.sched = NewClockScheduler(DefaultInterval)
	}
	if e.scorer == nil {
		e.scorer = relevance.Substring{}
	}
	if e.rng == nil {
		e.rng = sim.NewRand(uint64(time.Now().UnixNano()))
	}
	if e.placer == nil {
		e.placer = sim.RandomPlacer{Rand: e.rng}
	}
	if e.baseLogger == nil {
		e.baseLogger = log.Default()
	}
	if e.hooks == nil {
		e.hooks = observability.Simulation()
	}
	e.logger = e.baseLogger
	return e, nil
}

// Config returns the simulation configuration.
func (e *Engine) Config() sim.Config { return e.cfg }

// Status returns the lifecycle state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// RunID identifies the current or most recent run; empty before the first
// Start.
func (e *Engine) RunID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runID
}

// Query returns the current query.
func (e *Engine) Query() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.query
}

// Latest returns a copy of the most recently published frame of the current
// run. The caller may modify it freely.
func (e *Engine) Latest() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.latest.Clone()
}

// Points returns a copy of the simulation state, or nil before the first
// Start.
func (e *Engine) Points() []sim.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return nil
	}
	return e.state.Clone()
}

// Start begins a fresh run over items. A running engine is stopped first.
// Points start at the base radius, and the targets of the retained query are
// applied immediately, so a query set before Start shapes the first tick.
// Invalid catalogs are rejected with INVALID_CATALOG. If the scheduler refuses
// the first tick the engine stays Stopped and a SCHEDULER error is returned.
func (e *Engine) Start(items catalog.Catalog) error {
	if err := items.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status == Running {
		e.stopLocked()
	}

	e.gen++
	e.runID = uuid.NewString()
	e.logger = e.baseLogger.With("run", e.runID[:8])
	e.items = items
	e.state = sim.NewState(items, e.cfg, e.placer)
	e.seq = 0
	e.latest = Frame{}
	e.applyTargetsLocked()

	if err := e.sched.RequestTick(e.callback(e.gen)); err != nil {
		err = errors.Wrap(errors.ErrCodeScheduler, err, "request first tick")
		e.logger.Error("start failed", "err", err)
		e.hooks.OnError(e.runID, err)
		return err
	}

	e.status = Running
	e.logger.Info("simulation started", "items", len(items), "query", e.query)
	e.hooks.OnStart(e.runID, len(items))
	return nil
}

// Stop ends the run. No further ticks are scheduled; a tick already running
// completes and publishes. Stop on a stopped engine does nothing.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != Running {
		return
	}
	e.stopLocked()
}

func (e *Engine) stopLocked() {
	e.status = Stopped
	e.gen++
	e.sched.Cancel()
	e.logger.Info("simulation stopped", "ticks", e.seq)
	e.hooks.OnStop(e.runID)
}

// SetQuery changes the query. When it differs from the current one, every
// target radius is recomputed now; positions and radii move on the next tick.
// The query is kept across Stop and Start.
func (e *Engine) SetQuery(q string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if q == e.query {
		return
	}
	e.query = q
	if e.state != nil && e.status == Running {
		e.applyTargetsLocked()
		e.logger.Debug("query changed", "query", q)
	}
}

func (e *Engine) applyTargetsLocked() {
	targets := make([]float64, len(e.items))
	for i, it := range e.items {
		score := e.scorer.Score(e.query, it)
		targets[i] = relevance.TargetRadius(score, e.cfg.BaseRadius, e.cfg.MaxRadius)
	}
	e.state.SetTargets(targets)
	e.applied = e.query
}

// Tick runs one tick synchronously and publishes its frame, without touching
// the scheduler. It returns [ErrStopped] when the engine is not running, or
// the error that abandoned the tick; in that case the state is unchanged.
func (e *Engine) Tick() (Frame, error) {
	e.mu.Lock()
	if e.status != Running {
		e.mu.Unlock()
		return Frame{}, ErrStopped
	}
	frame, err := e.tickLocked()
	e.mu.Unlock()

	if err != nil {
		return Frame{}, err
	}
	if e.publish != nil {
		e.publish(frame)
	}
	return frame, nil
}

// callback returns the scheduled tick for run generation gen. It does nothing
// once the run it belongs to has ended.
func (e *Engine) callback(gen uint64) func() {
	return func() {
		e.mu.Lock()
		if e.status != Running || e.gen != gen {
			e.mu.Unlock()
			return
		}
		frame, err := e.tickLocked()
		e.mu.Unlock()

		if err == nil && e.publish != nil {
			e.publish(frame)
		}

		e.mu.Lock()
		defer e.mu.Unlock()
		if e.status != Running || e.gen != gen {
			return
		}
		if err := e.sched.RequestTick(e.callback(gen)); err != nil {
			err = errors.Wrap(errors.ErrCodeScheduler, err, "request tick %d", e.seq+1)
			e.logger.Error("scheduler failed, stopping", "err", err)
			e.hooks.OnError(e.runID, err)
			e.stopLocked()
		}
	}
}

// tickLocked advances a working copy of the points, tessellates it and commits
// the result. On failure the committed state is left as it was.
func (e *Engine) tickLocked() (Frame, error) {
	start := time.Now()
	work := e.state.Clone()

	res, err := advance(work, e.cfg)
	if err != nil {
		e.logger.Warn("tick abandoned", "seq", e.seq+1, "err", err)
		e.hooks.OnError(e.runID, err)
		return Frame{}, err
	}

	copy(e.state.Points, work)
	e.seq++
	frame := Frame{
		Seq:     e.seq,
		Query:   e.applied,
		Cells:   res.Cells,
		Links:   res.Links,
		Dropped: res.Dropped,
	}
	e.latest = frame.Clone()

	elapsed := time.Since(start)
	if derr := res.DegenerateError(); derr != nil {
		e.logger.Debug("degenerate cells", "seq", e.seq, "err", derr)
	}
	e.hooks.OnTick(e.runID, e.seq, len(res.Cells), len(res.Dropped), elapsed)
	return frame, nil
}

// advance runs every stage of one tick on pts. A panic in any stage or a
// non-finite result is reported as an error.
func advance(pts []sim.Point, cfg sim.Config) (res tessellate.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrCodeInternal, "tick panicked: %v", r)
		}
	}()

	sim.Advance(pts, cfg)
	if !sim.Finite(pts) {
		return tessellate.Result{}, errors.New(errors.ErrCodeInternal, "simulation produced non-finite values")
	}
	return tessellate.Build(pts, cfg), nil
}
