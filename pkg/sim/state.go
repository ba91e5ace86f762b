// Package sim owns the kinematic state of a layout and the per-tick stages
// that advance it: physics stepping, pairwise collision relaxation and
// clamping to the working rectangle.
//
// The stages are plain functions over a []Point so the engine can run them on
// a working copy and commit only when every stage succeeded.
package sim

import (
	"math/rand/v2"

	"github.com/matzehuels/mosaic/pkg/catalog"
	"github.com/matzehuels/mosaic/pkg/geom"
)

// Point is the kinematic state of one catalog item.
type Point struct {
	ID      string
	Pos     geom.Vec
	Vel     geom.Vec
	R       float64
	TargetR float64
}

// Placer chooses the initial position of item i.
type Placer interface {
	Place(i int, item catalog.Item, bounds geom.Rect) geom.Vec
}

// PlacerFunc adapts a plain function to [Placer].
type PlacerFunc func(i int, item catalog.Item, bounds geom.Rect) geom.Vec

// Place calls f.
func (f PlacerFunc) Place(i int, item catalog.Item, bounds geom.Rect) geom.Vec {
	return f(i, item, bounds)
}

// RandomPlacer scatters points uniformly over the rectangle.
type RandomPlacer struct {
	Rand *rand.Rand
}

// Place implements [Placer].
func (p RandomPlacer) Place(_ int, _ catalog.Item, b geom.Rect) geom.Vec {
	return geom.Vec{X: p.Rand.Float64() * b.W, Y: p.Rand.Float64() * b.H}
}

// NewRand returns a PCG source seeded from seed, matching the seeding used
// across the repository for reproducible runs.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// State is the full simulation state for one engine run.
type State struct {
	Points []Point
	cfg    Config
}

// NewState creates one point per item: placed by placer (clamped into the
// rectangle), at rest, with radius and target at the base radius.
func NewState(items catalog.Catalog, cfg Config, placer Placer) *State {
	bounds := cfg.Bounds()
	pts := make([]Point, len(items))
	for i, it := range items {
		pts[i] = Point{
			ID:      it.ID,
			Pos:     bounds.Clamp(placer.Place(i, it, bounds)),
			R:       cfg.BaseRadius,
			TargetR: cfg.BaseRadius,
		}
	}
	return &State{Points: pts, cfg: cfg}
}

// Config returns the configuration the state was created with.
func (s *State) Config() Config { return s.cfg }

// Len returns the number of points.
func (s *State) Len() int { return len(s.Points) }

// Clone returns a deep copy of the points.
func (s *State) Clone() []Point {
	out := make([]Point, len(s.Points))
	copy(out, s.Points)
	return out
}

// SetTargets replaces the target radius of every point. targets must have one
// entry per point, in point order.
func (s *State) SetTargets(targets []float64) {
	for i := range s.Points {
		s.Points[i].TargetR = geom.Clamp(targets[i], s.cfg.BaseRadius, s.cfg.MaxRadius)
	}
}

// Finite reports whether every position, velocity and radius is a real number.
func Finite(pts []Point) bool {
	for _, p := range pts {
		if !p.Pos.Finite() || !p.Vel.Finite() || !geom.V(p.R, p.TargetR).Finite() {
			return false
		}
	}
	return true
}
