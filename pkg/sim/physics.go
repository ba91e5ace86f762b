package sim

import (
	"math"

	"github.com/matzehuels/mosaic/pkg/geom"
)

// Step advances every point by one tick: radius smoothing, centering
// acceleration, friction, then semi-implicit Euler integration with a unit
// time step. Motion is therefore tied to the tick rate.
func Step(pts []Point, cfg Config) {
	center := cfg.Bounds().Center()
	for i := range pts {
		stepPoint(&pts[i], center, cfg)
	}
}

func stepPoint(p *Point, center geom.Vec, cfg Config) {
	p.R += (p.TargetR - p.R) * cfg.RadiusSmoothing
	p.R = geom.Clamp(p.R, cfg.BaseRadius, cfg.MaxRadius)

	p.Vel = p.Vel.Add(center.Sub(p.Pos).Scale(cfg.CenterGain))
	p.Vel = p.Vel.Scale(cfg.Friction)
	p.Pos = p.Pos.Add(p.Vel)
}

// ResolveCollisions runs cfg.CollisionPasses relaxation sweeps over every
// unordered pair in index order. Overlapping pairs are pushed apart
// symmetrically along the line joining them, regardless of radius.
func ResolveCollisions(pts []Point, cfg Config) {
	for range max(cfg.CollisionPasses, 1) {
		relax(pts, cfg)
	}
}

func relax(pts []Point, cfg Config) {
	n := len(pts)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			p1, p2 := &pts[i], &pts[j]
			d := p2.Pos.Sub(p1.Pos)
			dist := d.Len()
			minDist := (p1.R + p2.R) * cfg.OverlapAllow
			if dist >= minDist {
				continue
			}

			var dir geom.Vec
			if dist == 0 {
				dir = pairDirection(i, j, n)
			} else {
				dir = d.Scale(1 / dist)
			}

			push := dir.Scale((minDist - dist) * cfg.Stiffness)
			p1.Pos = p1.Pos.Sub(push)
			p2.Pos = p2.Pos.Add(push)
		}
	}
}

// invPhi is the golden ratio conjugate; multiples of it modulo 1 spread pair
// indices evenly around the circle.
const invPhi = 0.6180339887498949

// pairDirection returns a deterministic unit vector for a coincident pair.
func pairDirection(i, j, n int) geom.Vec {
	k := float64(i*n + j)
	_, frac := math.Modf(k * invPhi)
	theta := 2 * math.Pi * frac
	return geom.Vec{X: math.Cos(theta), Y: math.Sin(theta)}
}

// Clamp keeps every position inside the working rectangle. Velocity is left
// untouched, so a point pushed into a wall stays pinned until forces turn it.
func Clamp(pts []Point, bounds geom.Rect) {
	for i := range pts {
		pts[i].Pos = bounds.Clamp(pts[i].Pos)
	}
}

// Advance runs the three kinematic stages of one tick in order.
func Advance(pts []Point, cfg Config) {
	Step(pts, cfg)
	ResolveCollisions(pts, cfg)
	Clamp(pts, cfg.Bounds())
}
