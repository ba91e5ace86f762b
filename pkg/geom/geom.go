// Package geom provides the small amount of planar geometry the layout engine
// needs: vectors, the working rectangle, and convex polygons with half-plane
// clipping.
//
// All coordinates are in user units of the working rectangle, with the origin
// at the top-left corner, X growing right and Y growing down (the SVG and
// raster convention used by the renderers).
package geom

import "math"

// Vec is a 2D point or displacement.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V is shorthand for Vec{X: x, Y: y}.
func V(x, y float64) Vec { return Vec{X: x, Y: y} }

// Add returns v + w.
func (v Vec) Add(w Vec) Vec { return Vec{v.X + w.X, v.Y + w.Y} }

// Sub returns v - w.
func (v Vec) Sub(w Vec) Vec { return Vec{v.X - w.X, v.Y - w.Y} }

// Scale returns v * s.
func (v Vec) Scale(s float64) Vec { return Vec{v.X * s, v.Y * s} }

// Dot returns the dot product of v and w.
func (v Vec) Dot(w Vec) float64 { return v.X*w.X + v.Y*w.Y }

// Cross returns the z component of the 3D cross product of v and w.
func (v Vec) Cross(w Vec) float64 { return v.X*w.Y - v.Y*w.X }

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist2 returns the squared distance between v and w.
func (v Vec) Dist2(w Vec) float64 {
	dx, dy := v.X-w.X, v.Y-w.Y
	return dx*dx + dy*dy
}

// Finite reports whether both components are neither NaN nor infinite.
func (v Vec) Finite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Rect is an axis-aligned rectangle anchored at the origin: [0,W] x [0,H].
type Rect struct {
	W, H float64
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() float64 { return r.W }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() float64 { return r.H }

// Area returns W * H.
func (r Rect) Area() float64 { return r.W * r.H }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Vec { return Vec{r.W / 2, r.H / 2} }

// Contains reports whether p lies inside the closed rectangle.
func (r Rect) Contains(p Vec) bool {
	return p.X >= 0 && p.X <= r.W && p.Y >= 0 && p.Y <= r.H
}

// Clamp moves p onto the closest point of the closed rectangle.
func (r Rect) Clamp(p Vec) Vec {
	return Vec{Clamp(p.X, 0, r.W), Clamp(p.Y, 0, r.H)}
}

// Polygon returns the rectangle as a counter-clockwise polygon
// (counter-clockwise in a Y-up frame; see Polygon.Area).
func (r Rect) Polygon() Polygon {
	return Polygon{{0, 0}, {r.W, 0}, {r.W, r.H}, {0, r.H}}
}

// Clamp restricts x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
