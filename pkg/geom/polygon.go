package geom

import "math"

// Polygon is a closed polygon given by its vertices in order. The closing
// edge from the last vertex back to the first is implicit.
type Polygon []Vec

// SignedArea returns the shoelace area. It is positive when the vertices wind
// counter-clockwise in a Y-up frame, which is clockwise on screen.
func (p Polygon) SignedArea() float64 {
	if len(p) < 3 {
		return 0
	}
	var sum float64
	for i := range p {
		j := (i + 1) % len(p)
		sum += p[i].Cross(p[j])
	}
	return sum / 2
}

// Area returns the absolute enclosed area.
func (p Polygon) Area() float64 { return math.Abs(p.SignedArea()) }

// Centroid returns the area centroid, or the vertex mean for degenerate
// polygons.
func (p Polygon) Centroid() Vec {
	a := p.SignedArea()
	if len(p) == 0 {
		return Vec{}
	}
	if math.Abs(a) < 1e-12 {
		var s Vec
		for _, v := range p {
			s = s.Add(v)
		}
		return s.Scale(1 / float64(len(p)))
	}
	var cx, cy float64
	for i := range p {
		j := (i + 1) % len(p)
		f := p[i].Cross(p[j])
		cx += (p[i].X + p[j].X) * f
		cy += (p[i].Y + p[j].Y) * f
	}
	return Vec{cx / (6 * a), cy / (6 * a)}
}

// Clone returns a copy that shares no memory with p.
func (p Polygon) Clone() Polygon {
	if p == nil {
		return nil
	}
	out := make(Polygon, len(p))
	copy(out, p)
	return out
}

// Contains reports whether q lies inside or on the boundary of the convex
// polygon p (any winding), within eps.
func (p Polygon) Contains(q Vec, eps float64) bool {
	if len(p) < 3 {
		return false
	}
	sign := 0.0
	for i := range p {
		j := (i + 1) % len(p)
		c := p[j].Sub(p[i]).Cross(q.Sub(p[i]))
		if math.Abs(c) <= eps {
			continue
		}
		if sign == 0 {
			sign = c
		} else if (c > 0) != (sign > 0) {
			return false
		}
	}
	return true
}

// HalfPlane is the set of points x with N·x <= C.
type HalfPlane struct {
	N Vec
	C float64
}

// Bisector returns the half-plane of points at least as close to a as to b.
func Bisector(a, b Vec) HalfPlane {
	n := b.Sub(a)
	mid := a.Add(b).Scale(0.5)
	return HalfPlane{N: n, C: n.Dot(mid)}
}

// Eval returns N·x - C; non-positive values are inside.
func (h HalfPlane) Eval(x Vec) float64 { return h.N.Dot(x) - h.C }

// Clip intersects the convex polygon p with the half-plane h using one
// Sutherland-Hodgman step. Vertex order and winding are preserved. The input
// is never modified.
func (p Polygon) Clip(h HalfPlane) Polygon {
	if len(p) == 0 {
		return nil
	}
	out := make(Polygon, 0, len(p)+1)
	prev := p[len(p)-1]
	prevD := h.Eval(prev)
	for _, cur := range p {
		curD := h.Eval(cur)
		switch {
		case curD <= 0 && prevD <= 0:
			out = append(out, cur)
		case curD <= 0 && prevD > 0:
			out = append(out, intersect(prev, cur, prevD, curD), cur)
		case curD > 0 && prevD <= 0:
			out = append(out, intersect(prev, cur, prevD, curD))
		}
		prev, prevD = cur, curD
	}
	return out.dedupe()
}

func intersect(a, b Vec, da, db float64) Vec {
	t := da / (da - db)
	return a.Add(b.Sub(a).Scale(t))
}

// dedupe drops consecutive vertices that coincide, including across the
// closing edge.
func (p Polygon) dedupe() Polygon {
	const eps2 = 1e-18
	if len(p) < 2 {
		return p
	}
	out := p[:1]
	for _, v := range p[1:] {
		if v.Dist2(out[len(out)-1]) > eps2 {
			out = append(out, v)
		}
	}
	for len(out) > 1 && out[0].Dist2(out[len(out)-1]) <= eps2 {
		out = out[:len(out)-1]
	}
	return out
}
