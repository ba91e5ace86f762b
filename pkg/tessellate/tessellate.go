// Package tessellate turns simulated point positions into a clipped Voronoi
// partition of the working rectangle.
//
// The cells are built from the Delaunay triangulation of the positions: each
// Delaunay edge names a Voronoi neighbor, and a site's cell is the rectangle
// cut by the perpendicular bisector of every neighbor. A final check against
// all sites repairs any edge lost to floating-point round-off, so the cells
// always partition the rectangle. Sites closer together than a tiny fraction
// of the rectangle diagonal share one cell, owned by the earliest of them.
//
// Build is a pure function of its input. Identical positions give identical
// polygons, vertex for vertex.
package tessellate

import (
	"fmt"
	"math"

	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/geom"
	"github.com/matzehuels/mosaic/pkg/relevance"
	"github.com/matzehuels/mosaic/pkg/sim"
)

const (
	// minAreaRatio is the smallest cell area, relative to the rectangle, that
	// is still emitted.
	minAreaRatio = 1e-9

	// sameSiteRatio is the distance, relative to the rectangle diagonal, at
	// or below which two sites are treated as one.
	sameSiteRatio = 1e-7

	// closerRatio is the distance, relative to the rectangle diagonal, by
	// which a vertex must sit past a bisector before the repair pass clips it.
	closerRatio = 1e-9
)

// Cell is one item's region for a single tick.
type Cell struct {
	ID string `json:"id"`

	// Polygon is the closed cell boundary, first vertex not repeated.
	Polygon geom.Polygon `json:"polygon"`

	// Relevance is the point's radius normalized to [0,1].
	Relevance float64 `json:"relevance"`

	// Center is the point's position.
	Center geom.Vec `json:"center"`
}

// Link is a Delaunay edge between two items; the two cells share a border.
type Link struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Result is the output of [Build].
type Result struct {
	// Cells in point order, skipping dropped points.
	Cells []Cell

	// Links are the Delaunay edges between emitted points, sorted by point
	// index.
	Links []Link

	// Dropped lists the IDs of points whose cell degenerated.
	Dropped []string
}

// DegenerateError describes the dropped cells, or returns nil when every point
// produced a cell.
func (r Result) DegenerateError() error {
	if len(r.Dropped) == 0 {
		return nil
	}
	return errors.New(errors.ErrCodeDegenerate, "%d cell(s) dropped: %v", len(r.Dropped), r.Dropped)
}

// Build computes one cell per point. Degenerate points are dropped and listed
// in Result.Dropped: a non-finite position, a point within sameSiteRatio times the
// diagonal from an earlier point (the earliest keeps the cell) or a cell that
// clips to less than a sliver of area. Build never fails.
func Build(pts []sim.Point, cfg sim.Config) Result {
	bounds := cfg.Bounds()
	sites := make([]geom.Vec, len(pts))
	for i, p := range pts {
		sites[i] = p.Pos
	}

	diag := math.Hypot(bounds.W, bounds.H)
	minArea := bounds.Area() * minAreaRatio

	owner := uniqueSites(sites, sameSiteRatio*diag)
	isOwner := make([]bool, len(pts))
	for _, i := range owner {
		isOwner[i] = true
	}

	tr := triangulate(sites, owner)
	neighbors := make([][]int, len(pts))
	for _, e := range tr.Edges {
		neighbors[e[0]] = append(neighbors[e[0]], e[1])
		neighbors[e[1]] = append(neighbors[e[1]], e[0])
	}

	var res Result
	emitted := make([]bool, len(pts))
	for i, p := range pts {
		if !isOwner[i] {
			res.Dropped = append(res.Dropped, p.ID)
			continue
		}
		poly := cellPolygon(i, sites, owner, neighbors[i], bounds, 2*closerRatio*diag)
		if len(poly) < 3 || poly.Area() < minArea {
			res.Dropped = append(res.Dropped, p.ID)
			continue
		}
		emitted[i] = true
		res.Cells = append(res.Cells, Cell{
			ID:        p.ID,
			Polygon:   poly,
			Relevance: relevance.Normalize(p.R, cfg.BaseRadius, cfg.MaxRadius),
			Center:    p.Pos,
		})
	}

	for _, e := range tr.Edges {
		if emitted[e[0]] && emitted[e[1]] {
			res.Links = append(res.Links, Link{A: pts[e[0]].ID, B: pts[e[1]].ID})
		}
	}
	return res
}

// cellPolygon clips the rectangle by the bisector of each Delaunay neighbor,
// then repeatedly checks the cell vertices against every owning site and clips
// by any site closer to a vertex than i, beyond tol. A convex polygon whose
// vertices all lie in the true cell equals the true cell, so the loop ends
// with the exact Voronoi region.
func cellPolygon(i int, sites []geom.Vec, owner, neighbors []int, bounds geom.Rect, tol float64) geom.Polygon {
	si := sites[i]
	poly := bounds.Polygon()
	used := make(map[int]bool, len(neighbors))
	for _, j := range neighbors {
		used[j] = true
		poly = poly.Clip(geom.Bisector(si, sites[j]))
		if len(poly) == 0 {
			return nil
		}
	}

	for {
		k := closerSite(poly, i, sites, owner, used, tol)
		if k < 0 {
			return poly
		}
		used[k] = true
		poly = poly.Clip(geom.Bisector(si, sites[k]))
		if len(poly) == 0 {
			return nil
		}
	}
}

// closerSite returns an unused owning site that is closer than i to some
// vertex of poly, or -1. For sites si and sk the gap |v-si|²-|v-sk|² equals
// 2|si-sk| times the distance of v past their bisector, so scaling tol by
// |si-sk| gives a positional tolerance.
func closerSite(poly geom.Polygon, i int, sites []geom.Vec, owner []int, used map[int]bool, tol float64) int {
	si := sites[i]
	for _, v := range poly {
		di := v.Dist2(si)
		for _, k := range owner {
			if k == i || used[k] {
				continue
			}
			sk := sites[k]
			if di-v.Dist2(sk) > tol*math.Sqrt(si.Dist2(sk)) {
				return k
			}
		}
	}
	return -1
}

// String implements fmt.Stringer for log output.
func (c Cell) String() string {
	return fmt.Sprintf("%s(%d verts, rel=%.2f)", c.ID, len(c.Polygon), c.Relevance)
}
