package tessellate

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/mosaic/pkg/geom"
)

// Triangle holds three site indices.
type Triangle [3]int

// Edge is an undirected pair of site indices with Edge[0] < Edge[1].
type Edge [2]int

func newEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{a, b}
}

// Triangulation is the Delaunay triangulation of a site set.
type Triangulation struct {
	// Triangles lists every triangle whose corners are all input sites.
	Triangles []Triangle

	// Edges lists every Delaunay edge between two input sites, sorted. Hull
	// edges are included even though their triangles touch the enclosing
	// super-triangle.
	Edges []Edge
}

// Triangulate computes the Delaunay triangulation of sites with the
// Bowyer-Watson algorithm. Sites are inserted in index order; an exact
// duplicate of an earlier site and non-finite sites are skipped and appear in
// no triangle or edge. Every other site appears in at least one edge. The
// result depends only on the input coordinates.
func Triangulate(sites []geom.Vec) Triangulation {
	return triangulate(sites, uniqueSites(sites, 0))
}

// triangulate inserts the sites named by order, which must be distinct and
// finite. Sites not in order appear in no triangle or edge.
func triangulate(sites []geom.Vec, order []int) Triangulation {
	if len(order) < 2 {
		return Triangulation{}
	}

	n := len(sites)
	pts := make([]geom.Vec, n, n+3)
	copy(pts, sites)
	pts = append(pts, superTriangle(sites, order)...)

	tris := []Triangle{{n, n + 1, n + 2}}
	for _, p := range order {
		tris = insert(pts, tris, p)
	}

	var out Triangulation
	seen := make(map[Edge]bool)
	for _, t := range tris {
		if t[0] < n && t[1] < n && t[2] < n {
			out.Triangles = append(out.Triangles, t)
		}
		for k := range 3 {
			a, b := t[k], t[(k+1)%3]
			if a >= n || b >= n {
				continue
			}
			e := newEdge(a, b)
			if !seen[e] {
				seen[e] = true
				out.Edges = append(out.Edges, e)
			}
		}
	}
	slices.SortFunc(out.Edges, func(a, b Edge) int {
		if c := cmp.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return cmp.Compare(a[1], b[1])
	})
	return out
}

// insert adds site p. The cavity starts at the triangle containing p and
// grows across shared edges into every neighbor whose circumcircle contains
// p, so it is always connected and never empty.
func insert(pts []geom.Vec, tris []Triangle, p int) []Triangle {
	q := pts[p]

	best, bestScore := 0, math.Inf(-1)
	for i, t := range tris {
		if s := containment(pts, t, q); s > bestScore {
			best, bestScore = i, s
		}
	}

	byEdge := make(map[Edge][]int, 3*len(tris))
	for i, t := range tris {
		for k := range 3 {
			e := newEdge(t[k], t[(k+1)%3])
			byEdge[e] = append(byEdge[e], i)
		}
	}

	bad := map[int]bool{best: true}
	stack := []int{best}
	for len(stack) > 0 {
		t := tris[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]
		for k := range 3 {
			for _, j := range byEdge[newEdge(t[k], t[(k+1)%3])] {
				if !bad[j] && inCircle(pts, tris[j], q) {
					bad[j] = true
					stack = append(stack, j)
				}
			}
		}
	}

	count := make(map[Edge]int, 3*len(bad))
	keep := make([]Triangle, 0, len(tris)+2)
	for i, t := range tris {
		if !bad[i] {
			keep = append(keep, t)
			continue
		}
		for k := range 3 {
			count[newEdge(t[k], t[(k+1)%3])]++
		}
	}
	for i, t := range tris {
		if !bad[i] {
			continue
		}
		for k := range 3 {
			a, b := t[k], t[(k+1)%3]
			if count[newEdge(a, b)] == 1 {
				keep = append(keep, Triangle{a, b, p})
			}
		}
	}
	return keep
}

// containment scores how deep q lies in t: positive inside, zero on an edge,
// negative outside.
func containment(pts []geom.Vec, t Triangle, q geom.Vec) float64 {
	a, b, c := pts[t[0]], pts[t[1]], pts[t[2]]
	s := 1.0
	if b.Sub(a).Cross(c.Sub(a)) < 0 {
		s = -1
	}
	return s * min(b.Sub(a).Cross(q.Sub(a)), c.Sub(b).Cross(q.Sub(b)), a.Sub(c).Cross(q.Sub(c)))
}

// inCircle reports whether q lies strictly inside the circumcircle of t. The
// determinant is taken relative to q so nearby points keep their precision.
// A flat triangle has no finite circumcircle and always reports true.
func inCircle(pts []geom.Vec, t Triangle, q geom.Vec) bool {
	a, b, c := pts[t[0]], pts[t[1]], pts[t[2]]
	orient := b.Sub(a).Cross(c.Sub(a))
	if orient == 0 {
		return true
	}
	ad, bd, cd := a.Sub(q), b.Sub(q), c.Sub(q)
	det := ad.Dot(ad)*bd.Cross(cd) + bd.Dot(bd)*cd.Cross(ad) + cd.Dot(cd)*ad.Cross(bd)
	return det*orient > 0
}

// superTriangle returns three vertices enclosing every site by a wide margin.
func superTriangle(sites []geom.Vec, order []int) []geom.Vec {
	lo, hi := sites[order[0]], sites[order[0]]
	for _, i := range order[1:] {
		s := sites[i]
		lo = geom.Vec{X: min(lo.X, s.X), Y: min(lo.Y, s.Y)}
		hi = geom.Vec{X: max(hi.X, s.X), Y: max(hi.Y, s.Y)}
	}
	d := max(hi.X-lo.X, hi.Y-lo.Y, 1)
	mid := lo.Add(hi).Scale(0.5)
	return []geom.Vec{
		{X: mid.X - 20*d, Y: mid.Y - d},
		{X: mid.X, Y: mid.Y + 20*d},
		{X: mid.X + 20*d, Y: mid.Y - d},
	}
}

// uniqueSites returns the indices of finite sites, in index order, that lie
// farther than eps from every earlier returned site. With eps zero only exact
// repeats are skipped.
func uniqueSites(sites []geom.Vec, eps float64) []int {
	order := make([]int, 0, len(sites))
	eps2 := eps * eps
	for i, s := range sites {
		if !s.Finite() {
			continue
		}
		dup := slices.ContainsFunc(order, func(k int) bool {
			return s.Dist2(sites[k]) <= eps2
		})
		if !dup {
			order = append(order, i)
		}
	}
	return order
}
