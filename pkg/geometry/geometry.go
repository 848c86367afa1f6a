// Package geometry implements the planar geometry layer of the correspondence
// pipeline: repair and validation of raw zone polygons, and the triangulation
// and clipping primitives the overlay engine uses to compute exact
// intersection areas.
//
// All functions are pure: they never mutate their inputs and return freshly
// allocated values, so repaired geometry never aliases the raw input.
// Coordinates are interpreted in a single planar coordinate system; areas are
// in that system's native square units.
package geometry

import (
	"math"

	"github.com/paulmach/orb"
)

// collinearEps is the cross-product magnitude below which three points are
// treated as collinear during triangulation.
const collinearEps = 1e-12

// SignedArea returns the signed shoelace area of a ring. Positive for
// counter-clockwise traversal, negative for clockwise. The ring may be open
// or closed; it is treated as cyclic either way.
func SignedArea(r orb.Ring) float64 {
	n := len(r)
	if n > 1 && r[0] == r[n-1] {
		n--
	}
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += r[i][0]*r[j][1] - r[j][0]*r[i][1]
	}
	return sum / 2
}

// Area returns the area of a multi-polygon: the sum over parts of the outer
// ring area minus the hole areas. Ring orientation does not matter; magnitudes
// are used.
func Area(mp orb.MultiPolygon) float64 {
	var total float64
	for _, p := range mp {
		if len(p) == 0 {
			continue
		}
		total += math.Abs(SignedArea(p[0]))
		for _, hole := range p[1:] {
			total -= math.Abs(SignedArea(hole))
		}
	}
	return total
}

// Triangle is a planar triangle used as the unit of overlay computation.
type Triangle [3]orb.Point

// Area returns the (unsigned) area of the triangle.
func (t Triangle) Area() float64 {
	return math.Abs(cross(t[0], t[1], t[2])) / 2
}

// Bound returns the triangle's bounding box.
func (t Triangle) Bound() orb.Bound {
	b := orb.Bound{Min: t[0], Max: t[0]}
	for _, p := range t[1:] {
		b = b.Extend(p)
	}
	return b
}

// cross returns the z component of (b-a) x (c-a). Positive when c lies to the
// left of the directed line a->b.
func cross(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// Triangulate decomposes a simple ring into triangles by ear clipping. The
// triangles partition the ring's interior, so their areas sum to the ring
// area. Collinear vertices are tolerated; if numerical noise prevents an ear
// from being found, the most collinear vertex is dropped so the algorithm
// always terminates.
func Triangulate(r orb.Ring) []Triangle {
	pts := dedupe(r)
	if len(pts) < 3 {
		return nil
	}
	if SignedArea(pts) < 0 {
		reverse(pts)
	}

	idx := make([]int, len(pts))
	for i := range idx {
		idx[i] = i
	}

	tris := make([]Triangle, 0, len(pts)-2)
	for len(idx) > 3 {
		ear := findEar(pts, idx)
		if ear < 0 {
			ear = mostCollinear(pts, idx)
		}
		prev := idx[(ear+len(idx)-1)%len(idx)]
		next := idx[(ear+1)%len(idx)]
		t := Triangle{pts[prev], pts[idx[ear]], pts[next]}
		if t.Area() > 0 {
			tris = append(tris, t)
		}
		idx = append(idx[:ear], idx[ear+1:]...)
	}
	t := Triangle{pts[idx[0]], pts[idx[1]], pts[idx[2]]}
	if t.Area() > 0 {
		tris = append(tris, t)
	}
	return tris
}

// findEar returns the index (into idx) of a clippable ear, or -1 if none is
// found. A vertex is an ear when it is convex and no other ring vertex lies
// strictly inside the candidate triangle.
func findEar(pts orb.Ring, idx []int) int {
	n := len(idx)
	for i := 0; i < n; i++ {
		a := pts[idx[(i+n-1)%n]]
		b := pts[idx[i]]
		c := pts[idx[(i+1)%n]]
		if cross(a, b, c) <= collinearEps {
			continue // reflex or collinear
		}
		blocked := false
		for j := 0; j < n; j++ {
			if j == i || j == (i+n-1)%n || j == (i+1)%n {
				continue
			}
			if pointInTriangle(pts[idx[j]], a, b, c) {
				blocked = true
				break
			}
		}
		if !blocked {
			return i
		}
	}
	return -1
}

// mostCollinear returns the index (into idx) of the vertex with the smallest
// turn magnitude. Used as a fallback to guarantee progress on degenerate
// rings.
func mostCollinear(pts orb.Ring, idx []int) int {
	n := len(idx)
	best, bestMag := 0, math.Inf(1)
	for i := 0; i < n; i++ {
		a := pts[idx[(i+n-1)%n]]
		b := pts[idx[i]]
		c := pts[idx[(i+1)%n]]
		if mag := math.Abs(cross(a, b, c)); mag < bestMag {
			best, bestMag = i, mag
		}
	}
	return best
}

func pointInTriangle(p, a, b, c orb.Point) bool {
	d1 := cross(a, b, p)
	d2 := cross(b, c, p)
	d3 := cross(c, a, p)
	return d1 > collinearEps && d2 > collinearEps && d3 > collinearEps
}

// ClipTriangles returns the area of the intersection of two triangles,
// computed with Sutherland-Hodgman clipping. Both triangles are convex, which
// is the precondition for the half-plane clip.
func ClipTriangles(subject, clip Triangle) float64 {
	sub := ccw(subject)
	clp := ccw(clip)

	poly := []orb.Point{sub[0], sub[1], sub[2]}
	for i := 0; i < 3 && len(poly) > 0; i++ {
		a := clp[i]
		b := clp[(i+1)%3]
		poly = clipHalfPlane(poly, a, b)
	}
	return polyArea(poly)
}

// ccw returns the triangle with counter-clockwise vertex order.
func ccw(t Triangle) Triangle {
	if cross(t[0], t[1], t[2]) < 0 {
		return Triangle{t[0], t[2], t[1]}
	}
	return t
}

// clipHalfPlane keeps the part of poly on or left of the directed line a->b.
func clipHalfPlane(poly []orb.Point, a, b orb.Point) []orb.Point {
	out := make([]orb.Point, 0, len(poly)+1)
	for i := 0; i < len(poly); i++ {
		cur := poly[i]
		prev := poly[(i+len(poly)-1)%len(poly)]
		curIn := cross(a, b, cur) >= 0
		prevIn := cross(a, b, prev) >= 0
		if curIn {
			if !prevIn {
				out = append(out, lineIntersect(prev, cur, a, b))
			}
			out = append(out, cur)
		} else if prevIn {
			out = append(out, lineIntersect(prev, cur, a, b))
		}
	}
	return out
}

// lineIntersect returns the intersection of segment p1->p2 with the infinite
// line a->b. Callers guarantee the segment crosses the line.
func lineIntersect(p1, p2, a, b orb.Point) orb.Point {
	d1 := cross(a, b, p1)
	d2 := cross(a, b, p2)
	t := d1 / (d1 - d2)
	return orb.Point{
		p1[0] + t*(p2[0]-p1[0]),
		p1[1] + t*(p2[1]-p1[1]),
	}
}

// polyArea returns the unsigned area of a convex polygon given as a point
// list (no closing duplicate required).
func polyArea(pts []orb.Point) float64 {
	return math.Abs(SignedArea(orb.Ring(pts)))
}

// dedupe copies a ring without its closing point or consecutive duplicates.
func dedupe(r orb.Ring) orb.Ring {
	out := make(orb.Ring, 0, len(r))
	n := len(r)
	if n > 1 && r[0] == r[n-1] {
		n--
	}
	for i := 0; i < n; i++ {
		if len(out) > 0 && out[len(out)-1] == r[i] {
			continue
		}
		out = append(out, r[i])
	}
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

func reverse(r orb.Ring) {
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
}
