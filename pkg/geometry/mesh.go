package geometry

import (
	"context"

	"github.com/paulmach/orb"
)

// Mesh is a signed triangulation of a multi-polygon: outer rings contribute
// triangles with sign +1, holes with sign -1. Intersection areas between two
// polygons reduce to signed sums of pairwise triangle clips, which handles
// holes and concave rings without general polygon boolean ops.
//
// A Mesh is immutable after construction and safe for concurrent use.
type Mesh struct {
	tris []meshTriangle
}

type meshTriangle struct {
	tri   Triangle
	sign  float64
	bound orb.Bound
}

// NewMesh triangulates a canonical multi-polygon (as produced by Repair)
// into a signed mesh.
func NewMesh(mp orb.MultiPolygon) Mesh {
	var m Mesh
	for _, poly := range mp {
		for i, ring := range poly {
			sign := 1.0
			if i > 0 {
				sign = -1.0
			}
			for _, t := range Triangulate(ring) {
				m.tris = append(m.tris, meshTriangle{tri: t, sign: sign, bound: t.Bound()})
			}
		}
	}
	return m
}

// Len returns the number of triangles in the mesh.
func (m Mesh) Len() int { return len(m.tris) }

// cancelCheckStride is how many outer triangles are clipped between context
// checks in IntersectionAreaContext.
const cancelCheckStride = 64

// IntersectionArea returns the area of the intersection of the regions
// covered by the two meshes. The result is exact up to floating-point
// rounding for valid input polygons (holes nested in their outer ring,
// disjoint parts).
func IntersectionArea(a, b Mesh) float64 {
	area, _ := IntersectionAreaContext(context.Background(), a, b)
	return area
}

// IntersectionAreaContext is IntersectionArea with periodic cancellation
// checks, so a deadline can interrupt the pairwise clip of two large meshes
// rather than only between mesh pairs.
func IntersectionAreaContext(ctx context.Context, a, b Mesh) (float64, error) {
	var total float64
	for i, ta := range a.tris {
		if i%cancelCheckStride == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		for _, tb := range b.tris {
			if !ta.bound.Intersects(tb.bound) {
				continue
			}
			if area := ClipTriangles(ta.tri, tb.tri); area > 0 {
				total += ta.sign * tb.sign * area
			}
		}
	}
	if total < 0 {
		return 0, nil
	}
	return total, nil
}
