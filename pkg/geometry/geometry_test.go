package geometry

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
)

const tol = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func TestSignedArea(t *testing.T) {
	tests := []struct {
		name string
		ring orb.Ring
		want float64
	}{
		{"UnitSquareCCW", orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}, 1},
		{"UnitSquareCW", orb.Ring{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}, -1},
		{"OpenRing", orb.Ring{{0, 0}, {2, 0}, {2, 2}, {0, 2}}, 4},
		{"Triangle", orb.Ring{{0, 0}, {4, 0}, {0, 3}, {0, 0}}, 6},
		{"Degenerate", orb.Ring{{0, 0}, {1, 1}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SignedArea(tt.ring); !almostEqual(got, tt.want) {
				t.Errorf("SignedArea() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTriangulateArea(t *testing.T) {
	tests := []struct {
		name string
		ring orb.Ring
		want float64
	}{
		{"Square", orb.Ring{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}, 4},
		{"ClockwiseSquare", orb.Ring{{0, 0}, {0, 2}, {2, 2}, {2, 0}, {0, 0}}, 4},
		{"LShape", orb.Ring{{0, 0}, {2, 0}, {2, 1}, {1, 1}, {1, 2}, {0, 2}, {0, 0}}, 3},
		{"Concave", orb.Ring{{0, 0}, {4, 0}, {4, 4}, {2, 1}, {0, 4}, {0, 0}}, 10},
		{"CollinearVertex", orb.Ring{{0, 0}, {1, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sum float64
			for _, tri := range Triangulate(tt.ring) {
				sum += tri.Area()
			}
			if !almostEqual(sum, tt.want) {
				t.Errorf("triangle areas sum to %v, want %v", sum, tt.want)
			}
		})
	}
}

func TestClipTriangles(t *testing.T) {
	a := Triangle{{0, 0}, {2, 0}, {0, 2}}

	// A triangle clipped against itself keeps its full area.
	if got := ClipTriangles(a, a); !almostEqual(got, 2) {
		t.Errorf("self clip area = %v, want 2", got)
	}

	// Disjoint triangles share nothing.
	far := Triangle{{10, 10}, {11, 10}, {10, 11}}
	if got := ClipTriangles(a, far); got != 0 {
		t.Errorf("disjoint clip area = %v, want 0", got)
	}

	// Winding order of either operand must not matter.
	cw := Triangle{{0, 0}, {0, 2}, {2, 0}}
	if got := ClipTriangles(a, cw); !almostEqual(got, 2) {
		t.Errorf("cw clip area = %v, want 2", got)
	}
}

func TestMeshIntersectionArea(t *testing.T) {
	sq := func(x, y, size float64) orb.MultiPolygon {
		return orb.MultiPolygon{{orb.Ring{
			{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y},
		}}}
	}

	tests := []struct {
		name string
		a, b orb.MultiPolygon
		want float64
	}{
		{"Identical", sq(0, 0, 2), sq(0, 0, 2), 4},
		{"HalfOverlap", sq(0, 0, 2), sq(1, 0, 2), 2},
		{"Disjoint", sq(0, 0, 1), sq(5, 5, 1), 0},
		{"Contained", sq(0, 0, 4), sq(1, 1, 1), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IntersectionArea(NewMesh(tt.a), NewMesh(tt.b))
			if !almostEqual(got, tt.want) {
				t.Errorf("IntersectionArea() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMeshIntersectionWithHole(t *testing.T) {
	// 4x4 square with a 2x2 hole in the middle; intersect with the full
	// 4x4 square. Expected area is 16 - 4 = 12.
	donut := orb.MultiPolygon{{
		orb.Ring{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}},
		orb.Ring{{1, 1}, {1, 3}, {3, 3}, {3, 1}, {1, 1}}, // hole, CW
	}}
	full := orb.MultiPolygon{{orb.Ring{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}}}

	got := IntersectionArea(NewMesh(donut), NewMesh(full))
	if !almostEqual(got, 12) {
		t.Errorf("IntersectionArea() = %v, want 12", got)
	}

	// A square entirely inside the hole overlaps nothing.
	inner := orb.MultiPolygon{{orb.Ring{{1.5, 1.5}, {2.5, 1.5}, {2.5, 2.5}, {1.5, 2.5}, {1.5, 1.5}}}}
	if got := IntersectionArea(NewMesh(donut), NewMesh(inner)); !almostEqual(got, 0) {
		t.Errorf("hole interior area = %v, want 0", got)
	}
}

func TestMeshIntersectionCancellation(t *testing.T) {
	square := orb.MultiPolygon{{orb.Ring{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}}}
	mesh := NewMesh(square)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := IntersectionAreaContext(ctx, mesh, mesh); !errors.Is(err, context.Canceled) {
		t.Errorf("IntersectionAreaContext() error = %v, want context.Canceled", err)
	}

	area, err := IntersectionAreaContext(context.Background(), mesh, mesh)
	if err != nil {
		t.Fatalf("IntersectionAreaContext() = %v", err)
	}
	if !almostEqual(area, 16) {
		t.Errorf("area = %v, want 16", area)
	}
}
