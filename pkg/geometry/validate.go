package geometry

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/transportlab/zonelink/pkg/zone"
)

// DefaultAreaEpsilon is the ring area below which a ring is treated as
// degenerate and dropped during repair, in native square units.
const DefaultAreaEpsilon = 1e-12

// Repair validates and canonicalizes raw zone geometry using
// DefaultAreaEpsilon. See RepairWithEpsilon.
func Repair(g orb.Geometry) (orb.MultiPolygon, error) {
	return RepairWithEpsilon(g, DefaultAreaEpsilon)
}

// RepairWithEpsilon returns a repaired copy of g as a canonical
// multi-polygon:
//
//   - rings are closed and stripped of consecutive duplicate points
//   - outer rings wind counter-clockwise, holes clockwise (right-hand rule)
//   - rings with fewer than three distinct points or area below eps are
//     dropped; dropping an outer ring drops its whole polygon part
//
// Inputs that are not polygonal, that have no area left after repair, or
// that contain a self-intersecting ring fail with zone.ErrInvalidGeometry.
// A non-simple ring cannot be repaired unambiguously, and letting it through
// would make the shoelace area and the triangulated coverage disagree. The
// input geometry is never mutated, and calling RepairWithEpsilon on its own
// output returns an identical value.
func RepairWithEpsilon(g orb.Geometry, eps float64) (orb.MultiPolygon, error) {
	var mp orb.MultiPolygon
	switch v := g.(type) {
	case orb.Polygon:
		mp = orb.MultiPolygon{v}
	case orb.MultiPolygon:
		mp = v
	case nil:
		return nil, fmt.Errorf("%w: nil geometry", zone.ErrInvalidGeometry)
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", zone.ErrInvalidGeometry, g)
	}

	out := make(orb.MultiPolygon, 0, len(mp))
	for _, poly := range mp {
		if len(poly) == 0 {
			continue
		}
		outer, ok, err := repairRing(poly[0], eps, true)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		repaired := orb.Polygon{outer}
		for _, hole := range poly[1:] {
			h, ok, err := repairRing(hole, eps, false)
			if err != nil {
				return nil, err
			}
			if ok {
				repaired = append(repaired, h)
			}
		}
		out = append(out, repaired)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no rings survive repair", zone.ErrInvalidGeometry)
	}
	if Area(out) <= eps {
		return nil, fmt.Errorf("%w: zero area after repair", zone.ErrInvalidGeometry)
	}
	return out, nil
}

// repairRing closes, dedupes, and orients a single ring. Outer rings become
// counter-clockwise, holes clockwise. Returns false for degenerate rings and
// an error for self-intersecting ones.
func repairRing(r orb.Ring, eps float64, outer bool) (orb.Ring, bool, error) {
	pts := dedupe(r)
	if len(pts) < 3 {
		return nil, false, nil
	}
	area := SignedArea(pts)
	if math.Abs(area) <= eps {
		return nil, false, nil
	}
	if !ringSimple(pts) {
		return nil, false, fmt.Errorf("%w: self-intersecting ring", zone.ErrInvalidGeometry)
	}
	if outer && area < 0 || !outer && area > 0 {
		reverse(pts)
	}
	// Re-close the ring; canonical rings always repeat the first point.
	pts = append(pts, pts[0])
	return pts, true, nil
}

// ringSimple reports whether the open deduped ring pts is free of
// self-intersections. Non-adjacent edges must not cross, touch, or overlap;
// adjacent edges share exactly their common vertex by construction.
func ringSimple(pts orb.Ring) bool {
	n := len(pts)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			if segmentsIntersect(pts[i], pts[(i+1)%n], pts[j], pts[(j+1)%n]) {
				return false
			}
		}
	}
	return true
}

// segmentsIntersect reports whether segments ab and cd share any point,
// including endpoint touches and collinear overlap.
func segmentsIntersect(a, b, c, d orb.Point) bool {
	d1 := cross(c, d, a)
	d2 := cross(c, d, b)
	d3 := cross(a, b, c)
	d4 := cross(a, b, d)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(c, d, a) {
		return true
	}
	if d2 == 0 && onSegment(c, d, b) {
		return true
	}
	if d3 == 0 && onSegment(a, b, c) {
		return true
	}
	if d4 == 0 && onSegment(a, b, d) {
		return true
	}
	return false
}

// onSegment reports whether p lies within the bounding box of segment ab.
// Callers have already established that p is collinear with ab.
func onSegment(a, b, p orb.Point) bool {
	return math.Min(a[0], b[0]) <= p[0] && p[0] <= math.Max(a[0], b[0]) &&
		math.Min(a[1], b[1]) <= p[1] && p[1] <= math.Max(a[1], b[1])
}

// ValidateZone repairs a zone's geometry and returns an immutable Record with
// precomputed area and bounding box. The zone's ID and attribute carry over
// unchanged.
func ValidateZone(z zone.Zone, eps float64) (zone.Record, error) {
	geom, err := RepairWithEpsilon(z.Geometry, eps)
	if err != nil {
		return zone.Record{}, fmt.Errorf("zone %s: %w", z.ID, err)
	}
	return zone.Record{
		ID:           z.ID,
		Geom:         geom,
		Area:         Area(geom),
		Bound:        geom.Bound(),
		Attribute:    z.Attribute,
		HasAttribute: z.HasAttribute,
	}, nil
}

// ValidateCollection repairs every zone in a collection. Zones that fail
// repair are returned as diagnostics rather than aborting the run. Records
// are returned in the collection's insertion order.
func ValidateCollection(c *zone.Collection, eps float64) ([]zone.Record, zone.Diagnostics) {
	records := make([]zone.Record, 0, c.Len())
	var diags zone.Diagnostics
	for _, z := range c.Zones() {
		rec, err := ValidateZone(z, eps)
		if err != nil {
			diags = append(diags, zone.Diagnostic{ZoneID: z.ID, Reason: err.Error()})
			continue
		}
		records = append(records, rec)
	}
	return records, diags
}
