// Package overlay computes the pairwise intersections between source and
// target zones. For each source zone it asks the spatial index for candidate
// targets, filters the false positives with exact intersection areas, and
// emits one fragment per surviving (source, target) pair.
//
// Fragments below the sliver threshold are discarded: near-coincident zone
// boundaries produce tiny spurious overlaps that would otherwise leak
// numerical noise into the weights. Near-equal competing fragments are both
// kept; conservation is restored downstream by normalization, never by
// picking a winner here.
package overlay

import (
	"context"
	"fmt"
	"sort"

	"github.com/transportlab/zonelink/pkg/geometry"
	"github.com/transportlab/zonelink/pkg/index"
	"github.com/transportlab/zonelink/pkg/zone"
)

// Default sliver thresholds. The relative threshold is a fraction of the
// source zone's area; the absolute threshold is in native square units.
// Both are tunable per run, and the larger of the two applies.
const (
	DefaultRelativeSliver = 1e-6
	DefaultAbsoluteSliver = 0.0
)

// Fragment is the intersection of one source zone and one target zone,
// reduced to its area. Fragments are transient: they exist only between the
// overlay pass and weight computation.
type Fragment struct {
	Source string
	Target string
	Area   float64
}

// Options configures sliver filtering.
type Options struct {
	// AbsoluteSliver drops fragments smaller than this area.
	AbsoluteSliver float64
	// RelativeSliver drops fragments smaller than this fraction of the
	// source zone's area.
	RelativeSliver float64
}

// Engine computes overlay fragments against a fixed target collection. The
// spatial index and the target meshes are built once at construction and are
// read-only afterwards, so a single Engine is safe for concurrent use by the
// worker pool.
type Engine struct {
	idx    *index.Index
	meshes map[string]geometry.Mesh
	opts   Options
}

// NewEngine builds the spatial index and triangulates every target zone.
// Fails with zone.ErrEmptyTargets when the target collection is empty.
func NewEngine(targets []zone.Record, opts Options) (*Engine, error) {
	idx, err := index.New(targets)
	if err != nil {
		return nil, fmt.Errorf("build spatial index: %w", err)
	}
	meshes := make(map[string]geometry.Mesh, len(targets))
	for _, rec := range targets {
		meshes[rec.ID] = geometry.NewMesh(rec.Geom)
	}
	return &Engine{idx: idx, meshes: meshes, opts: opts}, nil
}

// Fragments computes the surviving overlay fragments for one source zone,
// sorted by target ID. A source zone with no surviving fragment fails with
// zone.ErrNoOverlap; the caller records it as a diagnostic and carries on.
// The context is checked between candidates and periodically inside each
// mesh intersection, so a per-zone deadline can cut off pathological
// geometry mid-pair.
func (e *Engine) Fragments(ctx context.Context, src zone.Record) ([]Fragment, error) {
	candidates := e.idx.Candidates(src.Bound)
	sort.Strings(candidates)

	srcMesh := geometry.NewMesh(src.Geom)
	threshold := e.sliverThreshold(src.Area)

	var frags []Fragment
	for _, id := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		area, err := geometry.IntersectionAreaContext(ctx, srcMesh, e.meshes[id])
		if err != nil {
			return nil, err
		}
		if area <= 0 || area < threshold {
			continue
		}
		frags = append(frags, Fragment{Source: src.ID, Target: id, Area: area})
	}

	if len(frags) == 0 {
		return nil, fmt.Errorf("zone %s: %w", src.ID, zone.ErrNoOverlap)
	}
	return frags, nil
}

// sliverThreshold returns the effective minimum fragment area for a source
// zone of the given area.
func (e *Engine) sliverThreshold(srcArea float64) float64 {
	threshold := e.opts.AbsoluteSliver
	if rel := e.opts.RelativeSliver * srcArea; rel > threshold {
		threshold = rel
	}
	return threshold
}
