// Package index provides the read-only spatial index used to find candidate
// target zones for each source zone. It wraps an R-tree over bounding boxes:
// candidate lookup may return false positives (bounds touch, geometry does
// not) but never false negatives, so the overlay engine only has to filter
// with exact intersection tests.
package index

import (
	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"

	"github.com/transportlab/zonelink/pkg/zone"
)

// Index is a bounding-box R-tree over validated zone records. It is built
// once and read-only afterwards, which makes it safe to share across overlay
// workers without locking.
type Index struct {
	tree rtree.RTreeG[string]
	size int
}

// New builds an index over the given records. An empty record set cannot be
// indexed and fails with zone.ErrEmptyTargets, which callers treat as fatal.
func New(records []zone.Record) (*Index, error) {
	if len(records) == 0 {
		return nil, zone.ErrEmptyTargets
	}
	idx := &Index{size: len(records)}
	for _, rec := range records {
		idx.tree.Insert(point(rec.Bound.Min), point(rec.Bound.Max), rec.ID)
	}
	return idx, nil
}

// Candidates returns the IDs of all indexed records whose bounding box
// intersects b. The result order is unspecified; callers needing determinism
// sort downstream.
func (idx *Index) Candidates(b orb.Bound) []string {
	var ids []string
	idx.tree.Search(point(b.Min), point(b.Max), func(_, _ [2]float64, id string) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}

// Len returns the number of indexed records.
func (idx *Index) Len() int { return idx.size }

func point(p orb.Point) [2]float64 {
	return [2]float64{p[0], p[1]}
}
