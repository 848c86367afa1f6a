// Package zone defines the data model shared by the correspondence pipeline:
// input zones, validated geometry records, weight table entries, and the
// per-zone error taxonomy.
//
// Zones are constructed once from an externally supplied collection, repaired
// into immutable Records, and never mutated afterwards. All downstream stages
// (index, overlay, weights) treat Records as read-only, which is what makes
// the overlay pass safe to parallelize without locking.
package zone

import (
	"errors"
	"sort"
)

// Sentinel errors for per-zone and fatal failures.
var (
	// ErrInvalidGeometry is returned when a zone's geometry cannot be
	// repaired into a valid polygon (non-polygonal type, zero area, or
	// no rings surviving the degeneracy filter). The zone is skipped and
	// the run continues.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrDegenerateZone is returned when a zero-area source zone reaches
	// weight computation. Validation excludes these up front; the weight
	// calculator re-checks defensively.
	ErrDegenerateZone = errors.New("degenerate zone")

	// ErrNoOverlap is returned when a source zone has no surviving
	// intersection with any target zone after sliver filtering. Recorded
	// as a diagnostic; the run continues.
	ErrNoOverlap = errors.New("no overlap with target zones")

	// ErrEmptyTargets is returned when the spatial index cannot be built
	// because the target collection is empty. This is fatal and aborts
	// the whole run.
	ErrEmptyTargets = errors.New("target collection is empty")

	// ErrEmptySources is returned when the source collection contains no
	// zones at all. Fatal, like ErrEmptyTargets.
	ErrEmptySources = errors.New("source collection is empty")

	// ErrZeroAttribute is returned when a source zone overlaps targets but
	// its attribute factor leaves zero mass to distribute in attribute
	// weighting mode. Recorded as a diagnostic; the run continues.
	ErrZeroAttribute = errors.New("zero attribute weight")

	// ErrZoneTimeout is returned when a single zone's overlay computation
	// exceeds the configured per-zone timeout. The zone is skipped and
	// the run continues.
	ErrZoneTimeout = errors.New("zone computation timed out")

	// ErrDuplicateZoneID is returned by Collection.Add when a zone ID is
	// already present. Zone IDs must be unique within a collection.
	ErrDuplicateZoneID = errors.New("duplicate zone ID")

	// ErrEmptyZoneID is returned by Collection.Add for zones without an
	// identifier.
	ErrEmptyZoneID = errors.New("zone ID must not be empty")
)

// Entry is a single correspondence record: the fraction of a source zone's
// quantity attributed to one target zone. Weight is in [0, 1] and the entries
// sharing a Source sum to 1.0 within Tolerance.
type Entry struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// Table is the ordered set of correspondence entries, sorted by
// (source, target). It is the sole output artifact of a successful run;
// ownership passes to the caller.
type Table []Entry

// Sort orders the table by (source, target) for deterministic output.
func (t Table) Sort() {
	sort.Slice(t, func(i, j int) bool {
		if t[i].Source != t[j].Source {
			return t[i].Source < t[j].Source
		}
		return t[i].Target < t[j].Target
	})
}

// BySource groups the table's entries by source zone ID. Entries keep their
// table order within each group.
func (t Table) BySource() map[string][]Entry {
	groups := make(map[string][]Entry)
	for _, e := range t {
		groups[e.Source] = append(groups[e.Source], e)
	}
	return groups
}

// Diagnostic records a zone that was excluded from the result, with the
// reason it was skipped. Diagnostics are a side channel next to the table,
// not part of the correspondence weights.
type Diagnostic struct {
	ZoneID string `json:"zone_id"`
	Reason string `json:"reason"`
}

// Diagnostics is an ordered list of skipped zones.
type Diagnostics []Diagnostic

// Sort orders diagnostics by zone ID for deterministic output.
func (d Diagnostics) Sort() {
	sort.Slice(d, func(i, j int) bool { return d[i].ZoneID < d[j].ZoneID })
}
