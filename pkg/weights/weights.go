// Package weights converts overlay fragments into normalized correspondence
// weights. The calculator turns a fragment into a raw weight (area share,
// optionally scaled by a source zone attribute); the builder groups raw
// weights by source zone, normalizes each group to sum to exactly 1.0, and
// assembles the final deterministic weight table.
package weights

import (
	"fmt"
	"math"
	"sort"

	"github.com/transportlab/zonelink/pkg/overlay"
	"github.com/transportlab/zonelink/pkg/zone"
)

// Tolerance is the maximum relative deviation from 1.0 allowed for the sum
// of a source zone's weights.
const Tolerance = 1e-9

// Mode selects how raw weights are derived from fragments.
type Mode string

const (
	// ModeArea weights by area share alone: fragment area over source area.
	ModeArea Mode = "area"
	// ModeAttribute scales the area share by the source zone's attribute
	// value, for redistributing a quantity assumed uniform within the
	// source zone (e.g. population). Zones without an attribute fall back
	// to a factor of one.
	ModeAttribute Mode = "attribute"
)

// ValidateMode checks that a weighting mode is supported.
func ValidateMode(m Mode) error {
	switch m {
	case ModeArea, ModeAttribute:
		return nil
	}
	return fmt.Errorf("invalid weighting mode: %q (must be one of: area, attribute)", m)
}

// Raw converts a fragment into a raw (un-normalized) weight for the given
// source zone. Validation excludes zero-area zones before overlay, but the
// division is re-checked here so a degenerate zone can never produce Inf or
// NaN weights.
func Raw(frag overlay.Fragment, src zone.Record, mode Mode) (float64, error) {
	if err := ValidateMode(mode); err != nil {
		return 0, err
	}
	if src.Area <= 0 {
		return 0, fmt.Errorf("zone %s: %w: area is %v", src.ID, zone.ErrDegenerateZone, src.Area)
	}
	w := frag.Area / src.Area
	if mode == ModeAttribute && src.HasAttribute {
		w *= src.Attribute
	}
	return w, nil
}

// Normalize converts a source zone's fragments into final entries whose
// weights sum to exactly 1.0, sorted by target ID. A zero raw sum never
// produces NaN entries: in attribute mode it means the zone's attribute left
// no mass to distribute (zone.ErrZeroAttribute), otherwise there is no
// usable overlap (zone.ErrNoOverlap).
func Normalize(frags []overlay.Fragment, src zone.Record, mode Mode) ([]zone.Entry, error) {
	if len(frags) == 0 {
		return nil, fmt.Errorf("zone %s: %w", src.ID, zone.ErrNoOverlap)
	}

	raws := make([]float64, len(frags))
	var sum float64
	for i, f := range frags {
		w, err := Raw(f, src, mode)
		if err != nil {
			return nil, err
		}
		raws[i] = w
		sum += w
	}
	if sum <= 0 {
		if mode == ModeAttribute {
			return nil, fmt.Errorf("zone %s: %w", src.ID, zone.ErrZeroAttribute)
		}
		return nil, fmt.Errorf("zone %s: %w", src.ID, zone.ErrNoOverlap)
	}

	entries := make([]zone.Entry, len(frags))
	for i, f := range frags {
		entries[i] = zone.Entry{Source: f.Source, Target: f.Target, Weight: raws[i] / sum}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Target < entries[j].Target })
	return entries, nil
}

// VerifyConservation checks that every source zone's weights sum to 1.0
// within Tolerance. Returns the first violation found.
func VerifyConservation(t zone.Table) error {
	for src, group := range t.BySource() {
		var sum float64
		for _, e := range group {
			sum += e.Weight
		}
		if math.Abs(sum-1.0) > Tolerance {
			return fmt.Errorf("zone %s: weights sum to %.12f, want 1.0 within %g", src, sum, Tolerance)
		}
	}
	return nil
}

// Builder accumulates per-zone entry batches and skipped-zone diagnostics
// into the final table. It is not safe for concurrent use; the pipeline's
// collector goroutine owns it.
type Builder struct {
	table zone.Table
	diags zone.Diagnostics
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends a completed source zone's entries.
func (b *Builder) Add(entries []zone.Entry) {
	b.table = append(b.table, entries...)
}

// Skip records a zone excluded from the table with the reason.
func (b *Builder) Skip(zoneID, reason string) {
	b.diags = append(b.diags, zone.Diagnostic{ZoneID: zoneID, Reason: reason})
}

// Finish sorts the table by (source, target) and the diagnostics by zone ID,
// verifies weight conservation, and hands both to the caller. The builder
// should not be reused afterwards.
func (b *Builder) Finish() (zone.Table, zone.Diagnostics, error) {
	b.table.Sort()
	b.diags.Sort()
	if err := VerifyConservation(b.table); err != nil {
		return nil, nil, err
	}
	return b.table, b.diags, nil
}
